package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/odds-aggregator-poc/internal/aggregator/dto"
	"github.com/radieske/odds-aggregator-poc/pkg/contracts/events"
)

// WSRefresh é o payload enviado no canal Pub/Sub pro hub WebSocket
type WSRefresh struct {
	SnapshotID  string               `json:"snapshot_id"`
	RefreshedAt time.Time            `json:"refreshed_at"`
	Odds        []dto.SimplifiedOdds `json:"odds"`
}

// broadcast publica o snapshot no canal do hub WebSocket
// O request que disparou o refresh não espera por isso: timeout curto e
// contexto próprio, desacoplado de cancelamento do caller
func (p *Pipeline) broadcast(ev events.OddsRefreshed, simplified []dto.SimplifiedOdds) {
	msg := WSRefresh{
		SnapshotID:  ev.SnapshotID,
		RefreshedAt: ev.RefreshedAt,
		Odds:        simplified,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := p.Bcast.Publish(ctx, p.BcastChannel, b); err != nil {
		p.Log.Warn("ws broadcast publish failed", zap.Error(err))
	}
}
