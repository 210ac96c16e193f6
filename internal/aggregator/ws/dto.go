package ws

import (
	"time"

	"github.com/radieske/odds-aggregator-poc/internal/aggregator/dto"
)

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// Sport: sport_key ("basketball_nba", ...) ou "all"; requerido em subscribe/unsubscribe
type ClientMsg struct {
	Type  string `json:"type"`
	Sport string `json:"sport"`
}

// RefreshMsg é o snapshot enviado aos clientes após cada refresh do pipeline
type RefreshMsg struct {
	SnapshotID  string               `json:"snapshot_id"`
	RefreshedAt time.Time            `json:"refreshed_at"`
	Odds        []dto.SimplifiedOdds `json:"odds"`
}
