package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	skafka "github.com/radieske/odds-aggregator-poc/internal/shared/kafka"
	"github.com/radieske/odds-aggregator-poc/pkg/contracts/events"
)

// KafkaPublisher emite eventos odds_refreshed pra consumidores downstream
// Colaborador best-effort do pipeline: falha de publicação é logada e
// nunca interfere na resposta HTTP
type KafkaPublisher struct {
	writer *skafka.Writer
	log    *zap.Logger
}

// New cria o publisher; brokers vazio desabilita (retorna nil)
func New(brokers, topic string, log *zap.Logger) *KafkaPublisher {
	if brokers == "" {
		log.Info("kafka brokers not configured, refresh events disabled")
		return nil
	}
	return &KafkaPublisher{
		writer: skafka.NewWriter(brokers, topic),
		log:    log,
	}
}

// PublishRefreshed serializa e envia o evento, chaveado pelo snapshot
func (p *KafkaPublisher) PublishRefreshed(ctx context.Context, ev events.OddsRefreshed) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal odds_refreshed: %w", err)
	}

	if err := skafka.WriteJSON(ctx, p.writer, ev.SnapshotID, b); err != nil {
		return fmt.Errorf("write odds_refreshed: %w", err)
	}

	p.log.Debug("odds_refreshed published", zap.String("snapshot_id", ev.SnapshotID))
	return nil
}

// Close libera o writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
