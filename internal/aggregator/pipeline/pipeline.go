package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/odds-aggregator-poc/internal/aggregator/cache"
	"github.com/radieske/odds-aggregator-poc/internal/aggregator/dto"
	"github.com/radieske/odds-aggregator-poc/internal/aggregator/normalize"
	"github.com/radieske/odds-aggregator-poc/pkg/contracts/events"
)

// ErrEmptyUpstream indica fetch bem-sucedido mas sem nenhum registro servível
// O pipeline não serve dado parcial que não consegue validar
var ErrEmptyUpstream = errors.New("upstream returned no usable events")

// OddsCache é o contrato mínimo do cache de frescor usado pelo pipeline
type OddsCache interface {
	Get(ctx context.Context, key string) ([]dto.SimplifiedOdds, bool)
	Set(ctx context.Context, key string, data []dto.SimplifiedOdds) error
}

// Upstream é o contrato mínimo do client do provedor
type Upstream interface {
	FetchOdds(ctx context.Context, sport, regions, markets string) ([]dto.RawOddsEvent, error)
}

// SnapshotStore é o backup durável best-effort (Postgres)
type SnapshotStore interface {
	ReplaceOddsSnapshot(ctx context.Context, raw []dto.RawOddsEvent, simplified []dto.SimplifiedOdds) (string, error)
}

// Publisher emite o evento de refresh pra consumidores downstream
type Publisher interface {
	PublishRefreshed(ctx context.Context, ev events.OddsRefreshed) error
}

// Broadcaster envia o snapshot pro canal Pub/Sub que alimenta o hub WebSocket
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Pipeline orquestra o refresh de odds:
// cache-check -> fetch -> transform -> store -> respond
// Apenas Cache e Upstream são obrigatórios; Store, Publ e Bcast são
// colaboradores best-effort e podem ser nil
type Pipeline struct {
	Log      *zap.Logger
	Cache    OddsCache
	Upstream Upstream
	Store    SnapshotStore
	Publ     Publisher
	Bcast    Broadcaster

	// Parâmetros da consulta default ("upcoming" agrega os próximos jogos)
	Sport   string
	Regions string
	Markets string

	BcastChannel string

	// Callbacks de métricas (podem ser nil)
	OnCacheHit      func()
	OnCacheMiss     func()
	OnUpstreamFetch func()
	OnRecordSkipped func()
	OnError         func(stage string)
}

// LiveOdds devolve o snapshot simplificado corrente
// Cache hit devolve o payload cacheado sem tocar no provedor; miss executa
// exatamente um fetch, transforma registro a registro e regrava o snapshot
func (p *Pipeline) LiveOdds(ctx context.Context) ([]dto.SimplifiedOdds, error) {
	if cached, ok := p.Cache.Get(ctx, cache.KeyLiveOdds); ok {
		if p.OnCacheHit != nil {
			p.OnCacheHit()
		}
		p.Log.Debug("serving odds from cache", zap.Int("records", len(cached)))
		return cached, nil
	}
	if p.OnCacheMiss != nil {
		p.OnCacheMiss()
	}

	raw, err := p.Upstream.FetchOdds(ctx, p.Sport, p.Regions, p.Markets)
	if err != nil {
		if p.OnError != nil {
			p.OnError("fetch")
		}
		return nil, err
	}
	if p.OnUpstreamFetch != nil {
		p.OnUpstreamFetch()
	}
	if len(raw) == 0 {
		if p.OnError != nil {
			p.OnError("empty")
		}
		return nil, ErrEmptyUpstream
	}

	simplified := p.transform(raw)
	if len(simplified) == 0 {
		if p.OnError != nil {
			p.OnError("empty")
		}
		return nil, ErrEmptyUpstream
	}

	// Cache primeiro: é o que garante leituras rápidas subsequentes
	// Falha aqui degrada pra fetch-por-request, nunca pra erro no caller
	if err := p.Cache.Set(ctx, cache.KeyLiveOdds, simplified); err != nil {
		p.Log.Warn("cache store failed, serving uncached", zap.Error(err))
	}

	p.storeBestEffort(ctx, raw, simplified)

	return simplified, nil
}

// transform processa a lista um registro por vez
// Registro inválido é pulado e logado; nunca aborta o lote
func (p *Pipeline) transform(raw []dto.RawOddsEvent) []dto.SimplifiedOdds {
	out := make([]dto.SimplifiedOdds, 0, len(raw))
	for _, ev := range raw {
		if !dto.ValidEvent(ev) {
			p.Log.Warn("skipping event with missing identity fields", zap.String("event_id", ev.ID))
			if p.OnRecordSkipped != nil {
				p.OnRecordSkipped()
			}
			continue
		}
		simp := normalize.Simplify(ev, 0, 0)
		if !dto.ValidSimplified(simp) {
			p.Log.Warn("skipping unservable simplified record", zap.String("event_id", ev.ID))
			if p.OnRecordSkipped != nil {
				p.OnRecordSkipped()
			}
			continue
		}
		out = append(out, simp)
	}
	return out
}

// storeBestEffort grava o backup durável e notifica downstream
// Nenhuma falha aqui muda a resposta ou o status do request
func (p *Pipeline) storeBestEffort(ctx context.Context, raw []dto.RawOddsEvent, simplified []dto.SimplifiedOdds) {
	if p.Store == nil {
		return
	}

	snapshotID, err := p.Store.ReplaceOddsSnapshot(ctx, raw, simplified)
	if err != nil {
		if p.OnError != nil {
			p.OnError("store")
		}
		p.Log.Warn("secondary store write failed", zap.Error(err))
		return
	}

	ev := events.OddsRefreshed{
		SnapshotID:  snapshotID,
		Sport:       p.Sport,
		Records:     len(simplified),
		RefreshedAt: time.Now().UTC(),
		Source:      "odds-aggregator",
	}

	if p.Publ != nil {
		if err := p.Publ.PublishRefreshed(ctx, ev); err != nil {
			p.Log.Warn("odds_refreshed publish failed", zap.Error(err))
		}
	}

	if p.Bcast != nil {
		p.broadcast(ev, simplified)
	}

	p.Log.Info("odds snapshot refreshed",
		zap.String("snapshot_id", snapshotID),
		zap.Int("records", len(simplified)),
	)
}
