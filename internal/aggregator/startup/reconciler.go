package startup

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/radieske/odds-aggregator-poc/internal/aggregator/dto"
)

// SportsSource busca a lista de esportes no provedor
type SportsSource interface {
	FetchSports(ctx context.Context) ([]dto.Sport, error)
}

// Store é o contrato do armazenamento secundário usado na reconciliação
type Store interface {
	Ping(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
	ReplaceSports(ctx context.Context, sports []dto.Sport) error
	CountSimplified(ctx context.Context) (int, error)
}

// Seeder executa um refresh de odds pra semear o snapshot inicial
type Seeder interface {
	LiveOdds(ctx context.Context) ([]dto.SimplifiedOdds, error)
}

// Reconciler garante, em background, que a lista de esportes e um snapshot
// inicial de odds existam no início do processo
// Roda uma vez, nunca bloqueia o serviço e nunca derruba o processo:
// toda falha é logada e encerra a reconciliação silenciosamente
type Reconciler struct {
	Log      *zap.Logger
	Upstream SportsSource
	Store    Store
	Seeder   Seeder

	done atomic.Bool
}

// Ready reporta se a reconciliação já terminou (com ou sem sucesso)
func (r *Reconciler) Ready() bool { return r.done.Load() }

// Run executa os passos de reconciliação, respeitando cancelamento
// a cada fronteira de passo
func (r *Reconciler) Run(ctx context.Context) {
	defer r.done.Store(true)

	// Passo 1: banco acessível? Sem ele não há o que reconciliar,
	// mas o serviço continua atendendo as rotas que não dependem dele
	if err := r.Store.Ping(ctx); err != nil {
		r.Log.Warn("startup reconcile skipped, database unreachable", zap.Error(err))
		return
	}
	if err := r.Store.EnsureSchema(ctx); err != nil {
		r.Log.Warn("startup reconcile skipped, schema setup failed", zap.Error(err))
		return
	}

	if ctx.Err() != nil {
		return
	}

	// Passo 2: substitui a lista de esportes inteira (drop-and-reinsert)
	if sports, err := r.Upstream.FetchSports(ctx); err != nil {
		r.Log.Warn("sports list fetch failed", zap.Error(err))
	} else if err := r.Store.ReplaceSports(ctx, sports); err != nil {
		r.Log.Warn("sports list replace failed", zap.Error(err))
	} else {
		r.Log.Info("sports list reconciled", zap.Int("sports", len(sports)))
	}

	if ctx.Err() != nil {
		return
	}

	// Passo 3: semeia um snapshot de odds se ainda não existe nenhum
	n, err := r.Store.CountSimplified(ctx)
	if err != nil {
		r.Log.Warn("odds snapshot check failed", zap.Error(err))
		return
	}
	if n > 0 {
		r.Log.Info("odds snapshot already present", zap.Int("records", n))
		return
	}

	if _, err := r.Seeder.LiveOdds(ctx); err != nil {
		r.Log.Warn("initial odds seed failed", zap.Error(err))
		return
	}
	r.Log.Info("initial odds snapshot seeded")
}
