package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	oddscache "github.com/radieske/odds-aggregator-poc/internal/aggregator/cache"
	httpapi "github.com/radieske/odds-aggregator-poc/internal/aggregator/http"
	"github.com/radieske/odds-aggregator-poc/internal/aggregator/pipeline"
	"github.com/radieske/odds-aggregator-poc/internal/aggregator/pubsub"
	"github.com/radieske/odds-aggregator-poc/internal/aggregator/publisher"
	"github.com/radieske/odds-aggregator-poc/internal/aggregator/repo"
	"github.com/radieske/odds-aggregator-poc/internal/aggregator/startup"
	"github.com/radieske/odds-aggregator-poc/internal/aggregator/upstream"
	"github.com/radieske/odds-aggregator-poc/internal/aggregator/ws"
	sharedcache "github.com/radieske/odds-aggregator-poc/internal/shared/cache"
	"github.com/radieske/odds-aggregator-poc/internal/shared/config"
	"github.com/radieske/odds-aggregator-poc/internal/shared/db"
	"github.com/radieske/odds-aggregator-poc/internal/shared/logger"
	"github.com/radieske/odds-aggregator-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("http_port", cfg.HTTPPort))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Redis é otimização, não dependência: indisponível vira modo degradado
	var rdb *redis.Client
	if c, err := sharedcache.ConnectRedis(cfg); err != nil {
		log.Warn("redis unavailable, running without cache", zap.Error(err))
	} else {
		rdb = c
		defer rdb.Close()
		log.Info("redis connected")
	}

	// Postgres é backup best-effort: sem ele o serviço continua servindo
	var store *repo.Postgres
	if pg, err := db.ConnectPostgres(cfg.PostgresDSN); err != nil {
		log.Warn("postgres unavailable, secondary store disabled", zap.Error(err))
	} else {
		store = repo.NewPostgres(pg)
		defer pg.Close()
		log.Info("postgres connected")
	}

	client := upstream.New(cfg.OddsAPIBaseURL, cfg.OddsAPIKey)
	if cfg.OddsAPIKey == "" {
		log.Warn("ODDS_API_KEY not set, provider routes will answer with config error")
	}

	// Métricas Prometheus do pipeline de refresh
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_agg_cache_hits_total", Help: "cache hits no snapshot de odds"})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_agg_cache_misses_total", Help: "cache misses no snapshot de odds"})
	fetches := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_agg_upstream_fetches_total", Help: "fetches no provedor externo"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_agg_records_skipped_total", Help: "registros pulados na transformação"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "odds_agg_errors_total", Help: "erros por estágio do pipeline"}, []string{"stage"})
	prometheus.MustRegister(cacheHits, cacheMisses, fetches, skipped, errorsBy)

	kpub := publisher.New(cfg.KafkaBrokers, cfg.TopicOddsRefreshed, log)
	if kpub != nil {
		defer kpub.Close()
	}

	pipe := &pipeline.Pipeline{
		Log:          log,
		Cache:        oddscache.New(rdb, log),
		Upstream:     client,
		Sport:        cfg.DefaultSport,
		Regions:      cfg.DefaultRegions,
		Markets:      cfg.DefaultMarkets,
		BcastChannel: cfg.RedisPubSubChannel,

		OnCacheHit:      func() { cacheHits.Inc() },
		OnCacheMiss:     func() { cacheMisses.Inc() },
		OnUpstreamFetch: func() { fetches.Inc() },
		OnRecordSkipped: func() { skipped.Inc() },
		OnError:         func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}
	if store != nil {
		pipe.Store = store
	}
	if kpub != nil {
		pipe.Publ = kpub
	}
	if rdb != nil {
		pipe.Bcast = pubsub.NewRedisBroadcaster(rdb)
	}

	// Hub WebSocket alimentado pelo Pub/Sub do pipeline
	var hub *ws.Hub
	if rdb != nil {
		hub = ws.NewHub(func(r *http.Request) bool { return true })
		ws.StartRedisSubscriber(ctx, rdb, cfg.RedisPubSubChannel, hub, log)
	}

	// Reconciler de startup: dispara e segue; nunca bloqueia o serviço
	var reconciler *startup.Reconciler
	if store != nil {
		reconciler = &startup.Reconciler{Log: log, Upstream: client, Store: store, Seeder: pipe}
		go reconciler.Run(ctx)
	} else {
		log.Warn("startup reconcile skipped, no database")
	}

	// Servidor de métricas e health em porta separada
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort,
		func(hctx context.Context) error {
			if store != nil {
				if err := store.Ping(hctx); err != nil {
					return fmt.Errorf("postgres: %w", err)
				}
			}
			if rdb != nil {
				if err := rdb.Ping(hctx).Err(); err != nil {
					return fmt.Errorf("redis: %w", err)
				}
			}
			return nil
		},
		func() bool { return reconciler == nil || reconciler.Ready() },
	)
	log.Info("metrics/health server started", zap.String("port", cfg.MetricsPort))

	api := &httpapi.API{
		Log:            log,
		Pipeline:       pipe,
		Upstream:       client,
		DefaultSport:   cfg.DefaultSport,
		DefaultRegions: cfg.DefaultRegions,
		DefaultMarkets: cfg.DefaultMarkets,
	}
	if hub != nil {
		api.Hub = hub
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)

	log.Info("stopped")
}
