package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/radieske/odds-aggregator-poc/internal/aggregator/dto"
)

// Pipeline é o contrato do pipeline de refresh consumido pelos handlers
type Pipeline interface {
	LiveOdds(ctx context.Context) ([]dto.SimplifiedOdds, error)
}

// Upstream é o contrato do client do provedor para as rotas de passthrough
type Upstream interface {
	FetchOddsRaw(ctx context.Context, sport, regions, markets string) ([]byte, error)
	FetchEvents(ctx context.Context, sport string) ([]byte, error)
}

// WSHandler serve a conexão WebSocket do hub de odds (pode ser nil)
type WSHandler interface {
	HandleWS(w http.ResponseWriter, r *http.Request)
}

// API expõe os endpoints REST do agregador de odds sob o prefixo /bets
type API struct {
	Log      *zap.Logger
	Pipeline Pipeline
	Upstream Upstream
	Hub      WSHandler

	// Esporte usado nas rotas default (/getdefaultodds, /getdefaultevents)
	DefaultSport   string
	DefaultRegions string
	DefaultMarkets string
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", a.home)
	r.Get("/health", a.health)

	r.Route("/bets", func(r chi.Router) {
		r.Get("/status", a.status)
		r.Get("/getodds", a.getOdds)               // odds brutas do provedor
		r.Get("/getliveodds", a.getLiveOdds)       // snapshot simplificado (cache-aware)
		r.Get("/getdefaultodds", a.getLiveOdds)    // alias histórico do front
		r.Get("/getevents", a.getEvents)           // eventos de um esporte
		r.Get("/getdefaultevents", a.getDefaultEvents)
	})

	if a.Hub != nil {
		r.Get("/ws", a.Hub.HandleWS)
	}

	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRaw repassa o corpo do provedor sem reserializar
func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
