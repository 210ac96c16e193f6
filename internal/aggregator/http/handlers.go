package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/odds-aggregator-poc/internal/aggregator/upstream"
)

// Conjuntos aceitos pelo provedor nas rotas de passthrough
var (
	allowedRegions = map[string]bool{"us": true, "us2": true, "uk": true, "au": true, "eu": true}
	allowedMarkets = map[string]bool{"h2h": true, "spreads": true, "totals": true, "outrights": true}
)

// home responde a saudação da raiz do serviço
func (a *API) home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the odds aggregator backend!",
		"status":  "Running successfully",
		"service": "odds-aggregator",
	})
}

// health atende o health check do container
func (a *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// status retorna o status da sub-API
func (a *API) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":       "online",
		"version":      "1.0",
		"service_area": "odds aggregation",
	})
}

// getOdds repassa as odds brutas do provedor pro esporte pedido
// sport é obrigatório; regions e markets têm default e são validados
func (a *API) getOdds(w http.ResponseWriter, r *http.Request) {
	sport := r.URL.Query().Get("sport")
	if sport == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sport query param is required"})
		return
	}

	regions := r.URL.Query().Get("regions")
	if regions == "" {
		regions = a.DefaultRegions
	}
	if !allowedRegions[regions] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid regions param"})
		return
	}

	markets := r.URL.Query().Get("markets")
	if markets == "" {
		markets = a.DefaultMarkets
	}
	if !allowedMarkets[markets] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid markets param"})
		return
	}

	body, err := a.Upstream.FetchOddsRaw(r.Context(), sport, regions, markets)
	if err != nil {
		a.upstreamError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

// getLiveOdds serve o snapshot simplificado via pipeline (cache-aware)
func (a *API) getLiveOdds(w http.ResponseWriter, r *http.Request) {
	odds, err := a.Pipeline.LiveOdds(r.Context())
	if err != nil {
		a.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, odds)
}

// getEvents repassa os eventos brutos do provedor pro esporte pedido
func (a *API) getEvents(w http.ResponseWriter, r *http.Request) {
	sport := r.URL.Query().Get("sport")
	if sport == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sport query param is required"})
		return
	}

	body, err := a.Upstream.FetchEvents(r.Context(), sport)
	if err != nil {
		a.upstreamError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

// getDefaultEvents repassa os eventos do esporte default configurado
func (a *API) getDefaultEvents(w http.ResponseWriter, r *http.Request) {
	body, err := a.Upstream.FetchEvents(r.Context(), a.DefaultSport)
	if err != nil {
		a.upstreamError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

// upstreamError mapeia a taxonomia de erros pra respostas JSON
// ConfigError e UpstreamError viram 500 com corpo explicativo;
// detalhe do provedor é repassado quando existe
func (a *API) upstreamError(w http.ResponseWriter, err error) {
	var statusErr *upstream.StatusError
	switch {
	case errors.Is(err, upstream.ErrMissingAPIKey):
		a.Log.Error("odds api key missing")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "missing api key"})
	case errors.As(err, &statusErr):
		a.Log.Warn("upstream rejected request", zap.Int("code", statusErr.Code))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "external API error",
			"details": statusErr.Body,
		})
	default:
		a.Log.Error("odds request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
