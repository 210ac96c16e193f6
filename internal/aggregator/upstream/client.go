package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/radieske/odds-aggregator-poc/internal/aggregator/dto"
)

// ErrMissingAPIKey é erro de configuração: detectado antes de qualquer
// chamada de rede, nunca vale a pena retry
var ErrMissingAPIKey = errors.New("odds api key not configured")

// StatusError carrega resposta não-2xx do provedor
// Handlers decidem o que repassar; o client não mascara o status
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Code, e.Body)
}

// Client é o wrapper de chamada única pro provedor de odds (the-odds-api v4)
// Sem retry: política de backoff, se houver, pertence ao chamador
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 7 * time.Second,
		},
	}
}

// FetchSports busca a lista de esportes disponíveis no provedor
func (c *Client) FetchSports(ctx context.Context) ([]dto.Sport, error) {
	body, err := c.get(ctx, "/sports/", nil)
	if err != nil {
		return nil, err
	}

	var sports []dto.Sport
	if err := json.Unmarshal(body, &sports); err != nil {
		return nil, fmt.Errorf("decode sports: %w", err)
	}
	return sports, nil
}

// FetchOddsRaw busca odds de um esporte e devolve o JSON do provedor intacto
func (c *Client) FetchOddsRaw(ctx context.Context, sport, regions, markets string) ([]byte, error) {
	path := fmt.Sprintf("/sports/%s/odds/", url.PathEscape(sport))
	return c.get(ctx, path, url.Values{
		"regions": {regions},
		"markets": {markets},
	})
}

// FetchOdds busca odds já decodificadas no formato bruto do provedor
func (c *Client) FetchOdds(ctx context.Context, sport, regions, markets string) ([]dto.RawOddsEvent, error) {
	body, err := c.FetchOddsRaw(ctx, sport, regions, markets)
	if err != nil {
		return nil, err
	}

	var events []dto.RawOddsEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode odds: %w", err)
	}
	return events, nil
}

// FetchEvents busca os eventos de um esporte, JSON intacto
func (c *Client) FetchEvents(ctx context.Context, sport string) ([]byte, error) {
	path := fmt.Sprintf("/sports/%s/events/", url.PathEscape(sport))
	return c.get(ctx, path, nil)
}

// get monta a URL com a api key, executa a chamada e classifica a resposta
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call upstream: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
