package upstream_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/radieske/odds-aggregator-poc/internal/aggregator/upstream"
)

func TestFetchOddsRaw_PassesProviderJSONThrough(t *testing.T) {
	const providerJSON = `[{"id":"abc123","sport_key":"basketball_nba","home_team":"A","away_team":"B","bookmakers":[]}]`

	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"apiKey":  q.Get("apiKey"),
			"regions": q.Get("regions"),
			"markets": q.Get("markets"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(providerJSON))
	}))
	defer srv.Close()

	c := upstream.New(srv.URL, "test-key")

	body, err := c.FetchOddsRaw(context.Background(), "basketball_nba", "us", "h2h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != providerJSON {
		t.Errorf("body = %s, want provider JSON unchanged", body)
	}

	want := map[string]string{"apiKey": "test-key", "regions": "us", "markets": "h2h"}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestFetchOdds_DecodesEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"ev1","sport_key":"soccer_epl","home_team":"A","away_team":"B"}]`))
	}))
	defer srv.Close()

	c := upstream.New(srv.URL, "test-key")

	events, err := c.FetchOdds(context.Background(), "soccer_epl", "uk", "h2h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].ID != "ev1" {
		t.Errorf("events = %+v, want one event with id ev1", events)
	}
}

func TestFetchSports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sports/" {
			t.Errorf("path = %s, want /sports/", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"key":"basketball_nba","group":"Basketball","title":"NBA","active":true}]`))
	}))
	defer srv.Close()

	c := upstream.New(srv.URL, "test-key")

	sports, err := c.FetchSports(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sports) != 1 || sports[0].Key != "basketball_nba" || !sports[0].Active {
		t.Errorf("sports = %+v, want NBA active", sports)
	}
}

func TestNon2xxBecomesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid key"}`))
	}))
	defer srv.Close()

	c := upstream.New(srv.URL, "bad-key")

	_, err := c.FetchEvents(context.Background(), "upcoming")
	var statusErr *upstream.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusUnauthorized {
		t.Errorf("Code = %d, want 401", statusErr.Code)
	}
	if statusErr.Body != `{"message":"invalid key"}` {
		t.Errorf("Body = %q, want provider body", statusErr.Body)
	}
}

func TestMissingAPIKey_NoNetworkCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := upstream.New(srv.URL, "")

	_, err := c.FetchOddsRaw(context.Background(), "upcoming", "us", "h2h")
	if !errors.Is(err, upstream.ErrMissingAPIKey) {
		t.Fatalf("error = %v, want ErrMissingAPIKey", err)
	}
	if called {
		t.Error("client must not hit the network without an api key")
	}
}
