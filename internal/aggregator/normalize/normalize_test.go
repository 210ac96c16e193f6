package normalize_test

import (
	"reflect"
	"testing"

	"github.com/radieske/odds-aggregator-poc/internal/aggregator/dto"
	"github.com/radieske/odds-aggregator-poc/internal/aggregator/normalize"
)

func sampleEvent(outcomes []dto.Outcome) dto.RawOddsEvent {
	return dto.RawOddsEvent{
		ID:           "ev1",
		SportKey:     "americanfootball_nfl",
		SportTitle:   "NFL",
		CommenceTime: "2025-11-23T21:00:00Z",
		HomeTeam:     "Dallas Cowboys",
		AwayTeam:     "Philadelphia Eagles",
		Bookmakers: []dto.Bookmaker{
			{
				Key:        "draftkings",
				Title:      "DraftKings",
				LastUpdate: "2025-11-23T21:19:48Z",
				Markets: []dto.Market{
					{Key: "h2h", LastUpdate: "2025-11-23T21:19:48Z", Outcomes: outcomes},
				},
			},
		},
	}
}

func TestSimplify_MatchesPricesByName(t *testing.T) {
	// outcomes fora de ordem: o match tem que ser por nome, não por posição
	ev := sampleEvent([]dto.Outcome{
		{Name: "Philadelphia Eagles", Price: 1.62},
		{Name: "Dallas Cowboys", Price: 2.36},
	})

	got := normalize.Simplify(ev, 0, 0)

	if got.HomeTeamPrice != 2.36 {
		t.Errorf("HomeTeamPrice = %v, want 2.36", got.HomeTeamPrice)
	}
	if got.AwayTeamPrice != 1.62 {
		t.Errorf("AwayTeamPrice = %v, want 1.62", got.AwayTeamPrice)
	}
	if got.Bookmaker != "DraftKings" {
		t.Errorf("Bookmaker = %q, want DraftKings", got.Bookmaker)
	}
	if got.MarketType != "h2h" {
		t.Errorf("MarketType = %q, want h2h", got.MarketType)
	}
}

func TestSimplify_PositionalFallback(t *testing.T) {
	// nenhum outcome casa com os nomes dos times: outcome[0] -> home, outcome[1] -> away
	ev := sampleEvent([]dto.Outcome{
		{Name: "Over 2.5", Price: 1.8},
		{Name: "Under 2.5", Price: 2.0},
	})

	got := normalize.Simplify(ev, 0, 0)

	if got.HomeTeamPrice != 1.8 {
		t.Errorf("HomeTeamPrice = %v, want 1.8", got.HomeTeamPrice)
	}
	if got.AwayTeamPrice != 2.0 {
		t.Errorf("AwayTeamPrice = %v, want 2.0", got.AwayTeamPrice)
	}
}

func TestSimplify_PriceFloor(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []dto.Outcome
	}{
		{"no outcomes", nil},
		{"single anonymous outcome", []dto.Outcome{{Name: "Draw", Price: 3.1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize.Simplify(sampleEvent(tt.outcomes), 0, 0)
			if got.HomeTeamPrice != 0.0 || got.AwayTeamPrice != 0.0 {
				t.Errorf("prices = %v/%v, want 0.0/0.0", got.HomeTeamPrice, got.AwayTeamPrice)
			}
		})
	}
}

func TestSimplify_PartialNameMatchKeepsNamedSide(t *testing.T) {
	// só o home casa por nome: away fica no piso, sem fallback posicional
	ev := sampleEvent([]dto.Outcome{
		{Name: "Dallas Cowboys", Price: 2.36},
		{Name: "Someone Else", Price: 9.99},
	})

	got := normalize.Simplify(ev, 0, 0)

	if got.HomeTeamPrice != 2.36 {
		t.Errorf("HomeTeamPrice = %v, want 2.36", got.HomeTeamPrice)
	}
	if got.AwayTeamPrice != 0.0 {
		t.Errorf("AwayTeamPrice = %v, want 0.0", got.AwayTeamPrice)
	}
}

func TestSimplify_MissingNestedStructures(t *testing.T) {
	tests := []struct {
		name string
		ev   dto.RawOddsEvent
	}{
		{"no bookmakers", dto.RawOddsEvent{ID: "x", HomeTeam: "A", AwayTeam: "B"}},
		{"bookmaker without markets", dto.RawOddsEvent{
			ID: "x", HomeTeam: "A", AwayTeam: "B",
			Bookmakers: []dto.Bookmaker{{Key: "bk", Title: "BK"}},
		}},
		{"market without outcomes", dto.RawOddsEvent{
			ID: "x", HomeTeam: "A", AwayTeam: "B",
			Bookmakers: []dto.Bookmaker{{Title: "BK", Markets: []dto.Market{{Key: "h2h"}}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize.Simplify(tt.ev, 0, 0)
			if got.EventID != "x" {
				t.Errorf("EventID = %q, want x", got.EventID)
			}
			if got.HomeTeamPrice != 0.0 || got.AwayTeamPrice != 0.0 {
				t.Errorf("prices = %v/%v, want 0.0/0.0", got.HomeTeamPrice, got.AwayTeamPrice)
			}
		})
	}
}

func TestSimplify_OutOfRangeIndexes(t *testing.T) {
	ev := sampleEvent([]dto.Outcome{{Name: "Dallas Cowboys", Price: 2.36}})

	got := normalize.Simplify(ev, 5, 0)
	if got.Bookmaker != "" || got.MarketType != "" {
		t.Errorf("out-of-range bookmaker should degrade to empty, got %q/%q", got.Bookmaker, got.MarketType)
	}

	got = normalize.Simplify(ev, 0, 7)
	if got.MarketType != "" {
		t.Errorf("out-of-range market should degrade to empty, got %q", got.MarketType)
	}
}

func TestSimplify_DoesNotMutateInput(t *testing.T) {
	ev := sampleEvent([]dto.Outcome{
		{Name: "Philadelphia Eagles", Price: 1.62},
		{Name: "Dallas Cowboys", Price: 2.36},
	})
	before := sampleEvent([]dto.Outcome{
		{Name: "Philadelphia Eagles", Price: 1.62},
		{Name: "Dallas Cowboys", Price: 2.36},
	})

	_ = normalize.Simplify(ev, 0, 0)

	if !reflect.DeepEqual(ev, before) {
		t.Error("Simplify mutated its input")
	}
}

func TestValidEvent(t *testing.T) {
	valid := sampleEvent(nil)
	if !dto.ValidEvent(valid) {
		t.Error("complete event should be valid")
	}

	tests := []struct {
		name   string
		mutate func(*dto.RawOddsEvent)
	}{
		{"missing id", func(e *dto.RawOddsEvent) { e.ID = "" }},
		{"missing sport_key", func(e *dto.RawOddsEvent) { e.SportKey = "" }},
		{"missing home_team", func(e *dto.RawOddsEvent) { e.HomeTeam = "" }},
		{"missing away_team", func(e *dto.RawOddsEvent) { e.AwayTeam = "" }},
		{"missing commence_time", func(e *dto.RawOddsEvent) { e.CommenceTime = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := sampleEvent(nil)
			tt.mutate(&ev)
			if dto.ValidEvent(ev) {
				t.Error("event with missing identity field should be invalid")
			}
		})
	}
}
