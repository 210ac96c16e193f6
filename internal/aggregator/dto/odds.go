package dto

import "time"

// RawOddsEvent é o formato do provedor externo (the-odds-api v4)
// Entrada não confiável: nenhum campo aninhado pode ser assumido como presente
type RawOddsEvent struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime string      `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker representa uma casa de apostas com seus mercados
type Bookmaker struct {
	Key        string   `json:"key"`
	Title      string   `json:"title"`
	LastUpdate string   `json:"last_update"`
	Markets    []Market `json:"markets"`
}

// Market representa um mercado de aposta (ex: "h2h")
type Market struct {
	Key        string    `json:"key"`
	LastUpdate string    `json:"last_update"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Outcome representa um resultado apostável e seu preço decimal
type Outcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// SimplifiedOdds é a representação canônica servida ao front end
// home_team_price e away_team_price sempre presentes (piso 0.0)
type SimplifiedOdds struct {
	EventID       string  `json:"event_id"`
	SportKey      string  `json:"sport_key"`
	SportTitle    string  `json:"sport_title"`
	CommenceTime  string  `json:"commence_time"`
	HomeTeam      string  `json:"home_team"`
	AwayTeam      string  `json:"away_team"`
	MarketType    string  `json:"market_type"`
	HomeTeamPrice float64 `json:"home_team_price"`
	AwayTeamPrice float64 `json:"away_team_price"`
	Bookmaker     string  `json:"bookmaker"`
	LastUpdate    string  `json:"last_update"`
}

// Sport é um item da lista de esportes do provedor (/v4/sports)
type Sport struct {
	Key          string `json:"key"`
	Group        string `json:"group"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Active       bool   `json:"active"`
	HasOutrights bool   `json:"has_outrights"`
}

// CacheEntry é o envelope gravado no cache de frescor
// A validade é sempre re-derivada a partir de CachedAt na leitura
type CacheEntry struct {
	Data     []SimplifiedOdds `json:"data"`
	CachedAt time.Time        `json:"cached_at"`
}

// ValidEvent verifica os campos de identidade exigidos antes de persistir ou servir
func ValidEvent(ev RawOddsEvent) bool {
	return ev.ID != "" && ev.SportKey != "" && ev.HomeTeam != "" && ev.AwayTeam != "" && ev.CommenceTime != ""
}

// ValidSimplified verifica se um registro simplificado tem identidade completa
// Preços ausentes não rejeitam o registro: o normalizador garante o piso 0.0
func ValidSimplified(o SimplifiedOdds) bool {
	return o.EventID != "" && o.SportKey != "" && o.HomeTeam != "" && o.AwayTeam != ""
}
