package normalize

import "github.com/radieske/odds-aggregator-poc/internal/aggregator/dto"

// Simplify transforma um evento bruto do provedor no formato canônico
// Seleciona um bookmaker e um mercado por índice (default: primeiro de cada)
// Nunca falha e nunca modifica a entrada: estrutura aninhada ausente degrada
// para valores vazios, preços para 0.0
func Simplify(ev dto.RawOddsEvent, bookmakerIdx, marketIdx int) dto.SimplifiedOdds {
	var bk dto.Bookmaker
	if bookmakerIdx >= 0 && bookmakerIdx < len(ev.Bookmakers) {
		bk = ev.Bookmakers[bookmakerIdx]
	}

	var mk dto.Market
	if marketIdx >= 0 && marketIdx < len(bk.Markets) {
		mk = bk.Markets[marketIdx]
	}

	home, away := resolvePrices(mk.Outcomes, ev.HomeTeam, ev.AwayTeam)

	return dto.SimplifiedOdds{
		EventID:       ev.ID,
		SportKey:      ev.SportKey,
		SportTitle:    ev.SportTitle,
		CommenceTime:  ev.CommenceTime,
		HomeTeam:      ev.HomeTeam,
		AwayTeam:      ev.AwayTeam,
		MarketType:    mk.Key,
		HomeTeamPrice: home,
		AwayTeamPrice: away,
		Bookmaker:     bk.Title,
		LastUpdate:    mk.LastUpdate,
	}
}

// resolvePrices aplica o algoritmo em duas fases:
// 1) casa os outcomes pelo nome exato dos times
// 2) se nenhum dos dois casar, cai no fallback posicional (outcome[0] -> home,
// outcome[1] -> away)
// Com menos de dois outcomes e sem match, os preços vão a 0.0
func resolvePrices(outcomes []dto.Outcome, homeTeam, awayTeam string) (float64, float64) {
	var home, away float64
	matched := false

	for _, oc := range outcomes {
		switch oc.Name {
		case homeTeam:
			home = oc.Price
			matched = true
		case awayTeam:
			away = oc.Price
			matched = true
		}
	}

	if !matched && len(outcomes) >= 2 {
		home = outcomes[0].Price
		away = outcomes[1].Price
	}

	return home, away
}
