package events

import "time"

// Evento publicado no tópico "odds_refreshed" após cada refresh bem-sucedido
// Consumidores downstream usam o snapshot_id para correlacionar com o banco
type OddsRefreshed struct {
	SnapshotID  string    `json:"snapshot_id"`
	Sport       string    `json:"sport"` // "upcoming" no fluxo default
	Records     int       `json:"records"`
	RefreshedAt time.Time `json:"refreshed_at"`
	Source      string    `json:"source"` // "odds-aggregator"
}
