package topics

const (
	// Snapshot de odds atualizado pelo pipeline de refresh
	OddsRefreshed = "odds_refreshed"
)
