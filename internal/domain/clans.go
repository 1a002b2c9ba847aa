package domain

type ClanSummary struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Leader        string `json:"leader"`
	Treasury      *int64 `json:"treasury"`
	BuildingLevel *int64 `json:"building_level"`
}

// TerritorySummary - шахта и клан-владелец.
type TerritorySummary struct {
	ID    int64  `json:"id"`
	Mine  string `json:"mine"`
	Owner string `json:"owner"`
}
