package domain

// DashboardStats - сводка главного экрана. Любое поле может прийти null.
type DashboardStats struct {
	Online      *int64  `json:"online"`
	EconomyGold *int64  `json:"economy_gold"`
	NewPlayers  *int64  `json:"new_players"`
	ServerLoad  *int64  `json:"server_load"` // проценты
	LevelCap    *int64  `json:"level_cap"`
	LeaderName  *string `json:"leader_name"`
	LeaderLevel *int64  `json:"leader_level"`
}
