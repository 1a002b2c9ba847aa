package domain

import "time"

// Snapshot - согласованный набор всех одиннадцати ресурсов одной загрузки.
// Каждая загрузка создает новый Snapshot, старый отбрасывается целиком.
type Snapshot struct {
	Stats       DashboardStats     `json:"stats"`
	Trades      []PendingTrade     `json:"trades"`
	Reports     []GuildReport      `json:"reports"`
	Settings    EconomySettings    `json:"settings"`
	World       WorldState         `json:"world"`
	Events      []WorldEvent       `json:"events"`
	Clans       []ClanSummary      `json:"clans"`
	Territories []TerritorySummary `json:"territories"`
	Quests      []QuestStatus      `json:"quests"`
	ActionLogs  []ActionLog        `json:"action_logs"`
	AdminLogs   []AdminLog         `json:"admin_logs"`

	LoadedAt time.Time `json:"loaded_at"`
}
