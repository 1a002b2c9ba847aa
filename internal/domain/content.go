package domain

type QuestStatus struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// SpawnRequest - выдача предмета игроку.
type SpawnRequest struct {
	PlayerID int64  `json:"player_id"`
	Item     string `json:"item"`
}
