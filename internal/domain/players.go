package domain

// PlayerProfile - результат поиска игрока.
type PlayerProfile struct {
	PlayerID   int64    `json:"player_id"`
	Nickname   string   `json:"nickname"`
	Level      *int64   `json:"level"`
	Gold       *int64   `json:"gold"`
	Experience *int64   `json:"experience"`
	IsPK       bool     `json:"is_pk"`
	IsVIP      bool     `json:"is_vip"`
	InJail     bool     `json:"in_jail"`
	Inventory  []string `json:"inventory"`
}

// PlayerUpdate - тело правки профиля игрока.
type PlayerUpdate struct {
	Level      int64 `json:"level"`
	Gold       int64 `json:"gold"`
	Experience int64 `json:"experience"`
	IsPK       bool  `json:"is_pk"`
	IsVIP      bool  `json:"is_vip"`
	InJail     bool  `json:"in_jail"`
}
