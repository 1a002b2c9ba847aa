package domain

// ActionLog - запись игрового журнала действий.
type ActionLog struct {
	ID          int64  `json:"id"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// AdminLog - запись журнала администраторов. CreatedAt приходит строкой ISO-8601.
type AdminLog struct {
	ID        int64  `json:"id"`
	Admin     string `json:"admin"`
	Action    string `json:"action"`
	CreatedAt string `json:"created_at"`
}
