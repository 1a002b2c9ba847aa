package domain

// WorldState - текущее состояние мира. Используется и как тело обновления.
type WorldState struct {
	TimeMode  string `json:"time_mode"`
	TimeOfDay string `json:"time_of_day"`
	Weather   string `json:"weather"`
	Season    string `json:"season"`
}

// WorldEvent - мировое событие, которое можно запустить вручную.
type WorldEvent struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}
