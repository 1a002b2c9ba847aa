package audit

import "time"

// Статусы записи журнала
const (
	StatusSuccess  = "SUCCESS"
	StatusFailed   = "FAILED"   // сервер или перезагрузка вернули ошибку
	StatusRejected = "REJECTED" // отклонено до отправки (неверный ввод, консоль не готова)
)

// ActionEvent - запись о действии оператора.
type ActionEvent struct {
	ID        string                 `json:"id"`         // UUID события
	TraceID   string                 `json:"trace_id"`   // Сквозной ID запроса оператора
	ConsoleID string                 `json:"console_id"` // Какая консоль
	Intent    string                 `json:"intent"`     // Что хотели сделать (trade.moderate, quest.reset, ...)
	Target    string                 `json:"target"`     // ID сущности, если есть
	Payload   map[string]interface{} `json:"payload"`    // Тело запроса к серверу

	// Результат
	Status     string    `json:"status"`
	Reloaded   bool      `json:"reloaded"` // была ли полная перезагрузка после записи
	Error      string    `json:"error"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
}
