package infra

import "fmt"

const (
	// RedisNamespace Базовый префикс для изоляции данных консоли в Redis
	RedisNamespace = "gardarika:console"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanRefresh - сигнал "состояние сервера изменено, перечитайте всё".
	RedisChanRefresh = RedisNamespace + ":refresh"
)

// RefreshSignal формирует полезную нагрузку сигнала: "console_id:intent".
func RefreshSignal(consoleID, intent string) string {
	return fmt.Sprintf("%s:%s", consoleID, intent)
}
