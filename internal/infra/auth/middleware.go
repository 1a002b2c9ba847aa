package auth

import (
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"
)

// HeaderOperatorKey - заголовок, которым оператор подтверждает доступ к локальной консоли.
const HeaderOperatorKey = "X-Operator-Key"

// NewMiddleware закрывает поверхность оператора ключом. Пустой ключ - проверка выключена.
func NewMiddleware(key string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(HeaderOperatorKey)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				logger.Warn("operator key mismatch",
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("path", r.URL.Path))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
