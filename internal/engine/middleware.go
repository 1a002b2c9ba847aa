package engine

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderTraceID - сквозной ID: приходит от оператора и уходит на сервер.
const HeaderTraceID = "X-Trace-ID"

// Тип для ключа в контексте (избегаем коллизий)
type ctxKey string

const traceIDKey ctxKey = "trace_id"

// TracingMiddleware присваивает Trace-ID каждому запросу оператора.
// Все вызовы сервера в рамках этого запроса уходят с тем же ID.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		w.Header().Set(HeaderTraceID, traceID)
		next.ServeHTTP(w, r.WithContext(WithTraceID(r.Context(), traceID)))
	})
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// extractTraceID достает ID из контекста; фоновые вызовы получают свежий.
func extractTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

// TraceIDFrom возвращает ID текущего запроса оператора, если он есть.
func TraceIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(traceIDKey).(string)
	return id, ok && id != ""
}
