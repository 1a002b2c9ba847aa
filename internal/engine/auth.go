package engine

import "net/http"

const (
	// HeaderAdminToken - заголовок, в котором сервер ждет токен администратора.
	HeaderAdminToken = "X-Admin-Token"

	contentTypeJSON = "application/json"
)

// Credential - неизменяемый токен сессии консоли. Захватывается один раз при запуске
// и передается в Gateway при создании. Наружу (логи, fmt) не печатается.
type Credential struct {
	token string
}

func NewCredential(token string) Credential {
	return Credential{token: token}
}

// Decorate подписывает исходящий запрос токеном. Пустой токен передается как есть:
// сервер ответит отказом авторизации, и это всплывет как обычная ошибка шлюза.
func (c Credential) Decorate(h http.Header, hasBody bool) {
	h.Set(HeaderAdminToken, c.token)
	if hasBody && h.Get("Content-Type") == "" {
		h.Set("Content-Type", contentTypeJSON)
	}
}

func (c Credential) String() string {
	return "[redacted]"
}

// GoString закрывает утечку через %#v.
func (c Credential) GoString() string {
	return "engine.Credential{[redacted]}"
}
