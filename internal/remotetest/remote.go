// Package remotetest поднимает фейковый игровой сервер для тестов консоли.
package remotetest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Call - запрос, который получил фейковый сервер.
type Call struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

type reply struct {
	status int
	body   string
}

// Remote отвечает на все одиннадцать ресурсов снимка и записывает каждый вызов.
type Remote struct {
	*httptest.Server

	mu      sync.Mutex
	replies map[string]reply // "METHOD /path"
	calls   []Call
}

// Payloads - ответы по умолчанию для ресурсов снимка.
var Payloads = map[string]string{
	"/api/dashboard": `{"online":1520,"economy_gold":2500000,"new_players":42,"server_load":63,` +
		`"level_cap":80,"leader_name":"Svyatogor","leader_level":80}`,
	"/api/economy/trades":   `[{"id":7,"seller":"Ratibor","buyer":"Goldseller99","item":"Dragon Axe","price":1500000,"deviation":340.5,"status":"pending"}]`,
	"/api/economy/reports":  `[{"id":3,"player":"Cheater","reason":"scam","status":"open"}]`,
	"/api/economy/settings": `{"auction_tax":5,"npc_buy_multiplier":0.8}`,
	"/api/world/state":      `{"time_mode":"cycle","time_of_day":"noon","weather":"clear","season":"summer"}`,
	"/api/world/events":     `[{"id":1,"name":"Zmey raid","status":"idle"}]`,
	"/api/clans":            `[{"id":2,"name":"Druzhina","leader":"Svyatogor","treasury":120000,"building_level":3}]`,
	"/api/territories":      `[{"id":5,"mine":"Iron mine","owner":"Druzhina"}]`,
	"/api/content/quests":   `[{"id":9,"name":"Koschei","status":"done"}]`,
	"/api/logs/actions":     `[{"id":11,"description":"Player logged in","category":"auth"}]`,
	"/api/logs/admin":       `[{"id":12,"action":"ban","admin":"root","created_at":"2024-05-01T10:20:30.123456"}]`,
}

func New() *Remote {
	r := &Remote{replies: make(map[string]reply)}
	for path, body := range Payloads {
		r.replies[http.MethodGet+" "+path] = reply{status: http.StatusOK, body: body}
	}
	r.Server = httptest.NewServer(http.HandlerFunc(r.serve))
	return r
}

// Reply задает ответ на METHOD path. Пустое тело остается пустым.
func (r *Remote) Reply(method, path string, status int, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies[method+" "+path] = reply{status: status, body: body}
}

// Calls возвращает копию журнала вызовов.
func (r *Remote) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count - число вызовов METHOD path.
func (r *Remote) Count(method, path string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// Last - последний вызов METHOD path.
func (r *Remote) Last(method, path string) (Call, bool) {
	calls := r.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == method && calls[i].Path == path {
			return calls[i], true
		}
	}
	return Call{}, false
}

func (r *Remote) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Remote) serve(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)

	r.mu.Lock()
	r.calls = append(r.calls, Call{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.RawQuery,
		Header: req.Header.Clone(),
		Body:   string(body),
	})
	rep, ok := r.replies[req.Method+" "+req.URL.Path]
	r.mu.Unlock()

	if !ok {
		// Записи без заданного ответа: сервер подтверждает их пустым объектом
		rep = reply{status: http.StatusOK, body: `{"status":"ok"}`}
		if req.Method == http.MethodGet {
			rep = reply{status: http.StatusNotFound, body: "Not found"}
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	_, _ = io.WriteString(w, rep.body)
}
