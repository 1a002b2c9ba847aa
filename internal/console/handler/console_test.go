package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/xela07ax/gardarika-console/internal/console/service"
	"github.com/xela07ax/gardarika-console/internal/domain"
	"github.com/xela07ax/gardarika-console/internal/engine"
	"github.com/xela07ax/gardarika-console/internal/view"
)

// fakeConsole запоминает последний вызов и возвращает заданную ошибку.
type fakeConsole struct {
	err     error
	calls   []string
	trade   domain.TradeDecision
	upd     domain.PlayerUpdate
	econ    domain.EconomyUpdate
	world   domain.WorldState
	spawn   domain.SpawnRequest
	target  int64
	text    string
	profile *domain.PlayerProfile
}

func (f *fakeConsole) hit(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeConsole) Refresh(context.Context) error      { return f.hit("refresh") }
func (f *fakeConsole) AdvanceEpoch(context.Context) error { return f.hit("epoch") }
func (f *fakeConsole) ModerateTrade(_ context.Context, id int64, d domain.TradeDecision) error {
	f.target, f.trade = id, d
	return f.hit("trade")
}
func (f *fakeConsole) ModerateReport(_ context.Context, id int64, d domain.ReportDecision) error {
	f.target, f.text = id, string(d)
	return f.hit("report")
}
func (f *fakeConsole) UpdateEconomySettings(_ context.Context, s domain.EconomyUpdate) error {
	f.econ = s
	return f.hit("economy")
}
func (f *fakeConsole) UpdateWorldState(_ context.Context, s domain.WorldState) error {
	f.world = s
	return f.hit("world")
}
func (f *fakeConsole) TriggerEvent(_ context.Context, id int64) error {
	f.target = id
	return f.hit("event")
}
func (f *fakeConsole) SearchPlayer(_ context.Context, q string) (*domain.PlayerProfile, error) {
	f.text = q
	if err := f.hit("search"); err != nil {
		return nil, err
	}
	return f.profile, nil
}
func (f *fakeConsole) UpdatePlayer(_ context.Context, id int64, u domain.PlayerUpdate) error {
	f.target, f.upd = id, u
	return f.hit("player")
}
func (f *fakeConsole) AddInventoryItem(_ context.Context, id int64, item string) error {
	f.target, f.text = id, item
	return f.hit("inventory.add")
}
func (f *fakeConsole) RemoveInventoryItem(_ context.Context, id int64, item string) error {
	f.target, f.text = id, item
	return f.hit("inventory.remove")
}
func (f *fakeConsole) SetClanLeader(_ context.Context, id int64, leader string) error {
	f.target, f.text = id, leader
	return f.hit("clan")
}
func (f *fakeConsole) ResetTerritories(context.Context) error { return f.hit("territories") }
func (f *fakeConsole) ResetQuest(_ context.Context, id int64) error {
	f.target = id
	return f.hit("quest")
}
func (f *fakeConsole) SpawnItem(_ context.Context, req domain.SpawnRequest) error {
	f.spawn = req
	return f.hit("spawn")
}

type staticView struct{ v view.View }

func (s staticView) View() view.View { return s.v }

type HandlerSuite struct {
	suite.Suite
	console *fakeConsole
	screen  *staticView
	router  http.Handler
}

func (s *HandlerSuite) SetupTest() {
	s.console = &fakeConsole{}
	s.screen = &staticView{}
	h := NewConsoleHandler(s.console, s.screen, zap.NewNop())

	r := chi.NewRouter()
	r.Get("/", h.Page)
	r.Get("/api/view", h.View)
	r.Post("/actions/refresh", h.Refresh)
	r.Post("/actions/trades/{id}", h.ModerateTrade)
	r.Post("/actions/reports/{id}", h.ModerateReport)
	r.Put("/actions/economy/settings", h.UpdateEconomySettings)
	r.Put("/actions/world/state", h.UpdateWorldState)
	r.Get("/actions/players/search", h.SearchPlayer)
	r.Put("/actions/players/{id}", h.UpdatePlayer)
	r.Delete("/actions/players/{id}/inventory", h.RemoveInventoryItem)
	r.Put("/actions/clans/{id}/leader", h.SetClanLeader)
	r.Post("/actions/spawn", h.SpawnItem)
	s.router = r
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) form(method, target string, values url.Values) *httptest.ResponseRecorder {
	return s.do(method, target, "application/x-www-form-urlencoded", values.Encode())
}

func (s *HandlerSuite) TestModerateTradeFromJSON() {
	rec := s.do(http.MethodPost, "/actions/trades/7", "application/json", `{"status":"ban"}`)

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal(int64(7), s.console.target)
	s.Equal(domain.TradeBan, s.console.trade)
}

func (s *HandlerSuite) TestModerateReportFromForm() {
	rec := s.form(http.MethodPost, "/actions/reports/3", url.Values{"status": {"resolved"}})

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal(int64(3), s.console.target)
	s.Equal("resolved", s.console.text)
}

func (s *HandlerSuite) TestBadPathIDIsRejected() {
	rec := s.do(http.MethodPost, "/actions/trades/abc", "application/json", `{"status":"ban"}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Empty(s.console.calls)
}

func (s *HandlerSuite) TestEconomySettingsParsesNumbers() {
	rec := s.do(http.MethodPut, "/actions/economy/settings", "application/json",
		`{"auction_tax":7,"npc_buy_multiplier":1.25}`)

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal(domain.EconomyUpdate{AuctionTax: 7, NPCBuyMultiplier: 1.25}, s.console.econ)
}

func (s *HandlerSuite) TestEconomySettingsRequireFields() {
	rec := s.form(http.MethodPut, "/actions/economy/settings", url.Values{"auction_tax": {"7.5"}})

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "auction_tax must be an integer")
	s.Empty(s.console.calls)
}

func (s *HandlerSuite) TestWorldState() {
	rec := s.form(http.MethodPut, "/actions/world/state", url.Values{
		"time_mode": {"fixed"}, "time_of_day": {"night"}, "weather": {"storm"}, "season": {"winter"},
	})

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal(domain.WorldState{TimeMode: "fixed", TimeOfDay: "night", Weather: "storm", Season: "winter"}, s.console.world)
}

func (s *HandlerSuite) TestUpdatePlayerCheckboxes() {
	rec := s.form(http.MethodPut, "/actions/players/4", url.Values{
		"level": {"12"}, "gold": {"15000"}, "experience": {"900"}, "is_vip": {"on"},
	})

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal(int64(4), s.console.target)
	s.Equal(domain.PlayerUpdate{Level: 12, Gold: 15000, Experience: 900, IsVIP: true}, s.console.upd)
}

func (s *HandlerSuite) TestRemoveInventoryItem() {
	rec := s.do(http.MethodDelete, "/actions/players/4/inventory", "application/json", `{"item":"Shield"}`)

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal([]string{"inventory.remove"}, s.console.calls)
	s.Equal("Shield", s.console.text)
}

func (s *HandlerSuite) TestSpawn() {
	rec := s.do(http.MethodPost, "/actions/spawn", "application/json", `{"player_id":4,"item":"Kladenets"}`)

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal(domain.SpawnRequest{PlayerID: 4, Item: "Kladenets"}, s.console.spawn)
}

func (s *HandlerSuite) TestSearchReturnsProfile() {
	s.console.profile = &domain.PlayerProfile{PlayerID: 4, Nickname: "Alyosha"}

	rec := s.do(http.MethodGet, "/actions/players/search?q=Alyosha", "", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Alyosha", s.console.text)
	s.Contains(rec.Body.String(), `"nickname":"Alyosha"`)
}

func (s *HandlerSuite) TestErrorMapping() {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: clan leader must not be empty", service.ErrInvalidIntent), http.StatusBadRequest},
		{service.ErrNotReady, http.StatusServiceUnavailable},
		{&engine.RemoteError{Kind: engine.FailureStatus, Status: 404, Message: "Clan not found"}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		s.console.err = c.err
		rec := s.do(http.MethodPut, "/actions/clans/2/leader", "application/json", `{"leader":"Dobrynya"}`)
		s.Equal(c.code, rec.Code, c.err.Error())
		s.Contains(rec.Body.String(), c.err.Error())
	}
}

func (s *HandlerSuite) TestRemoteMessageIsPassedThrough() {
	s.console.err = &engine.RemoteError{Kind: engine.FailureStatus, Status: 401, Message: "unauthorized"}

	rec := s.do(http.MethodPost, "/actions/refresh", "", "")

	s.Equal(http.StatusBadGateway, rec.Code)
	s.Equal("unauthorized\n", rec.Body.String())
}

func (s *HandlerSuite) TestPageRendersFailure() {
	s.screen.v = view.View{Failure: "Load failed: unauthorized"}

	rec := s.do(http.MethodGet, "/", "", "")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal("!! Load failed: unauthorized\n", rec.Body.String())

	rec = s.do(http.MethodGet, "/api/view", "", "")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Contains(rec.Body.String(), `"failure":"Load failed: unauthorized"`)
}

func (s *HandlerSuite) TestViewJSON() {
	s.screen.v = view.View{Regions: []view.Region{view.PlayerMessage("hello")}}

	rec := s.do(http.MethodGet, "/api/view", "", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("application/json", rec.Header().Get("Content-Type"))
	s.Contains(rec.Body.String(), `"id":"player-profile"`)
}
