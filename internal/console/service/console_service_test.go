package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/xela07ax/gardarika-console/internal/audit"
	"github.com/xela07ax/gardarika-console/internal/domain"
	"github.com/xela07ax/gardarika-console/internal/engine"
	"github.com/xela07ax/gardarika-console/internal/remotetest"
	"github.com/xela07ax/gardarika-console/internal/view"
)

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.ActionEvent
}

func (a *recordingAuditor) Log(e audit.ActionEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAuditor) last() audit.ActionEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.events[len(a.events)-1]
}

type fakeBroadcaster struct {
	pingErr   error
	published []string
}

func (b *fakeBroadcaster) Ping(context.Context) error { return b.pingErr }

func (b *fakeBroadcaster) Publish(_ context.Context, intent string) error {
	b.published = append(b.published, intent)
	return nil
}

type ServiceSuite struct {
	suite.Suite
	remote  *remotetest.Remote
	board   *view.Board
	auditor *recordingAuditor
	bcast   *fakeBroadcaster
	svc     *ConsoleService
}

func (s *ServiceSuite) SetupTest() {
	s.remote = remotetest.New()
	logger := zap.NewNop()

	gateway := engine.NewGateway(s.remote.URL, engine.NewCredential("token"), logger)
	loader := engine.NewLoader(gateway, nil, logger)

	s.board = view.NewBoard()
	s.auditor = &recordingAuditor{}
	s.bcast = &fakeBroadcaster{}
	s.svc = NewConsoleService(gateway, loader, s.board, logger,
		WithAuditor(s.auditor),
		WithBroadcaster(s.bcast),
		WithConsoleID("console-a"),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.remote.Close()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// boot запускает консоль и очищает журнал вызовов фейкового сервера.
func (s *ServiceSuite) boot() {
	s.Require().NoError(s.svc.Boot(context.Background()))
	s.Require().True(s.svc.Ready())
	s.remote.Reset()
}

func (s *ServiceSuite) reads() int {
	n := 0
	for _, c := range s.remote.Calls() {
		if c.Method == http.MethodGet {
			n++
		}
	}
	return n
}

// assertFullReload проверяет, что каждый ресурс снимка прочитан ровно один раз.
func (s *ServiceSuite) assertFullReload() {
	for _, res := range engine.Resources() {
		s.Equal(1, s.remote.Count(http.MethodGet, res.Path), res.Path)
	}
}

func (s *ServiceSuite) TestBootLoadsEverything() {
	s.Require().NoError(s.svc.Boot(context.Background()))
	s.assertFullReload()

	v := s.board.View()
	s.Empty(v.Failure)
	s.Len(v.Regions, 12)
}

func (s *ServiceSuite) TestBootFailureShowsFailureOnly() {
	s.remote.Reply(http.MethodGet, "/api/dashboard", http.StatusUnauthorized, "unauthorized")

	err := s.svc.Boot(context.Background())
	s.Require().Error(err)
	s.Equal("unauthorized", err.Error())
	s.False(s.svc.Ready())

	v := s.board.View()
	s.Equal("Load failed: unauthorized", v.Failure)
	s.Empty(v.Regions)

	s.remote.Reset()
	err = s.svc.ModerateTrade(context.Background(), 7, domain.TradeBan)
	s.ErrorIs(err, ErrNotReady)
	s.Zero(s.remote.Count(http.MethodPost, "/api/economy/trades/7"), "controls are not wired after a failed boot")
	s.Equal(audit.StatusRejected, s.auditor.last().Status)
}

func (s *ServiceSuite) TestBootFailsWhenSignalChannelIsDown() {
	s.bcast.pingErr = errors.New("connection refused")

	err := s.svc.Boot(context.Background())
	s.Require().Error(err)
	s.Contains(s.board.View().Failure, "attach refresh signal: connection refused")
	s.False(s.svc.Ready())
}

func (s *ServiceSuite) TestModerateTradeWritesThenReloads() {
	s.boot()

	s.Require().NoError(s.svc.ModerateTrade(context.Background(), 7, domain.TradeBan))

	call, ok := s.remote.Last(http.MethodPost, "/api/economy/trades/7")
	s.Require().True(ok)
	s.JSONEq(`{"status":"ban"}`, call.Body)
	s.Equal("application/json", call.Header.Get("Content-Type"))
	s.assertFullReload()

	e := s.auditor.last()
	s.Equal(IntentTradeModerate, e.Intent)
	s.Equal("7", e.Target)
	s.Equal(audit.StatusSuccess, e.Status)
	s.True(e.Reloaded)
	s.Equal(map[string]interface{}{"status": "ban"}, e.Payload)
	s.Equal([]string{IntentTradeModerate}, s.bcast.published)
}

func (s *ServiceSuite) TestReloadShowsServerState() {
	s.boot()
	s.remote.Reply(http.MethodGet, "/api/world/state", http.StatusOK,
		`{"time_mode":"fixed","time_of_day":"night","weather":"storm","season":"winter"}`)

	s.Require().NoError(s.svc.UpdateWorldState(context.Background(), domain.WorldState{Season: "winter"}))

	r, ok := s.board.Region(view.RegionWorld)
	s.Require().True(ok)
	s.Equal("winter", r.Rows[0].Fields[0].Value)
}

func (s *ServiceSuite) TestInvalidDecisionIsRejectedLocally() {
	s.boot()

	err := s.svc.ModerateTrade(context.Background(), 7, domain.TradeDecision("maybe"))
	s.ErrorIs(err, ErrInvalidIntent)
	s.Empty(s.remote.Calls())
	s.Equal(audit.StatusRejected, s.auditor.last().Status)
}

func (s *ServiceSuite) TestFailedWriteSkipsReload() {
	s.boot()
	before := s.board.View()
	s.remote.Reply(http.MethodPost, "/api/world/events/1/trigger", http.StatusConflict, "Event already running")

	err := s.svc.TriggerEvent(context.Background(), 1)
	s.Require().Error(err)
	s.Equal("Event already running", err.Error())
	s.Zero(s.reads())
	s.Equal(before, s.board.View())

	e := s.auditor.last()
	s.Equal(audit.StatusFailed, e.Status)
	s.False(e.Reloaded)
	s.Empty(s.bcast.published)
}

func (s *ServiceSuite) TestFailedReloadKeepsPreviousScreen() {
	s.boot()
	before := s.board.View()
	s.remote.Reply(http.MethodGet, "/api/clans", http.StatusInternalServerError, "")

	err := s.svc.ResetTerritories(context.Background())
	s.Require().Error(err)
	s.Equal("Request failed", err.Error())
	s.Equal(before, s.board.View())
	s.Empty(s.board.View().Failure, "only the initial load switches to the failure screen")
}

func (s *ServiceSuite) TestSpawnDoesNotReload() {
	s.boot()

	s.Require().NoError(s.svc.SpawnItem(context.Background(), domain.SpawnRequest{PlayerID: 4, Item: " Kladenets "}))

	call, ok := s.remote.Last(http.MethodPost, "/api/content/spawn")
	s.Require().True(ok)
	s.JSONEq(`{"player_id":4,"item":"Kladenets"}`, call.Body)
	s.Zero(s.reads())
	s.Empty(s.bcast.published)
}

func (s *ServiceSuite) TestSpawnValidation() {
	s.boot()

	s.ErrorIs(s.svc.SpawnItem(context.Background(), domain.SpawnRequest{PlayerID: 0, Item: "axe"}), ErrInvalidIntent)
	s.ErrorIs(s.svc.SpawnItem(context.Background(), domain.SpawnRequest{PlayerID: 4, Item: "  "}), ErrInvalidIntent)
	s.Empty(s.remote.Calls())
}

func (s *ServiceSuite) TestInventoryMethods() {
	s.boot()

	s.Require().NoError(s.svc.AddInventoryItem(context.Background(), 4, "Shield"))
	s.Require().NoError(s.svc.RemoveInventoryItem(context.Background(), 4, "Shield"))

	add, ok := s.remote.Last(http.MethodPost, "/api/players/4/inventory")
	s.Require().True(ok)
	s.JSONEq(`{"item":"Shield"}`, add.Body)

	drop, ok := s.remote.Last(http.MethodDelete, "/api/players/4/inventory")
	s.Require().True(ok)
	s.JSONEq(`{"item":"Shield"}`, drop.Body)
	s.Zero(s.reads())
}

func (s *ServiceSuite) TestClanLeaderRequiresName() {
	s.boot()

	s.ErrorIs(s.svc.SetClanLeader(context.Background(), 2, "   "), ErrInvalidIntent)
	s.Require().NoError(s.svc.SetClanLeader(context.Background(), 2, "Dobrynya"))

	call, ok := s.remote.Last(http.MethodPut, "/api/clans/2/leader")
	s.Require().True(ok)
	s.JSONEq(`{"leader":"Dobrynya"}`, call.Body)
	s.assertFullReload()
}

func (s *ServiceSuite) TestEconomySettingsRejectNegatives() {
	s.boot()

	err := s.svc.UpdateEconomySettings(context.Background(), domain.EconomyUpdate{AuctionTax: -1})
	s.ErrorIs(err, ErrInvalidIntent)
	s.Empty(s.remote.Calls())

	s.Require().NoError(s.svc.UpdateEconomySettings(context.Background(), domain.EconomyUpdate{AuctionTax: 7, NPCBuyMultiplier: 1.5}))
	call, ok := s.remote.Last(http.MethodPut, "/api/economy/settings")
	s.Require().True(ok)
	s.JSONEq(`{"auction_tax":7,"npc_buy_multiplier":1.5}`, call.Body)
}

func (s *ServiceSuite) TestAdvanceEpochReloads() {
	s.boot()

	s.Require().NoError(s.svc.AdvanceEpoch(context.Background()))
	s.Equal(1, s.remote.Count(http.MethodPost, "/api/dashboard/epoch"))
	s.assertFullReload()
}

func (s *ServiceSuite) TestSearchPlayerFillsOnlyPlayerCard() {
	s.boot()
	s.remote.Reply(http.MethodGet, "/api/players/search", http.StatusOK,
		`{"player_id":4,"nickname":"Alyosha","level":12,"gold":15000,"inventory":["Shield"]}`)

	profile, err := s.svc.SearchPlayer(context.Background(), "Alyosha")
	s.Require().NoError(err)
	s.Equal(int64(4), profile.PlayerID)
	s.Equal(1, s.reads(), "search is a single read without reload")

	card, ok := s.board.Region(view.RegionPlayer)
	s.Require().True(ok)
	s.Equal("Player Alyosha (#4)", card.Title)
}

func (s *ServiceSuite) TestSearchFailureStaysInPlayerCard() {
	s.boot()
	before := s.board.View()
	s.remote.Reply(http.MethodGet, "/api/players/search", http.StatusNotFound, "Player not found")

	_, err := s.svc.SearchPlayer(context.Background(), "Nobody")
	s.Require().Error(err)
	s.Equal("Player not found", err.Error())

	after := s.board.View()
	s.Empty(after.Failure)
	s.Len(after.Regions, len(before.Regions)+1)
	for _, r := range before.Regions {
		got, ok := s.board.Region(r.ID)
		s.Require().True(ok)
		s.Equal(r, got)
	}

	card, ok := s.board.Region(view.RegionPlayer)
	s.Require().True(ok)
	s.Equal("Player not found", card.Rows[0].Fields[0].Value)
}

func (s *ServiceSuite) TestRefreshReloadsEverything() {
	s.boot()

	s.Require().NoError(s.svc.Refresh(context.Background()))
	s.assertFullReload()
	s.Empty(s.bcast.published, "refresh does not signal other consoles")
}

func (s *ServiceSuite) TestConcurrentActionsAreSerialized() {
	s.boot()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.svc.ResetQuest(context.Background(), 9))
		}()
	}
	wg.Wait()

	// Каждый цикл: одна запись и полная перезагрузка, без пересечений
	calls := s.remote.Calls()
	s.Require().Len(calls, 4*(1+len(engine.Resources())))
	for i := 0; i < len(calls); i += 1 + len(engine.Resources()) {
		s.Equal(http.MethodPost, calls[i].Method)
		s.Equal("/api/content/quests/9/reset", calls[i].Path)
	}
}

func TestToPayloadKeepsObjects(t *testing.T) {
	m, err := toPayload(itemBody{Item: "Shield"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"item": "Shield"}, m)

	m, err = toPayload(nil)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestToPayloadRejectsNonObjects(t *testing.T) {
	m, err := toPayload([]string{"Shield"})
	assert.Error(t, err)
	assert.Nil(t, m)
}
