package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/xela07ax/gardarika-console/internal/domain"
	"github.com/xela07ax/gardarika-console/internal/engine"
	"github.com/xela07ax/gardarika-console/internal/view"
	"go.uber.org/zap"
)

// Имена действий - метки метрик и журнала
const (
	IntentEpoch          = "dashboard.epoch"
	IntentTradeModerate  = "trade.moderate"
	IntentReportModerate = "report.moderate"
	IntentEconomyUpdate  = "economy.update"
	IntentWorldUpdate    = "world.update"
	IntentEventTrigger   = "event.trigger"
	IntentPlayerUpdate   = "player.update"
	IntentInventoryAdd   = "inventory.add"
	IntentInventoryDrop  = "inventory.remove"
	IntentClanLeader     = "clan.leader"
	IntentTerritoryReset = "territory.reset"
	IntentQuestReset     = "quest.reset"
	IntentItemSpawn      = "item.spawn"
)

type statusBody struct {
	Status string `json:"status"`
}

type leaderBody struct {
	Leader string `json:"leader"`
}

type itemBody struct {
	Item string `json:"item"`
}

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}

// AdvanceEpoch принудительно начинает новую эпоху. Сервер возвращает свежую статистику,
// но на экран она попадает только через полную перезагрузку.
func (s *ConsoleService) AdvanceEpoch(ctx context.Context) error {
	return s.Dispatch(ctx, Mutation{
		Intent:  IntentEpoch,
		Request: engine.Request{Name: "dashboard_epoch", Method: http.MethodPost, Path: "/api/dashboard/epoch"},
		Reload:  true,
	})
}

func (s *ConsoleService) ModerateTrade(ctx context.Context, tradeID int64, decision domain.TradeDecision) error {
	m := Mutation{
		Intent: IntentTradeModerate,
		Target: id(tradeID),
		Request: engine.Request{
			Name:   "trade_status",
			Method: http.MethodPost,
			Path:   "/api/economy/trades/" + id(tradeID),
			Body:   statusBody{Status: string(decision)},
		},
		Reload: true,
	}
	if err := decision.Validate(); err != nil {
		return s.reject(ctx, m, err)
	}
	return s.Dispatch(ctx, m)
}

func (s *ConsoleService) ModerateReport(ctx context.Context, reportID int64, decision domain.ReportDecision) error {
	m := Mutation{
		Intent: IntentReportModerate,
		Target: id(reportID),
		Request: engine.Request{
			Name:   "report_status",
			Method: http.MethodPost,
			Path:   "/api/economy/reports/" + id(reportID),
			Body:   statusBody{Status: string(decision)},
		},
		Reload: true,
	}
	if err := decision.Validate(); err != nil {
		return s.reject(ctx, m, err)
	}
	return s.Dispatch(ctx, m)
}

func (s *ConsoleService) UpdateEconomySettings(ctx context.Context, settings domain.EconomyUpdate) error {
	m := Mutation{
		Intent:  IntentEconomyUpdate,
		Request: engine.Request{Name: "economy_settings", Method: http.MethodPut, Path: "/api/economy/settings", Body: settings},
		Reload:  true,
	}
	if settings.AuctionTax < 0 || settings.NPCBuyMultiplier < 0 {
		return s.reject(ctx, m, errors.New("economy settings must not be negative"))
	}
	return s.Dispatch(ctx, m)
}

func (s *ConsoleService) UpdateWorldState(ctx context.Context, state domain.WorldState) error {
	return s.Dispatch(ctx, Mutation{
		Intent:  IntentWorldUpdate,
		Request: engine.Request{Name: "world_state", Method: http.MethodPut, Path: "/api/world/state", Body: state},
		Reload:  true,
	})
}

func (s *ConsoleService) TriggerEvent(ctx context.Context, eventID int64) error {
	return s.Dispatch(ctx, Mutation{
		Intent:  IntentEventTrigger,
		Target:  id(eventID),
		Request: engine.Request{Name: "event_trigger", Method: http.MethodPost, Path: "/api/world/events/" + id(eventID) + "/trigger"},
		Reload:  true,
	})
}

func (s *ConsoleService) UpdatePlayer(ctx context.Context, playerID int64, upd domain.PlayerUpdate) error {
	return s.Dispatch(ctx, Mutation{
		Intent:  IntentPlayerUpdate,
		Target:  id(playerID),
		Request: engine.Request{Name: "player_update", Method: http.MethodPut, Path: "/api/players/" + id(playerID), Body: upd},
		Reload:  true,
	})
}

func (s *ConsoleService) SetClanLeader(ctx context.Context, clanID int64, leader string) error {
	leader = strings.TrimSpace(leader)
	m := Mutation{
		Intent:  IntentClanLeader,
		Target:  id(clanID),
		Request: engine.Request{Name: "clan_leader", Method: http.MethodPut, Path: "/api/clans/" + id(clanID) + "/leader", Body: leaderBody{Leader: leader}},
		Reload:  true,
	}
	if leader == "" {
		return s.reject(ctx, m, errors.New("clan leader must not be empty"))
	}
	return s.Dispatch(ctx, m)
}

func (s *ConsoleService) ResetTerritories(ctx context.Context) error {
	return s.Dispatch(ctx, Mutation{
		Intent:  IntentTerritoryReset,
		Request: engine.Request{Name: "territories_reset", Method: http.MethodPost, Path: "/api/territories/reset"},
		Reload:  true,
	})
}

func (s *ConsoleService) ResetQuest(ctx context.Context, questID int64) error {
	return s.Dispatch(ctx, Mutation{
		Intent:  IntentQuestReset,
		Target:  id(questID),
		Request: engine.Request{Name: "quest_reset", Method: http.MethodPost, Path: "/api/content/quests/" + id(questID) + "/reset"},
		Reload:  true,
	})
}

// SpawnItem выдает предмет игроку. Видимых в консоли последствий нет, поэтому без перезагрузки.
func (s *ConsoleService) SpawnItem(ctx context.Context, req domain.SpawnRequest) error {
	req.Item = strings.TrimSpace(req.Item)
	m := Mutation{
		Intent:  IntentItemSpawn,
		Target:  id(req.PlayerID),
		Request: engine.Request{Name: "item_spawn", Method: http.MethodPost, Path: "/api/content/spawn", Body: req},
	}
	if err := validateItem(req.PlayerID, req.Item); err != nil {
		return s.reject(ctx, m, err)
	}
	return s.Dispatch(ctx, m)
}

// AddInventoryItem и RemoveInventoryItem меняют только инвентарь игрока, которого нет в снимке.
func (s *ConsoleService) AddInventoryItem(ctx context.Context, playerID int64, item string) error {
	return s.inventory(ctx, IntentInventoryAdd, http.MethodPost, playerID, item)
}

func (s *ConsoleService) RemoveInventoryItem(ctx context.Context, playerID int64, item string) error {
	return s.inventory(ctx, IntentInventoryDrop, http.MethodDelete, playerID, item)
}

func (s *ConsoleService) inventory(ctx context.Context, intent, method string, playerID int64, item string) error {
	item = strings.TrimSpace(item)
	m := Mutation{
		Intent:  intent,
		Target:  id(playerID),
		Request: engine.Request{Name: "player_inventory", Method: method, Path: "/api/players/" + id(playerID) + "/inventory", Body: itemBody{Item: item}},
	}
	if err := validateItem(playerID, item); err != nil {
		return s.reject(ctx, m, err)
	}
	return s.Dispatch(ctx, m)
}

func validateItem(playerID int64, item string) error {
	if playerID <= 0 {
		return fmt.Errorf("player id must be positive, got %d", playerID)
	}
	if item == "" {
		return errors.New("item must not be empty")
	}
	return nil
}

// SearchPlayer - чтение без перезагрузки. Результат и ошибка рисуются только
// в карточке игрока, остальной экран не трогается.
func (s *ConsoleService) SearchPlayer(ctx context.Context, query string) (*domain.PlayerProfile, error) {
	if !s.ready.Load() {
		return nil, ErrNotReady
	}

	profile, err := engine.Do[domain.PlayerProfile](ctx, s.sender, engine.Request{
		Name:   "player_search",
		Method: http.MethodGet,
		Path:   "/api/players/search",
		Query:  url.Values{"q": []string{query}},
	})
	s.metrics.Actions.WithLabelValues("player.search", engine.Outcome(err)).Inc()
	if err != nil {
		s.board.Put(view.PlayerMessage(err.Error()))
		s.logger.Debug("player search failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}

	s.board.Put(view.PlayerRegion(&profile))
	return &profile, nil
}
