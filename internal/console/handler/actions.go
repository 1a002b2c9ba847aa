package handler

import (
	"net/http"

	"github.com/xela07ax/gardarika-console/internal/domain"
)

// done - общий ответ на успешную мутацию.
func (h *ConsoleHandler) done(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Refresh POST /actions/refresh
func (h *ConsoleHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, h.service.Refresh(r.Context()))
}

// AdvanceEpoch POST /actions/epoch
func (h *ConsoleHandler) AdvanceEpoch(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, h.service.AdvanceEpoch(r.Context()))
}

// ModerateTrade POST /actions/trades/{id} (status=approved|cancelled|ban)
func (h *ConsoleHandler) ModerateTrade(w http.ResponseWriter, r *http.Request) {
	tradeID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := readInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, h.service.ModerateTrade(r.Context(), tradeID, domain.TradeDecision(in.text("status"))))
}

// ModerateReport POST /actions/reports/{id} (status=resolved|banned)
func (h *ConsoleHandler) ModerateReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := readInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, h.service.ModerateReport(r.Context(), reportID, domain.ReportDecision(in.text("status"))))
}

// UpdateEconomySettings PUT /actions/economy/settings
func (h *ConsoleHandler) UpdateEconomySettings(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tax, err := in.integer("auction_tax")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	multiplier, err := in.decimal("npc_buy_multiplier")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, h.service.UpdateEconomySettings(r.Context(), domain.EconomyUpdate{
		AuctionTax:       tax,
		NPCBuyMultiplier: multiplier,
	}))
}

// UpdateWorldState PUT /actions/world/state
func (h *ConsoleHandler) UpdateWorldState(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, h.service.UpdateWorldState(r.Context(), domain.WorldState{
		TimeMode:  in.text("time_mode"),
		TimeOfDay: in.text("time_of_day"),
		Weather:   in.text("weather"),
		Season:    in.text("season"),
	}))
}

// TriggerEvent POST /actions/events/{id}/trigger
func (h *ConsoleHandler) TriggerEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, h.service.TriggerEvent(r.Context(), eventID))
}

// SearchPlayer GET /actions/players/search?q=
// Ошибка поиска уже нарисована в карточке игрока, здесь только код ответа.
func (h *ConsoleHandler) SearchPlayer(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.SearchPlayer(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdatePlayer PUT /actions/players/{id}
func (h *ConsoleHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := readInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var upd domain.PlayerUpdate
	for name, dst := range map[string]*int64{"level": &upd.Level, "gold": &upd.Gold, "experience": &upd.Experience} {
		if *dst, err = in.integer(name); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	upd.IsPK = in.flag("is_pk")
	upd.IsVIP = in.flag("is_vip")
	upd.InJail = in.flag("in_jail")

	h.done(w, r, h.service.UpdatePlayer(r.Context(), playerID, upd))
}

// AddInventoryItem POST /actions/players/{id}/inventory
func (h *ConsoleHandler) AddInventoryItem(w http.ResponseWriter, r *http.Request) {
	playerID, in, ok := h.playerInput(w, r)
	if !ok {
		return
	}
	h.done(w, r, h.service.AddInventoryItem(r.Context(), playerID, in.text("item")))
}

// RemoveInventoryItem DELETE /actions/players/{id}/inventory
func (h *ConsoleHandler) RemoveInventoryItem(w http.ResponseWriter, r *http.Request) {
	playerID, in, ok := h.playerInput(w, r)
	if !ok {
		return
	}
	h.done(w, r, h.service.RemoveInventoryItem(r.Context(), playerID, in.text("item")))
}

func (h *ConsoleHandler) playerInput(w http.ResponseWriter, r *http.Request) (int64, input, bool) {
	playerID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return 0, nil, false
	}
	in, err := readInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return 0, nil, false
	}
	return playerID, in, true
}

// SetClanLeader PUT /actions/clans/{id}/leader
func (h *ConsoleHandler) SetClanLeader(w http.ResponseWriter, r *http.Request) {
	clanID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := readInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, h.service.SetClanLeader(r.Context(), clanID, in.text("leader")))
}

// ResetTerritories POST /actions/territories/reset
func (h *ConsoleHandler) ResetTerritories(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, h.service.ResetTerritories(r.Context()))
}

// ResetQuest POST /actions/quests/{id}/reset
func (h *ConsoleHandler) ResetQuest(w http.ResponseWriter, r *http.Request) {
	questID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, h.service.ResetQuest(r.Context(), questID))
}

// SpawnItem POST /actions/spawn
func (h *ConsoleHandler) SpawnItem(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	playerID, err := in.integer("player_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, h.service.SpawnItem(r.Context(), domain.SpawnRequest{PlayerID: playerID, Item: in.text("item")}))
}
