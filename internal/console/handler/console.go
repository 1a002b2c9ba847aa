package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/xela07ax/gardarika-console/internal/console/service"
	"github.com/xela07ax/gardarika-console/internal/domain"
	"github.com/xela07ax/gardarika-console/internal/engine"
	"github.com/xela07ax/gardarika-console/internal/view"
	"go.uber.org/zap"
)

// ConsoleService описываем, что нам нужно от сервиса
type ConsoleService interface {
	Refresh(ctx context.Context) error
	AdvanceEpoch(ctx context.Context) error
	ModerateTrade(ctx context.Context, tradeID int64, decision domain.TradeDecision) error
	ModerateReport(ctx context.Context, reportID int64, decision domain.ReportDecision) error
	UpdateEconomySettings(ctx context.Context, settings domain.EconomyUpdate) error
	UpdateWorldState(ctx context.Context, state domain.WorldState) error
	TriggerEvent(ctx context.Context, eventID int64) error
	SearchPlayer(ctx context.Context, query string) (*domain.PlayerProfile, error)
	UpdatePlayer(ctx context.Context, playerID int64, upd domain.PlayerUpdate) error
	AddInventoryItem(ctx context.Context, playerID int64, item string) error
	RemoveInventoryItem(ctx context.Context, playerID int64, item string) error
	SetClanLeader(ctx context.Context, clanID int64, leader string) error
	ResetTerritories(ctx context.Context) error
	ResetQuest(ctx context.Context, questID int64) error
	SpawnItem(ctx context.Context, req domain.SpawnRequest) error
}

// ViewSource - текущее состояние экрана.
type ViewSource interface {
	View() view.View
}

type ConsoleHandler struct {
	service ConsoleService
	board   ViewSource
	logger  *zap.Logger
}

func NewConsoleHandler(s ConsoleService, board ViewSource, logger *zap.Logger) *ConsoleHandler {
	return &ConsoleHandler{service: s, board: board, logger: logger.Named("console-handler")}
}

// Page отдает экран простым текстом.
// GET /
func (h *ConsoleHandler) Page(w http.ResponseWriter, r *http.Request) {
	v := h.board.View()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if v.Failure != "" {
		// Аварийный экран: отдаем его, но с кодом ошибки
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := view.Render(w, v); err != nil {
		h.logger.Warn("render failed", zap.Error(err))
	}
}

// View отдает экран в JSON.
// GET /api/view
func (h *ConsoleHandler) View(w http.ResponseWriter, r *http.Request) {
	v := h.board.View()
	status := http.StatusOK
	if v.Failure != "" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, v)
}

// writeError раскладывает ошибки по HTTP-кодам.
func (h *ConsoleHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadInput), errors.Is(err, service.ErrInvalidIntent):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotReady):
		status = http.StatusServiceUnavailable
	default:
		if _, ok := engine.AsRemote(err); ok {
			status = http.StatusBadGateway
		}
	}

	if status >= http.StatusInternalServerError {
		h.logger.Warn("operator request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
