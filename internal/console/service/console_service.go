package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/xela07ax/gardarika-console/internal/audit"
	"github.com/xela07ax/gardarika-console/internal/domain"
	"github.com/xela07ax/gardarika-console/internal/engine"
	"github.com/xela07ax/gardarika-console/internal/view"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrNotReady - первичная загрузка не прошла, органы управления не подключены.
	ErrNotReady = errors.New("console is not ready: initial load failed")
	// ErrInvalidIntent - действие отклонено до отправки на сервер.
	ErrInvalidIntent = errors.New("invalid intent")
)

// SnapshotLoader описывает, что нам нужно от загрузчика
type SnapshotLoader interface {
	LoadAll(ctx context.Context) (*domain.Snapshot, error)
}

// Broadcaster рассылает другим консолям сигнал о смене состояния сервера.
type Broadcaster interface {
	Ping(ctx context.Context) error
	Publish(ctx context.Context, intent string) error
}

// Mutation - одно действие оператора: ровно одна запись на сервер
// и, если Reload, полная перезагрузка после нее.
type Mutation struct {
	Intent  string
	Target  string
	Request engine.Request
	Reload  bool
}

type ConsoleService struct {
	sender    engine.Sender
	loader    SnapshotLoader
	board     *view.Board
	auditor   audit.Auditor
	bcast     Broadcaster
	metrics   *engine.Metrics
	consoleID string
	logger    *zap.Logger

	// cycle сериализует циклы "запись -> перезагрузка": результат двух
	// одновременных действий не может лечь на экран в обратном порядке
	cycle sync.Mutex
	ready atomic.Bool
}

type Option func(*ConsoleService)

func WithAuditor(a audit.Auditor) Option {
	return func(s *ConsoleService) { s.auditor = a }
}

func WithBroadcaster(b Broadcaster) Option {
	return func(s *ConsoleService) { s.bcast = b }
}

func WithMetrics(m *engine.Metrics) Option {
	return func(s *ConsoleService) { s.metrics = m }
}

func WithConsoleID(id string) Option {
	return func(s *ConsoleService) { s.consoleID = id }
}

func NewConsoleService(sender engine.Sender, loader SnapshotLoader, board *view.Board, logger *zap.Logger, opts ...Option) *ConsoleService {
	s := &ConsoleService{
		sender: sender,
		loader: loader,
		board:  board,
		logger: logger.Named("console-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.auditor == nil {
		s.auditor = nopAuditor{}
	}
	if s.metrics == nil {
		s.metrics = engine.NewMetrics(nil)
	}
	if s.consoleID == "" {
		s.consoleID = uuid.New().String()
	}
	return s
}

// Boot - первичная загрузка и подключение органов управления.
// Любой сбой здесь фатален для сессии: включается аварийный экран, повторов нет.
func (s *ConsoleService) Boot(ctx context.Context) error {
	if err := s.boot(ctx); err != nil {
		s.board.Fail(err.Error())
		s.logger.Error("console boot failed", zap.Error(err))
		return err
	}

	s.ready.Store(true)
	s.logger.Info("console ready", zap.String("console_id", s.consoleID))
	return nil
}

func (s *ConsoleService) boot(ctx context.Context) error {
	// 1. Полный снимок
	if err := s.reload(ctx); err != nil {
		return err
	}

	// 2. Подключение сигналов от других консолей
	if s.bcast != nil {
		if err := s.bcast.Ping(ctx); err != nil {
			return fmt.Errorf("attach refresh signal: %w", err)
		}
	}
	return nil
}

func (s *ConsoleService) Ready() bool {
	return s.ready.Load()
}

func (s *ConsoleService) ConsoleID() string {
	return s.consoleID
}

// reload загружает новый снимок и целиком применяет его к экрану.
// При ошибке экран остается прежним.
func (s *ConsoleService) reload(ctx context.Context) error {
	snap, err := s.loader.LoadAll(ctx)
	if err != nil {
		return err
	}
	s.board.Apply(snap)
	return nil
}

// Refresh - ручная перезагрузка (кнопка оператора или сигнал другой консоли).
func (s *ConsoleService) Refresh(ctx context.Context) error {
	if !s.ready.Load() {
		return ErrNotReady
	}

	s.cycle.Lock()
	defer s.cycle.Unlock()

	err := s.reload(ctx)
	s.metrics.Actions.WithLabelValues("refresh", engine.Outcome(err)).Inc()
	return err
}

// Dispatch выполняет мутацию: запись, затем (для Reload) полная перезагрузка.
// Ошибка перезагрузки возвращается вызывающему так же, как ошибка записи.
func (s *ConsoleService) Dispatch(ctx context.Context, m Mutation) error {
	start := time.Now()

	if !s.ready.Load() {
		s.record(ctx, m, start, false, ErrNotReady)
		return ErrNotReady
	}

	s.cycle.Lock()
	defer s.cycle.Unlock()

	// 1. Запись
	err := s.sender.Send(ctx, m.Request, nil)

	// 2. Перечитываем всё, локально экран не патчим
	reloaded := false
	if err == nil && m.Reload {
		reloaded = true
		err = s.reload(ctx)
	}

	s.record(ctx, m, start, reloaded, err)
	if err != nil {
		s.logger.Warn("operator action failed",
			zap.String("intent", m.Intent),
			zap.String("target", m.Target),
			zap.Error(err))
		return err
	}

	// 3. Сообщаем другим консолям
	if reloaded && s.bcast != nil {
		if perr := s.bcast.Publish(ctx, m.Intent); perr != nil {
			s.logger.Warn("refresh signal delivery failed", zap.String("intent", m.Intent), zap.Error(perr))
		}
	}

	s.logger.Info("operator action applied",
		zap.String("intent", m.Intent),
		zap.String("target", m.Target),
		zap.Bool("reloaded", reloaded))
	return nil
}

// reject фиксирует действие, отклоненное до отправки.
func (s *ConsoleService) reject(ctx context.Context, m Mutation, cause error) error {
	err := fmt.Errorf("%w: %v", ErrInvalidIntent, cause)
	s.record(ctx, m, time.Now(), false, err)
	return err
}

func (s *ConsoleService) record(ctx context.Context, m Mutation, start time.Time, reloaded bool, err error) {
	status := audit.StatusSuccess
	errText := ""
	switch {
	case errors.Is(err, ErrNotReady), errors.Is(err, ErrInvalidIntent):
		status = audit.StatusRejected
		errText = err.Error()
	case err != nil:
		status = audit.StatusFailed
		errText = err.Error()
	}

	payload, perr := toPayload(m.Request.Body)
	if perr != nil {
		s.logger.Debug("journal payload is not an object", zap.String("intent", m.Intent), zap.Error(perr))
	}

	traceID, _ := engine.TraceIDFrom(ctx)
	s.auditor.Log(audit.ActionEvent{
		ID:         uuid.New().String(),
		TraceID:    traceID,
		ConsoleID:  s.consoleID,
		Intent:     m.Intent,
		Target:     m.Target,
		Payload:    payload,
		Status:     status,
		Reloaded:   reloaded,
		Error:      errText,
		Timestamp:  start,
		DurationMs: time.Since(start).Milliseconds(),
	})

	result := engine.Outcome(err)
	if status == audit.StatusRejected {
		result = "rejected"
	}
	s.metrics.Actions.WithLabelValues(m.Intent, result).Inc()
}

// toPayload переводит тело запроса в map для журнала.
func toPayload(body any) (map[string]interface{}, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

type nopAuditor struct{}

func (nopAuditor) Log(audit.ActionEvent) {}
