package audit

/*
Журнал действий оператора.

- Non-blocking: Log никогда не ждет хранилище, события идут через буферизованный канал.
- Batching: запись пачками по размеру или по таймеру.
- Drain: Stop закрывает канал и ждет, пока воркер допишет остаток.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// StorageInterface определяет, куда физически сохраняются события
type StorageInterface interface {
	// WriteBatch сохраняет пачку событий за один раз
	WriteBatch(ctx context.Context, events []ActionEvent) error
}

type Auditor interface {
	Log(event ActionEvent)
}

type Options struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.BufferSize <= 0 {
		o.BufferSize = 1000
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = time.Second
	}
	return o
}

type Journal struct {
	ch       chan ActionEvent
	repo     StorageInterface
	opts     Options
	logger   *zap.Logger
	wg       sync.WaitGroup
	isClosed atomic.Bool
	mu       sync.RWMutex // держат Log на время отправки, Stop - на время закрытия канала
}

func NewJournal(repo StorageInterface, opts Options, logger *zap.Logger) *Journal {
	opts = opts.withDefaults()
	return &Journal{
		ch:     make(chan ActionEvent, opts.BufferSize),
		repo:   repo,
		opts:   opts,
		logger: logger.With(zap.String("mod", "journal")),
	}
}

func (j *Journal) Start() {
	j.wg.Add(1)
	go j.worker()
}

// Stop «запирает» вход в канал и ждет, пока воркер всё допишет.
func (j *Journal) Stop() {
	j.mu.Lock()
	if j.isClosed.Swap(true) {
		j.mu.Unlock()
		return
	}
	j.logger.Info("stopping journal: closing channel and flushing buffer...")
	close(j.ch)
	j.mu.Unlock()

	j.wg.Wait()
	j.logger.Info("journal stopped gracefully")
}

func (j *Journal) Log(event ActionEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.isClosed.Load() {
		j.logger.Warn("journal event dropped: journal is stopping", zap.String("id", event.ID))
		return
	}

	// Load Shedding: переполненный буфер не должен тормозить оператора
	select {
	case j.ch <- event:
	default:
		j.logger.Error("journal_buffer_overflow",
			zap.String("intent", event.Intent),
			zap.String("trace_id", event.TraceID),
		)
	}
}

func (j *Journal) worker() {
	defer j.wg.Done()

	batch := make([]ActionEvent, 0, j.opts.BatchSize)
	ticker := time.NewTicker(j.opts.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Background: при остановке основной контекст уже может быть закрыт
		if err := j.repo.WriteBatch(context.Background(), batch); err != nil {
			j.logger.Error("journal flush failed", zap.Int("events", len(batch)), zap.Error(err))
		}
		batch = make([]ActionEvent, 0, j.opts.BatchSize)
	}

	for {
		select {
		case event, ok := <-j.ch:
			if !ok {
				flush() // финальный сброс
				j.logger.Info("journal worker finished")
				return
			}
			batch = append(batch, event)
			if len(batch) >= j.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// LogStorage пишет события в zap. Используется, когда база не настроена.
type LogStorage struct {
	logger *zap.Logger
}

func NewLogStorage(logger *zap.Logger) *LogStorage {
	return &LogStorage{logger: logger.Named("journal")}
}

func (s *LogStorage) WriteBatch(_ context.Context, events []ActionEvent) error {
	for _, e := range events {
		s.logger.Info("operator action",
			zap.String("id", e.ID),
			zap.String("trace_id", e.TraceID),
			zap.String("intent", e.Intent),
			zap.String("target", e.Target),
			zap.String("status", e.Status),
			zap.Bool("reloaded", e.Reloaded),
			zap.String("error", e.Error),
			zap.Int64("duration_ms", e.DurationMs),
			zap.Time("timestamp", e.Timestamp))
	}
	return nil
}
