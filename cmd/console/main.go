package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/gardarika-console/internal/audit"
	"github.com/xela07ax/gardarika-console/internal/console/handler"
	"github.com/xela07ax/gardarika-console/internal/console/server"
	"github.com/xela07ax/gardarika-console/internal/console/service"
	"github.com/xela07ax/gardarika-console/internal/engine"
	"github.com/xela07ax/gardarika-console/internal/infra"
	"github.com/xela07ax/gardarika-console/internal/repository/postgres"
	"github.com/xela07ax/gardarika-console/internal/view"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	baseURL, token, err := cfg.Remote.Endpoint()
	if err != nil {
		return err
	}
	if token == "" {
		logger.Warn("admin token is empty, the server will refuse every request")
	}

	// Контекст для управления жизненным циклом фоновых горутин
	appCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := engine.NewMetrics(reg)

	// 3. Шлюз к игровому серверу: Credential -> Guard -> HTTP
	guard := engine.NewGuard(cfg.Guard, metrics, logger)
	gateway := engine.NewGateway(baseURL, engine.NewCredential(token), logger,
		engine.WithGuard(guard),
		engine.WithMetrics(metrics),
	)
	loader := engine.NewLoader(gateway, metrics, logger)

	// 4. Журнал действий оператора
	storage, closeStorage, err := journalStorage(appCtx, cfg.Journal, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	journal := audit.NewJournal(storage, audit.Options{
		BufferSize:    cfg.Journal.BufferSize,
		BatchSize:     cfg.Journal.BatchSize,
		FlushInterval: cfg.Journal.FlushInterval,
	}, logger)
	journal.Start()
	defer journal.Stop()

	// 5. Сервис консоли
	consoleID := cfg.Redis.ConsoleID
	if consoleID == "" {
		consoleID = uuid.New().String()
	}
	opts := []service.Option{
		service.WithAuditor(journal),
		service.WithMetrics(metrics),
		service.WithConsoleID(consoleID),
	}

	var bcast *engine.RefreshBroadcaster
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		bcast = engine.NewRefreshBroadcaster(rdb, consoleID, logger)
		opts = append(opts, service.WithBroadcaster(bcast))
	}

	board := view.NewBoard()
	svc := service.NewConsoleService(gateway, loader, board, logger, opts...)

	// 6. Первичная загрузка. Ошибка не завершает процесс: оператор видит аварийный экран.
	logger.Info("loading console", zap.String("remote", baseURL))
	if err := svc.Boot(appCtx); err == nil && bcast != nil {
		go bcast.Listen(appCtx, svc.Refresh)
	}

	// 7. HTTP поверхность оператора
	consoleH := handler.NewConsoleHandler(svc, board, logger)
	api := server.NewConsoleServer(cfg.Operator, logger, consoleH, svc, reg)

	srv := &http.Server{
		Addr:         cfg.Operator.Addr,
		Handler:      api,
		ReadTimeout:  cfg.Operator.ReadTimeout,
		WriteTimeout: cfg.Operator.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("operator console started", zap.String("addr", srv.Addr), zap.String("console_id", consoleID))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 8. Graceful Shutdown
	select {
	case <-appCtx.Done():
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}
	logger.Info("operator console stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("operator console exited properly")
	return nil
}

// journalStorage выбирает хранилище журнала: Postgres, если задан DSN, иначе лог.
func journalStorage(ctx context.Context, cfg infra.JournalConfig, logger *zap.Logger) (audit.StorageInterface, func(), error) {
	if cfg.DatabaseURL == "" {
		return audit.NewLogStorage(logger), func() {}, nil
	}

	repo, err := postgres.NewJournalRepo(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	// Проверяем соединение с таймаутом
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := repo.Ping(pingCtx); err != nil {
		_ = repo.Close()
		return nil, nil, fmt.Errorf("journal database unreachable: %w", err)
	}
	if err := repo.EnsureSchema(pingCtx); err != nil {
		_ = repo.Close()
		return nil, nil, err
	}
	return repo, func() { _ = repo.Close() }, nil
}
