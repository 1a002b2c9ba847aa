package engine

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/gardarika-console/internal/infra"
	"go.uber.org/zap"
)

// ListenStateResilient - "живучая" подписка на канал Redis.
// Переподключается при обрыве. onSubscribed вызывается после каждой успешной подписки,
// reconnect == true для всех, кроме первой: сигналы за время обрыва потеряны.
func ListenStateResilient(
	ctx context.Context,
	rdb redis.UniversalClient,
	logger *zap.Logger,
	channel string,
	onSubscribed func(reconnect bool),
	onMessage func(payload string),
) {
	reconnect := false
	for {
		pubsub := rdb.Subscribe(ctx, channel)

		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			logger.Error("failed to subscribe", zap.String("chan", channel), zap.Error(err))
			if !sleepCtx(ctx, 5*time.Second) {
				return
			}
			continue
		}

		onSubscribed(reconnect)
		reconnect = true

		ch := pubsub.Channel()

	loop:
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break loop // канал закрыт, идем на переподключение
				}
				onMessage(msg.Payload)
			}
		}

		pubsub.Close()
		if !sleepCtx(ctx, time.Second) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// parseSignal разбирает "console_id:intent".
func parseSignal(payload string) (origin, intent string, ok bool) {
	origin, intent, found := strings.Cut(payload, ":")
	if !found || origin == "" {
		return "", "", false
	}
	return origin, intent, true
}

// RefreshBroadcaster рассылает другим консолям сигнал "перечитайте всё"
// и слушает такие же сигналы от них.
type RefreshBroadcaster struct {
	rdb       redis.UniversalClient
	consoleID string
	channel   string
	logger    *zap.Logger
}

func NewRefreshBroadcaster(rdb redis.UniversalClient, consoleID string, logger *zap.Logger) *RefreshBroadcaster {
	return &RefreshBroadcaster{
		rdb:       rdb,
		consoleID: consoleID,
		channel:   infra.RedisChanRefresh,
		logger:    logger.Named("broadcast"),
	}
}

// Ping проверяет доступность Redis до подключения слушателя.
func (b *RefreshBroadcaster) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

func (b *RefreshBroadcaster) Publish(ctx context.Context, intent string) error {
	return b.rdb.Publish(ctx, b.channel, infra.RefreshSignal(b.consoleID, intent)).Err()
}

// Listen блокируется до отмены ctx.
func (b *RefreshBroadcaster) Listen(ctx context.Context, refresh func(ctx context.Context) error) {
	ListenStateResilient(ctx, b.rdb, b.logger, b.channel,
		func(reconnect bool) { b.onSubscribed(ctx, reconnect, refresh) },
		func(payload string) { b.onSignal(ctx, payload, refresh) },
	)
}

// onSubscribed перечитывает всё после повторной подписки. Первая подписка
// идет сразу за загрузкой при старте, повторять ее не нужно.
func (b *RefreshBroadcaster) onSubscribed(ctx context.Context, reconnect bool, refresh func(ctx context.Context) error) {
	if !reconnect {
		return
	}
	if err := refresh(ctx); err != nil {
		b.logger.Error("sync failed on reconnect", zap.Error(err))
	}
}

// onSignal запускает полную перезагрузку по сигналу другой консоли. Свои сигналы игнорируются.
func (b *RefreshBroadcaster) onSignal(ctx context.Context, payload string, refresh func(ctx context.Context) error) {
	origin, intent, ok := parseSignal(payload)
	if !ok {
		b.logger.Error("invalid signal format", zap.String("payload", payload))
		return
	}
	if origin == b.consoleID {
		return
	}

	b.logger.Info("remote state changed by another console",
		zap.String("origin", origin),
		zap.String("intent", intent))
	if err := refresh(ctx); err != nil {
		b.logger.Error("refresh after signal failed", zap.Error(err))
	}
}
