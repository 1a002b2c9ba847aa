package engine

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
	"github.com/xela07ax/gardarika-console/internal/infra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Guard - клиентская защита сервера от консоли: лимитер запросов и (опционально)
// предохранитель. Повторов здесь нет: сбой отдается вызывающему сразу.
type Guard struct {
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker
}

func NewGuard(cfg infra.GuardConfig, metrics *Metrics, logger *zap.Logger) *Guard {
	g := &Guard{}

	// 1. Лимитер. Burst должен вмещать одну полную загрузку (11 запросов)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	// 2. Предохранитель
	if cfg.BreakerEnabled {
		failures := cfg.BreakerFailures
		g.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "remote",
			MaxRequests: cfg.BreakerMaxRequests,
			Interval:    cfg.BreakerInterval,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			// Отказы 4xx - ответ сервера, а не его поломка
			IsSuccessful: func(err error) bool {
				re, ok := AsRemote(err)
				return err == nil || (ok && !re.serverFault())
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
				if metrics != nil {
					metrics.BreakerState.Set(breakerGauge(to))
				}
			},
		})
	}

	return g
}

// Execute пропускает вызов через лимитер и предохранитель.
func (g *Guard) Execute(ctx context.Context, fn func() error) error {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return &RemoteError{Kind: FailureGuard, Message: "rate limit: " + err.Error(), Cause: err}
		}
	}

	if g.cb == nil {
		return fn()
	}

	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &RemoteError{Kind: FailureGuard, Message: "remote unavailable: " + err.Error(), Cause: err}
	}
	return err
}

func breakerGauge(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 0.5
	}
	return 0
}
