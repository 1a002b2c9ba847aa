package engine

import (
	"context"
	"net/http"
	"time"

	"github.com/xela07ax/gardarika-console/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Resource - описатель одной коллекции сервера.
type Resource struct {
	Name string
	Path string
}

func (r Resource) Request() Request {
	return Request{Name: r.Name, Method: http.MethodGet, Path: r.Path}
}

// Фиксированный набор ресурсов, из которых складывается Snapshot.
var (
	ResourceDashboard   = Resource{Name: "dashboard", Path: "/api/dashboard"}
	ResourceTrades      = Resource{Name: "trades", Path: "/api/economy/trades"}
	ResourceReports     = Resource{Name: "reports", Path: "/api/economy/reports"}
	ResourceSettings    = Resource{Name: "settings", Path: "/api/economy/settings"}
	ResourceWorld       = Resource{Name: "world", Path: "/api/world/state"}
	ResourceEvents      = Resource{Name: "events", Path: "/api/world/events"}
	ResourceClans       = Resource{Name: "clans", Path: "/api/clans"}
	ResourceTerritories = Resource{Name: "territories", Path: "/api/territories"}
	ResourceQuests      = Resource{Name: "quests", Path: "/api/content/quests"}
	ResourceActionLogs  = Resource{Name: "action_logs", Path: "/api/logs/actions"}
	ResourceAdminLogs   = Resource{Name: "admin_logs", Path: "/api/logs/admin"}
)

// Resources возвращает все описатели в порядке отображения.
func Resources() []Resource {
	return []Resource{
		ResourceDashboard, ResourceTrades, ResourceReports, ResourceSettings,
		ResourceWorld, ResourceEvents, ResourceClans, ResourceTerritories,
		ResourceQuests, ResourceActionLogs, ResourceAdminLogs,
	}
}

// Loader загружает все ресурсы одним атомарным снимком.
type Loader struct {
	sender  Sender
	metrics *Metrics
	logger  *zap.Logger
}

func NewLoader(sender Sender, metrics *Metrics, logger *zap.Logger) *Loader {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Loader{
		sender:  sender,
		metrics: metrics,
		logger:  logger.Named("loader"),
	}
}

// LoadAll запускает все чтения параллельно и ждет каждое.
// Всё или ничего: первая ошибка отменяет остальные чтения, частичный снимок не возвращается.
func (l *Loader) LoadAll(ctx context.Context) (*domain.Snapshot, error) {
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)

	// Каждая горутина пишет только в свое поле снимка
	var s domain.Snapshot
	fetch(gctx, g, l.sender, ResourceDashboard, &s.Stats)
	fetch(gctx, g, l.sender, ResourceTrades, &s.Trades)
	fetch(gctx, g, l.sender, ResourceReports, &s.Reports)
	fetch(gctx, g, l.sender, ResourceSettings, &s.Settings)
	fetch(gctx, g, l.sender, ResourceWorld, &s.World)
	fetch(gctx, g, l.sender, ResourceEvents, &s.Events)
	fetch(gctx, g, l.sender, ResourceClans, &s.Clans)
	fetch(gctx, g, l.sender, ResourceTerritories, &s.Territories)
	fetch(gctx, g, l.sender, ResourceQuests, &s.Quests)
	fetch(gctx, g, l.sender, ResourceActionLogs, &s.ActionLogs)
	fetch(gctx, g, l.sender, ResourceAdminLogs, &s.AdminLogs)

	err := g.Wait()
	l.metrics.LoadDuration.Observe(time.Since(start).Seconds())
	l.metrics.Loads.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		l.logger.Warn("snapshot load failed", zap.Error(err))
		return nil, err
	}

	s.LoadedAt = time.Now()
	l.logger.Debug("snapshot loaded", zap.Duration("duration", time.Since(start)))
	return &s, nil
}

func fetch[T any](ctx context.Context, g *errgroup.Group, s Sender, res Resource, dst *T) {
	g.Go(func() error {
		return s.Send(ctx, res.Request(), dst)
	})
}
