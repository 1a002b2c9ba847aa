package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xela07ax/gardarika-console/internal/console/handler"
	"github.com/xela07ax/gardarika-console/internal/engine"
	"github.com/xela07ax/gardarika-console/internal/infra"
	"github.com/xela07ax/gardarika-console/internal/infra/auth"
	"go.uber.org/zap"
)

// ReadinessProbe сообщает, подключены ли органы управления.
type ReadinessProbe interface {
	Ready() bool
}

type ConsoleServer struct {
	router *chi.Mux
	logger *zap.Logger
	cfg    infra.OperatorConfig

	console  *handler.ConsoleHandler
	probe    ReadinessProbe
	gatherer prometheus.Gatherer
}

// NewConsoleServer собирает поверхность оператора. gatherer == nil - без /metrics.
func NewConsoleServer(
	cfg infra.OperatorConfig,
	logger *zap.Logger,
	consoleH *handler.ConsoleHandler,
	probe ReadinessProbe,
	gatherer prometheus.Gatherer,
) *ConsoleServer {
	s := &ConsoleServer{
		router:   chi.NewRouter(),
		logger:   logger.Named("console-api"),
		cfg:      cfg,
		console:  consoleH,
		probe:    probe,
		gatherer: gatherer,
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(engine.TracingMiddleware)

	// --- 2. Служебные роуты ---
	r.Group(func(r chi.Router) {
		r.Get("/health", s.health)
		if s.gatherer != nil {
			r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
		}
	})

	// --- 3. Консоль (под ключом оператора) ---
	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(s.cfg.Key, s.logger))

		r.Get("/", s.console.Page)
		r.Get("/api/view", s.console.View)

		r.Route("/actions", func(r chi.Router) {
			r.Post("/refresh", s.console.Refresh)
			r.Post("/epoch", s.console.AdvanceEpoch)

			// Экономика
			r.Post("/trades/{id}", s.console.ModerateTrade)
			r.Post("/reports/{id}", s.console.ModerateReport)
			r.Put("/economy/settings", s.console.UpdateEconomySettings)

			// Мир
			r.Put("/world/state", s.console.UpdateWorldState)
			r.Post("/events/{id}/trigger", s.console.TriggerEvent)

			// Игроки
			r.Route("/players", func(r chi.Router) {
				r.Get("/search", s.console.SearchPlayer)
				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", s.console.UpdatePlayer)
					r.Post("/inventory", s.console.AddInventoryItem)
					r.Delete("/inventory", s.console.RemoveInventoryItem)
				})
			})

			// Кланы и контент
			r.Put("/clans/{id}/leader", s.console.SetClanLeader)
			r.Post("/territories/reset", s.console.ResetTerritories)
			r.Post("/quests/{id}/reset", s.console.ResetQuest)
			r.Post("/spawn", s.console.SpawnItem)
		})
	})
}

// health: 200 - консоль готова, 503 - первичная загрузка не прошла.
func (s *ConsoleServer) health(w http.ResponseWriter, r *http.Request) {
	if s.probe != nil && !s.probe.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *ConsoleServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("operator request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("duration", time.Since(start)))
	})
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
