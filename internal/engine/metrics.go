package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Вызовы сервера через шлюз
	RequestDuration *prometheus.HistogramVec
	TotalRequests   *prometheus.CounterVec

	// Полные загрузки (fan-out)
	LoadDuration prometheus.Histogram
	Loads        *prometheus.CounterVec

	// Действия оператора
	Actions *prometheus.CounterVec

	// Состояние предохранителя (0 - закрыт, 0.5 - полуоткрыт, 1 - открыт)
	BreakerState prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - если реестр не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_remote_request_duration_seconds",
			Help:    "Latency of calls to the game server.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "resource", "outcome"}),

		TotalRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "console_remote_requests_total",
			Help: "Total number of calls to the game server.",
		}, []string{"method", "resource", "outcome"}), // outcome: ok, transport, status, decode, guard

		LoadDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "console_load_duration_seconds",
			Help:    "Duration of full snapshot loads.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),

		Loads: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "console_loads_total",
			Help: "Total number of full snapshot loads.",
		}, []string{"outcome"}),

		Actions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "console_actions_total",
			Help: "Operator actions by intent and outcome.",
		}, []string{"intent", "outcome"}),

		BreakerState: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "console_circuit_breaker_state",
			Help: "Current state of the remote circuit breaker (0=closed, 0.5=half-open, 1=open).",
		}),
	}
}

// Outcome - метка результата для произвольной ошибки.
func Outcome(err error) string {
	return outcome(err)
}
