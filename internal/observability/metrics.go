package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_turns_total",
			Help: "Total processed turns, labeled by resolved phase",
		},
		[]string{"phase"},
	)

	GeneratorFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "generator_failures_total",
			Help: "Total generator calls that fell back to a canned reply",
		},
	)

	TurnDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dialogue_turn_duration_seconds",
			Help:    "End-to-end turn latency",
			Buckets: prometheus.DefBuckets,
		},
	)
)

var registered bool

// Register installs the collectors; safe to call once at startup.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(TurnsTotal, GeneratorFailures, TurnDuration)
	registered = true
}

// Handler exposes the metrics endpoint for the HTTP router.
func Handler() http.Handler {
	return promhttp.Handler()
}
