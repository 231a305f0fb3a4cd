package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HashesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vanitytx",
		Name:      "hashes_total",
		Help:      "Total double-SHA256 candidates evaluated across all sessions.",
	})

	HashRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vanitytx",
		Name:      "hash_rate",
		Help:      "Aggregate hash rate of the most recent session in H/s.",
	})

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vanitytx",
		Name:      "active_sessions",
		Help:      "Number of mining sessions currently running (0 or 1).",
	})

	MatchesFound = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vanitytx",
		Name:      "matches_found_total",
		Help:      "Total sessions that completed with a found vanity txid.",
	})

	SessionsAborted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vanitytx",
		Name:      "sessions_aborted_total",
		Help:      "Total sessions terminated by caller stop/abort.",
	})

	GPUFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vanitytx",
		Name:      "gpu_fallbacks_total",
		Help:      "Total sessions that fell back from GPU to CPU mining.",
	})

	TemplateRebuilds = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vanitytx",
		Name:      "template_rebuilds_total",
		Help:      "Total mining templates rebuilt on a segment's nonce-length boundary.",
	})

	SessionResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vanitytx",
		Name:      "session_results_total",
		Help:      "Session outcomes by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		HashesTotal,
		HashRate,
		ActiveSessions,
		MatchesFound,
		SessionsAborted,
		GPUFallbacks,
		TemplateRebuilds,
		SessionResults,
	)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
