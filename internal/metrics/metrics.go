package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/plan-parser/constants"
)

// Metrics holds the collectors of one process on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	analyses        *prometheus.CounterVec
	analysisSeconds *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	uploads         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plan_analyses_total",
				Help: "Analyses by producing strategy and job status.",
			},
			[]string{"method", "status"},
		),
		analysisSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plan_analysis_duration_seconds",
				Help:    "Wall time of one analysis.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
			},
			[]string{"method"},
		),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plan_cache_hits_total",
			Help: "Results served from the cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plan_cache_misses_total",
			Help: "Cache lookups that fell through to analysis.",
		}),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plan_uploads_total",
				Help: "Upload requests by HTTP status code.",
			},
			[]string{"code"},
		),
	}
	m.registry.MustRegister(m.analyses, m.analysisSeconds, m.cacheHits, m.cacheMisses, m.uploads)
	m.registry.MustRegister(collectors.NewGoCollector())
	return m
}

// ObserveAnalysis implements pipeline.Observer.
func (m *Metrics) ObserveAnalysis(method constants.AnalysisMethod, status constants.JobStatus, elapsed time.Duration) {
	label := string(method)
	if label == "" {
		label = "none"
	}
	m.analyses.WithLabelValues(label, string(status)).Inc()
	m.analysisSeconds.WithLabelValues(label).Observe(elapsed.Seconds())
}

// ObserveCache implements pipeline.Observer.
func (m *Metrics) ObserveCache(hit bool) {
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}

func (m *Metrics) ObserveUpload(code string) {
	m.uploads.WithLabelValues(code).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
