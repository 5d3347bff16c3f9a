package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_submissions_total",
			Help: "Total number of applicant submissions by source and outcome",
		},
		[]string{"source", "status"},
	)

	Scoring = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_scoring_total",
			Help: "Total number of scored applicants by scoring path",
		},
		[]string{"path"},
	)

	Routing = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_routing_total",
			Help: "Total number of routing decisions by verdict",
		},
		[]string{"verdict"},
	)

	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "screener_scoring_duration_seconds",
			Help:    "Time spent scoring an applicant",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

// ObserveScoring records one scoring run.
func ObserveScoring(path string, started time.Time) {
	Scoring.WithLabelValues(path).Inc()
	ScoringDuration.WithLabelValues(path).Observe(time.Since(started).Seconds())
}
