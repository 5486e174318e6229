// Package metrics provides Prometheus instrumentation for the Roadway API.
// The moderation pipeline is the main consumer: admission outcomes, external
// classification failures, and classification latency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PostsModerated counts admission decisions, labeled by outcome:
	// "accepted" or "rejected".
	PostsModerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roadway_posts_moderated_total",
		Help: "Total number of post admission decisions",
	}, []string{"outcome"})

	// ClassifierFailures counts external classification calls that failed
	// or returned unparseable output and were handled fail-open.
	ClassifierFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roadway_classifier_failures_total",
		Help: "Total number of fail-open classification failures",
	}, []string{"check"}) // check = "content" or "link"

	// ClassificationLatency records end-to-end latency of one external
	// classification call in seconds.
	ClassificationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "roadway_classification_latency_seconds",
		Help:    "External classification call latency in seconds",
		Buckets: []float64{.1, .25, .5, 1, 2, 4, 8},
	})

	// AdminReviews counts human review decisions, labeled "approved" or
	// "rejected".
	AdminReviews = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roadway_admin_reviews_total",
		Help: "Total number of admin review decisions",
	}, []string{"decision"})
)

func init() {
	prometheus.MustRegister(
		PostsModerated,
		ClassifierFailures,
		ClassificationLatency,
		AdminReviews,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
