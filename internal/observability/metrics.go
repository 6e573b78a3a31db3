// Package observability provides metrics and tracing.
package observability

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guildhall_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// PageRenders counts page render requests by slug.
	PageRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guildhall_page_renders_total",
		Help: "Total number of page composition renders by slug",
	}, []string{"slug"})

	// RevisionsWritten counts content revisions appended on page saves.
	RevisionsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guildhall_content_revisions_total",
		Help: "Total number of content revisions appended",
	})

	// ForumMutations counts forum write operations by kind.
	ForumMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guildhall_forum_mutations_total",
		Help: "Total number of forum mutations by kind",
	}, []string{"kind"})
)

// InitHTTPMetrics creates the Prometheus middleware for the Fiber app.
func InitHTTPMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}
