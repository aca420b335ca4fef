// Package metrics exposes Prometheus collectors for the HTTP layer and the
// lead pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	leadsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_ingested_total",
			Help: "Raw records processed by the ingest pipeline, by outcome",
		},
		[]string{"outcome"},
	)

	ingestWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_ingest_write_failures_total",
			Help: "Failed ingest writes, by target collection",
		},
		[]string{"collection"},
	)

	assignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_assignments_total",
			Help: "Per-lead assignment updates, by result",
		},
		[]string{"result"},
	)
)

// Ingest outcomes.
const (
	OutcomeInserted     = "inserted"
	OutcomeQuarantined  = "quarantined"
	OutcomeBatchSkipped = "batch_skipped"
	OutcomeRejected     = "rejected"
)

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// RecordIngest adds one ingest run's counts.
func RecordIngest(inserted, quarantined, batchSkipped, rejected int) {
	leadsIngested.WithLabelValues(OutcomeInserted).Add(float64(inserted))
	leadsIngested.WithLabelValues(OutcomeQuarantined).Add(float64(quarantined))
	leadsIngested.WithLabelValues(OutcomeBatchSkipped).Add(float64(batchSkipped))
	leadsIngested.WithLabelValues(OutcomeRejected).Add(float64(rejected))
}

// RecordIngestWriteFailure counts a failed write to collection.
func RecordIngestWriteFailure(collection string) {
	ingestWriteFailures.WithLabelValues(collection).Inc()
}

// RecordAssignments adds one distribution run's counts.
func RecordAssignments(assigned, failed int) {
	assignments.WithLabelValues("assigned").Add(float64(assigned))
	assignments.WithLabelValues("failed").Add(float64(failed))
}
