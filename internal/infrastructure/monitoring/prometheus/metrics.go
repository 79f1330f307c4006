package prometheus

import (
	"fmt"
	"time"

	appcls "github.com/turtacn/HSCode-Intelligence/internal/application/classification"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Classification engine
	ClassificationsTotal     CounterVec
	ClassificationDuration   HistogramVec
	ClassificationConfidence HistogramVec
	ReviewsTotal             CounterVec

	// Catalog retrieval
	CatalogSearchDuration HistogramVec
	CatalogCandidateCount HistogramVec
	CatalogEntriesTotal   GaugeVec

	// Evaluation loop
	EvaluationRunsTotal   CounterVec
	EvaluationDuration    HistogramVec
	EvaluationAccuracy    GaugeVec
	EvaluationSampleCount GaugeVec

	// Infrastructure
	DBQueryDuration        HistogramVec
	CacheHitsTotal         CounterVec
	CacheMissesTotal       CounterVec
	MessageProcessDuration HistogramVec

	// System health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default buckets
var (
	DefaultDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultEvaluationBuckets = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800}
	DefaultConfidenceBuckets = []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, .95, 1}
	DefaultCandidateBuckets  = []float64{0, 1, 5, 10, 20, 50, 100}
	DefaultDBDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers all metrics and returns the AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Classification
	m.ClassificationsTotal = collector.RegisterCounter("classifications_total", "Classification decisions", "method")
	m.ClassificationDuration = collector.RegisterHistogram("classification_duration_seconds", "Classification decision duration", DefaultDurationBuckets, "method")
	m.ClassificationConfidence = collector.RegisterHistogram("classification_confidence", "Classification confidence distribution", DefaultConfidenceBuckets, "method")
	m.ReviewsTotal = collector.RegisterCounter("reviews_total", "Classifications flagged for manual review", "reason")

	// Catalog
	m.CatalogSearchDuration = collector.RegisterHistogram("catalog_search_duration_seconds", "Catalog search duration", DefaultDurationBuckets, "backend")
	m.CatalogCandidateCount = collector.RegisterHistogram("catalog_candidate_count", "Candidates returned per search", DefaultCandidateBuckets, "backend")
	m.CatalogEntriesTotal = collector.RegisterGauge("catalog_entries_total", "Indexed catalog entries", "backend")

	// Evaluation
	m.EvaluationRunsTotal = collector.RegisterCounter("evaluation_runs_total", "Batch evaluation runs", "trigger", "status")
	m.EvaluationDuration = collector.RegisterHistogram("evaluation_duration_seconds", "Batch evaluation duration", DefaultEvaluationBuckets, "trigger")
	m.EvaluationAccuracy = collector.RegisterGauge("evaluation_accuracy", "Accuracy of the latest evaluation run")
	m.EvaluationSampleCount = collector.RegisterGauge("evaluation_sample_count", "Samples in the latest evaluation run")

	// Infrastructure
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "db", "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.MessageProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Message processing duration", DefaultDurationBuckets, "topic")

	// System health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type")

	return m
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordCatalogSearch(metrics *AppMetrics, backend string, candidates int, duration time.Duration) {
	metrics.CatalogSearchDuration.WithLabelValues(backend).Observe(duration.Seconds())
	metrics.CatalogCandidateCount.WithLabelValues(backend).Observe(float64(candidates))
}

func RecordEvaluationRun(metrics *AppMetrics, trigger string, summary *ctypes.EvaluationSummary, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.EvaluationRunsTotal.WithLabelValues(trigger, status).Inc()
	metrics.EvaluationDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	if err == nil && summary != nil {
		metrics.EvaluationAccuracy.WithLabelValues().Set(summary.Accuracy())
		metrics.EvaluationSampleCount.WithLabelValues().Set(float64(summary.Total))
	}
}

func RecordDBQuery(metrics *AppMetrics, db, operation string, duration time.Duration, err error) {
	metrics.DBQueryDuration.WithLabelValues(db, operation).Observe(duration.Seconds())
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues(db, "query_error").Inc()
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordError(metrics *AppMetrics, component, errorType string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// ClassificationRecorder feeds classification outcomes into the registry.
type ClassificationRecorder struct {
	metrics *AppMetrics
}

var _ appcls.MetricsRecorder = (*ClassificationRecorder)(nil)

func NewClassificationRecorder(metrics *AppMetrics) *ClassificationRecorder {
	return &ClassificationRecorder{metrics: metrics}
}

func (r *ClassificationRecorder) ObserveClassification(method ctypes.Method, confidence float64, d time.Duration) {
	label := string(method)
	r.metrics.ClassificationsTotal.WithLabelValues(label).Inc()
	r.metrics.ClassificationDuration.WithLabelValues(label).Observe(d.Seconds())
	r.metrics.ClassificationConfidence.WithLabelValues(label).Observe(confidence)
}

func (r *ClassificationRecorder) ObserveReview(reason ctypes.ReviewReason) {
	r.metrics.ReviewsTotal.WithLabelValues(string(reason)).Inc()
}

//Personal.AI order the ending
