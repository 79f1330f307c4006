package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{
		Namespace: "hscode",
		Subsystem: "test",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_RequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestRegisterCounter_IncrementVisibleInScrape(t *testing.T) {
	c := newTestCollector(t)
	counter := c.RegisterCounter("requests_total", "Total requests", "status")
	counter.WithLabelValues("ok").Inc()
	counter.WithLabelValues("ok").Add(2)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `hscode_test_requests_total{status="ok"} 3`)
}

func TestRegisterGauge_SetVisibleInScrape(t *testing.T) {
	c := newTestCollector(t)
	gauge := c.RegisterGauge("queue_depth", "Queue depth", "queue")
	gauge.WithLabelValues("control").Set(7)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `hscode_test_queue_depth{queue="control"} 7`)
}

func TestRegisterHistogram_ObservationsCounted(t *testing.T) {
	c := newTestCollector(t)
	hist := c.RegisterHistogram("op_duration_seconds", "Operation duration", []float64{0.1, 1}, "op")
	hist.WithLabelValues("classify").Observe(0.05)
	hist.WithLabelValues("classify").Observe(0.5)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `hscode_test_op_duration_seconds_count{op="classify"} 2`)
}

func TestRegister_DuplicateReturnsExisting(t *testing.T) {
	c := newTestCollector(t)
	first := c.RegisterCounter("dup_total", "dup", "l")
	second := c.RegisterCounter("dup_total", "dup", "l")

	first.WithLabelValues("a").Inc()
	second.WithLabelValues("a").Inc()

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `hscode_test_dup_total{l="a"} 2`)
}

func TestRegister_TypeConflictFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("conflicted", "as counter", "l")
	gauge := c.RegisterGauge("conflicted", "as gauge", "l")

	// The noop gauge must absorb writes without panicking.
	gauge.WithLabelValues("a").Set(1)
}

func TestRegister_ConcurrentSameMetric(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counter := c.RegisterCounter("concurrent_total", "c")
			counter.WithLabelValues().Inc()
		}()
	}
	wg.Wait()

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "hscode_test_concurrent_total 16")
}

func TestTimer_ObservesElapsed(t *testing.T) {
	c := newTestCollector(t)
	hist := c.RegisterHistogram("timed_seconds", "Timed", nil, "op")

	timer := NewTimer(hist.WithLabelValues("x"))
	timer.ObserveDuration()

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `hscode_test_timed_seconds_count{op="x"} 1`)
}

func TestTimer_NilHistogramSafe(t *testing.T) {
	timer := NewTimer(nil)
	timer.ObserveDuration()
}

//Personal.AI order the ending
