package metrics_test

import (
	"testing"
	"time"

	"github.com/jhoicas/surblend-api/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "surblend")

	m.QuoteCreated()
	m.QuoteCreated()
	m.QuoteTransitioned("DRAFT", "SENT")
	m.NumberAllocated(2)
	m.NumberAllocationFailed()
	m.QuotesExpired(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QuotesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuoteTransitions.WithLabelValues("DRAFT", "SENT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AllocationFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.QuotesExpiredTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.AllocationAttempts))
}

func TestObserveHTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "surblend")

	m.ObserveHTTP("GET", "/api/quotes/:id", 200, 15*time.Millisecond)
	m.ObserveHTTP("GET", "/api/quotes/:id", 404, 3*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/quotes/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/quotes/:id", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPDuration))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.New(prometheus.NewRegistry(), "a")
		metrics.New(prometheus.NewRegistry(), "a")
	})
}
