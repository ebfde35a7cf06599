// Package metrics expone las métricas Prometheus del servicio: HTTP y negocio de cotizaciones.
package metrics

import (
	"strconv"
	"time"

	"github.com/jhoicas/surblend-api/internal/application/quoting"
	"github.com/prometheus/client_golang/prometheus"
)

var _ quoting.Recorder = (*Metrics)(nil)

// Metrics colectores registrados en un Registerer propio (no el global), para poder
// instanciarlos más de una vez en tests.
type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	QuotesCreated      prometheus.Counter
	QuoteTransitions   *prometheus.CounterVec
	QuotesExpiredTotal prometheus.Counter
	AllocationAttempts prometheus.Histogram
	AllocationFailures prometheus.Counter
}

// New crea y registra los colectores con el prefijo namespace.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total de peticiones HTTP",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		QuotesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_created_total",
			Help:      "Cotizaciones creadas",
		}),
		QuoteTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_transitions_total",
			Help:      "Transiciones de estado de cotizaciones",
		}, []string{"from", "to"}),
		QuotesExpiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_expired_by_sweep_total",
			Help:      "Cotizaciones vencidas por el barrido programado",
		}),
		AllocationAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_number_allocation_attempts",
			Help:      "Intentos necesarios para asignar un número de cotización",
			Buckets:   []float64{1, 2, 3, 5, 8},
		}),
		AllocationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_number_allocation_failures_total",
			Help:      "Asignaciones de número fallidas",
		}),
	}
	reg.MustRegister(
		m.HTTPRequests, m.HTTPDuration,
		m.QuotesCreated, m.QuoteTransitions, m.QuotesExpiredTotal,
		m.AllocationAttempts, m.AllocationFailures,
	)
	return m
}

// ObserveHTTP registra una petición terminada.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) QuoteCreated() { m.QuotesCreated.Inc() }

func (m *Metrics) QuoteTransitioned(from, to string) {
	m.QuoteTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) NumberAllocated(attempts int) {
	m.AllocationAttempts.Observe(float64(attempts))
}

func (m *Metrics) NumberAllocationFailed() { m.AllocationFailures.Inc() }

func (m *Metrics) QuotesExpired(n int) { m.QuotesExpiredTotal.Add(float64(n)) }
