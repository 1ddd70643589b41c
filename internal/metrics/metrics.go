// Package metrics holds the business counters of the pizza service:
// logins, active sessions, pizzas sold, revenue, factory outcomes and
// service latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const namespace = "pizza"

// Login results.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Metrics is safe for concurrent use.
type Metrics struct {
	logins           *prometheus.CounterVec
	activeSessions   prometheus.Gauge
	pizzasSold       prometheus.Counter
	revenue          prometheus.Counter
	creationFailures prometheus.Counter
	factoryLatency   prometheus.Histogram
	serviceLatency   *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login and registration attempts by result.",
		}, []string{"result"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions issued and not yet logged out by this process.",
		}),
		pizzasSold: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sold_total",
			Help:      "Pizzas fulfilled by the factory.",
		}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_total",
			Help:      "Revenue of fulfilled orders.",
		}),
		creationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "creation_failures_total",
			Help:      "Orders the factory failed to fulfil.",
		}),
		factoryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "factory_latency_seconds",
			Help:      "Latency of pizza factory calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		serviceLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "service_latency_seconds",
			Help:      "Latency of service operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{
		m.logins, m.activeSessions, m.pizzasSold, m.revenue,
		m.creationFailures, m.factoryLatency, m.serviceLatency,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Nop returns Metrics registered on a private registry, for callers that do
// not export metrics.
func Nop() *Metrics {
	m, _ := New(prometheus.NewRegistry())
	return m
}

func (m *Metrics) Login(ok bool) {
	if ok {
		m.logins.WithLabelValues(LoginSuccess).Inc()
		return
	}
	m.logins.WithLabelValues(LoginFailure).Inc()
}

func (m *Metrics) SessionStarted() { m.activeSessions.Inc() }
func (m *Metrics) SessionEnded()   { m.activeSessions.Dec() }

// OrderFulfilled records the pizzas and revenue of a fulfilled order.
func (m *Metrics) OrderFulfilled(pizzas int, revenue decimal.Decimal) {
	m.pizzasSold.Add(float64(pizzas))
	m.revenue.Add(revenue.InexactFloat64())
}

func (m *Metrics) OrderFailed() { m.creationFailures.Inc() }

func (m *Metrics) FactoryLatency(d time.Duration) {
	m.factoryLatency.Observe(d.Seconds())
}

// ObserveSince records the latency of operation started at start.
func (m *Metrics) ObserveSince(operation string, start time.Time) {
	m.serviceLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
