package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments the handlers feed. A nil
// *Metrics is valid and records nothing, which keeps handler tests free
// of registry setup.
type Metrics struct {
	loginsAccepted prometheus.Counter
	loginsRejected *prometheus.CounterVec
	upstreamCalls  *prometheus.CounterVec
}

// NewMetrics registers the instruments with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		loginsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "traveltalk",
			Name:      "logins_accepted_total",
			Help:      "Successful invite-code logins.",
		}),
		loginsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "traveltalk",
			Name:      "logins_rejected_total",
			Help:      "Rejected invite-code logins by reason.",
		}, []string{"reason"}),
		upstreamCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "traveltalk",
			Name:      "upstream_calls_total",
			Help:      "Proxy calls to upstream AI services by target and outcome.",
		}, []string{"target", "outcome"}),
	}
}

func (m *Metrics) LoginAccepted() {
	if m == nil {
		return
	}
	m.loginsAccepted.Inc()
}

func (m *Metrics) LoginRejected(reason string) {
	if m == nil {
		return
	}
	m.loginsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) UpstreamOK(target string) {
	if m == nil {
		return
	}
	m.upstreamCalls.WithLabelValues(target, "ok").Inc()
}

func (m *Metrics) UpstreamError(target string) {
	if m == nil {
		return
	}
	m.upstreamCalls.WithLabelValues(target, "error").Inc()
}
