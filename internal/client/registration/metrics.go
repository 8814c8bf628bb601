package registration

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"deales/pkg/domain"
)

// Metrics counts finished flows by outcome.
type Metrics struct {
	Flows *prometheus.CounterVec
}

// NewMetrics registers the flow counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Flows: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "deales_client_flows_total",
			Help: "Signup and login flows by role and outcome",
		}, []string{"flow", "role", "outcome"}),
	}
}

func (m *Metrics) observe(flow string, role domain.Role, outcome string) {
	m.Flows.WithLabelValues(flow, role.String(), outcome).Inc()
}
