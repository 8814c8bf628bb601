package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the account server.
type Metrics struct {
	UsersCreated       *prometheus.CounterVec
	Logins             *prometheus.CounterVec
	DealershipsCreated prometheus.Counter
	ProfilesSaved      prometheus.Counter
	Logouts            prometheus.Counter
	RequestLatency     *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UsersCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deales_users_created_total",
			Help: "Total number of users created, by role",
		}, []string{"role"}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deales_logins_total",
			Help: "Login attempts by role and outcome",
		}, []string{"role", "outcome"}),
		DealershipsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "deales_dealerships_created_total",
			Help: "Total number of dealerships created",
		}),
		ProfilesSaved: f.NewCounter(prometheus.CounterOpts{
			Name: "deales_salesperson_profiles_saved_total",
			Help: "Total number of salesperson profile upserts",
		}),
		Logouts: f.NewCounter(prometheus.CounterOpts{
			Name: "deales_logouts_total",
			Help: "Total number of revoked access tokens",
		}),
		RequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deales_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncrementUsersCreated(role string) {
	m.UsersCreated.WithLabelValues(role).Inc()
}

func (m *Metrics) IncrementLogins(role, outcome string) {
	m.Logins.WithLabelValues(role, outcome).Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	m.RequestLatency.WithLabelValues(method, route, status).Observe(seconds)
}
