package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	WalletsProvisioned prometheus.Counter
	EligibilityDenied  prometheus.Counter
	ProvisionConflicts prometheus.Counter
	ProvisionDuration  prometheus.Histogram
	HTTPRequests       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WalletsProvisioned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "talentledger_wallets_provisioned_total",
			Help: "Wallets derived and persisted.",
		}),
		EligibilityDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "talentledger_wallet_eligibility_denied_total",
			Help: "Wallet requests rejected because a profile section was empty.",
		}),
		ProvisionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "talentledger_wallet_provision_conflicts_total",
			Help: "Concurrent provisioning attempts resolved by re-reading the winner.",
		}),
		ProvisionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "talentledger_wallet_provision_duration_seconds",
			Help:    "Time spent allocating, deriving and storing a wallet.",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "talentledger_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.WalletsProvisioned, m.EligibilityDenied, m.ProvisionConflicts, m.ProvisionDuration, m.HTTPRequests)
	return m
}

func (m *Metrics) IncWalletsProvisioned() {
	if m != nil {
		m.WalletsProvisioned.Inc()
	}
}

func (m *Metrics) IncEligibilityDenied() {
	if m != nil {
		m.EligibilityDenied.Inc()
	}
}

func (m *Metrics) IncProvisionConflicts() {
	if m != nil {
		m.ProvisionConflicts.Inc()
	}
}

func (m *Metrics) ObserveProvision(d time.Duration) {
	if m != nil {
		m.ProvisionDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncHTTPRequest(method, route, status string) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	}
}
