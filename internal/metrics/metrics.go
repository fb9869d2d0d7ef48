package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gateway_dashboard"

// Role read outcomes.
const (
	RoleReadHit       = "hit"
	RoleReadMiss      = "miss"
	RoleReadError     = "error"
	RoleReadAnonymous = "anonymous"
)

// Metrics holds the dashboard's collectors. A nil *Metrics is a no-op.
type Metrics struct {
	navigationBuilds *prometheus.CounterVec
	roleReads        *prometheus.CounterVec
}

// New registers the dashboard collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		navigationBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigation_builds_total",
			Help:      "Sidebar menus built, by menu variant",
		}, []string{"menu"}),
		roleReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "role_reads_total",
			Help:      "Session role reads, by outcome",
		}, []string{"result"}),
	}
	reg.MustRegister(m.navigationBuilds, m.roleReads)
	return m
}

// NewRegistry returns a registry with the Go and process collectors installed.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (m *Metrics) ObserveNavigation(privileged bool) {
	if m == nil {
		return
	}
	menu := "base"
	if privileged {
		menu = "privileged"
	}
	m.navigationBuilds.WithLabelValues(menu).Inc()
}

func (m *Metrics) ObserveRoleRead(result string) {
	if m == nil {
		return
	}
	m.roleReads.WithLabelValues(result).Inc()
}

// Handler exposes g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
