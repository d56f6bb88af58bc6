package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// CRMMetrics exposes counters/histograms for the HTTP surface and cascade deletes.
type CRMMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	cascadesTotal  prometheus.Counter
	cascadedLeads  prometheus.Counter
}

func NewCRMMetrics(reg prometheus.Registerer) *CRMMetrics {
	m := &CRMMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crm",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP request handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cascadesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "contacts",
			Name:      "cascade_deletes_total",
			Help:      "Contacts deleted together with their leads",
		}),
		cascadedLeads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "leads",
			Name:      "cascade_removed_total",
			Help:      "Leads removed by contact cascade deletes",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency, m.cascadesTotal, m.cascadedLeads)
	return m
}

func (m *CRMMetrics) ObserveRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(seconds)
}

// ObserveCascade records one contact delete that removed removedLeads leads.
func (m *CRMMetrics) ObserveCascade(removedLeads int) {
	if m == nil {
		return
	}
	m.cascadesTotal.Inc()
	m.cascadedLeads.Add(float64(removedLeads))
}
