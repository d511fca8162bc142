// Package metric provides Prometheus metrics for the NoteGuard client.
package metric

import "github.com/prometheus/client_golang/prometheus"

// SessionCollector reports the current session status at scrape time.
type SessionCollector struct {
	desc   *prometheus.Desc
	status func() string
}

// SessionStatuses are the label values SessionCollector reports.
var SessionStatuses = []string{"loading", "anonymous", "authenticated"}

// NewSessionCollector creates a collector that calls status on every
// gather. status must return one of SessionStatuses.
func NewSessionCollector(status func() string) *SessionCollector {
	return &SessionCollector{
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "status"),
			"1 for the current session status, 0 otherwise.",
			[]string{"status"}, nil,
		),
		status: status,
	}
}

// Describe implements prometheus.Collector.
func (c *SessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *SessionCollector) Collect(ch chan<- prometheus.Metric) {
	current := c.status()
	for _, s := range SessionStatuses {
		v := 0.0
		if s == current {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, v, s)
	}
}
