// Package metric provides Prometheus metrics for the NoteGuard client.
package metric

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "noteguard_client"

// Registry holds all client metrics.
type Registry struct {
	reg *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlight        prometheus.Gauge

	// Session metrics
	SessionTeardowns *prometheus.CounterVec

	// Analysis metrics
	AnalysesSubmitted *prometheus.CounterVec
}

// NewRegistry creates the client metrics in a fresh registry.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Backend requests by method and status code.",
		}, []string{"method", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Backend request latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "Backend requests currently in flight.",
		}),
		SessionTeardowns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_teardowns_total",
			Help:      "Session teardowns by reason.",
		}, []string{"reason"}),
		AnalysesSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_submitted_total",
			Help:      "Analyses submitted by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
	}

	r.reg.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.InFlight,
		r.SessionTeardowns,
		r.AnalysesSubmitted,
	)
	return r
}

// MustRegister adds extra collectors, such as a SessionCollector.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.reg.MustRegister(cs...)
}

// Prometheus returns the underlying registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.reg
}

// InstrumentTransport wraps next so that every request is counted and timed.
func (r *Registry) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperInFlight(r.InFlight,
		promhttp.InstrumentRoundTripperCounter(r.RequestsTotal,
			promhttp.InstrumentRoundTripperDuration(r.RequestDuration, next),
		),
	)
}

// Sample is one flattened metric value for display.
type Sample struct {
	Name   string  `json:"name" yaml:"name"`
	Labels string  `json:"labels" yaml:"labels"`
	Value  float64 `json:"value" yaml:"value"`
}

// Snapshot gathers all metrics as flat samples sorted by name and labels.
// Histograms contribute a _count and a _sum sample.
func (r *Registry) Snapshot() ([]Sample, error) {
	families, err := r.reg.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			pairs := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				pairs = append(pairs, lp.GetName()+"="+lp.GetValue())
			}
			labels := strings.Join(pairs, ",")

			switch {
			case m.GetCounter() != nil:
				samples = append(samples, Sample{mf.GetName(), labels, m.GetCounter().GetValue()})
			case m.GetGauge() != nil:
				samples = append(samples, Sample{mf.GetName(), labels, m.GetGauge().GetValue()})
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				samples = append(samples,
					Sample{mf.GetName() + "_count", labels, float64(h.GetSampleCount())},
					Sample{mf.GetName() + "_sum", labels, h.GetSampleSum()},
				)
			}
		}
	}

	sort.SliceStable(samples, func(i, j int) bool {
		if samples[i].Name != samples[j].Name {
			return samples[i].Name < samples[j].Name
		}
		return samples[i].Labels < samples[j].Labels
	})
	return samples, nil
}
