package metric

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r := NewRegistry()
	client := &http.Client{Transport: r.InstrumentTransport(nil)}

	for _, path := range []string{"/ok", "/ok", "/missing"} {
		resp, err := client.Get(server.URL + path)
		if err != nil {
			t.Fatalf("Get(%s): %v", path, err)
		}
		resp.Body.Close()
	}

	if got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues("get", "200")); got != 2 {
		t.Errorf("requests{get,200} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues("get", "404")); got != 1 {
		t.Errorf("requests{get,404} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.InFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
}

func TestSnapshot(t *testing.T) {
	r := NewRegistry()
	r.SessionTeardowns.WithLabelValues("unauthorized").Inc()
	r.AnalysesSubmitted.WithLabelValues("demo", "ok").Add(3)
	r.RequestDuration.WithLabelValues("post").Observe(0.2)

	samples, err := r.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	byName := make(map[string]Sample)
	for _, s := range samples {
		byName[s.Name+"{"+s.Labels+"}"] = s
	}

	if s := byName["noteguard_client_analyses_submitted_total{endpoint=demo,outcome=ok}"]; s.Value != 3 {
		t.Errorf("analyses sample = %+v", s)
	}
	if s := byName["noteguard_client_request_duration_seconds_count{method=post}"]; s.Value != 1 {
		t.Errorf("duration count sample = %+v", s)
	}
	if s := byName["noteguard_client_session_teardowns_total{reason=unauthorized}"]; s.Value != 1 {
		t.Errorf("teardown sample = %+v", s)
	}

	for i := 1; i < len(samples); i++ {
		if samples[i-1].Name > samples[i].Name {
			t.Fatalf("samples not sorted at %d", i)
		}
	}
}

func TestSessionCollector(t *testing.T) {
	status := "loading"
	r := NewRegistry()
	r.MustRegister(NewSessionCollector(func() string { return status }))

	read := func() map[string]float64 {
		samples, err := r.Snapshot()
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		out := make(map[string]float64)
		for _, s := range samples {
			if s.Name == "noteguard_client_session_status" {
				out[s.Labels] = s.Value
			}
		}
		return out
	}

	if got := read(); got["status=loading"] != 1 || got["status=authenticated"] != 0 {
		t.Errorf("loading snapshot = %v", got)
	}

	status = "authenticated"
	if got := read(); got["status=authenticated"] != 1 || got["status=loading"] != 0 {
		t.Errorf("authenticated snapshot = %v", got)
	}
}
