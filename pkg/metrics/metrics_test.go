package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounter(t *testing.T) {
	r := New()
	c := r.Counter("builds_total", "Total harness builds.")
	c.Inc()
	c.Add(4)
	if got := c.Value(); got != 5 {
		t.Fatalf("Value() = %d, want 5", got)
	}
	if again := r.Counter("builds_total", ""); again != c {
		t.Fatal("Counter did not return the existing metric")
	}
}

func TestGauge(t *testing.T) {
	r := New()
	g := r.Gauge("inflight", "")
	g.Set(3)
	g.Inc()
	g.Dec()
	g.Dec()
	if got := g.Value(); got != 2 {
		t.Fatalf("Value() = %d, want 2", got)
	}
}

func TestHistogramCumulative(t *testing.T) {
	r := New()
	h := r.Histogram("build_seconds", "Build duration.", []float64{0.1, 1, 10})
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(0.7)
	h.Observe(100)

	out := r.Render()
	for _, want := range []string{
		`build_seconds_bucket{le="0.1"} 1`,
		`build_seconds_bucket{le="1"} 3`,
		`build_seconds_bucket{le="10"} 3`,
		`build_seconds_bucket{le="+Inf"} 4`,
		`build_seconds_count 4`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q:\n%s", want, out)
		}
	}
}

func TestWithLabels(t *testing.T) {
	name := WithLabels("requests_total", "method", "POST", "path", "/api/build")
	want := `requests_total{method="POST",path="/api/build"}`
	if name != want {
		t.Fatalf("WithLabels = %q, want %q", name, want)
	}
	if got := WithLabels("odd", "k"); got != "odd" {
		t.Fatalf("odd label pairs should be ignored, got %q", got)
	}
}

func TestRenderLabeledSeries(t *testing.T) {
	r := New()
	r.Counter(WithLabels("requests_total", "code", "200"), "HTTP requests.").Add(7)
	r.Counter(WithLabels("requests_total", "code", "500"), "").Inc()

	out := r.Render()
	if strings.Count(out, "# TYPE requests_total counter") != 1 {
		t.Fatalf("expected one TYPE line per base metric:\n%s", out)
	}
	if !strings.Contains(out, `requests_total{code="200"} 7`) ||
		!strings.Contains(out, `requests_total{code="500"} 1`) {
		t.Fatalf("missing labeled series:\n%s", out)
	}
}

func TestRenderOrder(t *testing.T) {
	r := New()
	r.Counter("zz_total", "")
	r.Gauge("aa_current", "")

	out := r.Render()
	if strings.Index(out, "zz_total") > strings.Index(out, "aa_current") {
		t.Fatalf("metrics should render in registration order:\n%s", out)
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.Counter("ping_total", "").Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; version=0.0.4; charset=utf-8" {
		t.Fatalf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "ping_total 1") {
		t.Fatalf("body missing counter:\n%s", rec.Body.String())
	}
}
