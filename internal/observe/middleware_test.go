package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newInstrumentedMux wraps a ServeMux carrying the session routes in
// [Middleware] backed by a manual metric reader and an in-memory tracer.
func newInstrumentedMux(t *testing.T) (http.Handler, *sdkmetric.ManualReader, *tracetest.InMemoryExporter) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	exp := useTestTracer(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen-Correlation", CorrelationID(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /v1/analyze", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	return Middleware(m)(mux), reader, exp
}

func serve(h http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_CorrelationID(t *testing.T) {
	const upstream = "4bf92f3577b34da6a3ce929d0e0e4736"

	tests := []struct {
		name   string
		header http.Header
		want   string
	}{
		{name: "new trace"},
		{
			name:   "w3c traceparent",
			header: http.Header{"Traceparent": {"00-" + upstream + "-00f067aa0ba902b7-01"}},
			want:   upstream,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, _, _ := newInstrumentedMux(t)
			rec := serve(h, http.MethodGet, "/v1/sessions/abc", tc.header)

			seen := rec.Header().Get("X-Seen-Correlation")
			if len(seen) != 32 {
				t.Fatalf("handler saw correlation ID %q", seen)
			}
			if tc.want != "" && seen != tc.want {
				t.Errorf("correlation ID = %q, want %q", seen, tc.want)
			}
			if got := rec.Header().Get("X-Correlation-ID"); got != seen {
				t.Errorf("X-Correlation-ID = %q, want %q", got, seen)
			}
		})
	}
}

func TestMiddleware_Spans(t *testing.T) {
	h, _, exp := newInstrumentedMux(t)

	serve(h, http.MethodGet, "/v1/sessions/abc123", nil)
	serve(h, http.MethodPost, "/v1/analyze", nil)

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("recorded %d spans, want 2", len(spans))
	}

	attrs := func(s tracetest.SpanStub) map[string]string {
		out := map[string]string{}
		for _, kv := range s.Attributes {
			out[string(kv.Key)] = kv.Value.Emit()
		}
		return out
	}

	session := attrs(spans[0])
	if want := "HTTP GET /v1/sessions/{id}"; spans[0].Name != want {
		t.Errorf("span name = %q, want %q", spans[0].Name, want)
	}
	if session[SessionAttrKey] != "abc123" {
		t.Errorf("session attribute = %q, want abc123", session[SessionAttrKey])
	}
	if session["http.response.status_code"] != "200" {
		t.Errorf("status attribute = %q", session["http.response.status_code"])
	}

	analyze := attrs(spans[1])
	if _, ok := analyze[SessionAttrKey]; ok {
		t.Error("non-session route tagged with a session ID")
	}
	if analyze["http.response.status_code"] != "503" {
		t.Errorf("status attribute = %q", analyze["http.response.status_code"])
	}
	if spans[1].Status.Description != http.StatusText(http.StatusServiceUnavailable) {
		t.Errorf("span status = %+v, want error", spans[1].Status)
	}
}

func TestMiddleware_RecordsDurationPerRoute(t *testing.T) {
	h, reader, _ := newInstrumentedMux(t)

	for _, path := range []string{"/v1/sessions/a", "/v1/sessions/b", "/nowhere"} {
		serve(h, http.MethodGet, path, nil)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	met := findMetric(rm, "voxedit.http.request.duration")
	if met == nil {
		t.Fatal("metric not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("metric is not a histogram")
	}

	counts := map[string]uint64{}
	for _, dp := range hist.DataPoints {
		if v, ok := dp.Attributes.Value("route"); ok {
			counts[v.AsString()] += dp.Count
		}
	}
	if got := counts["GET /v1/sessions/{id}"]; got != 2 {
		t.Errorf("route count = %d, want 2 (counts %v)", got, counts)
	}
	if got := counts[unmatchedRoute]; got != 1 {
		t.Errorf("unmatched count = %d, want 1 (counts %v)", got, counts)
	}
}

func TestStatusRecorder_Unwrap(t *testing.T) {
	inner := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: inner, statusCode: http.StatusOK}
	if rec.Unwrap() != inner {
		t.Error("Unwrap did not return the wrapped writer")
	}
	if _, _, err := rec.Hijack(); err == nil {
		t.Error("Hijack on a non-hijackable writer should fail")
	}
}
