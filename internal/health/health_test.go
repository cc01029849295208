package health

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"net/http/httptest"
	"testing"
)

func pass(context.Context) error { return nil }

func failWith(msg string) func(context.Context) error {
	return func(context.Context) error { return errors.New(msg) }
}

func get(t *testing.T, h http.Handler, path string) (int, result) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return rec.Code, body
}

func TestHealthz(t *testing.T) {
	h := New(Checker{Name: "dictionary", Check: failWith("dictionary is empty")})
	h.SetDraining(true)

	code, body := get(t, http.HandlerFunc(h.Healthz), "/healthz")
	if code != http.StatusOK || body.Status != "ok" {
		t.Errorf("healthz = %d %+v, want 200 ok regardless of readiness", code, body)
	}
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		checkers   []Checker
		draining   bool
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "no checkers",
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{},
		},
		{
			name: "all pass",
			checkers: []Checker{
				{Name: "dictionary", Check: pass},
				{Name: "vocabulary", Check: pass},
			},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"dictionary": "ok", "vocabulary": "ok"},
		},
		{
			name: "empty dictionary",
			checkers: []Checker{
				{Name: "dictionary", Check: failWith("dictionary is empty")},
				{Name: "vocabulary", Check: pass},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"dictionary": "fail: dictionary is empty", "vocabulary": "ok"},
		},
		{
			name: "every check fails",
			checkers: []Checker{
				{Name: "dictionary", Check: failWith("timeout")},
				{Name: "vocabulary", Check: failWith("vocabulary file missing")},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"dictionary": "fail: timeout", "vocabulary": "fail: vocabulary file missing"},
		},
		{
			name:       "draining",
			checkers:   []Checker{{Name: "dictionary", Check: pass}},
			draining:   true,
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"dictionary": "ok", drainingCheck: "fail: shutting down"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := New(tc.checkers...)
			h.SetDraining(tc.draining)

			code, body := get(t, http.HandlerFunc(h.Readyz), "/readyz")
			if code != tc.wantStatus {
				t.Errorf("status = %d, want %d", code, tc.wantStatus)
			}
			wantBody := "ok"
			if tc.wantStatus != http.StatusOK {
				wantBody = "fail"
			}
			if body.Status != wantBody {
				t.Errorf("body status = %q, want %q", body.Status, wantBody)
			}
			if body.Checks == nil {
				body.Checks = map[string]string{}
			}
			if !maps.Equal(body.Checks, tc.wantChecks) {
				t.Errorf("checks = %v, want %v", body.Checks, tc.wantChecks)
			}
		})
	}
}

func TestReadyz_DrainCleared(t *testing.T) {
	h := New(Checker{Name: "dictionary", Check: pass})
	h.SetDraining(true)
	h.SetDraining(false)

	if code, _ := get(t, http.HandlerFunc(h.Readyz), "/readyz"); code != http.StatusOK {
		t.Errorf("status after drain cleared = %d, want 200", code)
	}
}

func TestReadyz_CanceledRequest(t *testing.T) {
	h := New(Checker{Name: "slow", Check: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil).WithContext(ctx))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestReadyz_ChecksRunConcurrently(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	block := func(ctx context.Context) error {
		started <- struct{}{}
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	h := New(Checker{Name: "a", Check: block}, Checker{Name: "b", Check: block})

	done := make(chan int)
	go func() {
		rec := httptest.NewRecorder()
		h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		done <- rec.Code
	}()

	<-started
	<-started
	close(release)
	if code := <-done; code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	New(Checker{Name: "dictionary", Check: pass}).Register(mux)

	for _, path := range []string{"/healthz", "/readyz"} {
		if code, body := get(t, mux, path); code != http.StatusOK || body.Status != "ok" {
			t.Errorf("GET %s = %d %+v", path, code, body)
		}
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/readyz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /readyz = %d, want 405", rec.Code)
	}
}
