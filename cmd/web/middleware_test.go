package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/myrjola/fitcoach/internal/metrics"
	"github.com/myrjola/fitcoach/internal/testhelpers"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestApplication(t *testing.T) *application {
	t.Helper()
	return &application{ //nolint:exhaustruct // this is a test
		logger:         testhelpers.NewLogger(testhelpers.NewWriter(t)),
		metrics:        metrics.NewTestManager(),
		requestTimeout: 2 * time.Second,
	}
}

func Test_application_timeout(t *testing.T) {
	tests := []struct {
		name     string
		sleep    time.Duration
		timesOut bool
	}{
		{
			name:     "completes within timeout",
			sleep:    500 * time.Millisecond,
			timesOut: false,
		},
		{
			name:     "times out",
			sleep:    3 * time.Second,
			timesOut: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				app := newTestApplication(t)
				handler := app.timeout(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					select {
					case <-time.After(tt.sleep):
						app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "done"})
					case <-r.Context().Done():
					}
				}))

				w := httptest.NewRecorder()
				handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate-plan", nil))
				synctest.Wait()

				wantTimeouts := 0.0
				if tt.timesOut {
					wantTimeouts = 1
					if w.Code != http.StatusServiceUnavailable {
						t.Errorf("status = %d, want 503", w.Code)
					}
					if !strings.Contains(w.Body.String(), "Request timed out") {
						t.Errorf("body = %s, want timeout message", w.Body.String())
					}
				} else if w.Code != http.StatusOK {
					t.Errorf("status = %d, want 200", w.Code)
				}
				if got := w.Header().Get("Content-Type"); got != "application/json" {
					t.Errorf("Content-Type = %q, want application/json", got)
				}
				if got := testutil.ToFloat64(app.metrics.CounterRequestTimeouts); got != wantTimeouts {
					t.Errorf("timeouts = %v, want %v", got, wantTimeouts)
				}
			})
		})
	}
}

func Test_application_recoverPanic(t *testing.T) {
	app := newTestApplication(t)
	handler := app.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("plan exploded")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/plan", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"error":"Internal server error"}` {
		t.Errorf("body = %s", got)
	}
	if strings.Contains(w.Body.String(), "plan exploded") {
		t.Error("panic value leaked to the client")
	}
	if got := testutil.ToFloat64(app.metrics.CounterHandleRequestPanic); got != 1 {
		t.Errorf("panics = %v, want 1", got)
	}
}

func Test_application_requestMetrics(t *testing.T) {
	app := newTestApplication(t)
	handler := app.requestMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := testutil.ToFloat64(app.metrics.GaugeRequests); got != 1 {
			t.Errorf("in-flight requests = %v, want 1", got)
		}
		app.clientError(w, r, http.StatusNotFound, msgNoSavedPlan)
	}))

	for range 2 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/plan", nil))
	}

	if got := testutil.ToFloat64(app.metrics.CounterRequests.WithLabelValues(http.MethodGet, "404")); got != 2 {
		t.Errorf("GET 404 requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(app.metrics.GaugeRequests); got != 0 {
		t.Errorf("in-flight requests after serving = %v, want 0", got)
	}
}

func Test_secureHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	secureHeaders(noCache(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/plan", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "deny",
		"Cache-Control":          "no-store",
	} {
		if got := w.Header().Get(header); !strings.Contains(got, want) {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}
