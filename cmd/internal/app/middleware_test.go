package app

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWithRequestLogging_StatusAndRequestID(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	h := WithRequestLogging(next, slog.New(slog.DiscardHandler), metrics)

	req := httptest.NewRequest(http.MethodGet, "/teapot", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("status not propagated: got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected a generated request id header")
	}

	got := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(http.MethodGet, "/teapot", "418"))
	if got != 1 {
		t.Fatalf("request counter: got %v want 1", got)
	}
}

func TestWithRequestLogging_PreservesCallerRequestID(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := WithRequestLogging(next, slog.New(slog.DiscardHandler), nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "caller-supplied")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-Id"); got != "caller-supplied" {
		t.Fatalf("request id overwritten: got %q", got)
	}
}

func TestEnvHelpers_Defaults(t *testing.T) {
	if got := EnvString("KEYGATE_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("EnvString: got %q", got)
	}
	if got := EnvInt("KEYGATE_TEST_UNSET", 42); got != 42 {
		t.Fatalf("EnvInt: got %d", got)
	}

	t.Setenv("KEYGATE_TEST_DURATION", "2m")
	if got := EnvDuration("KEYGATE_TEST_DURATION", 0); got.Minutes() != 2 {
		t.Fatalf("EnvDuration: got %v", got)
	}

	t.Setenv("KEYGATE_TEST_BOOL", "true")
	if !EnvBool("KEYGATE_TEST_BOOL", false) {
		t.Fatalf("EnvBool: expected true")
	}

	t.Setenv("KEYGATE_TEST_INT32", "-3")
	if got := EnvInt32("KEYGATE_TEST_INT32", 7); got != 7 {
		t.Fatalf("EnvInt32 negative must fall back: got %d", got)
	}
}

func TestRegisterHTTP_HealthAndMetrics(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	metrics := NewMetrics()
	registerHTTP(mux, slog.New(slog.DiscardHandler), Config{}, nil, false, nil, metrics)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz: got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz without db requirement: got %d", rr.Code)
	}

	// Vec metrics only appear on the scrape once a series exists.
	metrics.RequestsTotal.WithLabelValues(http.MethodGet, "/healthz", "200").Inc()

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "keygate_http_requests_total") {
		t.Fatalf("metrics endpoint: got %d", rr.Code)
	}
}

func TestRegisterHTTP_ReadyzRequiresDB(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	registerHTTP(mux, slog.New(slog.DiscardHandler), Config{ReadinessRequireDB: true}, nil, false, nil, nil)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with db required but absent: got %d", rr.Code)
	}
}
