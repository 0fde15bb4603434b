package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// El handler de /metrics debe servir desde el registry donde se registraron
// las métricas, no desde el gatherer global.
func TestRegisterMetrics_CustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := RegisterMetrics(MetricsConfig{Registry: reg})
	if err != nil {
		t.Fatalf("RegisterMetrics: %v", err)
	}

	// Generar muestras por las dos vías: middleware y hooks de dominio.
	instrumented := WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	instrumented.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/register/a@b.c", nil))

	RecordRegistration()
	RecordMailSend("ok")

	out := httptest.NewRecorder()
	h.ServeHTTP(out, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(out.Result().Body)
	text := string(body)

	for _, metric := range []string{"registrations_total", "mail_send_total", "http_requests_total"} {
		if !strings.Contains(text, metric) {
			t.Errorf("metrics output missing %q", metric)
		}
	}
	// El path queda normalizado en las labels.
	if !strings.Contains(text, ":param") || strings.Contains(text, "a@b.c") {
		t.Errorf("expected normalized path label, got:\n%s", text)
	}
}
