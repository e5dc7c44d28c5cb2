package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/polkiloo/veo3store/internal/domain/model"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveTransition(model.OrderStatusPending, model.OrderStatusProcessing)
	m.ObserveTransition(model.OrderStatusPending, model.OrderStatusProcessing)
	m.TransitionConflict("approve")
	m.NotificationFailed(model.OrderEventCreated)
	m.LicenseIssued(true)
	m.LicenseIssued(false)
	m.SessionChecked(SessionInvalid)

	if got := testutil.ToFloat64(m.transitions.WithLabelValues("PENDING", "PROCESSING")); got != 2 {
		t.Fatalf("expected 2 transitions, got %v", got)
	}
	if got := testutil.ToFloat64(m.conflicts.WithLabelValues("approve")); got != 1 {
		t.Fatalf("expected 1 conflict, got %v", got)
	}
	if got := testutil.ToFloat64(m.notificationFailures.WithLabelValues("order.created")); got != 1 {
		t.Fatalf("expected 1 notification failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.licenseIssuance.WithLabelValues("failure")); got != 1 {
		t.Fatalf("expected 1 failed issuance, got %v", got)
	}
	if got := testutil.ToFloat64(m.sessionChecks.WithLabelValues(SessionInvalid)); got != 1 {
		t.Fatalf("expected 1 invalid session, got %v", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/api/packages", http.StatusOK, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `veo3store_http_requests_total{method="GET",route="/api/packages",status="200"} 1`) {
		t.Fatalf("request counter missing from output:\n%s", body)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Fatal("expected runtime collectors")
	}
}

func TestNewUsesIsolatedRegistries(t *testing.T) {
	first, second := New(), New()
	if first.Registry() == second.Registry() {
		t.Fatal("expected separate registries")
	}
}
