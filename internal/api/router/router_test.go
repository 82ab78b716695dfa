package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tanvirh/whatsapp-concierge/internal/channels/whatsapp"
)

func newTestRouter() http.Handler {
	webhook := whatsapp.NewWebhookHandler("verify-token", "", nil, nil)
	return New(&Config{Webhook: webhook})
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ok") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestWebhookVerificationRoute(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=verify-token&hub.challenge=C1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "C1" {
		t.Fatalf("expected challenge echoed, got %s", w.Body.String())
	}
}

func TestWebhookMethodNotAllowed(t *testing.T) {
	r := newTestRouter()
	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		req := httptest.NewRequest(method, "/webhooks/whatsapp", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: expected 405, got %d", method, w.Code)
		}
	}
}
