package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientSendText(t *testing.T) {
	var gotPath string
	var gotAuth string
	var gotReq SendRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.OUT1"}]}`))
	}))
	defer srv.Close()

	c := NewClient("secret-token", "1098765", nil)
	c.SetGraphAPIBase(srv.URL)

	result := c.SendText(context.Background(), "8801712345678", "Yes, we deliver to Gulshan!")
	if !result.Delivered {
		t.Fatalf("expected delivered, got err=%v", result.Err)
	}
	if result.MessageID != "wamid.OUT1" {
		t.Fatalf("unexpected message id: %s", result.MessageID)
	}
	if gotPath != "/1098765/messages" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}
	if gotReq.MessagingProduct != "whatsapp" || gotReq.Type != "text" {
		t.Fatalf("unexpected request shape: %+v", gotReq)
	}
	if gotReq.Text.Body != "Yes, we deliver to Gulshan!" {
		t.Fatalf("unexpected body: %s", gotReq.Text.Body)
	}
}

func TestClientSendTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid recipient","type":"OAuthException","code":131030}}`))
	}))
	defer srv.Close()

	c := NewClient("secret-token", "1098765", nil)
	c.SetGraphAPIBase(srv.URL)

	result := c.SendText(context.Background(), "not-a-number", "hello")
	if result.Delivered {
		t.Fatal("expected delivery failure")
	}
	if result.Err == nil {
		t.Fatal("expected error recorded in result")
	}
}

func TestClientSendTextServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("secret-token", "1098765", nil)
	c.SetGraphAPIBase(srv.URL)

	result := c.SendText(context.Background(), "8801712345678", "hello")
	if result.Delivered {
		t.Fatal("expected delivery failure on 500")
	}
}
