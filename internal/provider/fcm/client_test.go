package fcm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newClient(url string) *Client {
	return &Client{
		ServerKey: "test-key",
		HTTP:      &http.Client{Timeout: 2 * time.Second},
		BaseURL:   url,
	}
}

func TestSendSuccess(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":1,"failure":0,"results":[{"message_id":"0:abc"}]}`))
	}))
	defer srv.Close()

	resp, status, _, err := newClient(srv.URL).Send(context.Background(), SendRequest{
		Token: "tok-1",
		Title: "t",
		Body:  "b",
		Data:  map[string]string{"type": "event_reminder"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if status != 200 || resp.Success != 1 {
		t.Fatalf("unexpected response status=%d resp=%+v", status, resp)
	}
	if gotAuth != "key=test-key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotPayload["to"] != "tok-1" {
		t.Fatalf("unexpected payload %v", gotPayload)
	}
}

func TestSendHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, status, _, err := newClient(srv.URL).Send(context.Background(), SendRequest{Token: "tok-1"})
	if err == nil {
		t.Fatalf("expected error on 503")
	}
	if status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", status)
	}
}

func TestSendRejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":0,"failure":1,"results":[{"error":"NotRegistered"}]}`))
	}))
	defer srv.Close()

	_, _, _, err := newClient(srv.URL).Send(context.Background(), SendRequest{Token: "tok-dead"})
	if err == nil {
		t.Fatalf("expected error when FCM rejects the token")
	}
	if err.Error() != "NotRegistered" {
		t.Fatalf("expected provider error surfaced, got %v", err)
	}
}
