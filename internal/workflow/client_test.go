package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestClientSnapshot(t *testing.T) {
	orderID := uuid.New()
	snap := happyPathSnapshot()
	snap.Order.ID = orderID.String()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantPath := fmt.Sprintf("/orders/%s/workflow", orderID)
		if r.URL.Path != wantPath {
			t.Errorf("unexpected path %q, want %q", r.URL.Path, wantPath)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": snap})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	got, err := client.Snapshot(context.Background(), orderID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got.Order == nil || got.Order.ID != orderID.String() {
		t.Fatalf("unexpected order in snapshot: %+v", got.Order)
	}
	if len(got.Outbox) != len(snap.Outbox) || len(got.Inbox) != len(snap.Inbox) {
		t.Error("outbox and inbox lists should round-trip")
	}
	if got.Payment == nil || got.Ticket == nil {
		t.Error("payment and ticket should round-trip")
	}
}

func TestClientSnapshotNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Snapshot(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected an error for a non-success status")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should carry the status code, got %q", err)
	}
}

func TestClientTrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://localhost:8080/", time.Second)
	if client.baseURL != "http://localhost:8080" {
		t.Errorf("unexpected base URL %q", client.baseURL)
	}
}
