package gamma

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/polyscout/polyscout/internal/models"
)

const eventsBody = `[
	{"id":"1","slug":"fed-decision","title":"Fed decision","category":"business",
	 "active":true,"volume24hr":50000,
	 "markets":[{"question":"Cut?","outcomes":"[\"Yes\",\"No\"]","outcomePrices":"[\"0.73\",\"0.27\"]"}]}
]`

func TestClientEvents(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Encode())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(eventsBody)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 3, time.Millisecond)
	closed := false
	events, err := c.Events(context.Background(), EventsParams{
		Order:  OrderVolume24hr,
		Closed: &closed,
		Limit:  5,
	})
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 || events[0].Slug != "fed-decision" {
		t.Fatalf("unexpected events: %+v", events)
	}

	q := gotQuery.Load().(string)
	for _, want := range []string{"order=volume24hr", "ascending=false", "closed=false", "limit=5"} {
		if !strings.Contains(q, want) {
			t.Errorf("query %q missing %q", q, want)
		}
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(eventsBody)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 3, time.Millisecond)
	events, err := c.Events(context.Background(), EventsParams{})
	if err != nil {
		t.Fatalf("Events after retry: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestClientExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 2, time.Millisecond)
	if _, err := c.Events(context.Background(), EventsParams{}); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestClientEventBySlug_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 3, time.Millisecond)
	_, err := c.EventBySlug(context.Background(), "nope")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
