package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tazhate/mealsbot/internal/clients/caldav"
	"github.com/tazhate/mealsbot/internal/domain"
)

func TestCalendarServiceNotConfigured(t *testing.T) {
	t.Parallel()

	svc := NewCalendarService(caldav.NewClient("", "", ""), "", time.UTC)
	if svc.IsConfigured() {
		t.Error("service without endpoint should not be configured")
	}

	// Publishing on an unconfigured service is a no-op, not an error.
	user := &domain.User{ID: 7, Name: "Alice"}
	if err := svc.PublishLunch(context.Background(), user, time.Now()); err != nil {
		t.Fatalf("PublishLunch on unconfigured service: %v", err)
	}

	svc = NewCalendarService(caldav.NewClient("https://dav.example.com", "u", "p"), "", time.UTC)
	if svc.IsConfigured() {
		t.Error("service without calendar path should not be configured")
	}
}

func TestPublishLunch(t *testing.T) {
	t.Parallel()

	var (
		path string
		body string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := caldav.NewClient(srv.URL, "alice", "secret")
	svc := NewCalendarService(client, "/calendars/alice/meals/", time.UTC)
	if !svc.IsConfigured() {
		t.Fatal("expected configured service")
	}

	user := &domain.User{ID: 7, Name: "Alice"}
	date := time.Date(2025, 6, 5, 18, 30, 0, 0, time.UTC)
	if err := svc.PublishLunch(context.Background(), user, date); err != nil {
		t.Fatalf("PublishLunch error: %v", err)
	}

	// UID derives from user and date, so re-publishing overwrites.
	if path != "/calendars/alice/meals/meals-2025-06-05-u7@mealsbot.ics" {
		t.Errorf("path = %q", path)
	}
	for _, want := range []string{
		"UID:meals-2025-06-05-u7@mealsbot",
		"SUMMARY:Canteen lunch",
		"DTSTART;VALUE=DATE:20250605",
		"DTEND;VALUE=DATE:20250606",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestPublishLunchServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	client := caldav.NewClient(srv.URL, "alice", "secret")
	svc := NewCalendarService(client, "/calendars/alice/meals/", time.UTC)

	user := &domain.User{ID: 7, Name: "Alice"}
	if err := svc.PublishLunch(context.Background(), user, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)); err == nil {
		t.Fatal("expected error from rejected PUT")
	}
}
