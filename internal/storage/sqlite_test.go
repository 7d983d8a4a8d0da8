package storage

import (
	"path/filepath"
	"testing"

	"github.com/tazhate/mealsbot/internal/domain"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUserRoundtrip(t *testing.T) {
	s := newTestStorage(t)

	u := &domain.User{TelegramID: 42, Name: "Alice"}
	if err := s.CreateUser(u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("user ID not set after insert")
	}

	got, err := s.GetUserByTelegramID(42)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got == nil || got.Name != "Alice" || got.ID != u.ID {
		t.Fatalf("unexpected user: %+v", got)
	}

	missing, err := s.GetUserByTelegramID(99)
	if err != nil {
		t.Fatalf("get missing user: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown telegram ID, got %+v", missing)
	}

	users, err := s.ListUsers()
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}
}

func TestSettingsUpsert(t *testing.T) {
	s := newTestStorage(t)

	u := &domain.User{TelegramID: 42, Name: "Alice"}
	if err := s.CreateUser(u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	settings, err := s.GetSettings(u.ID)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings != nil {
		t.Fatalf("expected nil settings before setup, got %+v", settings)
	}

	// Credentials first, then frequency: both writes must survive.
	if err := s.SaveCredentials(u.ID, "alice", "secret"); err != nil {
		t.Fatalf("save credentials: %v", err)
	}
	if err := s.SetFrequency(u.ID, domain.FrequencyBeforeWeekdays); err != nil {
		t.Fatalf("set frequency: %v", err)
	}

	settings, err = s.GetSettings(u.ID)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings == nil {
		t.Fatal("settings missing after setup")
	}
	if settings.MealsUsername != "alice" || settings.MealsPassword != "secret" {
		t.Fatalf("credentials lost: %+v", settings)
	}
	if settings.Frequency != domain.FrequencyBeforeWeekdays {
		t.Fatalf("frequency = %q, want before_every_weekday", settings.Frequency)
	}

	// Re-login must not clobber the frequency.
	if err := s.SaveCredentials(u.ID, "alice", "newpass"); err != nil {
		t.Fatalf("re-save credentials: %v", err)
	}
	settings, _ = s.GetSettings(u.ID)
	if settings.MealsPassword != "newpass" {
		t.Fatalf("password not updated: %+v", settings)
	}
	if settings.Frequency != domain.FrequencyBeforeWeekdays {
		t.Fatalf("frequency clobbered by credential update: %+v", settings)
	}
}

func TestNotificationDedup(t *testing.T) {
	s := newTestStorage(t)

	u := &domain.User{TelegramID: 42, Name: "Alice"}
	if err := s.CreateUser(u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	inserted, err := s.RecordNotification(u.ID, "2025-06-02")
	if err != nil {
		t.Fatalf("record notification: %v", err)
	}
	if !inserted {
		t.Fatal("first record should insert")
	}

	inserted, err = s.RecordNotification(u.ID, "2025-06-02")
	if err != nil {
		t.Fatalf("record duplicate: %v", err)
	}
	if inserted {
		t.Fatal("duplicate record should be ignored")
	}

	notified, err := s.WasNotified(u.ID, "2025-06-02")
	if err != nil {
		t.Fatalf("was notified: %v", err)
	}
	if !notified {
		t.Fatal("expected notification marker for 2025-06-02")
	}

	notified, _ = s.WasNotified(u.ID, "2025-06-03")
	if notified {
		t.Fatal("unexpected marker for another day")
	}

	if _, err := s.RecordNotification(u.ID, "2025-06-03"); err != nil {
		t.Fatalf("record second day: %v", err)
	}

	list, err := s.ListNotifications(10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d notifications, want 2", len(list))
	}

	list, _ = s.ListNotifications(1)
	if len(list) != 1 {
		t.Fatalf("limit ignored, got %d notifications", len(list))
	}
}
