package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tazhate/mealsbot/internal/clients/meals"
	"github.com/tazhate/mealsbot/internal/domain"
)

// 2025-06-01 is a Sunday.
func dayAt(day int, hour int) time.Time {
	return time.Date(2025, 6, day, hour, 0, 0, 0, time.UTC)
}

func TestShouldNotify(t *testing.T) {
	t.Parallel()
	svc := NewParticipationService(nil, time.UTC)

	tests := []struct {
		name string
		freq domain.Frequency
		day  int // June 2025, 1 = Sunday
		want bool
	}{
		{name: "never on sunday", freq: domain.FrequencyNever, day: 1, want: false},
		{name: "never on monday", freq: domain.FrequencyNever, day: 2, want: false},
		{name: "never on thursday", freq: domain.FrequencyNever, day: 5, want: false},

		{name: "before monday on sunday", freq: domain.FrequencyBeforeMonday, day: 1, want: true},
		{name: "before monday on monday", freq: domain.FrequencyBeforeMonday, day: 2, want: false},
		{name: "before monday on saturday", freq: domain.FrequencyBeforeMonday, day: 7, want: false},

		{name: "weekdays on sunday", freq: domain.FrequencyBeforeWeekdays, day: 1, want: true},
		{name: "weekdays on monday", freq: domain.FrequencyBeforeWeekdays, day: 2, want: true},
		{name: "weekdays on thursday", freq: domain.FrequencyBeforeWeekdays, day: 5, want: true},
		{name: "weekdays on friday", freq: domain.FrequencyBeforeWeekdays, day: 6, want: false},
		{name: "weekdays on saturday", freq: domain.FrequencyBeforeWeekdays, day: 7, want: false},

		{name: "unset frequency", freq: "", day: 1, want: false},
		{name: "unknown frequency", freq: "sometimes", day: 1, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := svc.ShouldNotify(dayAt(tt.day, 18), tt.freq)
			if got != tt.want {
				t.Fatalf("ShouldNotify(%s, %s) = %v, want %v",
					dayAt(tt.day, 18).Weekday(), tt.freq, got, tt.want)
			}
		})
	}
}

func TestTomorrowIndex(t *testing.T) {
	t.Parallel()
	svc := NewParticipationService(nil, time.UTC)

	tests := []struct {
		day  int // June 2025, 1 = Sunday
		want int
	}{
		{day: 1, want: 0}, // Sunday -> Monday
		{day: 2, want: 1}, // Monday -> Tuesday
		{day: 5, want: 4}, // Thursday -> Friday
		{day: 6, want: 5}, // Friday -> Saturday
		{day: 7, want: 6}, // Saturday -> Sunday
	}

	for _, tt := range tests {
		if got := svc.TomorrowIndex(dayAt(tt.day, 18)); got != tt.want {
			t.Errorf("TomorrowIndex(%s) = %d, want %d", dayAt(tt.day, 18).Weekday(), got, tt.want)
		}
	}
}

// mealsServer stubs the token and week endpoints. weekStatus < 0 means the
// token endpoint fails instead.
func mealsServer(t *testing.T, tokenStatus, weekStatus int, week meals.CurrentWeekResponse, weekCalls *int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v2/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenStatus >= 400 {
			http.Error(w, "invalid_grant", tokenStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "test-token",
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("/rest/v1/week/active", func(w http.ResponseWriter, r *http.Request) {
		if weekCalls != nil {
			*weekCalls++
		}
		if weekStatus >= 400 {
			http.Error(w, "boom", weekStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(week)
	})
	return httptest.NewServer(mux)
}

func weekWithParticipation(dayIdx int) meals.CurrentWeekResponse {
	week := meals.CurrentWeekResponse{}
	for i := 0; i < 7; i++ {
		day := meals.Day{Meals: []meals.Meal{
			{Title: "Soup", IsParticipate: false},
			{Title: "Main", IsParticipate: i == dayIdx},
		}}
		week.CurrentWeek.Days = append(week.CurrentWeek.Days, day)
	}
	return week
}

func TestCheckTomorrowParticipating(t *testing.T) {
	// Wednesday evening, tomorrow is Thursday (index 3).
	srv := mealsServer(t, http.StatusOK, http.StatusOK, weekWithParticipation(3), nil)
	defer srv.Close()

	svc := NewParticipationService(meals.NewClient(srv.URL, "id", "secret"), time.UTC)
	svc.now = func() time.Time { return dayAt(4, 18) }

	got, err := svc.CheckTomorrow(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("CheckTomorrow error: %v", err)
	}
	if got != domain.ParticipationYes {
		t.Fatalf("result = %s, want participating", got)
	}
}

func TestCheckTomorrowNotParticipating(t *testing.T) {
	srv := mealsServer(t, http.StatusOK, http.StatusOK, weekWithParticipation(0), nil)
	defer srv.Close()

	svc := NewParticipationService(meals.NewClient(srv.URL, "id", "secret"), time.UTC)
	svc.now = func() time.Time { return dayAt(4, 18) } // tomorrow Thursday, registered only Monday

	got, err := svc.CheckTomorrow(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("CheckTomorrow error: %v", err)
	}
	if got != domain.ParticipationNo {
		t.Fatalf("result = %s, want not_participating", got)
	}
}

func TestCheckTomorrowWeekendShortCircuit(t *testing.T) {
	var weekCalls int
	srv := mealsServer(t, http.StatusOK, http.StatusOK, weekWithParticipation(4), &weekCalls)
	defer srv.Close()

	svc := NewParticipationService(meals.NewClient(srv.URL, "id", "secret"), time.UTC)
	svc.now = func() time.Time { return dayAt(5, 18) } // Thursday, tomorrow Friday

	got, err := svc.CheckTomorrow(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("CheckTomorrow error: %v", err)
	}
	if got != domain.ParticipationNo {
		t.Fatalf("result = %s, want not_participating", got)
	}
	if weekCalls != 0 {
		t.Fatalf("week endpoint called %d times, want 0", weekCalls)
	}
}

func TestCheckTomorrowTokenFailure(t *testing.T) {
	srv := mealsServer(t, http.StatusInternalServerError, http.StatusOK, meals.CurrentWeekResponse{}, nil)
	defer srv.Close()

	svc := NewParticipationService(meals.NewClient(srv.URL, "id", "secret"), time.UTC)
	svc.now = func() time.Time { return dayAt(4, 18) }

	got, err := svc.CheckTomorrow(context.Background(), "alice", "wrong")
	if err == nil {
		t.Fatal("expected error from failed token exchange")
	}
	if got != domain.ParticipationUnknown {
		t.Fatalf("result = %s, want unknown", got)
	}
}

func TestCheckTomorrowWeekFailure(t *testing.T) {
	srv := mealsServer(t, http.StatusOK, http.StatusBadGateway, meals.CurrentWeekResponse{}, nil)
	defer srv.Close()

	svc := NewParticipationService(meals.NewClient(srv.URL, "id", "secret"), time.UTC)
	svc.now = func() time.Time { return dayAt(4, 18) }

	got, err := svc.CheckTomorrow(context.Background(), "alice", "secret")
	if err == nil {
		t.Fatal("expected error from failed week fetch")
	}
	if got != domain.ParticipationUnknown {
		t.Fatalf("result = %s, want unknown", got)
	}
}

func TestCheckTomorrowMalformedWeek(t *testing.T) {
	// Only two days in the response, tomorrow's index is out of range.
	week := meals.CurrentWeekResponse{}
	week.CurrentWeek.Days = []meals.Day{{}, {}}

	srv := mealsServer(t, http.StatusOK, http.StatusOK, week, nil)
	defer srv.Close()

	svc := NewParticipationService(meals.NewClient(srv.URL, "id", "secret"), time.UTC)
	svc.now = func() time.Time { return dayAt(4, 18) }

	got, err := svc.CheckTomorrow(context.Background(), "alice", "secret")
	if err == nil {
		t.Fatal("expected error for missing day entry")
	}
	if got != domain.ParticipationUnknown {
		t.Fatalf("result = %s, want unknown", got)
	}
}
