package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tazhate/mealsbot/internal/clients/meals"
	"github.com/tazhate/mealsbot/internal/domain"
)

type ParticipationService struct {
	client   *meals.Client
	timezone *time.Location
	now      func() time.Time
}

func NewParticipationService(client *meals.Client, tz *time.Location) *ParticipationService {
	return &ParticipationService{
		client:   client,
		timezone: tz,
		now:      time.Now,
	}
}

// ShouldNotify decides from today's weekday whether a check is due at all.
// "before_monday" fires only on Sunday evening, "before_every_weekday" on
// Sunday through Thursday evenings. Anything else (including an unset or
// unknown frequency) never fires.
func (s *ParticipationService) ShouldNotify(now time.Time, freq domain.Frequency) bool {
	weekday := now.In(s.timezone).Weekday()

	switch freq {
	case domain.FrequencyBeforeMonday:
		return weekday == time.Sunday
	case domain.FrequencyBeforeWeekdays:
		// time.Sunday == 0, so this covers Sunday..Thursday.
		return weekday <= time.Thursday
	default:
		return false
	}
}

// TomorrowIndex returns tomorrow's weekday in the API's Monday=0 numbering.
func (s *ParticipationService) TomorrowIndex(now time.Time) int {
	tomorrow := now.In(s.timezone).AddDate(0, 0, 1)
	return (int(tomorrow.Weekday()) + 6) % 7
}

// CheckTomorrow runs the two-step exchange (token, then current week) and
// reduces the answer to a tri-state result. ParticipationUnknown, returned
// together with the causing error, means the caller should retry later; it
// must never be treated as "not registered".
func (s *ParticipationService) CheckTomorrow(ctx context.Context, username, password string) (domain.Participation, error) {
	token, err := s.client.Login(ctx, username, password)
	if err != nil {
		return domain.ParticipationUnknown, fmt.Errorf("login: %w", err)
	}

	// The canteen serves no meals on Friday and Saturday, so there is
	// nothing to register for and no schedule lookup is needed.
	idx := s.TomorrowIndex(s.now())
	if idx == 4 || idx == 5 {
		return domain.ParticipationNo, nil
	}

	week, err := s.client.CurrentWeek(ctx, token.AccessToken)
	if err != nil {
		return domain.ParticipationUnknown, fmt.Errorf("current week: %w", err)
	}

	days := week.CurrentWeek.Days
	if idx >= len(days) {
		return domain.ParticipationUnknown, fmt.Errorf("week has %d days, want index %d", len(days), idx)
	}

	if days[idx].HasParticipation() {
		return domain.ParticipationYes, nil
	}
	return domain.ParticipationNo, nil
}
