package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tazhate/mealsbot/internal/clients/caldav"
	"github.com/tazhate/mealsbot/internal/domain"
)

// CalendarService mirrors confirmed meal registrations into a CalDAV
// calendar. Entirely optional: when not configured every call is a no-op.
type CalendarService struct {
	client       *caldav.Client
	calendarPath string
	timezone     *time.Location
}

func NewCalendarService(client *caldav.Client, calendarPath string, tz *time.Location) *CalendarService {
	return &CalendarService{
		client:       client,
		calendarPath: calendarPath,
		timezone:     tz,
	}
}

func (s *CalendarService) IsConfigured() bool {
	return s.client != nil && s.client.IsConfigured() && s.calendarPath != ""
}

// PublishLunch upserts an all-day "Canteen lunch" event for the given date.
// The UID is derived from user and date, so repeated checks overwrite
// instead of duplicating.
func (s *CalendarService) PublishLunch(ctx context.Context, user *domain.User, date time.Time) error {
	if !s.IsConfigured() {
		return nil
	}

	d := date.In(s.timezone)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.timezone)

	event := &caldav.Event{
		UID:         fmt.Sprintf("meals-%s-u%d@mealsbot", day.Format("2006-01-02"), user.ID),
		Summary:     "Canteen lunch",
		Description: fmt.Sprintf("Meal registration for %s", user.Name),
		StartTime:   day,
		EndTime:     day.AddDate(0, 0, 1),
		AllDay:      true,
	}

	if err := s.client.PutEvent(ctx, s.calendarPath, event); err != nil {
		return fmt.Errorf("publish lunch: %w", err)
	}

	log.Printf("Published lunch event %s", event.UID)
	return nil
}
