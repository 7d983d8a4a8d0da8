package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tazhate/mealsbot/internal/clients/meals"
)

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekService fetches and renders the active week's meal schedule.
type WeekService struct {
	client   *meals.Client
	timezone *time.Location
	now      func() time.Time
}

func NewWeekService(client *meals.Client, tz *time.Location) *WeekService {
	return &WeekService{
		client:   client,
		timezone: tz,
		now:      time.Now,
	}
}

// FetchWeek logs in with the given credentials and returns the active week.
func (s *WeekService) FetchWeek(ctx context.Context, username, password string) (*meals.CurrentWeekResponse, error) {
	token, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	week, err := s.client.CurrentWeek(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("current week: %w", err)
	}
	return week, nil
}

// WeekStart returns Monday 00:00 of the current week in the bot timezone.
func (s *WeekService) WeekStart(now time.Time) time.Time {
	d := now.In(s.timezone)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0
	monday := d.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, s.timezone)
}

// FormatWeek renders the week as an HTML message for Telegram.
func (s *WeekService) FormatWeek(week *meals.CurrentWeekResponse) string {
	var sb strings.Builder
	sb.WriteString("🍽 <b>This week</b>\n\n")

	weekStart := s.WeekStart(s.now())
	for i, day := range week.CurrentWeek.Days {
		name := fmt.Sprintf("Day %d", i)
		if i < len(dayNames) {
			name = dayNames[i]
		}
		date := weekStart.AddDate(0, 0, i).Format("02.01")

		if day.HasParticipation() {
			sb.WriteString(fmt.Sprintf("✅ <b>%s</b> %s\n", name, date))
			for _, m := range day.Meals {
				if m.IsParticipate && m.Title != "" {
					sb.WriteString(fmt.Sprintf("   • %s\n", m.Title))
				}
			}
		} else {
			sb.WriteString(fmt.Sprintf("— %s %s\n", name, date))
		}
	}
	return sb.String()
}

// ExportICS renders the week's registered days as an iCalendar document,
// one all-day event per day with at least one registration.
func (s *WeekService) ExportICS(week *meals.CurrentWeekResponse) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//MealsBot//Export//EN")

	weekStart := s.WeekStart(s.now())
	for i, day := range week.CurrentWeek.Days {
		if !day.HasParticipation() {
			continue
		}

		date := weekStart.AddDate(0, 0, i)

		var titles []string
		for _, m := range day.Meals {
			if m.IsParticipate && m.Title != "" {
				titles = append(titles, m.Title)
			}
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("meals-%s@mealsbot", date.Format("2006-01-02")))
		event.Props.SetText(ical.PropSummary, "Canteen lunch")
		if len(titles) > 0 {
			event.Props.SetText(ical.PropDescription, strings.Join(titles, ", "))
		}
		event.Props.SetDate(ical.PropDateTimeStart, date)
		event.Props.SetDate(ical.PropDateTimeEnd, date.AddDate(0, 0, 1))
		event.Props.SetDateTime(ical.PropDateTimeStamp, s.now().UTC())

		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		return nil, fmt.Errorf("no registered meals this week")
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}
