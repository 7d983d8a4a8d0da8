package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	TelegramToken     string
	MealsServerURL    string
	OAuthClientID     string
	OAuthClientSecret string
	DatabasePath      string
	Timezone          *time.Location

	ReminderTime       string // HH:MM, daily check trigger
	LatestReminderTime string // HH:MM, cutoff for checks and retries
	RetryDelay         time.Duration

	WebhookURL  string
	ServerPort  string
	APIUsername string
	APIPassword string

	CalDAVURL      string
	CalDAVUsername string
	CalDAVPassword string
	CalDAVCalendar string
}

func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	serverURL := strings.TrimRight(os.Getenv("MEALS_SERVER_URL"), "/")
	if serverURL == "" {
		return nil, fmt.Errorf("MEALS_SERVER_URL is required")
	}

	clientID := os.Getenv("OAUTH_CLIENT_ID")
	clientSecret := os.Getenv("OAUTH_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET are required")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/mealsbot.db"
	}

	tzName := os.Getenv("TIMEZONE")
	if tzName == "" {
		tzName = "Europe/Berlin"
	}
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	reminderTime := os.Getenv("REMINDER_TIME")
	if reminderTime == "" {
		reminderTime = "17:00"
	}
	if _, _, err := ParseHHMM(reminderTime); err != nil {
		return nil, fmt.Errorf("invalid REMINDER_TIME: %w", err)
	}

	latestReminderTime := os.Getenv("LATEST_REMINDER_TIME")
	if latestReminderTime == "" {
		latestReminderTime = "21:00"
	}
	if _, _, err := ParseHHMM(latestReminderTime); err != nil {
		return nil, fmt.Errorf("invalid LATEST_REMINDER_TIME: %w", err)
	}

	retryDelay := 5 * time.Minute
	if v := os.Getenv("RETRY_DELAY"); v != "" {
		retryDelay, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RETRY_DELAY: %w", err)
		}
	}

	webhookURL := os.Getenv("WEBHOOK_URL")
	if webhookURL == "" {
		webhookURL = "https://meals.tazhate.com"
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	return &Config{
		TelegramToken:      token,
		MealsServerURL:     serverURL,
		OAuthClientID:      clientID,
		OAuthClientSecret:  clientSecret,
		DatabasePath:       dbPath,
		Timezone:           tz,
		ReminderTime:       reminderTime,
		LatestReminderTime: latestReminderTime,
		RetryDelay:         retryDelay,
		WebhookURL:         webhookURL,
		ServerPort:         serverPort,
		APIUsername:        os.Getenv("API_USERNAME"),
		APIPassword:        os.Getenv("API_PASSWORD"),
		CalDAVURL:          os.Getenv("CALDAV_URL"),
		CalDAVUsername:     os.Getenv("CALDAV_USERNAME"),
		CalDAVPassword:     os.Getenv("CALDAV_PASSWORD"),
		CalDAVCalendar:     os.Getenv("CALDAV_CALENDAR"),
	}, nil
}

// CutoffFor resolves LATEST_REMINDER_TIME against the given day
// in the configured timezone.
func (c *Config) CutoffFor(day time.Time) time.Time {
	return c.timeOfDay(day, c.LatestReminderTime)
}

func (c *Config) timeOfDay(day time.Time, hhmm string) time.Time {
	h, m, _ := ParseHHMM(hhmm) // validated in Load
	d := day.In(c.Timezone)
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, c.Timezone)
}

// ParseHHMM parses a "HH:MM" time-of-day string.
func ParseHHMM(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time format: %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}
