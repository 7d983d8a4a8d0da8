package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tazhate/mealsbot/config"
	"github.com/tazhate/mealsbot/internal/domain"
	"github.com/tazhate/mealsbot/internal/storage"
)

type MessageSender interface {
	SendMessage(chatID int64, text string) error
	SendReminder(chatID int64) error
}

// ParticipationChecker is implemented by service.ParticipationService.
type ParticipationChecker interface {
	ShouldNotify(now time.Time, freq domain.Frequency) bool
	CheckTomorrow(ctx context.Context, username, password string) (domain.Participation, error)
}

// CalendarPublisher is implemented by service.CalendarService.
type CalendarPublisher interface {
	IsConfigured() bool
	PublishLunch(ctx context.Context, user *domain.User, date time.Time) error
}

type Scheduler struct {
	cron     *cron.Cron
	cfg      *config.Config
	storage  *storage.Storage
	checker  ParticipationChecker
	calendar CalendarPublisher
	sender   MessageSender
	now      func() time.Time

	mu      sync.Mutex
	retries map[int64]*time.Timer // pending retry per user ID
	stopped bool
}

func New(cfg *config.Config, storage *storage.Storage, checker ParticipationChecker) *Scheduler {
	c := cron.New(cron.WithLocation(cfg.Timezone))

	return &Scheduler{
		cron:    c,
		cfg:     cfg,
		storage: storage,
		checker: checker,
		now:     time.Now,
		retries: make(map[int64]*time.Timer),
	}
}

func (s *Scheduler) SetSender(sender MessageSender) {
	s.sender = sender
}

func (s *Scheduler) SetCalendar(calendar CalendarPublisher) {
	s.calendar = calendar
}

func (s *Scheduler) Start(ctx context.Context) error {
	hour, minute, err := config.ParseHHMM(s.cfg.ReminderTime)
	if err != nil {
		return fmt.Errorf("parse reminder time: %w", err)
	}

	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	if _, err := s.cron.AddFunc(spec, s.runDailyCheck); err != nil {
		return fmt.Errorf("add daily check: %w", err)
	}

	s.cron.Start()
	log.Printf("Scheduler started (TZ: %s, check: %s, cutoff: %s)",
		s.cfg.Timezone, s.cfg.ReminderTime, s.cfg.LatestReminderTime)

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, t := range s.retries {
		t.Stop()
		delete(s.retries, id)
	}
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

// runDailyCheck is the daily entry point: one participation check per user.
func (s *Scheduler) runDailyCheck() {
	now := s.now().In(s.cfg.Timezone)
	if now.After(s.cfg.CutoffFor(now)) {
		log.Printf("Daily check triggered past cutoff %s, skipping", s.cfg.LatestReminderTime)
		return
	}

	users, err := s.storage.ListUsers()
	if err != nil {
		log.Printf("Error listing users: %v", err)
		return
	}

	for _, u := range users {
		s.checkUser(u.ID)
	}
}

// checkUser runs the full decision flow for one user. Retries re-enter here,
// so the cutoff is re-read on every attempt.
func (s *Scheduler) checkUser(userID int64) {
	now := s.now().In(s.cfg.Timezone)
	if now.After(s.cfg.CutoffFor(now)) {
		log.Printf("Past cutoff, giving up on user %d for today", userID)
		return
	}

	user, err := s.storage.GetUserByID(userID)
	if err != nil || user == nil {
		log.Printf("Error loading user %d: %v", userID, err)
		return
	}

	settings, err := s.storage.GetSettings(userID)
	if err != nil {
		log.Printf("Error loading settings for user %d: %v", userID, err)
		return
	}
	if settings == nil || settings.Frequency == "" {
		// Should not happen once the user finished setup.
		log.Printf("User %d has no reminder frequency, not notifying", userID)
		return
	}

	if !s.checker.ShouldNotify(now, settings.Frequency) {
		return
	}

	if !settings.HasCredentials() {
		log.Printf("User %d wants reminders but has no credentials, skipping", userID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := s.checker.CheckTomorrow(ctx, settings.MealsUsername, settings.MealsPassword)
	switch result {
	case domain.ParticipationUnknown:
		log.Printf("Participation check failed for user %d: %v", userID, err)
		s.scheduleRetry(userID)

	case domain.ParticipationNo:
		s.notify(user)

	case domain.ParticipationYes:
		s.publish(ctx, user)
	}
}

// scheduleRetry arms a single retry timer for the user, bounded by the
// cutoff. No backoff and no retry cap beyond the cutoff window.
func (s *Scheduler) scheduleRetry(userID int64) {
	now := s.now().In(s.cfg.Timezone)
	if !now.Before(s.cfg.CutoffFor(now)) {
		log.Printf("Past cutoff, no retry for user %d", userID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if _, ok := s.retries[userID]; ok {
		return
	}

	s.retries[userID] = time.AfterFunc(s.cfg.RetryDelay, func() {
		s.mu.Lock()
		delete(s.retries, userID)
		s.mu.Unlock()
		s.checkUser(userID)
	})
	log.Printf("Retrying user %d in %s", userID, s.cfg.RetryDelay)
}

func (s *Scheduler) pendingRetries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.retries)
}

// notify sends the reminder, at most once per user and target day.
func (s *Scheduler) notify(user *domain.User) {
	if s.sender == nil {
		return
	}

	targetDate := s.now().In(s.cfg.Timezone).AddDate(0, 0, 1).Format("2006-01-02")

	notified, err := s.storage.WasNotified(user.ID, targetDate)
	if err != nil {
		log.Printf("Error checking notification log for user %d: %v", user.ID, err)
	}
	if notified {
		return
	}

	if err := s.sender.SendReminder(user.TelegramID); err != nil {
		log.Printf("Error sending reminder to %d: %v", user.TelegramID, err)
		return
	}

	if _, err := s.storage.RecordNotification(user.ID, targetDate); err != nil {
		log.Printf("Error recording notification for user %d: %v", user.ID, err)
	}
}

// publish mirrors a confirmed registration into the calendar, best-effort.
func (s *Scheduler) publish(ctx context.Context, user *domain.User) {
	if s.calendar == nil || !s.calendar.IsConfigured() {
		return
	}

	tomorrow := s.now().In(s.cfg.Timezone).AddDate(0, 0, 1)
	if err := s.calendar.PublishLunch(ctx, user, tomorrow); err != nil {
		log.Printf("Error publishing calendar event for user %d: %v", user.ID, err)
	}
}
