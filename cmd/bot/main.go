package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tazhate/mealsbot/config"
	"github.com/tazhate/mealsbot/internal/bot"
	"github.com/tazhate/mealsbot/internal/clients/caldav"
	"github.com/tazhate/mealsbot/internal/clients/meals"
	"github.com/tazhate/mealsbot/internal/scheduler"
	"github.com/tazhate/mealsbot/internal/service"
	"github.com/tazhate/mealsbot/internal/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	defer store.Close()

	mealsClient := meals.NewClient(cfg.MealsServerURL, cfg.OAuthClientID, cfg.OAuthClientSecret)

	participationSvc := service.NewParticipationService(mealsClient, cfg.Timezone)
	settingsSvc := service.NewSettingsService(store)
	weekSvc := service.NewWeekService(mealsClient, cfg.Timezone)

	caldavClient := caldav.NewClient(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword)
	calendarSvc := service.NewCalendarService(caldavClient, cfg.CalDAVCalendar, cfg.Timezone)

	tgBot, err := bot.New(cfg, store, participationSvc, settingsSvc, weekSvc)
	if err != nil {
		log.Fatalf("Failed to init bot: %v", err)
	}

	if err := tgBot.SetupWebhook(); err != nil {
		log.Fatalf("Failed to setup webhook: %v", err)
	}

	sched := scheduler.New(cfg, store, participationSvc)
	sched.SetSender(tgBot)
	sched.SetCalendar(calendarSvc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sched.Start(ctx); err != nil {
			log.Printf("Scheduler error: %v", err)
		}
	}()

	go func() {
		if err := tgBot.Start(ctx); err != nil {
			log.Printf("Bot error: %v", err)
		}
	}()

	log.Println("MealsBot started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := tgBot.Stop(shutdownCtx); err != nil {
		log.Printf("Error stopping bot: %v", err)
	}

	log.Println("MealsBot stopped")
}
