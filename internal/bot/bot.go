package bot

import (
	"context"
	"fmt"
	"log"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/tazhate/mealsbot/config"
	"github.com/tazhate/mealsbot/internal/service"
	"github.com/tazhate/mealsbot/internal/storage"
)

type Bot struct {
	api                  *tgbotapi.BotAPI
	cfg                  *config.Config
	storage              *storage.Storage
	participationService *service.ParticipationService
	settingsService      *service.SettingsService
	weekService          *service.WeekService
	server               *http.Server
}

func New(cfg *config.Config, storage *storage.Storage, participationSvc *service.ParticipationService, settingsSvc *service.SettingsService, weekSvc *service.WeekService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("Authorized as @%s", api.Self.UserName)

	bot := &Bot{
		api:                  api,
		cfg:                  cfg,
		storage:              storage,
		participationService: participationSvc,
		settingsService:      settingsSvc,
		weekService:          weekSvc,
	}

	// Set bot commands (menu button)
	bot.setCommands()

	return bot, nil
}

func (b *Bot) setCommands() {
	commands := []tgbotapi.BotCommand{
		{Command: "status", Description: "🍽 Check tomorrow's registration"},
		{Command: "week", Description: "🗓 This week's meals"},
		{Command: "frequency", Description: "🔔 Reminder frequency"},
		{Command: "login", Description: "🔑 Set canteen credentials"},
		{Command: "export", Description: "📆 Export week as calendar"},
		{Command: "help", Description: "❓ Command reference"},
	}

	cfg := tgbotapi.NewSetMyCommands(commands...)
	if _, err := b.api.Request(cfg); err != nil {
		log.Printf("Failed to set commands: %v", err)
	}
}

func (b *Bot) SetupWebhook() error {
	webhookURL := b.cfg.WebhookURL + "/bot"

	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("create webhook: %w", err)
	}

	_, err = b.api.Request(wh)
	if err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	info, err := b.api.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("get webhook info: %w", err)
	}

	if info.LastErrorDate != 0 {
		log.Printf("Webhook last error: %s", info.LastErrorMessage)
	}

	log.Printf("Webhook set to: %s", webhookURL)
	return nil
}

func (b *Bot) Start(ctx context.Context) error {
	updates := b.api.ListenForWebhook("/bot")

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// REST API with Basic Auth (disabled without credentials)
	b.SetupAPI()

	b.server = &http.Server{
		Addr:    ":" + b.cfg.ServerPort,
		Handler: nil, // use DefaultServeMux
	}

	go func() {
		log.Printf("Starting webhook server on :%s", b.cfg.ServerPort)
		if err := b.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-updates:
			go b.handleUpdate(update)
		}
	}
}

func (b *Bot) Stop(ctx context.Context) error {
	if b.server != nil {
		return b.server.Shutdown(ctx)
	}
	return nil
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	return err
}

// SendReminder sends the "not yet registered" notification with a button
// to the meals page.
func (b *Bot) SendReminder(chatID int64) error {
	text := "🍽 <b>Meal reminder</b>\n\nYou haven't registered for tomorrow's meals yet!"
	return b.SendMessageWithKeyboard(chatID, text, reminderKeyboard(b.cfg.MealsServerURL))
}
