package bot

import (
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/tazhate/mealsbot/internal/domain"
)

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		b.handleMessage(update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	user, err := b.storage.GetUserByTelegramID(msg.From.ID)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		return
	}

	if user == nil && !msg.IsCommand() {
		b.SendMessage(chatID, "Start with /start")
		return
	}

	if msg.IsCommand() {
		b.handleCommand(msg, user)
		return
	}

	b.SendMessage(chatID, "I only understand commands. /help for the list")
}

// autoRegisterUser creates a user row for a new Telegram account
func (b *Bot) autoRegisterUser(from *tgbotapi.User) *domain.User {
	name := from.FirstName
	if from.LastName != "" {
		name += " " + from.LastName
	}

	newUser := &domain.User{
		TelegramID: from.ID,
		Name:       name,
	}

	if err := b.storage.CreateUser(newUser); err != nil {
		log.Printf("Error registering user: %v", err)
		return nil
	}

	log.Printf("Registered user: %s (ID: %d)", name, from.ID)
	return newUser
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	// Message is nil for callbacks from inline-mode messages.
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	user, err := b.storage.GetUserByTelegramID(callback.From.ID)
	if err != nil || user == nil {
		b.api.Request(tgbotapi.NewCallback(callback.ID, "Start with /start first"))
		return
	}

	parts := strings.Split(callback.Data, ":")

	switch parts[0] {
	case "freq":
		if len(parts) != 2 {
			return
		}
		freq, err := b.settingsService.SetFrequency(user.ID, parts[1])
		if err != nil {
			b.api.Request(tgbotapi.NewCallback(callback.ID, "❌ "+err.Error()))
			return
		}

		b.api.Request(tgbotapi.NewCallback(callback.ID, "Saved"))

		text := "🔔 Reminder frequency set: <b>" + frequencyLabel(freq) + "</b>"
		edit := tgbotapi.NewEditMessageText(chatID, callback.Message.MessageID, text)
		edit.ParseMode = "HTML"
		if _, err := b.api.Send(edit); err != nil {
			log.Printf("Error editing frequency message: %v", err)
		}

	case "check":
		b.api.Request(tgbotapi.NewCallback(callback.ID, "Checking..."))
		b.cmdStatus(chatID, user)
	}
}

func frequencyLabel(freq domain.Frequency) string {
	switch freq {
	case domain.FrequencyBeforeMonday:
		return "before Monday"
	case domain.FrequencyBeforeWeekdays:
		return "before every weekday"
	default:
		return "never"
	}
}
