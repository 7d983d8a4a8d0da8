package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/tazhate/mealsbot/internal/domain"
)

func (b *Bot) handleCommand(msg *tgbotapi.Message, user *domain.User) {
	chatID := msg.Chat.ID
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	switch cmd {
	case "start":
		b.cmdStart(msg)
	case "help":
		b.cmdHelp(chatID)
	case "login":
		b.cmdLogin(msg, user, args)
	case "frequency":
		b.cmdFrequency(chatID, user)
	case "status":
		b.cmdStatus(chatID, user)
	case "week":
		b.cmdWeek(chatID, user)
	case "export":
		b.cmdExport(chatID, user)
	default:
		b.SendMessage(chatID, "Unknown command. /help for the command list")
	}
}

func (b *Bot) cmdStart(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	user, _ := b.storage.GetUserByTelegramID(msg.From.ID)
	if user != nil {
		b.SendMessage(chatID, fmt.Sprintf("👋 Welcome back, %s!", user.Name))
		return
	}

	user = b.autoRegisterUser(msg.From)
	if user == nil {
		b.SendMessage(chatID, "❌ Registration failed, please try again")
		return
	}

	b.SendMessage(chatID, fmt.Sprintf(
		"👋 Hi, %s!\n\nI remind you when you forget to register for tomorrow's canteen meals.\n\n"+
			"1. /login username password — connect your canteen account\n"+
			"2. /frequency — choose when to be reminded\n\n"+
			"/help — all commands", user.Name))
}

func (b *Bot) cmdHelp(chatID int64) {
	text := `<b>Commands:</b>

<b>Meals</b>
/status — check tomorrow's registration now
/week — this week's meals
/export — week as .ics calendar file

<b>Setup</b>
/login username password — canteen credentials
/frequency — when to be reminded

<b>Other</b>
/help — this reference`

	b.SendMessage(chatID, text)
}

func (b *Bot) cmdLogin(msg *tgbotapi.Message, user *domain.User, args string) {
	chatID := msg.Chat.ID
	if user == nil {
		b.SendMessage(chatID, "Start with /start first")
		return
	}

	fields := strings.Fields(args)
	if len(fields) != 2 {
		b.SendMessage(chatID, "Usage: /login username password")
		return
	}

	if err := b.settingsService.SaveCredentials(user.ID, fields[0], fields[1]); err != nil {
		b.SendMessage(chatID, "❌ Error: "+err.Error())
		return
	}

	// The message contains a plaintext password, get rid of it.
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, msg.MessageID)); err != nil {
		log.Printf("Failed to delete login message: %v", err)
		b.SendMessage(chatID, "⚠️ Please delete your /login message, it contains your password")
	}

	b.SendMessage(chatID, "🔑 Credentials saved. They are checked on the next reminder run — use /status to try them now.")
}

func (b *Bot) cmdFrequency(chatID int64, user *domain.User) {
	if user == nil {
		b.SendMessage(chatID, "Start with /start first")
		return
	}

	current := domain.Frequency("")
	if settings, err := b.settingsService.Get(user.ID); err == nil && settings != nil {
		current = settings.Frequency
	}

	text := "🔔 <b>Reminder frequency</b>\n\nWhen should I check your registration?"
	if current == "" {
		text += "\n\n(not set yet — you won't be reminded)"
	}
	b.SendMessageWithKeyboard(chatID, text, frequencyKeyboard(current))
}

func (b *Bot) cmdStatus(chatID int64, user *domain.User) {
	settings := b.requireCredentials(chatID, user)
	if settings == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := b.participationService.CheckTomorrow(ctx, settings.MealsUsername, settings.MealsPassword)
	switch result {
	case domain.ParticipationYes:
		b.SendMessage(chatID, "✅ You're registered for tomorrow's meals.")
	case domain.ParticipationNo:
		b.SendMessageWithKeyboard(chatID,
			"⚠️ You're <b>not</b> registered for tomorrow.",
			reminderKeyboard(b.cfg.MealsServerURL))
	default:
		log.Printf("Status check failed for user %d: %v", user.ID, err)
		b.SendMessage(chatID, "❌ Couldn't reach the meals server. Check your credentials with /login or try again later.")
	}
}

func (b *Bot) cmdWeek(chatID int64, user *domain.User) {
	settings := b.requireCredentials(chatID, user)
	if settings == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	week, err := b.weekService.FetchWeek(ctx, settings.MealsUsername, settings.MealsPassword)
	if err != nil {
		log.Printf("Week fetch failed for user %d: %v", user.ID, err)
		b.SendMessage(chatID, "❌ Couldn't fetch the week from the meals server.")
		return
	}

	b.SendMessage(chatID, b.weekService.FormatWeek(week))
}

func (b *Bot) cmdExport(chatID int64, user *domain.User) {
	settings := b.requireCredentials(chatID, user)
	if settings == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	week, err := b.weekService.FetchWeek(ctx, settings.MealsUsername, settings.MealsPassword)
	if err != nil {
		log.Printf("Week fetch failed for user %d: %v", user.ID, err)
		b.SendMessage(chatID, "❌ Couldn't fetch the week from the meals server.")
		return
	}

	ics, err := b.weekService.ExportICS(week)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "meals-week.ics",
		Bytes: ics,
	})
	doc.Caption = "🗓 Your registered meals this week"
	if _, err := b.api.Send(doc); err != nil {
		log.Printf("Failed to send ICS export: %v", err)
		b.SendMessage(chatID, "❌ Couldn't send the calendar file.")
	}
}

// requireCredentials replies with setup hints and returns nil when the user
// cannot run a remote check yet.
func (b *Bot) requireCredentials(chatID int64, user *domain.User) *domain.Settings {
	if user == nil {
		b.SendMessage(chatID, "Start with /start first")
		return nil
	}

	settings, err := b.settingsService.Get(user.ID)
	if err != nil {
		log.Printf("Error loading settings for user %d: %v", user.ID, err)
		b.SendMessage(chatID, "❌ Internal error, try again later")
		return nil
	}
	if settings == nil || !settings.HasCredentials() {
		b.SendMessage(chatID, "No canteen credentials yet. Set them with:\n/login username password")
		return nil
	}
	return settings
}
