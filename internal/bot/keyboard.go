package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/tazhate/mealsbot/internal/domain"
)

// Frequency selection keyboard
func frequencyKeyboard(current domain.Frequency) tgbotapi.InlineKeyboardMarkup {
	label := func(text string, freq domain.Frequency) string {
		if freq == current {
			return "• " + text
		}
		return text
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				label("Before Monday", domain.FrequencyBeforeMonday),
				"freq:"+string(domain.FrequencyBeforeMonday),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				label("Before every weekday", domain.FrequencyBeforeWeekdays),
				"freq:"+string(domain.FrequencyBeforeWeekdays),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				label("Never", domain.FrequencyNever),
				"freq:"+string(domain.FrequencyNever),
			),
		),
	)
}

// Reminder keyboard with a link to the meals page
func reminderKeyboard(mealsURL string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🍽 Open meals page", mealsURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Check again", "check:now"),
		),
	)
}
