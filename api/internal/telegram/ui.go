package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tamil-inscription/api/internal/pipeline"
	"tamil-inscription/api/internal/util"
)

const maxMessageRunes = 3900

const helpText = "Send a photo of an inscription (several photos as an album are joined top to bottom) " +
	"or paste Tamil text, and I will translate it.\n" +
	"Commands: /lang <code> to pick the target language, /health to see model status."

var langChoices = []string{"en", "ta", "fr", "de", "hi"}

func makeLangKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(langChoices))
	for _, c := range langChoices {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(util.LanguageName(c), "lang:"+c))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func formatEnvelope(env pipeline.Envelope, lang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Script: %s\n\n", env.SourceScript)
	b.WriteString("Original:\n")
	b.WriteString(strings.TrimSpace(env.OriginalText))
	fmt.Fprintf(&b, "\n\nTranslation (%s):\n", util.LanguageName(lang))
	b.WriteString(strings.TrimSpace(env.TranslatedText))
	fmt.Fprintf(&b, "\n\nConfidence: %.2f", env.Confidence)
	return truncate(b.String(), maxMessageRunes)
}

// truncate cuts on a rune boundary so Tamil text never splits mid-letter.
func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + "…"
}
