package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	if _, err := r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		r.logger().Debugw("callback ack failed", "error", err)
	}

	code, ok := strings.CutPrefix(cb.Data, "lang:")
	if !ok {
		return
	}
	set, err := r.setLang(cid, code)
	if err != nil {
		r.send(cid, "Unknown language "+code)
		return
	}
	// drop the keyboard
	edit := tgbotapi.NewEditMessageReplyMarkup(cid, cb.Message.MessageID, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	_, _ = r.Bot.Send(edit)
	r.send(cid, "Target language set to "+set)
}
