package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tamil-inscription/api/internal/model"
	"tamil-inscription/api/internal/pipeline"
)

// Bot is the part of *tgbotapi.BotAPI the router uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Runner translates one inscription. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, in pipeline.Input, targetLang string) (pipeline.Envelope, error)
}

type StatusReporter interface {
	Status() map[model.Slot]model.SlotStatus
}

type Router struct {
	Bot      Bot
	Pipeline Runner
	Models   StatusReporter
	Log      *zap.SugaredLogger

	// Timeout bounds a single pipeline run.
	Timeout time.Duration
	// Debounce is how long to wait for more album pages.
	Debounce time.Duration

	langs   sync.Map // chatID -> string
	batches sync.Map // key -> *photoBatch
}

func (r *Router) logger() *zap.SugaredLogger {
	if r.Log == nil {
		return zap.NewNop().Sugar()
	}
	return r.Log
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	msg := upd.Message
	if msg == nil {
		return
	}
	switch {
	case msg.IsCommand():
		r.HandleCommand(msg)
	case len(msg.Photo) > 0:
		r.acceptPhoto(msg, msg.Photo[len(msg.Photo)-1].FileID)
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		r.acceptPhoto(msg, msg.Document.FileID)
	case strings.TrimSpace(msg.Text) != "":
		r.translate(context.Background(), msg.Chat.ID, pipeline.TextInput(msg.Text))
	}
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, helpText)
	case "health":
		r.send(cid, formatHealth(r.status()))
	case "lang":
		arg := strings.TrimSpace(msg.CommandArguments())
		if arg == "" {
			m := tgbotapi.NewMessage(cid, "Current target language: "+r.lang(cid)+"\nUsage: /lang <code>, e.g. /lang ta")
			m.ReplyMarkup = makeLangKeyboard()
			r.sendMsg(m)
			return
		}
		code, err := r.setLang(cid, arg)
		if err != nil {
			r.send(cid, fmt.Sprintf("Unknown language %q", arg))
			return
		}
		r.send(cid, "Target language set to "+code)
	default:
		r.send(cid, "Unknown command. Try /start")
	}
}

func (r *Router) status() map[model.Slot]model.SlotStatus {
	if r.Models == nil {
		return nil
	}
	return r.Models.Status()
}

func (r *Router) translate(ctx context.Context, chatID int64, in pipeline.Input) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lang := r.lang(chatID)
	env, err := r.Pipeline.Run(ctx, in, lang)
	if err != nil {
		r.logger().Errorw("bot translate failed", "chat_id", chatID, "mode", in.Mode().String(), "error", err)
		r.SendError(chatID, err)
		return
	}
	r.send(chatID, formatEnvelope(env, lang))
}

func (r *Router) send(chatID int64, text string) {
	r.sendMsg(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) sendMsg(m tgbotapi.MessageConfig) {
	if _, err := r.Bot.Send(m); err != nil {
		r.logger().Warnw("telegram send failed", "chat_id", m.ChatID, "error", err)
	}
}

func (r *Router) SendError(chatID int64, err error) {
	r.send(chatID, fmt.Sprintf("Translation failed: %v", err))
}

func formatHealth(st map[model.Slot]model.SlotStatus) string {
	if len(st) == 0 {
		return "OK"
	}
	slots := make([]string, 0, len(st))
	for s := range st {
		slots = append(slots, string(s))
	}
	sort.Strings(slots)

	var b strings.Builder
	b.WriteString("OK")
	for _, s := range slots {
		v := st[model.Slot(s)]
		fmt.Fprintf(&b, "\n%s: %s", s, v.State)
		if v.Provider != "" {
			fmt.Fprintf(&b, " (%s)", v.Provider)
		}
		if v.Error != "" {
			fmt.Fprintf(&b, ": %s", v.Error)
		}
	}
	return b.String()
}
