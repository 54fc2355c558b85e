package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"tamil-inscription/api/internal/config"
	"tamil-inscription/api/internal/handle"
	"tamil-inscription/api/internal/httpserver"
	"tamil-inscription/api/internal/logging"
	"tamil-inscription/api/internal/model"
	"tamil-inscription/api/internal/ocr/provider"
	"tamil-inscription/api/internal/pipeline"
	"tamil-inscription/api/internal/telegram"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		os.Stderr.WriteString("dotenv: " + err.Error() + "\n")
	}
	cfg := config.Load()
	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8080"
	}

	log := logging.Must(cfg.LogLevel)
	if code := logging.ExitCode(log, "bot stopped", run(cfg, log)); code != 0 {
		os.Exit(code)
	}
}

func run(cfg *config.Config, log *zap.SugaredLogger) error {
	if cfg.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is empty")
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return err
	}
	bot.Debug = false
	log.Infow("telegram authorized", "bot", bot.Self.UserName)

	reg := model.New(log.Named("models"),
		provider.Recognizer(*cfg),
		provider.Translator(*cfg),
		model.WithAcquireTimeout(cfg.AcquireTimeout),
	)
	defer func() { _ = reg.Close() }()
	if cfg.Warmup {
		go reg.Warmup(ctx)
	}

	pl := pipeline.New(reg,
		pipeline.WithLogger(log.Named("pipeline")),
		pipeline.WithStrictFailures(strings.EqualFold(cfg.InferenceFailure, config.FailureStrict)),
	)
	r := &telegram.Router{
		Bot:      bot,
		Pipeline: pl,
		Models:   reg,
		Log:      log.Named("telegram"),
		Timeout:  cfg.RequestTimeout,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handle.New(pl, reg).Healthz)
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("telegram inscription bot"))
	})
	srv := httpserver.New("0.0.0.0:"+cfg.Port, mux, log.Named("access"), nil)

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		return startWebhookMode(ctx, srv, mux, bot, r, webhookURL, log)
	}
	return startPollingMode(ctx, srv, bot, r, log)
}

func startWebhookMode(ctx context.Context, srv *http.Server, mux *http.ServeMux, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string, log *zap.SugaredLogger) error {
	// secret path derived from the token
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		return err
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return err
	}

	mux.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		upd, err := bot.HandleUpdate(req)
		if err != nil {
			log.Warnw("bad webhook update", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		// answer fast, translation may take a while
		go r.HandleUpdate(*upd)
	})

	log.Infow("webhook mode", "path", path)
	return httpserver.Run(ctx, srv, log)
}

func startPollingMode(ctx context.Context, srv *http.Server, bot *tgbotapi.BotAPI, r *telegram.Router, log *zap.SugaredLogger) error {
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Warnw("delete webhook", "error", err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- httpserver.Run(ctx, srv, log) }()

	log.Infow("polling mode")
	runPolling(ctx, bot, r.HandleUpdate, log)
	return <-errCh
}
