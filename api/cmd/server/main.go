package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"tamil-inscription/api/internal/config"
	"tamil-inscription/api/internal/handle"
	"tamil-inscription/api/internal/httpserver"
	"tamil-inscription/api/internal/logging"
	"tamil-inscription/api/internal/model"
	"tamil-inscription/api/internal/ocr/provider"
	"tamil-inscription/api/internal/pipeline"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		// logger is not up yet
		os.Stderr.WriteString("dotenv: " + err.Error() + "\n")
	}
	cfg := config.Load()

	log := logging.Must(cfg.LogLevel)
	if code := logging.ExitCode(log, "server stopped", run(cfg, log)); code != 0 {
		os.Exit(code)
	}
}

func run(cfg *config.Config, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := model.New(log.Named("models"),
		provider.Recognizer(*cfg),
		provider.Translator(*cfg),
		model.WithAcquireTimeout(cfg.AcquireTimeout),
	)
	defer func() {
		if err := reg.Close(); err != nil {
			log.Warnw("closing models", "error", err)
		}
	}()

	log.Infow("starting",
		"port", cfg.Port,
		"recognizer", cfg.RecognizerEngine,
		"translator", cfg.TranslatorEngine,
		"recognizer_engines", provider.RecognizerEngines(),
		"inference_failure", cfg.InferenceFailure,
	)
	if cfg.Warmup {
		go reg.Warmup(ctx)
	}

	pl := pipeline.New(reg,
		pipeline.WithLogger(log.Named("pipeline")),
		pipeline.WithStrictFailures(strings.EqualFold(cfg.InferenceFailure, config.FailureStrict)),
	)
	h := handle.New(pl, reg,
		handle.WithLogger(log.Named("http")),
		handle.WithMaxUpload(cfg.MaxUploadBytes),
		handle.WithTimeout(cfg.RequestTimeout),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.Root)
	mux.HandleFunc("/translate", h.Translate)
	mux.HandleFunc("/healthz", h.Healthz)

	srv := httpserver.New(":"+cfg.Port, mux, log.Named("access"), cfg.CORSAllowOrigins)
	return httpserver.Run(ctx, srv, log)
}
