package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Failure policies for real-model errors at call time.
const (
	FailureFallback = "fallback"
	FailureStrict   = "strict"
)

type Config struct {
	Port     string
	LogLevel string

	// gemini | openai | tesseract | none
	RecognizerEngine string
	TranslatorEngine string

	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	TesseractLangs []string

	AcquireTimeout   time.Duration
	Warmup           bool
	RequestTimeout   time.Duration
	MaxUploadBytes   int64
	InferenceFailure string

	CORSAllowOrigins []string
	PromptDir        string

	TelegramBotToken string
	WebhookURL       string
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	// plain seconds
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func getInt64(k string, def int64) int64 {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getBool(k string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getList(k string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '+' || r == ' ' }) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// LoadDotEnv reads .env files into the process environment. Variables that
// are already set win. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func Load() *Config {
	geminiKey := getEnv("GEMINI_API_KEY", "")
	defEngine := "none"
	if geminiKey != "" {
		defEngine = "gemini"
	}

	failure := strings.ToLower(getEnv("INFERENCE_FAILURE", FailureFallback))
	if failure != FailureStrict {
		failure = FailureFallback
	}

	return &Config{
		Port:     getEnv("PORT", "8000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RecognizerEngine: strings.ToLower(getEnv("RECOGNIZER_ENGINE", defEngine)),
		TranslatorEngine: strings.ToLower(getEnv("TRANSLATOR_ENGINE", defEngine)),

		GeminiAPIKey:  geminiKey,
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: strings.TrimRight(getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),

		TesseractLangs: getList("TESSERACT_LANGS", []string{"tam", "eng"}),

		AcquireTimeout:   getDuration("MODEL_ACQUIRE_TIMEOUT", 60*time.Second),
		Warmup:           getBool("MODEL_WARMUP", false),
		RequestTimeout:   getDuration("REQUEST_TIMEOUT", 180*time.Second),
		MaxUploadBytes:   getInt64("MAX_UPLOAD_BYTES", 20<<20),
		InferenceFailure: failure,

		CORSAllowOrigins: getList("CORS_ALLOW_ORIGINS", []string{"*"}),
		PromptDir:        getEnv("PROMPT_DIR", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
	}
}
