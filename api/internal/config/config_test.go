package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "GEMINI_API_KEY", "RECOGNIZER_ENGINE", "TRANSLATOR_ENGINE",
		"TESSERACT_LANGS", "MODEL_ACQUIRE_TIMEOUT", "INFERENCE_FAILURE",
		"CORS_ALLOW_ORIGINS", "OPENAI_BASE_URL", "MAX_UPLOAD_BYTES",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Port != "8000" {
		t.Fatalf("expected port 8000, got %s", cfg.Port)
	}
	if cfg.RecognizerEngine != "none" || cfg.TranslatorEngine != "none" {
		t.Fatalf("expected engines none without keys, got %s/%s", cfg.RecognizerEngine, cfg.TranslatorEngine)
	}
	if len(cfg.TesseractLangs) != 2 || cfg.TesseractLangs[0] != "tam" {
		t.Fatalf("unexpected tesseract langs: %v", cfg.TesseractLangs)
	}
	if cfg.AcquireTimeout != 60*time.Second {
		t.Fatalf("unexpected acquire timeout: %v", cfg.AcquireTimeout)
	}
	if cfg.InferenceFailure != FailureFallback {
		t.Fatalf("expected fallback policy, got %s", cfg.InferenceFailure)
	}
	if len(cfg.CORSAllowOrigins) != 1 || cfg.CORSAllowOrigins[0] != "*" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSAllowOrigins)
	}
	if cfg.OpenAIBaseURL != "https://api.openai.com/v1" {
		t.Fatalf("unexpected base url: %s", cfg.OpenAIBaseURL)
	}
	if cfg.MaxUploadBytes != 20<<20 {
		t.Fatalf("unexpected upload limit: %d", cfg.MaxUploadBytes)
	}
}

func TestLoadGeminiKeySelectsGemini(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("RECOGNIZER_ENGINE", "")
	t.Setenv("TRANSLATOR_ENGINE", "OpenAI")

	cfg := Load()
	if cfg.RecognizerEngine != "gemini" {
		t.Fatalf("expected gemini recognizer, got %s", cfg.RecognizerEngine)
	}
	if cfg.TranslatorEngine != "openai" {
		t.Fatalf("expected lowercased openai translator, got %s", cfg.TranslatorEngine)
	}
}

func TestLoadParsesValues(t *testing.T) {
	t.Setenv("MODEL_ACQUIRE_TIMEOUT", "15")
	t.Setenv("REQUEST_TIMEOUT", "2m")
	t.Setenv("TESSERACT_LANGS", "tam+san")
	t.Setenv("INFERENCE_FAILURE", "STRICT")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MODEL_WARMUP", "true")

	cfg := Load()
	if cfg.AcquireTimeout != 15*time.Second {
		t.Fatalf("expected 15s, got %v", cfg.AcquireTimeout)
	}
	if cfg.RequestTimeout != 2*time.Minute {
		t.Fatalf("expected 2m, got %v", cfg.RequestTimeout)
	}
	if len(cfg.TesseractLangs) != 2 || cfg.TesseractLangs[1] != "san" {
		t.Fatalf("unexpected langs: %v", cfg.TesseractLangs)
	}
	if cfg.InferenceFailure != FailureStrict {
		t.Fatalf("expected strict, got %s", cfg.InferenceFailure)
	}
	if len(cfg.CORSAllowOrigins) != 2 {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowOrigins)
	}
	if !cfg.Warmup {
		t.Fatal("expected warmup enabled")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TAMIL_DOTENV_CHECK=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("TAMIL_DOTENV_CHECK", "")
	os.Unsetenv("TAMIL_DOTENV_CHECK")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("TAMIL_DOTENV_CHECK"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}
}
