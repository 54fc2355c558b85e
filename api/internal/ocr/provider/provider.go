// Package provider maps configured engine names to model loaders.
package provider

import (
	"context"
	"fmt"
	"strings"

	"tamil-inscription/api/internal/config"
	"tamil-inscription/api/internal/model"
	"tamil-inscription/api/internal/ocr"
	"tamil-inscription/api/internal/ocr/gemini"
	"tamil-inscription/api/internal/ocr/openai"
	"tamil-inscription/api/internal/ocr/tesseract"
)

const (
	Gemini    = "gemini"
	OpenAI    = "openai"
	Tesseract = "tesseract"
	None      = "none"
)

// RecognizerEngines lists the recognition engines this binary can build.
// Tesseract needs the tesseract build tag.
func RecognizerEngines() []string {
	names := []string{Gemini, OpenAI}
	if tesseract.Available {
		names = append(names, Tesseract)
	}
	return append(names, None)
}

func normalize(name string) string {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "gpt", "deepseek":
		return OpenAI
	case "":
		return None
	default:
		return n
	}
}

// Recognizer returns the loader for the configured recognition engine.
// Errors surface on first acquisition, never here.
func Recognizer(cfg config.Config) model.Loader[ocr.Recognizer] {
	name := normalize(cfg.RecognizerEngine)
	return func(ctx context.Context) (ocr.Recognizer, error) {
		switch name {
		case Gemini:
			e, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, gemini.WithPromptDir(cfg.PromptDir))
			if err != nil {
				return nil, err
			}
			return e, nil
		case OpenAI:
			e, err := openai.New(ctx, cfg.OpenAIAPIKey, cfg.OpenAIModel,
				openai.WithBaseURL(cfg.OpenAIBaseURL), openai.WithPromptDir(cfg.PromptDir))
			if err != nil {
				return nil, err
			}
			return e, nil
		case Tesseract:
			e, err := tesseract.New(ctx, cfg.TesseractLangs)
			if err != nil {
				return nil, err
			}
			return e, nil
		case None:
			return nil, ocr.ErrDisabled
		default:
			return nil, fmt.Errorf("unknown recognizer engine %q (have %s)", name, strings.Join(RecognizerEngines(), ", "))
		}
	}
}

// Translator returns the loader for the configured translation engine.
func Translator(cfg config.Config) model.Loader[ocr.Translator] {
	name := normalize(cfg.TranslatorEngine)
	return func(ctx context.Context) (ocr.Translator, error) {
		switch name {
		case Gemini:
			e, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, gemini.WithPromptDir(cfg.PromptDir))
			if err != nil {
				return nil, err
			}
			return e, nil
		case OpenAI:
			e, err := openai.New(ctx, cfg.OpenAIAPIKey, cfg.OpenAIModel,
				openai.WithBaseURL(cfg.OpenAIBaseURL), openai.WithPromptDir(cfg.PromptDir))
			if err != nil {
				return nil, err
			}
			return e, nil
		case Tesseract:
			return nil, fmt.Errorf("tesseract cannot translate")
		case None:
			return nil, ocr.ErrDisabled
		default:
			return nil, fmt.Errorf("unknown translator engine %q", name)
		}
	}
}
