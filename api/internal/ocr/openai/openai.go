package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tamil-inscription/api/internal/ocr"
	"tamil-inscription/api/internal/util"
)

const DefaultBaseURL = "https://api.openai.com/v1"

// Engine talks to any chat-completions compatible endpoint (OpenAI,
// DeepSeek, local gateways). Only vision-capable models can recognize.
type Engine struct {
	APIKey    string
	Model     string
	BaseURL   string
	PromptDir string
	httpc     *http.Client
}

type Option func(*Engine)

func WithBaseURL(u string) Option {
	return func(e *Engine) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			e.BaseURL = u
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) {
		if c != nil {
			e.httpc = c
		}
	}
}

func WithPromptDir(dir string) Option {
	return func(e *Engine) { e.PromptDir = dir }
}

// New validates the key and checks that the model is served.
func New(ctx context.Context, key, model string, opts ...Option) (*Engine, error) {
	e := &Engine{
		APIKey:  strings.TrimSpace(key),
		Model:   strings.TrimSpace(model),
		BaseURL: DefaultBaseURL,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(e)
	}
	if e.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is empty")
	}
	if e.Model == "" {
		return nil, errors.New("openai: model is empty")
	}
	if err := e.checkModel(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) checkModel(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.BaseURL+"/models/"+url.PathEscape(e.Model), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+e.APIKey)
	resp, err := e.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("openai model check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("openai model check %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}
	return nil
}

// ----- Recognize -----

func (e *Engine) Recognize(ctx context.Context, image []byte) (ocr.Recognition, error) {
	if len(image) == 0 {
		return ocr.Recognition{}, errors.New("openai recognize: empty image")
	}
	dataURL := util.MakeDataURL(util.PickMIME("", "", image), base64.StdEncoding.EncodeToString(image))

	body := map[string]any{
		"model": e.Model,
		"messages": []any{
			map[string]any{"role": "system", "content": util.LoadPrompt(e.PromptDir, "openai", "recognize", ocr.RecognizePrompt)},
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": `Answer strictly as JSON {"text","script"}.`},
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": dataURL, "detail": "high"}},
				},
			},
		},
		"temperature":     0,
		"response_format": map[string]any{"type": "json_object"},
	}

	out, err := e.chat(ctx, body)
	if err != nil {
		return ocr.Recognition{}, fmt.Errorf("openai recognize: %w", err)
	}
	return ocr.ParseRecognition(out), nil
}

// ----- Translate -----

func (e *Engine) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("openai translate: empty text")
	}
	system := ocr.TranslateSystem(e.PromptDir, "openai", targetLang)

	body := map[string]any{
		"model": e.Model,
		"messages": []any{
			map[string]any{"role": "system", "content": system},
			map[string]any{"role": "user", "content": text},
		},
		"temperature": 0.2,
	}

	out, err := e.chat(ctx, body)
	if err != nil {
		return "", fmt.Errorf("openai translate: %w", err)
	}
	return strings.TrimSpace(util.StripCodeFences(out)), nil
}

func (e *Engine) chat(ctx context.Context, body map[string]any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", err
	}
	if len(raw.Choices) == 0 {
		return "", errors.New("empty response")
	}
	return raw.Choices[0].Message.Content, nil
}
