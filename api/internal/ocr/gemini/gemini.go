package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"tamil-inscription/api/internal/ocr"
	"tamil-inscription/api/internal/util"
)

const attempts = 3

type Engine struct {
	Model     string
	PromptDir string

	cl *genai.Client
}

type Option func(*Engine)

func WithPromptDir(dir string) Option {
	return func(e *Engine) { e.PromptDir = dir }
}

// New opens a client and checks that the model exists. Both need network
// access, so this is where a missing key or an unreachable API shows up.
func New(ctx context.Context, apiKey, model string, opts ...Option) (*Engine, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("gemini: model is empty")
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if _, err := cl.GenerativeModel(model).Info(ctx); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("gemini model %q: %w", model, err)
	}

	e := &Engine{Model: model, cl: cl}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Close() error {
	if e.cl == nil {
		return nil
	}
	return e.cl.Close()
}

// --------------------------- RECOGNIZE ---------------------------

func (e *Engine) Recognize(ctx context.Context, image []byte) (ocr.Recognition, error) {
	if len(image) == 0 {
		return ocr.Recognition{}, errors.New("gemini recognize: empty image")
	}
	m := e.cl.GenerativeModel(e.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{
			genai.Text(util.LoadPrompt(e.PromptDir, e.Name(), "recognize", ocr.RecognizePrompt)),
		},
	}

	parts := []genai.Part{
		genai.Text(`Answer strictly as JSON {"text","script"}.`),
		genai.Blob{MIMEType: util.PickMIME("", "", image), Data: image},
	}

	txt, err := generate(ctx, m, parts)
	if err != nil {
		return ocr.Recognition{}, fmt.Errorf("gemini recognize: %w", err)
	}
	return ocr.ParseRecognition(txt), nil
}

// --------------------------- TRANSLATE ---------------------------

func (e *Engine) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini translate: empty text")
	}
	m := e.cl.GenerativeModel(e.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0.2),
		ResponseMIMEType: "text/plain",
	}
	sys := ocr.TranslateSystem(e.PromptDir, e.Name(), targetLang)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(sys)}}

	txt, err := generate(ctx, m, []genai.Part{genai.Text(text)})
	if err != nil {
		return "", fmt.Errorf("gemini translate: %w", err)
	}
	return strings.TrimSpace(util.StripCodeFences(txt)), nil
}

// generate retries transient failures with linear backoff.
func generate(ctx context.Context, m *genai.GenerativeModel, parts []genai.Part) (string, error) {
	return retry(ctx, attempts, backoff, func(ctx context.Context) (string, error) {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			return "", err
		}
		txt := firstText(resp)
		if txt == "" {
			return "", errEmpty
		}
		return txt, nil
	})
}

var errEmpty = errors.New("empty response")

const backoff = 300 * time.Millisecond

// retry calls fn up to n times, sleeping step*attempt between failures. An
// empty answer is final; there is no sleep after the last attempt.
func retry(ctx context.Context, n int, step time.Duration, fn func(context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= n; attempt++ {
		txt, err := fn(ctx)
		if err == nil || errors.Is(err, errEmpty) {
			return txt, err
		}
		lastErr = err
		if attempt == n {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * step):
		}
	}
	return "", lastErr
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
