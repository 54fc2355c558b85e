package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
)

func TestNewRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), "  ", "gemini-2.5-flash"); err == nil {
		t.Fatal("expected error for empty key")
	}
	if _, err := New(context.Background(), "key", ""); err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestFirstText(t *testing.T) {
	t.Parallel()

	if got := firstText(nil); got != "" {
		t.Fatalf("nil response: %q", got)
	}

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{
				genai.Blob{MIMEType: "image/png"},
				genai.Text(`{"text":"அகர"}`),
			}}},
		},
	}
	if got := firstText(resp); got != `{"text":"அகர"}` {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestEngineMetadata(t *testing.T) {
	t.Parallel()

	e := &Engine{Model: "gemini-2.5-flash"}
	if e.Name() != "gemini" || e.GetModel() != "gemini-2.5-flash" {
		t.Fatalf("unexpected metadata %s/%s", e.Name(), e.GetModel())
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close without client: %v", err)
	}
}

func TestRetryStopsWithoutTrailingBackoff(t *testing.T) {
	t.Parallel()

	boom := errors.New("unavailable")
	calls := 0
	start := time.Now()
	_, err := retry(context.Background(), 3, 50*time.Millisecond, func(context.Context) (string, error) {
		calls++
		return "", boom
	})
	elapsed := time.Since(start)

	if !errors.Is(err, boom) || calls != 3 {
		t.Fatalf("got %v after %d calls", err, calls)
	}
	// 50ms + 100ms between attempts; a third sleep would add 150ms
	if elapsed >= 290*time.Millisecond {
		t.Fatalf("slept after the last attempt: %v", elapsed)
	}
}

func TestRetryReturnsFirstSuccessAndEmptyIsFinal(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := retry(context.Background(), 3, time.Millisecond, func(context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("flaky")
		}
		return "ok", nil
	})
	if err != nil || got != "ok" || calls != 2 {
		t.Fatalf("got %q, %v after %d calls", got, err, calls)
	}

	calls = 0
	_, err = retry(context.Background(), 3, time.Millisecond, func(context.Context) (string, error) {
		calls++
		return "", errEmpty
	})
	if !errors.Is(err, errEmpty) || calls != 1 {
		t.Fatalf("empty answer retried: %v after %d calls", err, calls)
	}
}
