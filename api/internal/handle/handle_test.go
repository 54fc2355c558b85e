package handle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"tamil-inscription/api/internal/model"
	"tamil-inscription/api/internal/ocr"
	"tamil-inscription/api/internal/pipeline"
)

var errOffline = errors.New("offline")

type failingTranslator struct{ err error }

func (f failingTranslator) Name() string { return "failing" }
func (f failingTranslator) Translate(ctx context.Context, _, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	<-ctx.Done()
	return "", ctx.Err()
}

func newHandle(t *testing.T, tr ocr.Translator, strict bool, opts ...Option) *Handle {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	reg := model.New(log,
		func(context.Context) (ocr.Recognizer, error) { return nil, errOffline },
		func(context.Context) (ocr.Translator, error) {
			if tr == nil {
				return nil, errOffline
			}
			return tr, nil
		})
	pl := pipeline.New(reg, pipeline.WithLogger(log), pipeline.WithStrictFailures(strict))
	return New(pl, reg, append([]Option{WithLogger(log)}, opts...)...)
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) pipeline.Envelope {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var env pipeline.Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "stone.jpg")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write(image)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestRoot(t *testing.T) {
	t.Parallel()

	h := newHandle(t, nil, false)
	rr := httptest.NewRecorder()
	h.Root(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	var got map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	if rr.Code != http.StatusOK || got["message"] != RootMessage {
		t.Fatalf("unexpected root response %d %v", rr.Code, got)
	}

	rr = httptest.NewRecorder()
	h.Root(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown path: status %d", rr.Code)
	}
}

func TestTranslate_MultipartImageUsesFallbackVerse(t *testing.T) {
	t.Parallel()

	h := newHandle(t, nil, false)
	body, ct := multipartBody(t, map[string]string{"target_lang": "fr"}, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	req := httptest.NewRequest(http.MethodPost, "/translate", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.Translate(rr, req)

	env := decodeEnvelope(t, rr)
	if env.OriginalText != pipeline.CanonicalVerse || env.TranslatedText != pipeline.CanonicalTranslation {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if env.SourceScript != pipeline.FallbackScriptLabel {
		t.Fatalf("source_script = %q", env.SourceScript)
	}
}

func TestTranslate_EmptyFilePartFallsBackToText(t *testing.T) {
	t.Parallel()

	h := newHandle(t, nil, false)
	body, ct := multipartBody(t, map[string]string{"text": "கல்வெட்டு"}, []byte{})
	req := httptest.NewRequest(http.MethodPost, "/translate", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.Translate(rr, req)

	env := decodeEnvelope(t, rr)
	if env.OriginalText != "கல்வெட்டு" || env.TranslatedText != pipeline.FallbackTranslation("கல்வெட்டு", "en") {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestTranslate_URLEncodedAndJSON(t *testing.T) {
	t.Parallel()

	h := newHandle(t, nil, false)

	form := url.Values{"text": {"hello"}, "target_lang": {"ta"}}
	req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.Translate(rr, req)
	if env := decodeEnvelope(t, rr); env.TranslatedText != "[Transformer NMT] Translated: hello into ta" {
		t.Fatalf("urlencoded: %+v", env)
	}

	img := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\n"))
	js, _ := json.Marshal(TranslateRequest{ImageB64: img})
	req = httptest.NewRequest(http.MethodPost, "/translate", bytes.NewReader(js))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	h.Translate(rr, req)
	if env := decodeEnvelope(t, rr); env.OriginalText != pipeline.CanonicalVerse {
		t.Fatalf("json image: %+v", env)
	}
}

func TestTranslate_WhitespaceTextAndLangKeptVerbatim(t *testing.T) {
	t.Parallel()

	h := newHandle(t, nil, false)
	body, ct := multipartBody(t, map[string]string{"text": "   ", "target_lang": " fr "}, nil)
	req := httptest.NewRequest(http.MethodPost, "/translate", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.Translate(rr, req)

	env := decodeEnvelope(t, rr)
	if env.OriginalText != "   " {
		t.Fatalf("original_text = %q", env.OriginalText)
	}
	if env.TranslatedText != pipeline.FallbackTranslation("   ", " fr ") {
		t.Fatalf("translated_text = %q", env.TranslatedText)
	}
}

func TestTranslate_Errors(t *testing.T) {
	t.Parallel()

	h := newHandle(t, nil, false, WithMaxUpload(64))

	cases := []struct {
		name   string
		method string
		ct     string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", "", http.StatusMethodNotAllowed},
		{"empty json", http.MethodPost, "application/json", `{}`, http.StatusBadRequest},
		{"empty text", http.MethodPost, "application/json", `{"text":""}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "application/json", `{"text":`, http.StatusBadRequest},
		{"bad base64", http.MethodPost, "application/json", `{"image_b64":"***"}`, http.StatusBadRequest},
		{"unsupported type", http.MethodPost, "text/xml", `<x/>`, http.StatusBadRequest},
		{"too large", http.MethodPost, "application/json", `{"text":"` + strings.Repeat("அ", 100) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/translate", strings.NewReader(tc.body))
			if tc.ct != "" {
				req.Header.Set("Content-Type", tc.ct)
			}
			rr := httptest.NewRecorder()
			h.Translate(rr, req)
			if rr.Code != tc.want {
				t.Fatalf("status %d, want %d: %s", rr.Code, tc.want, rr.Body.String())
			}
		})
	}
}

func TestTranslate_StrictFailureIs502(t *testing.T) {
	t.Parallel()

	h := newHandle(t, failingTranslator{err: errOffline}, true)
	req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader(`{"text":"கல்"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Translate(rr, req)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
}

func TestTranslate_DeadlineIs504(t *testing.T) {
	t.Parallel()

	h := newHandle(t, failingTranslator{}, true)
	req := httptest.NewRequest(http.MethodPost, "/translate?timeoutSec=1", strings.NewReader(`{"text":"கல்"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Translate(rr, req)
	if rr.Code != http.StatusGatewayTimeout {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
}

func TestDeadlinePrecedence(t *testing.T) {
	t.Parallel()

	h := newHandle(t, nil, false, WithTimeout(42e9))
	req := httptest.NewRequest(http.MethodPost, "/translate?timeoutSec=5", nil)
	req.Header.Set("X-Request-Timeout", "7")
	if got := h.deadline(req); got.Seconds() != 7 {
		t.Fatalf("header should win, got %v", got)
	}
	req.Header.Del("X-Request-Timeout")
	if got := h.deadline(req); got.Seconds() != 5 {
		t.Fatalf("query fallback, got %v", got)
	}
	req = httptest.NewRequest(http.MethodPost, "/translate?timeoutSec=-3", nil)
	if got := h.deadline(req); got.Seconds() != 42 {
		t.Fatalf("default, got %v", got)
	}
}

func TestHealthzReportsSlots(t *testing.T) {
	t.Parallel()

	h := newHandle(t, nil, false)
	rr := httptest.NewRecorder()
	h.Healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var got struct {
		Status string                      `json:"status"`
		Models map[string]model.SlotStatus `json:"models"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "ok" || len(got.Models) != 2 {
		t.Fatalf("unexpected healthz %+v", got)
	}
	if got.Models["recognizer"].State != model.StatePending {
		t.Fatalf("recognizer should be pending before first use: %+v", got.Models)
	}
}
