package handle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tamil-inscription/api/internal/pipeline"
	"tamil-inscription/api/internal/util"
)

// TranslateRequest is the JSON form of POST /translate.
type TranslateRequest struct {
	ImageB64   string `json:"image_b64,omitempty"`
	Text       string `json:"text,omitempty"`
	TargetLang string `json:"target_lang,omitempty"`
}

var errTooLarge = errors.New("upload too large")

func (h *Handle) Translate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST only"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	in, lang, err := h.readInput(r)
	if errors.Is(err, errTooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": fmt.Sprintf("upload exceeds %d bytes", h.maxUpload)})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.deadline(r))
	defer cancel()

	out, err := h.pl.Run(ctx, in, lang)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, out)
	case errors.Is(err, pipeline.ErrEmptyInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "provide an image or text"})
	case errors.Is(err, context.DeadlineExceeded):
		h.log.Warnw("translate timed out", "mode", in.Mode().String(), "error", err)
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": "translate timeout"})
	default:
		h.log.Errorw("translate failed", "mode", in.Mode().String(), "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "translate error: " + err.Error()})
	}
}

// deadline reads X-Request-Timeout or ?timeoutSec= (seconds).
func (h *Handle) deadline(r *http.Request) time.Duration {
	ts := r.Header.Get("X-Request-Timeout")
	if ts == "" {
		ts = r.URL.Query().Get("timeoutSec")
	}
	if v, _ := strconv.Atoi(strings.TrimSpace(ts)); v > 0 {
		return time.Duration(v) * time.Second
	}
	return h.timeout
}

func (h *Handle) readInput(r *http.Request) (pipeline.Input, string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "multipart/form-data":
		return readMultipart(r, h.maxUpload)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return pipeline.Input{}, "", bodyErr(err)
		}
		return fromFields(r.PostFormValue("image_b64"), r.PostFormValue("text"), r.PostFormValue("target_lang"))
	case "application/json", "":
		var req TranslateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return pipeline.Input{}, "", fmt.Errorf("bad json: %w", bodyErr(err))
		}
		return fromFields(req.ImageB64, req.Text, req.TargetLang)
	default:
		return pipeline.Input{}, "", fmt.Errorf("unsupported content type %q", ct)
	}
}

func readMultipart(r *http.Request, maxMemory int64) (pipeline.Input, string, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return pipeline.Input{}, "", bodyErr(err)
	}
	in := pipeline.Input{Text: r.FormValue("text")}
	lang := r.FormValue("target_lang")

	f, _, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return in, lang, nil
	case err != nil:
		return pipeline.Input{}, "", fmt.Errorf("bad image: %w", err)
	}
	defer f.Close()
	img, err := io.ReadAll(f)
	if err != nil {
		return pipeline.Input{}, "", bodyErr(err)
	}
	// an empty file part is the same as no image
	if len(img) > 0 {
		in.Image = img
	}
	return in, lang, nil
}

func fromFields(imageB64, text, lang string) (pipeline.Input, string, error) {
	in := pipeline.Input{Text: text}
	if strings.TrimSpace(imageB64) != "" {
		img, _, err := util.DecodeBase64MaybeDataURL(imageB64)
		if err != nil {
			return pipeline.Input{}, "", errors.New("bad image_b64")
		}
		in.Image = img
	}
	return in, lang, nil
}

func bodyErr(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return errTooLarge
	}
	return err
}
