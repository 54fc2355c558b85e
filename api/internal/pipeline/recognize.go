package pipeline

import (
	"context"
	"strings"

	"tamil-inscription/api/internal/model"
	"tamil-inscription/api/internal/ocr"
)

type Recognition struct {
	ExtractedText string
	SourceScript  string
	// ModelScript is what the recognizer itself reported. It is not
	// surfaced in the response.
	ModelScript string
}

// Recognize extracts text from an inscription image. The fallback handle
// ignores the image and returns the canonical verse.
func Recognize(ctx context.Context, image []byte, h model.Handle[ocr.Recognizer]) (Recognition, error) {
	rec, ok := h.Model()
	if !ok {
		return Recognition{
			ExtractedText: CanonicalVerse,
			SourceScript:  FallbackScriptLabel,
		}, nil
	}

	out, err := rec.Recognize(ctx, image)
	if err != nil {
		return Recognition{}, &StageError{Stage: StageRecognition, Provider: rec.Name(), Err: err}
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return Recognition{}, &StageError{Stage: StageRecognition, Provider: rec.Name(), Err: ErrEmptyOutput}
	}
	return Recognition{
		ExtractedText: text,
		SourceScript:  DefaultScriptLabel,
		ModelScript:   out.Script,
	}, nil
}
