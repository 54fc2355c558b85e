//go:build !tesseract

package tesseract

import (
	"context"
	"errors"

	"tamil-inscription/api/internal/ocr"
)

const Available = false

// ErrNotCompiled is returned when the binary was built without the tesseract tag.
var ErrNotCompiled = errors.New("tesseract support not compiled in (build with -tags tesseract)")

type Engine struct {
	Langs []string
}

func New(context.Context, []string) (*Engine, error) { return nil, ErrNotCompiled }

func (e *Engine) Name() string { return "tesseract" }

func (e *Engine) Recognize(context.Context, []byte) (ocr.Recognition, error) {
	return ocr.Recognition{}, ErrNotCompiled
}
