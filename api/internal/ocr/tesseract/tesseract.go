//go:build tesseract

package tesseract

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"tamil-inscription/api/internal/ocr"
)

// Available reports whether the binary was built with libtesseract.
const Available = true

// Engine is a local recognizer. gosseract clients are not safe for
// concurrent use, so every call gets its own client.
type Engine struct {
	Langs []string

	mu sync.Mutex
}

// New checks that every requested traineddata is installed.
func New(_ context.Context, langs []string) (*Engine, error) {
	if len(langs) == 0 {
		langs = DefaultLangs
	}
	have, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, fmt.Errorf("tesseract languages: %w", err)
	}
	for _, l := range langs {
		if !slices.Contains(have, l) {
			return nil, fmt.Errorf("tesseract: traineddata %q not installed", l)
		}
	}
	return &Engine{Langs: langs}, nil
}

func (e *Engine) Name() string { return "tesseract" }

func (e *Engine) Recognize(ctx context.Context, image []byte) (ocr.Recognition, error) {
	if len(image) == 0 {
		return ocr.Recognition{}, errors.New("tesseract recognize: empty image")
	}
	if err := ctx.Err(); err != nil {
		return ocr.Recognition{}, err
	}

	// libtesseract is CPU bound; one page at a time keeps memory flat.
	e.mu.Lock()
	defer e.mu.Unlock()

	c := gosseract.NewClient()
	defer c.Close()

	if err := c.SetLanguage(e.Langs...); err != nil {
		return ocr.Recognition{}, fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return ocr.Recognition{}, fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return ocr.Recognition{}, fmt.Errorf("recognize text: %w", err)
	}
	return ocr.Recognition{Text: strings.TrimSpace(text)}, nil
}
