package ocr

import (
	"context"
	"errors"
)

// ErrDisabled is returned by loaders for the "none" engine.
var ErrDisabled = errors.New("engine disabled")

// Recognition is what a recognizer reads off an inscription image.
type Recognition struct {
	Text string `json:"text"`
	// Script is the model's own classification of the writing system, if any.
	Script string `json:"script,omitempty"`
}

// Recognizer turns an inscription image into text.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (Recognition, error)
}

// Translator renders source-script text in a target language.
type Translator interface {
	Name() string
	Translate(ctx context.Context, text, targetLang string) (string, error)
}
