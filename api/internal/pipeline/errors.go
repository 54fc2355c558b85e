package pipeline

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when neither an image nor text was supplied.
var ErrEmptyInput = errors.New("either image or text is required")

// ErrEmptyOutput marks a real model that answered with nothing.
var ErrEmptyOutput = errors.New("model returned empty output")

type Stage string

const (
	StageRecognition Stage = "recognition"
	StageTranslation Stage = "translation"
)

// StageError is a real-model failure at call time.
type StageError struct {
	Stage    Stage
	Provider string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Stage, e.Provider, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
