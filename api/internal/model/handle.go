// Package model holds the process-wide model handles for the recognizer and
// translator slots. Each slot is acquired lazily, exactly once, and degrades
// to a fallback marker when the real model cannot be constructed.
package model

import (
	"fmt"
	"strings"
)

// Slot names a position in the registry.
type Slot string

const (
	SlotRecognizer Slot = "recognizer"
	SlotTranslator Slot = "translator"
)

// Handle is either a real model or the fallback marker of its slot.
type Handle[T any] struct {
	slot  Slot
	model T
	real  bool
}

// Real wraps an acquired model.
func Real[T any](slot Slot, m T) Handle[T] {
	return Handle[T]{slot: slot, model: m, real: true}
}

// Fallback is the marker cached when acquisition failed.
func Fallback[T any](slot Slot) Handle[T] {
	return Handle[T]{slot: slot}
}

func (h Handle[T]) Slot() Slot       { return h.slot }
func (h Handle[T]) IsFallback() bool { return !h.real }

// Model returns the real model; ok is false for the fallback marker.
func (h Handle[T]) Model() (m T, ok bool) {
	if !h.real {
		return m, false
	}
	return h.model, true
}

// String renders RecognizerFallback / TranslatorFallback for the marker and
// the provider name for real handles.
func (h Handle[T]) String() string {
	if !h.real {
		s := string(h.slot)
		if s == "" {
			return "Fallback"
		}
		return strings.ToUpper(s[:1]) + s[1:] + "Fallback"
	}
	if n, ok := any(h.model).(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", h.model)
}
