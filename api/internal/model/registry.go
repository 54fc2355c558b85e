package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"tamil-inscription/api/internal/ocr"
)

const defaultAcquireTimeout = 60 * time.Second

// Loader constructs a real model. It may be slow and it may fail.
type Loader[T any] func(ctx context.Context) (T, error)

// AcquireError records why a slot fell back. It never reaches callers of
// Acquire; it is kept for logging and status.
type AcquireError struct {
	Slot Slot
	Err  error
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("acquire %s: %v", e.Slot, e.Err)
}

func (e *AcquireError) Unwrap() error { return e.Err }

// State of a slot as seen by Status.
type State string

const (
	StatePending  State = "pending"
	StateReal     State = "real"
	StateFallback State = "fallback"
)

type SlotStatus struct {
	State    State  `json:"state"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Error    string `json:"error,omitempty"`
}

type lazy[T any] struct {
	slot Slot
	load Loader[T]
	once sync.Once

	mu     sync.RWMutex
	handle Handle[T]
	state  State
	err    error
}

func newLazy[T any](slot Slot, load Loader[T]) *lazy[T] {
	return &lazy[T]{slot: slot, load: load, state: StatePending}
}

type loadResult[T any] struct {
	m   T
	err error
}

func (l *lazy[T]) get(ctx context.Context, timeout time.Duration, log *zap.SugaredLogger) Handle[T] {
	l.once.Do(func() {
		start := time.Now()
		m, err := l.construct(ctx, timeout, log)

		l.mu.Lock()
		defer l.mu.Unlock()
		if err != nil {
			l.err = &AcquireError{Slot: l.slot, Err: err}
			l.handle = Fallback[T](l.slot)
			l.state = StateFallback
			log.Warnw("model acquisition failed, using fallback",
				"slot", l.slot, "fallback", l.handle.String(), "error", err)
			return
		}
		l.handle = Real(l.slot, m)
		l.state = StateReal
		log.Infow("model acquired",
			"slot", l.slot, "provider", l.handle.String(), "model", modelName(m),
			"elapsed", time.Since(start))
	})

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.handle
}

// construct runs the loader detached from the caller's cancellation and
// bounded by timeout. A loader that outlives the timeout is abandoned; if it
// later succeeds its model is closed.
func (l *lazy[T]) construct(parent context.Context, timeout time.Duration, log *zap.SugaredLogger) (T, error) {
	var zero T
	if l.load == nil {
		return zero, errors.New("no loader configured")
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), timeout)
	defer cancel()

	done := make(chan loadResult[T], 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- loadResult[T]{err: fmt.Errorf("loader panic: %v", p)}
			}
		}()
		m, err := l.load(ctx)
		if err == nil && isNil(m) {
			err = errors.New("loader returned no model")
		}
		done <- loadResult[T]{m: m, err: err}
	}()

	select {
	case r := <-done:
		return r.m, r.err
	case <-ctx.Done():
		go func() {
			r := <-done
			if r.err == nil {
				if err := closeModel(r.m); err != nil {
					log.Debugw("close abandoned model", "slot", l.slot, "error", err)
				}
			}
		}()
		return zero, fmt.Errorf("timed out after %s: %w", timeout, ctx.Err())
	}
}

func (l *lazy[T]) status() SlotStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st := SlotStatus{State: l.state}
	if l.state != StatePending {
		st.Provider = l.handle.String()
		if m, ok := l.handle.Model(); ok {
			st.Model = modelName(m)
		}
	}
	if l.err != nil {
		st.Error = l.err.Error()
	}
	return st
}

func (l *lazy[T]) close() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if m, ok := l.handle.Model(); ok {
		return closeModel(m)
	}
	return nil
}

func isNil(v any) bool { return v == nil }

// modelName is the provider's model id, for engines that report one.
func modelName(m any) string {
	if g, ok := m.(interface{ GetModel() string }); ok {
		return g.GetModel()
	}
	return ""
}

func closeModel(m any) error {
	if c, ok := m.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Registry owns the recognizer and translator handles for the process
// lifetime.
type Registry struct {
	log     *zap.SugaredLogger
	timeout time.Duration

	recognizer *lazy[ocr.Recognizer]
	translator *lazy[ocr.Translator]
}

type Option func(*Registry)

// WithAcquireTimeout bounds each construction attempt.
func WithAcquireTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func New(log *zap.SugaredLogger, rec Loader[ocr.Recognizer], tr Loader[ocr.Translator], opts ...Option) *Registry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	r := &Registry{
		log:        log,
		timeout:    defaultAcquireTimeout,
		recognizer: newLazy(SlotRecognizer, rec),
		translator: newLazy(SlotTranslator, tr),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Recognizer returns the recognizer handle, acquiring it on first use.
func (r *Registry) Recognizer(ctx context.Context) Handle[ocr.Recognizer] {
	return r.recognizer.get(ctx, r.timeout, r.log)
}

// Translator returns the translator handle, acquiring it on first use.
func (r *Registry) Translator(ctx context.Context) Handle[ocr.Translator] {
	return r.translator.get(ctx, r.timeout, r.log)
}

// Acquire resolves a slot by name and reports whether a real model backs it.
func (r *Registry) Acquire(ctx context.Context, slot Slot) (bool, error) {
	switch slot {
	case SlotRecognizer:
		return !r.Recognizer(ctx).IsFallback(), nil
	case SlotTranslator:
		return !r.Translator(ctx).IsFallback(), nil
	default:
		return false, fmt.Errorf("unknown slot %q", slot)
	}
}

// Warmup acquires both slots concurrently.
func (r *Registry) Warmup(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); r.Recognizer(ctx) }()
	go func() { defer wg.Done(); r.Translator(ctx) }()
	wg.Wait()
}

func (r *Registry) Status() map[Slot]SlotStatus {
	return map[Slot]SlotStatus{
		SlotRecognizer: r.recognizer.status(),
		SlotTranslator: r.translator.status(),
	}
}

// Close releases real models that hold resources. Call at process exit.
func (r *Registry) Close() error {
	return errors.Join(r.recognizer.close(), r.translator.close())
}
