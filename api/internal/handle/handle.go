package handle

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tamil-inscription/api/internal/model"
	"tamil-inscription/api/internal/pipeline"
)

const RootMessage = "Ancient Tamil Inscription Translation API (CNN-RNN + Transformer)"

// StatusReporter exposes per-slot model state. *model.Registry satisfies it.
type StatusReporter interface {
	Status() map[model.Slot]model.SlotStatus
}

type Handle struct {
	pl        *pipeline.Pipeline
	models    StatusReporter
	log       *zap.SugaredLogger
	maxUpload int64
	timeout   time.Duration
}

type Option func(*Handle)

func WithLogger(log *zap.SugaredLogger) Option {
	return func(h *Handle) {
		if log != nil {
			h.log = log
		}
	}
}

func WithMaxUpload(n int64) Option {
	return func(h *Handle) {
		if n > 0 {
			h.maxUpload = n
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(h *Handle) {
		if d > 0 {
			h.timeout = d
		}
	}
}

func New(pl *pipeline.Pipeline, models StatusReporter, opts ...Option) *Handle {
	h := &Handle{
		pl:        pl,
		models:    models,
		log:       zap.NewNop().Sugar(),
		maxUpload: 20 << 20,
		timeout:   180 * time.Second,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Root answers the liveness banner. Unknown paths fall through here on the
// default mux, so they get a 404 instead.
func (h *Handle) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "GET only"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": RootMessage})
}

func (h *Handle) Healthz(w http.ResponseWriter, r *http.Request) {
	var models map[model.Slot]model.SlotStatus
	if h.models != nil {
		models = h.models.Status()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "models": models})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
