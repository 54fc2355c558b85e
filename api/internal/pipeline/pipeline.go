// Package pipeline runs an inscription through recognition and translation
// and assembles the response envelope.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tamil-inscription/api/internal/model"
	"tamil-inscription/api/internal/ocr"
)

// Models hands out the recognizer and translator handles. *model.Registry
// satisfies it.
type Models interface {
	Recognizer(ctx context.Context) model.Handle[ocr.Recognizer]
	Translator(ctx context.Context) model.Handle[ocr.Translator]
}

// Envelope is the response body of /translate.
type Envelope struct {
	OriginalText   string   `json:"original_text"`
	TranslatedText string   `json:"translated_text"`
	SourceScript   string   `json:"source_script"`
	Confidence     float64  `json:"confidence"`
	TechniquesUsed []string `json:"techniques_used"`
}

type Pipeline struct {
	models Models
	log    *zap.SugaredLogger
	strict bool
}

type Option func(*Pipeline)

// WithStrictFailures surfaces real-model call failures as *StageError
// instead of degrading to the deterministic path.
func WithStrictFailures(strict bool) Option {
	return func(p *Pipeline) { p.strict = strict }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

func New(models Models, opts ...Option) *Pipeline {
	p := &Pipeline{models: models, log: zap.NewNop().Sugar()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run recognises (image mode) or adopts (text mode) the source text,
// translates it into targetLang ("en" when empty) and builds the envelope.
func (p *Pipeline) Run(ctx context.Context, in Input, targetLang string) (Envelope, error) {
	mode := in.Mode()
	if mode == ModeEmpty {
		return Envelope{}, ErrEmptyInput
	}
	// the code is passed on as sent; only a missing one gets the default
	lang := targetLang
	if lang == "" {
		lang = DefaultTargetLang
	}
	start := time.Now()

	var rec Recognition
	if mode == ModeImage {
		h := p.models.Recognizer(ctx)
		r, err := Recognize(ctx, in.Image, h)
		if err != nil {
			if p.strict {
				return Envelope{}, err
			}
			p.log.Errorw("recognition failed, using fallback", "recognizer", h.String(), "error", err)
			r, _ = Recognize(ctx, in.Image, model.Fallback[ocr.Recognizer](model.SlotRecognizer))
		}
		if r.ModelScript != "" {
			p.log.Debugw("recognizer reported script", "script", r.ModelScript)
		}
		rec = r
	} else {
		rec = Recognition{ExtractedText: in.Text, SourceScript: DefaultScriptLabel}
	}

	th := p.models.Translator(ctx)
	tr, err := Translate(ctx, rec.ExtractedText, lang, th)
	if err != nil {
		if p.strict {
			return Envelope{}, err
		}
		p.log.Errorw("translation failed, using fallback", "translator", th.String(), "error", err)
		tr, _ = Translate(ctx, rec.ExtractedText, lang, model.Fallback[ocr.Translator](model.SlotTranslator))
	}

	p.log.Debugw("pipeline done",
		"mode", mode.String(), "target_lang", lang,
		"translator", th.String(), "elapsed", time.Since(start))

	return Envelope{
		OriginalText:   rec.ExtractedText,
		TranslatedText: tr.TranslatedText,
		SourceScript:   rec.SourceScript,
		Confidence:     Confidence,
		TechniquesUsed: Techniques(),
	}, nil
}
