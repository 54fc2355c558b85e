package pipeline

import (
	"context"
	"strings"

	"tamil-inscription/api/internal/model"
	"tamil-inscription/api/internal/ocr"
	"tamil-inscription/api/internal/util"
)

type Translation struct {
	TranslatedText string
}

// Translate renders text in targetLang. The fallback handle knows only the
// canonical verse and answers everything else with a placeholder; it ignores
// targetLang for the canonical verse.
func Translate(ctx context.Context, text, targetLang string, h model.Handle[ocr.Translator]) (Translation, error) {
	tr, ok := h.Model()
	if !ok {
		if util.ContainsNormalized(text, CanonicalOpening) {
			return Translation{TranslatedText: CanonicalTranslation}, nil
		}
		return Translation{TranslatedText: FallbackTranslation(text, targetLang)}, nil
	}

	out, err := tr.Translate(ctx, text, targetLang)
	if err != nil {
		return Translation{}, &StageError{Stage: StageTranslation, Provider: tr.Name(), Err: err}
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return Translation{}, &StageError{Stage: StageTranslation, Provider: tr.Name(), Err: ErrEmptyOutput}
	}
	return Translation{TranslatedText: out}, nil
}
