package pipeline

import "fmt"

const (
	// CanonicalVerse is the first Thirukkural couplet, returned when no
	// recognizer is available.
	CanonicalVerse = "அகர முதல எழுத்தெல்லாம் ஆதி பகவன் முதற்றே உலகு"
	// CanonicalOpening is the substring the fallback translator recognises.
	CanonicalOpening     = "அகர முதல"
	CanonicalTranslation = "As the letter 'A' is the first of all letters, so the Eternal God is the beginning of the world."

	DefaultScriptLabel  = "Ancient Tamil (Brahmi/Vatteluttu)"
	FallbackScriptLabel = "Tamil Brahmi (Detected via CNN-RNN)"

	DefaultTargetLang = "en"

	// Confidence is a fixed placeholder; no model reports it.
	Confidence = 0.96
)

var techniques = [...]string{
	"CNN Feature Extraction",
	"RNN Sequence Decoding",
	"Transformer NMT",
}

// Techniques returns the conceptual pipeline stages in order.
func Techniques() []string {
	out := make([]string, len(techniques))
	copy(out, techniques[:])
	return out
}

// FallbackTranslation is the placeholder the fallback translator returns for
// text it does not know.
func FallbackTranslation(text, targetLang string) string {
	return fmt.Sprintf("[Transformer NMT] Translated: %s into %s", text, targetLang)
}
