package util

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/text/unicode/norm"
)

// ContainsNormalized reports whether s contains substr after both are put in
// NFC. Tamil vowel signs have composed and decomposed spellings.
func ContainsNormalized(s, substr string) bool {
	return strings.Contains(norm.NFC.String(s), norm.NFC.String(substr))
}

// LanguageName renders a BCP 47 code as an English language name for model
// prompts ("ta" -> "Tamil"). Unparseable codes are returned as given.
func LanguageName(code string) string {
	code = strings.TrimSpace(code)
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}
