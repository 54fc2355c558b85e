package ocr

import (
	"encoding/json"
	"fmt"
	"strings"

	"tamil-inscription/api/internal/util"
)

const RecognizePrompt = `You are an epigraphy assistant reading a PHOTO of an ancient Tamil inscription
(stone, copper plate or palm leaf) written in Tamil-Brahmi, Vatteluttu, Grantha or early Tamil script.
1) Transcribe the inscription into modern Tamil Unicode, line by line, keeping the original order.
2) Do not translate, explain or complete damaged parts; mark unreadable characters with [?].
3) Name the script you see.
Return STRICT JSON only:
{"text": string, "script": string}`

// TranslatePrompt is the system instruction for translating into language.
func TranslatePrompt(language string) string {
	return fmt.Sprintf(`You translate Old and Classical Tamil (including inscriptional Tamil) into %s.
Render the meaning faithfully and in plain prose. Keep proper names, keep [?] markers as they are.
Return only the translation, without notes, quotes or transliteration.`, language)
}

// TranslateSystem picks the translation instruction for provider. An override
// file may carry one %s for the language name.
func TranslateSystem(promptDir, provider, targetLang string) string {
	lang := util.LanguageName(targetLang)
	if custom := util.LoadPrompt(promptDir, provider, "translate", ""); custom != "" {
		if strings.Count(custom, "%s") == 1 {
			return fmt.Sprintf(custom, lang)
		}
		return custom + "\nTarget language: " + lang + "."
	}
	return TranslatePrompt(lang)
}

// ParseRecognition reads the {"text","script"} answer. A model that ignored
// the JSON instruction gets its whole answer taken as text.
func ParseRecognition(raw string) Recognition {
	raw = util.StripCodeFences(raw)
	var r Recognition
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Recognition{Text: strings.TrimSpace(raw)}
	}
	r.Text = strings.TrimSpace(r.Text)
	r.Script = strings.TrimSpace(r.Script)
	return r
}
