package telegram

import (
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"tamil-inscription/api/internal/pipeline"
)

const (
	defaultDebounce = 1200 * time.Millisecond
	maxPixels       = 18_000_000
)

func (r *Router) lang(chatID int64) string {
	if v, ok := r.langs.Load(chatID); ok {
		if s, _ := v.(string); s != "" {
			return s
		}
	}
	return pipeline.DefaultTargetLang
}

// setLang stores the canonical BCP 47 form of code.
func (r *Router) setLang(chatID int64, code string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return "", err
	}
	if tag == language.Und {
		return "", errors.New("undetermined language")
	}
	s := tag.String()
	r.langs.Store(chatID, s)
	return s, nil
}

type photoBatch struct {
	ChatID int64
	Key    string // "grp:<mediaGroupID>" | "chat:<chatID>"

	mu     sync.Mutex
	images [][]byte
	timer  *time.Timer
	closed bool // set once the pages went to the pipeline
}
