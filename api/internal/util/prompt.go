package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadPrompt returns <dir>/<provider>/<name>.txt when present, otherwise def.
// An empty dir falls back to PROMPT_DIR.
func LoadPrompt(dir, provider, name, def string) string {
	if dir == "" {
		dir = os.Getenv("PROMPT_DIR")
	}
	if dir == "" || provider == "" {
		return def
	}
	p := filepath.Join(dir, strings.ToLower(provider), fmt.Sprintf("%s.txt", name))
	if b, err := os.ReadFile(p); err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return s
		}
	}
	return def
}
