package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// ExtractJSON recovers a JSON value from free-form model output. The
// backend has only a soft contract to emit JSON, so the parse is
// tolerant: fenced code blocks are unwrapped first, then a direct
// parse is attempted, then the first array literal, then the first
// object literal. Returns ErrNoStructuredData when every strategy
// fails.
func ExtractJSON(text string) (json.RawMessage, error) {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	if raw, ok := tryParse(text); ok {
		return raw, nil
	}

	if start := strings.Index(text, "["); start >= 0 {
		if end := strings.LastIndex(text, "]"); end > start {
			if raw, ok := tryParse(text[start : end+1]); ok {
				return raw, nil
			}
		}
	}

	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			if raw, ok := tryParse(text[start : end+1]); ok {
				return raw, nil
			}
		}
	}

	return nil, ErrNoStructuredData
}

func tryParse(text string) (json.RawMessage, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, false
	}
	return json.RawMessage(trimmed), true
}
