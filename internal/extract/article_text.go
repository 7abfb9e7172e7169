package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/chronicler/internal/model"
)

// articleText builds the text block fed to extraction prompts from the
// fields the source actually provides (full text is rarely available).
func articleText(article *model.Article) string {
	parts := []string{fmt.Sprintf("Headline: %s", article.Headline.Main)}
	if article.Abstract != "" {
		parts = append(parts, fmt.Sprintf("Abstract: %s", article.Abstract))
	}
	if article.LeadParagraph != "" {
		parts = append(parts, fmt.Sprintf("Lead: %s", article.LeadParagraph))
	}
	return strings.Join(parts, "\n\n")
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// parseTime parses a model-supplied timestamp. A nil result means
// "unknown valid time" and is never an error: downstream consumers
// fall back to the always-present observation time.
func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "unknown") {
		return nil
	}
	// Normalize a bare trailing Z to an explicit UTC offset
	if strings.HasSuffix(s, "Z") && !strings.Contains(s, "+") {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			u := t.UTC()
			return &u
		}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}
