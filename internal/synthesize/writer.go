package synthesize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/chronicler/internal/llm"
	"github.com/ppiankov/chronicler/internal/model"
	"github.com/ppiankov/chronicler/internal/store"
)

// Writer generates Wikipedia-style articles from a topic's accumulated
// facts. It only reads the store, never mutates it.
type Writer struct {
	gateway *llm.Gateway
	store   *store.Store
}

// NewWriter creates an article writer
func NewWriter(gateway *llm.Gateway, s *store.Store) *Writer {
	return &Writer{gateway: gateway, store: s}
}

// GenerateArticle synthesizes an article for a topic, followed by the
// dual-timeline section.
func (w *Writer) GenerateArticle(ctx context.Context, topic string) (string, error) {
	events, err := w.store.EventsForTopic(topic)
	if err != nil {
		return "", fmt.Errorf("load events: %w", err)
	}
	statements, err := w.store.StatementsForTopic(topic)
	if err != nil {
		return "", fmt.Errorf("load statements: %w", err)
	}

	eventsJSON, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal events: %w", err)
	}
	statementsJSON, err := json.MarshalIndent(statements, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal statements: %w", err)
	}

	prompt := fmt.Sprintf(llm.ArticleSynthesisPrompt, topic, eventsJSON, statementsJSON)
	article, err := w.gateway.Generate(ctx, prompt, llm.SystemPrompt)
	if err != nil {
		return "", fmt.Errorf("synthesize article: %w", err)
	}

	timeline, err := w.timelineSection(topic)
	if err != nil {
		return "", err
	}
	if timeline != "" {
		article += "\n\n" + timeline
	}

	return article, nil
}

// GenerateWithPerspectives appends a perspectives section grouping
// statements by stance.
func (w *Writer) GenerateWithPerspectives(ctx context.Context, topic string) (string, error) {
	article, err := w.GenerateArticle(ctx, topic)
	if err != nil {
		return "", err
	}

	statements, err := w.store.StatementsForTopic(topic)
	if err != nil {
		return "", fmt.Errorf("load statements: %w", err)
	}
	if len(statements) == 0 {
		return article, nil
	}

	byStance := map[model.Stance][]model.Statement{}
	for _, st := range statements {
		byStance[st.Stance] = append(byStance[st.Stance], st)
	}

	var sb strings.Builder
	sb.WriteString("\n\n## Perspectives\n\n")
	writeGroup(&sb, "### Supporting Views\n", byStance[model.StancePro])
	writeGroup(&sb, "\n### Opposing Views\n", byStance[model.StanceCon])
	writeGroup(&sb, "\n### Neutral Analysis\n", byStance[model.StanceNeutral])

	return article + sb.String(), nil
}

func writeGroup(sb *strings.Builder, header string, statements []model.Statement) {
	if len(statements) == 0 {
		return
	}
	sb.WriteString(header)
	for i, st := range statements {
		if i >= 3 {
			break
		}
		fmt.Fprintf(sb, "- **%s**: %q\n", st.Speaker, st.Content)
	}
}

// timelineSection renders both timelines as markdown: once by valid
// time (what happened when) and once by observation time (what we
// learned when).
func (w *Writer) timelineSection(topic string) (string, error) {
	validItems, err := w.store.Timeline(topic, true)
	if err != nil {
		return "", fmt.Errorf("build valid timeline: %w", err)
	}
	obsItems, err := w.store.Timeline(topic, false)
	if err != nil {
		return "", fmt.Errorf("build observation timeline: %w", err)
	}

	if len(validItems) == 0 && len(obsItems) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("## Timeline\n\n")

	sb.WriteString("### When Events Occurred\n")
	sb.WriteString("*Chronological order of when events actually happened*\n\n")
	writeTimelineItems(&sb, validItems, "")

	sb.WriteString("\n### When We Learned\n")
	sb.WriteString("*Order in which information was reported*\n\n")
	writeTimelineItems(&sb, obsItems, " (reported)")

	return sb.String(), nil
}

func writeTimelineItems(sb *strings.Builder, items []model.TimelineItem, suffix string) {
	for i, item := range items {
		if i >= 10 {
			break
		}
		dateStr := "Unknown date"
		if item.Time != nil {
			dateStr = item.Time.Format("2006-01-02")
		}
		desc := item.Description
		if desc == "" {
			desc = item.Content
		}
		fmt.Fprintf(sb, "- **%s**%s: %s\n", dateStr, suffix, desc)
	}
}

// TimelineJS is the export structure consumed by TimelineJS
type TimelineJS struct {
	Title  TimelineJSSlide   `json:"title"`
	Events []TimelineJSSlide `json:"events"`
}

// TimelineJSSlide is one slide in a TimelineJS export
type TimelineJSSlide struct {
	StartDate *TimelineJSDate `json:"start_date,omitempty"`
	Text      TimelineJSText  `json:"text"`
}

// TimelineJSDate is a TimelineJS date triple
type TimelineJSDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// TimelineJSText is a TimelineJS headline/body pair
type TimelineJSText struct {
	Headline string `json:"headline"`
	Text     string `json:"text"`
}

// ExportTimelineJS exports a topic's valid-time timeline in TimelineJS
// format. Items with no resolvable time are skipped.
func (w *Writer) ExportTimelineJS(topic string) (*TimelineJS, error) {
	items, err := w.store.Timeline(topic, true)
	if err != nil {
		return nil, fmt.Errorf("build timeline: %w", err)
	}

	out := &TimelineJS{
		Title: TimelineJSSlide{
			Text: TimelineJSText{
				Headline: topic,
				Text:     fmt.Sprintf("Timeline of events related to %s", topic),
			},
		},
		Events: []TimelineJSSlide{},
	}

	for _, item := range items {
		if item.Time == nil {
			continue
		}

		text := item.Description
		if text == "" {
			text = item.Content
		}
		headline := text
		if len(headline) > 100 {
			headline = headline[:100]
		}
		if item.Kind == "statement" {
			speaker := item.Speaker
			if speaker == "" {
				speaker = "Unknown"
			}
			headline = fmt.Sprintf("%s: %s", speaker, headline)
		}

		out.Events = append(out.Events, TimelineJSSlide{
			StartDate: &TimelineJSDate{
				Year:  item.Time.Year(),
				Month: int(item.Time.Month()),
				Day:   item.Time.Day(),
			},
			Text: TimelineJSText{
				Headline: headline,
				Text:     text,
			},
		})
	}

	return out, nil
}
