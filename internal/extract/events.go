package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ppiankov/chronicler/internal/llm"
	"github.com/ppiankov/chronicler/internal/model"
)

// EventExtractor extracts events from articles through the generation gateway
type EventExtractor struct {
	gateway *llm.Gateway
}

// NewEventExtractor creates a new event extractor
func NewEventExtractor(gateway *llm.Gateway) *EventExtractor {
	return &EventExtractor{gateway: gateway}
}

// rawEvent mirrors the JSON shape the extraction prompt requests
type rawEvent struct {
	Description  string   `json:"description"`
	EventType    string   `json:"event_type"`
	ValidTime    string   `json:"valid_time"`
	Participants []string `json:"participants"`
	Location     string   `json:"location"`
}

// Extract returns the events described by the article. Unparseable
// model output yields zero events, not an error; only gateway-level
// failures propagate.
func (e *EventExtractor) Extract(ctx context.Context, article *model.Article) ([]model.Event, error) {
	prompt := fmt.Sprintf(llm.EventExtractionPrompt, articleText(article))

	response, err := e.gateway.Generate(ctx, prompt, llm.SystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("extract events: %w", err)
	}

	raw, err := llm.ExtractJSON(response)
	if err != nil {
		if errors.Is(err, llm.ErrNoStructuredData) {
			return []model.Event{}, nil
		}
		return nil, err
	}

	var rawEvents []rawEvent
	if err := json.Unmarshal(raw, &rawEvents); err != nil {
		return []model.Event{}, nil
	}

	pubDate := article.PubDate
	events := make([]model.Event, 0, len(rawEvents))
	for _, r := range rawEvents {
		eventType := r.EventType
		if eventType == "" {
			eventType = "unknown"
		}
		events = append(events, model.Event{
			ID:              uuid.New(),
			Description:     r.Description,
			EventType:       eventType,
			ValidTime:       parseTime(r.ValidTime),
			ObservationTime: &pubDate,
			Participants:    r.Participants,
			Location:        r.Location,
			SourceArticleID: article.ID,
			SourceURL:       article.WebURL,
			Confidence:      1.0,
		})
	}

	return events, nil
}
