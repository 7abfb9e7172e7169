package synthesize

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ppiankov/chronicler/internal/llm"
)

// Outline is the structured plan for a topic article, generated before
// (or instead of) full synthesis.
type Outline struct {
	Title    string           `json:"title"`
	Lead     string           `json:"lead"`
	Sections []OutlineSection `json:"sections"`
}

// OutlineSection is one planned section of an article
type OutlineSection struct {
	Title        string `json:"title"`
	ContentNotes string `json:"content_notes"`
}

// GenerateOutline produces a structured article outline for a topic
// from its accumulated events and statements.
func (w *Writer) GenerateOutline(ctx context.Context, topic string) (*Outline, error) {
	events, err := w.store.EventsForTopic(topic)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	statements, err := w.store.StatementsForTopic(topic)
	if err != nil {
		return nil, fmt.Errorf("load statements: %w", err)
	}

	eventsJSON, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal events: %w", err)
	}
	statementsJSON, err := json.MarshalIndent(statements, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal statements: %w", err)
	}

	prompt := fmt.Sprintf(llm.OutlineGenerationPrompt, topic, eventsJSON, statementsJSON)
	response, err := w.gateway.Generate(ctx, prompt, llm.SystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("generate outline: %w", err)
	}

	raw, err := llm.ExtractJSON(response)
	if err != nil {
		return nil, fmt.Errorf("outline response: %w", err)
	}

	var outline Outline
	if err := json.Unmarshal(raw, &outline); err != nil {
		return nil, fmt.Errorf("decode outline: %w", err)
	}
	if outline.Title == "" {
		outline.Title = topic
	}

	return &outline, nil
}
