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

// EntityExtractor extracts named entities from articles
type EntityExtractor struct {
	gateway *llm.Gateway
}

// NewEntityExtractor creates a new entity extractor
func NewEntityExtractor(gateway *llm.Gateway) *EntityExtractor {
	return &EntityExtractor{gateway: gateway}
}

type rawEntity struct {
	Name        string `json:"name"`
	EntityType  string `json:"entity_type"`
	Description string `json:"description"`
}

// Extract returns the named entities mentioned in the article
func (e *EntityExtractor) Extract(ctx context.Context, article *model.Article) ([]model.Entity, error) {
	prompt := fmt.Sprintf(llm.EntityExtractionPrompt, articleText(article))

	response, err := e.gateway.Generate(ctx, prompt, llm.SystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("extract entities: %w", err)
	}

	raw, err := llm.ExtractJSON(response)
	if err != nil {
		if errors.Is(err, llm.ErrNoStructuredData) {
			return []model.Entity{}, nil
		}
		return nil, err
	}

	var rawEntities []rawEntity
	if err := json.Unmarshal(raw, &rawEntities); err != nil {
		return []model.Entity{}, nil
	}

	entities := make([]model.Entity, 0, len(rawEntities))
	for _, r := range rawEntities {
		entityType := r.EntityType
		if entityType == "" {
			entityType = "unknown"
		}
		entities = append(entities, model.Entity{
			ID:          uuid.New(),
			Name:        r.Name,
			EntityType:  entityType,
			Description: r.Description,
		})
	}

	return entities, nil
}
