package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/chronicler/internal/llm"
	"github.com/ppiankov/chronicler/internal/model"
)

// TopicExtractor identifies the topics an article covers. Topics are
// raw name/category/relevance tuples used for indexing, not first-class
// facts.
type TopicExtractor struct {
	gateway *llm.Gateway
}

// NewTopicExtractor creates a new topic extractor
func NewTopicExtractor(gateway *llm.Gateway) *TopicExtractor {
	return &TopicExtractor{gateway: gateway}
}

type rawTopic struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Relevance float64 `json:"relevance"`
}

// Extract returns the article's topic assertions
func (e *TopicExtractor) Extract(ctx context.Context, article *model.Article) ([]model.ExtractedTopic, error) {
	abstract := article.Abstract
	if abstract == "" {
		abstract = article.Snippet
	}
	prompt := fmt.Sprintf(llm.TopicExtractionPrompt, article.Headline.Main, abstract)

	response, err := e.gateway.Generate(ctx, prompt, llm.SystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("extract topics: %w", err)
	}

	raw, err := llm.ExtractJSON(response)
	if err != nil {
		if errors.Is(err, llm.ErrNoStructuredData) {
			return []model.ExtractedTopic{}, nil
		}
		return nil, err
	}

	var rawTopics []rawTopic
	if err := json.Unmarshal(raw, &rawTopics); err != nil {
		return []model.ExtractedTopic{}, nil
	}

	topics := make([]model.ExtractedTopic, 0, len(rawTopics))
	for _, r := range rawTopics {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		category := r.Category
		if category == "" {
			category = "other"
		}
		relevance := r.Relevance
		if relevance == 0 {
			relevance = 1.0
		}
		topics = append(topics, model.ExtractedTopic{
			Name:      name,
			Category:  category,
			Relevance: relevance,
		})
	}

	return topics, nil
}
