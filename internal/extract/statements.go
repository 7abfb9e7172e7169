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

// StatementExtractor extracts statements and quotes from articles
type StatementExtractor struct {
	gateway *llm.Gateway
}

// NewStatementExtractor creates a new statement extractor
func NewStatementExtractor(gateway *llm.Gateway) *StatementExtractor {
	return &StatementExtractor{gateway: gateway}
}

type rawStatement struct {
	Content     string `json:"content"`
	Speaker     string `json:"speaker"`
	SpeakerRole string `json:"speaker_role"`
	Stance      string `json:"stance"`
	Target      string `json:"target"`
}

// Extract returns the notable statements in the article
func (e *StatementExtractor) Extract(ctx context.Context, article *model.Article) ([]model.Statement, error) {
	prompt := fmt.Sprintf(llm.StatementExtractionPrompt, articleText(article))

	response, err := e.gateway.Generate(ctx, prompt, llm.SystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("extract statements: %w", err)
	}

	raw, err := llm.ExtractJSON(response)
	if err != nil {
		if errors.Is(err, llm.ErrNoStructuredData) {
			return []model.Statement{}, nil
		}
		return nil, err
	}

	var rawStatements []rawStatement
	if err := json.Unmarshal(raw, &rawStatements); err != nil {
		return []model.Statement{}, nil
	}

	pubDate := article.PubDate
	statements := make([]model.Statement, 0, len(rawStatements))
	for _, r := range rawStatements {
		speaker := r.Speaker
		if speaker == "" {
			speaker = "Unknown"
		}
		statements = append(statements, model.Statement{
			ID:              uuid.New(),
			Content:         r.Content,
			Speaker:         speaker,
			SpeakerRole:     r.SpeakerRole,
			Stance:          parseStance(r.Stance),
			Target:          r.Target,
			ObservationTime: &pubDate,
			SourceArticleID: article.ID,
			SourceURL:       article.WebURL,
		})
	}

	return statements, nil
}

// parseStance maps free-text stance onto the known values; anything
// unrecognized stays unset
func parseStance(s string) model.Stance {
	switch model.Stance(s) {
	case model.StancePro, model.StanceCon, model.StanceNeutral:
		return model.Stance(s)
	default:
		return ""
	}
}
