package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ppiankov/chronicler/internal/llm"
	"github.com/ppiankov/chronicler/internal/model"
)

// StanceDetector classifies a single statement's stance with a
// dedicated prompt. The statement extractor already asks for stance
// inline; this is the finer-grained pass for statements where that
// came back unset or needs re-checking against explicit context.
type StanceDetector struct {
	gateway *llm.Gateway
}

// NewStanceDetector creates a stance detector
func NewStanceDetector(gateway *llm.Gateway) *StanceDetector {
	return &StanceDetector{gateway: gateway}
}

// StanceResult is one stance classification
type StanceResult struct {
	Stance     model.Stance `json:"stance"`
	Confidence float64      `json:"confidence"`
	Reasoning  string       `json:"reasoning,omitempty"`
}

type rawStance struct {
	Stance     string  `json:"stance"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Detect classifies the speaker's stance in the statement.
// Unstructured model output maps to neutral with zero confidence
// rather than failing the caller.
func (d *StanceDetector) Detect(ctx context.Context, statement, speaker, topicContext string) (*StanceResult, error) {
	prompt := fmt.Sprintf(llm.StanceDetectionPrompt, statement, speaker, topicContext)

	response, err := d.gateway.Generate(ctx, prompt, llm.SystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("detect stance: %w", err)
	}

	raw, err := llm.ExtractJSON(response)
	if err != nil {
		if errors.Is(err, llm.ErrNoStructuredData) {
			return &StanceResult{Stance: model.StanceNeutral}, nil
		}
		return nil, err
	}

	var r rawStance
	if err := json.Unmarshal(raw, &r); err != nil {
		return &StanceResult{Stance: model.StanceNeutral}, nil
	}

	stance := parseStance(r.Stance)
	if stance == "" {
		stance = model.StanceNeutral
	}

	return &StanceResult{
		Stance:     stance,
		Confidence: r.Confidence,
		Reasoning:  r.Reasoning,
	}, nil
}
