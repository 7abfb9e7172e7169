package synthesize

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/chronicler/internal/llm"
	"github.com/ppiankov/chronicler/internal/model"
	"github.com/ppiankov/chronicler/internal/store"
)

// cannedProvider returns a fixed article body and records prompts
type cannedProvider struct {
	mu      sync.Mutex
	prompts []string
	body    string
}

func (p *cannedProvider) Name() string                         { return "canned" }
func (p *cannedProvider) IsAvailable(ctx context.Context) bool { return true }

func (p *cannedProvider) Complete(ctx context.Context, prompt, systemPrompt string) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()
	return p.body, nil
}

func newTestWriter(t *testing.T, body string) (*Writer, *store.Store, *cannedProvider) {
	t.Helper()
	s, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	provider := &cannedProvider{body: body}
	gateway := llm.NewGateway(provider, llm.Config{RequestsPerMinute: 60000, MaxRetries: 1})
	return NewWriter(gateway, s), s, provider
}

func seedTopic(t *testing.T, s *store.Store, topic string) *model.ExtractionResult {
	t.Helper()
	articleID := uuid.New()
	occurred := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	observed := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)

	result := &model.ExtractionResult{
		ArticleID: articleID,
		Events: []model.Event{
			{
				ID:              uuid.New(),
				Description:     "Council passed the reform",
				EventType:       "policy_change",
				ValidTime:       &occurred,
				ObservationTime: &observed,
				SourceArticleID: articleID,
				Confidence:      1.0,
			},
			{
				ID:              uuid.New(),
				Description:     "Undated zoning dispute",
				EventType:       "legal_action",
				SourceArticleID: articleID,
				Confidence:      1.0,
			},
		},
		Statements: []model.Statement{
			{
				ID:              uuid.New(),
				Content:         "This reform is essential",
				Speaker:         "Mayor Reyes",
				Stance:          model.StancePro,
				ObservationTime: &earlier,
				SourceArticleID: articleID,
			},
			{
				ID:              uuid.New(),
				Content:         "It will ruin the neighborhood",
				Speaker:         "Resident Group",
				Stance:          model.StanceCon,
				ObservationTime: &observed,
				SourceArticleID: articleID,
			},
		},
		Topics: []model.ExtractedTopic{{Name: topic, Category: "politics", Relevance: 1.0}},
	}
	if err := s.SaveExtractionResult(result); err != nil {
		t.Fatalf("SaveExtractionResult failed: %v", err)
	}
	return result
}

func TestWriter_GenerateArticle(t *testing.T) {
	writer, s, provider := newTestWriter(t, "## Zoning Reform\n\nThe council acted.")
	seedTopic(t, s, "Zoning Reform")

	article, err := writer.GenerateArticle(context.Background(), "Zoning Reform")
	if err != nil {
		t.Fatalf("GenerateArticle failed: %v", err)
	}

	if !strings.HasPrefix(article, "## Zoning Reform") {
		t.Errorf("article should start with the synthesized body:\n%s", article)
	}
	if !strings.Contains(article, "## Timeline") {
		t.Error("article should append the timeline section")
	}
	if !strings.Contains(article, "### When Events Occurred") ||
		!strings.Contains(article, "### When We Learned") {
		t.Error("timeline should carry both orderings")
	}
	if !strings.Contains(article, "**2024-03-01**: Council passed the reform") {
		t.Errorf("valid-time entry missing:\n%s", article)
	}
	if !strings.Contains(article, "**2024-03-10** (reported): Council passed the reform") {
		t.Errorf("observation-time entry missing:\n%s", article)
	}
	if !strings.Contains(article, "**Unknown date**: Undated zoning dispute") {
		t.Errorf("undated entry missing:\n%s", article)
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()
	if len(provider.prompts) != 1 {
		t.Fatalf("expected 1 synthesis call, got %d", len(provider.prompts))
	}
	if !strings.Contains(provider.prompts[0], "Council passed the reform") {
		t.Error("prompt should carry the topic's events")
	}
	if !strings.Contains(provider.prompts[0], "This reform is essential") {
		t.Error("prompt should carry the topic's statements")
	}
}

func TestWriter_GenerateWithPerspectives(t *testing.T) {
	writer, s, _ := newTestWriter(t, "body")
	seedTopic(t, s, "Zoning Reform")

	article, err := writer.GenerateWithPerspectives(context.Background(), "Zoning Reform")
	if err != nil {
		t.Fatalf("GenerateWithPerspectives failed: %v", err)
	}

	if !strings.Contains(article, "## Perspectives") {
		t.Error("expected perspectives section")
	}
	if !strings.Contains(article, "### Supporting Views") ||
		!strings.Contains(article, `**Mayor Reyes**: "This reform is essential"`) {
		t.Errorf("pro statements missing:\n%s", article)
	}
	if !strings.Contains(article, "### Opposing Views") ||
		!strings.Contains(article, `**Resident Group**: "It will ruin the neighborhood"`) {
		t.Errorf("con statements missing:\n%s", article)
	}
	if strings.Contains(article, "### Neutral Analysis") {
		t.Error("empty stance group should be omitted")
	}
}

func TestWriter_GenerateArticleEmptyTopic(t *testing.T) {
	writer, _, _ := newTestWriter(t, "body with no facts")

	article, err := writer.GenerateArticle(context.Background(), "Unknown Topic")
	if err != nil {
		t.Fatalf("GenerateArticle failed: %v", err)
	}
	if article != "body with no facts" {
		t.Errorf("no timeline should be appended for an empty topic:\n%s", article)
	}
}

func TestWriter_GenerateOutline(t *testing.T) {
	body := "```json\n" + `{
		"title": "Zoning Reform in Springfield",
		"lead": "A contested overhaul of city zoning.",
		"sections": [
			{"title": "Background", "content_notes": "prior zoning rules"},
			{"title": "The Vote", "content_notes": "council vote and reactions"}
		]
	}` + "\n```"
	writer, s, provider := newTestWriter(t, body)
	seedTopic(t, s, "Zoning Reform")

	outline, err := writer.GenerateOutline(context.Background(), "Zoning Reform")
	if err != nil {
		t.Fatalf("GenerateOutline failed: %v", err)
	}

	if outline.Title != "Zoning Reform in Springfield" {
		t.Errorf("unexpected title %q", outline.Title)
	}
	if len(outline.Sections) != 2 || outline.Sections[1].Title != "The Vote" {
		t.Errorf("unexpected sections: %+v", outline.Sections)
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()
	if len(provider.prompts) != 1 || !strings.Contains(provider.prompts[0], "Council passed the reform") {
		t.Error("outline prompt should carry the topic's facts")
	}
}

func TestWriter_GenerateOutlineDefaultsTitle(t *testing.T) {
	writer, s, _ := newTestWriter(t, `{"lead": "x", "sections": []}`)
	seedTopic(t, s, "Zoning Reform")

	outline, err := writer.GenerateOutline(context.Background(), "Zoning Reform")
	if err != nil {
		t.Fatalf("GenerateOutline failed: %v", err)
	}
	if outline.Title != "Zoning Reform" {
		t.Errorf("missing title should default to the topic, got %q", outline.Title)
	}
}

func TestWriter_ExportTimelineJS(t *testing.T) {
	writer, s, _ := newTestWriter(t, "")
	seedTopic(t, s, "Zoning Reform")

	export, err := writer.ExportTimelineJS("Zoning Reform")
	if err != nil {
		t.Fatalf("ExportTimelineJS failed: %v", err)
	}

	if export.Title.Text.Headline != "Zoning Reform" {
		t.Errorf("unexpected title: %+v", export.Title)
	}

	// The undated event is skipped; two statements and one event remain
	if len(export.Events) != 3 {
		t.Fatalf("expected 3 slides, got %d", len(export.Events))
	}
	for _, slide := range export.Events {
		if slide.StartDate == nil {
			t.Errorf("exported slide missing date: %+v", slide)
		}
	}

	first := export.Events[0]
	if first.StartDate.Year != 2024 || first.StartDate.Month != 2 || first.StartDate.Day != 20 {
		t.Errorf("slides should follow timeline order, got %+v", first.StartDate)
	}
	if first.Text.Headline != "Mayor Reyes: This reform is essential" {
		t.Errorf("statement headline should name the speaker, got %q", first.Text.Headline)
	}
}

func TestWriter_ExportTimelineJSLongHeadline(t *testing.T) {
	writer, s, _ := newTestWriter(t, "")

	articleID := uuid.New()
	when := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	long := strings.Repeat("a very long description ", 10)
	result := &model.ExtractionResult{
		ArticleID: articleID,
		Events: []model.Event{{
			ID:              uuid.New(),
			Description:     long,
			ValidTime:       &when,
			ObservationTime: &when,
			SourceArticleID: articleID,
		}},
		Topics: []model.ExtractedTopic{{Name: "Long", Category: "other", Relevance: 1.0}},
	}
	if err := s.SaveExtractionResult(result); err != nil {
		t.Fatalf("SaveExtractionResult failed: %v", err)
	}

	export, err := writer.ExportTimelineJS("Long")
	if err != nil {
		t.Fatalf("ExportTimelineJS failed: %v", err)
	}
	if len(export.Events) != 1 {
		t.Fatalf("expected 1 slide, got %d", len(export.Events))
	}
	if len(export.Events[0].Text.Headline) != 100 {
		t.Errorf("headline should be capped at 100 bytes, got %d", len(export.Events[0].Text.Headline))
	}
	if export.Events[0].Text.Text != long {
		t.Error("body text should keep the full description")
	}
}
