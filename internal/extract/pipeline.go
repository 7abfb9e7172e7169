package extract

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/chronicler/internal/llm"
	"github.com/ppiankov/chronicler/internal/model"
)

// Pipeline orchestrates the four extractors for one or many articles.
// All extractors share a single gateway, so the backend rate ceiling
// holds across every concurrent call site.
type Pipeline struct {
	events     *EventExtractor
	statements *StatementExtractor
	entities   *EntityExtractor
	topics     *TopicExtractor
}

// NewPipeline creates an extraction pipeline over the given gateway
func NewPipeline(gateway *llm.Gateway) *Pipeline {
	return &Pipeline{
		events:     NewEventExtractor(gateway),
		statements: NewStatementExtractor(gateway),
		entities:   NewEntityExtractor(gateway),
		topics:     NewTopicExtractor(gateway),
	}
}

// Extract runs every extractor against one article and aggregates the
// outcome. With an empty topicOverride, topics are auto-discovered
// concurrently with entity extraction; otherwise the override is
// asserted as the article's single topic. Events and statements are
// always extracted concurrently. Any extractor failure fails the whole
// call: there is no partial result.
func (p *Pipeline) Extract(ctx context.Context, article *model.Article, topicOverride string) (*model.ExtractionResult, error) {
	var (
		entities []model.Entity
		topics   []model.ExtractedTopic
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entities, err = p.entities.Extract(gctx, article)
		return err
	})
	if topicOverride == "" {
		g.Go(func() error {
			var err error
			topics, err = p.topics.Extract(gctx, article)
			return err
		})
	} else {
		topics = []model.ExtractedTopic{{
			Name:      topicOverride,
			Category:  "other",
			Relevance: 1.0,
		}}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		events     []model.Event
		statements []model.Statement
	)

	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = p.events.Extract(gctx, article)
		return err
	})
	g.Go(func() error {
		var err error
		statements, err = p.statements.Extract(gctx, article)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.ExtractionResult{
		ArticleID:  article.ID,
		Events:     events,
		Statements: statements,
		Entities:   entities,
		Topics:     topics,
	}, nil
}

// ExtractBatch extracts from multiple articles with at most
// maxConcurrent in flight. Output order follows input order regardless
// of completion order. The first failure aborts the batch and cancels
// in-flight siblings via the group context.
func (p *Pipeline) ExtractBatch(ctx context.Context, articles []*model.Article, topicOverride string, maxConcurrent int) ([]*model.ExtractionResult, error) {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}

	results := make([]*model.ExtractionResult, len(articles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, article := range articles {
		i, article := i, article
		g.Go(func() error {
			result, err := p.Extract(gctx, article, topicOverride)
			if err != nil {
				return fmt.Errorf("article %s: %w", article.ID, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// BatchItem pairs one article's extraction outcome with its error, for
// callers that opt in to best-effort batches.
type BatchItem struct {
	ArticleID string
	Result    *model.ExtractionResult
	Err       error
}

// ExtractBatchResults is the best-effort variant of ExtractBatch: every
// article is attempted, failures are reported per item, and the batch
// itself only fails if the context is cancelled.
func (p *Pipeline) ExtractBatchResults(ctx context.Context, articles []*model.Article, topicOverride string, maxConcurrent int) ([]BatchItem, error) {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}

	items := make([]BatchItem, len(articles))

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrent)
	for i, article := range articles {
		i, article := i, article
		g.Go(func() error {
			result, err := p.Extract(ctx, article, topicOverride)
			items[i] = BatchItem{
				ArticleID: article.ID.String(),
				Result:    result,
				Err:       err,
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return items, err
	}
	return items, nil
}
