package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/chronicler/internal/model"
)

// Topics returns all topic names, sorted
func (s *Store) Topics() ([]string, error) {
	indices, err := s.allTopicIndices()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(indices))
	for _, index := range indices {
		names = append(names, index.Name)
	}
	sort.Strings(names)
	return names, nil
}

// TopicData returns the full index for a topic name, or nil if absent
func (s *Store) TopicData(name string) (*model.TopicIndex, error) {
	return s.readTopicIndex(Slugify(name))
}

// EventsForTopic returns all events merged into a topic
func (s *Store) EventsForTopic(name string) ([]model.Event, error) {
	index, err := s.TopicData(name)
	if err != nil || index == nil {
		return nil, err
	}
	return index.Events, nil
}

// StatementsForTopic returns all statements merged into a topic
func (s *Store) StatementsForTopic(name string) ([]model.Statement, error) {
	index, err := s.TopicData(name)
	if err != nil || index == nil {
		return nil, err
	}
	return index.Statements, nil
}

// TopicsSummary describes every topic, sorted descending by coverage
// (articles + events + statements). This ranking is the default
// presentation order for which topics matter.
func (s *Store) TopicsSummary() ([]model.TopicSummary, error) {
	indices, err := s.allTopicIndices()
	if err != nil {
		return nil, err
	}

	summaries := make([]model.TopicSummary, 0, len(indices))
	for _, index := range indices {
		summaries = append(summaries, model.TopicSummary{
			Name:           index.Name,
			Category:       index.Category,
			ArticleCount:   len(index.ArticleIDs),
			EventCount:     len(index.Events),
			StatementCount: len(index.Statements),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Coverage() > summaries[j].Coverage()
	})
	return summaries, nil
}

// Timeline merges a topic's events and statements into one list sorted
// ascending by the chosen timestamp. useValidTime selects valid time
// (when things happened) over observation time (when they were
// reported); either way a missing chosen field falls back to
// observation time, and items with no resolvable time sort first.
func (s *Store) Timeline(name string, useValidTime bool) ([]model.TimelineItem, error) {
	index, err := s.TopicData(name)
	if err != nil {
		return nil, err
	}
	if index == nil {
		return []model.TimelineItem{}, nil
	}

	items := make([]model.TimelineItem, 0, len(index.Events)+len(index.Statements))

	for _, e := range index.Events {
		items = append(items, model.TimelineItem{
			Time:        resolveTime(e.ValidTime, e.ObservationTime, useValidTime),
			Kind:        "event",
			Description: e.Description,
			Location:    e.Location,
		})
	}

	for _, st := range index.Statements {
		items = append(items, model.TimelineItem{
			Time:    resolveTime(st.ValidTime, st.ObservationTime, useValidTime),
			Kind:    "statement",
			Content: st.Content,
			Speaker: st.Speaker,
			Stance:  st.Stance,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return timeLess(items[i].Time, items[j].Time)
	})
	return items, nil
}

// resolveTime picks the timeline field, falling back to observation
// time when valid time is requested but unknown
func resolveTime(validTime, observationTime *time.Time, useValidTime bool) *time.Time {
	if useValidTime && validTime != nil {
		return validTime
	}
	return observationTime
}

// timeLess orders timestamps with nil (unknown) first
func timeLess(a, b *time.Time) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return a.Before(*b)
}

// Stats summarizes store contents. Article/extraction/topic counts are
// file counts; event/statement counts are summed across topic indices,
// so a fact appearing under several topics is counted once per topic.
func (s *Store) Stats() (*model.StoreStats, error) {
	articles, err := countJSONFiles(s.articlesDir)
	if err != nil {
		return nil, err
	}
	extractions, err := countJSONFiles(s.extractionsDir)
	if err != nil {
		return nil, err
	}

	indices, err := s.allTopicIndices()
	if err != nil {
		return nil, err
	}

	stats := &model.StoreStats{
		Articles:    articles,
		Extractions: extractions,
		Topics:      len(indices),
	}
	for _, index := range indices {
		stats.Events += len(index.Events)
		stats.Statements += len(index.Statements)
	}
	return stats, nil
}

func (s *Store) allTopicIndices() ([]*model.TopicIndex, error) {
	entries, err := os.ReadDir(s.topicsDir)
	if err != nil {
		return nil, fmt.Errorf("read topics dir: %w", err)
	}

	var indices []*model.TopicIndex
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ".json")
		index, err := s.readTopicIndex(slug)
		if err != nil {
			return nil, err
		}
		if index != nil {
			indices = append(indices, index)
		}
	}
	return indices, nil
}

func countJSONFiles(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("count files in %s: %w", dir, err)
	}
	return len(matches), nil
}
