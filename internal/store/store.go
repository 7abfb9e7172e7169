package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ppiankov/chronicler/internal/model"
)

// Store is the file-backed knowledge store. Three collections live
// under the data directory: articles by id, extraction results by
// article id, and topic indices by slugified topic name.
//
// Merges into the same topic are serialized through a per-slug mutex,
// so concurrent batches can never interleave a read-merge-write cycle
// on one topic file.
type Store struct {
	articlesDir    string
	extractionsDir string
	topicsDir      string

	mu         sync.Mutex // guards topicLocks
	topicLocks map[string]*sync.Mutex
}

// New creates a store rooted at dataDir, creating the layout if needed
func New(dataDir string) (*Store, error) {
	s := &Store{
		articlesDir:    filepath.Join(dataDir, "articles"),
		extractionsDir: filepath.Join(dataDir, "extractions"),
		topicsDir:      filepath.Join(dataDir, "topics"),
		topicLocks:     make(map[string]*sync.Mutex),
	}

	for _, dir := range []string{s.articlesDir, s.extractionsDir, s.topicsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	return s, nil
}

// SaveArticle persists an article keyed by its id. Re-saving the same
// id replaces the previous copy.
func (s *Store) SaveArticle(article *model.Article) error {
	path := filepath.Join(s.articlesDir, article.ID.String()+".json")
	if err := writeJSONAtomic(path, article); err != nil {
		return fmt.Errorf("save article %s: %w", article.ID, err)
	}
	return nil
}

// Article retrieves an article by id, or nil if absent
func (s *Store) Article(id uuid.UUID) (*model.Article, error) {
	path := filepath.Join(s.articlesDir, id.String()+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read article %s: %w", id, err)
	}

	var article model.Article
	if err := json.Unmarshal(data, &article); err != nil {
		return nil, fmt.Errorf("decode article %s: %w", id, err)
	}
	return &article, nil
}

// SaveExtractionResult persists the result keyed by article id, then
// merges it into the topic index of every topic it references. Facts
// with no source article reference are rejected.
func (s *Store) SaveExtractionResult(result *model.ExtractionResult) error {
	if err := validateProvenance(result); err != nil {
		return err
	}

	path := filepath.Join(s.extractionsDir, result.ArticleID.String()+".json")
	if err := writeJSONAtomic(path, result); err != nil {
		return fmt.Errorf("save extraction %s: %w", result.ArticleID, err)
	}

	for _, topic := range result.Topics {
		if err := s.mergeTopic(topic.Name, topic.Category, result); err != nil {
			return fmt.Errorf("merge topic %q: %w", topic.Name, err)
		}
	}

	return nil
}

// ExtractionResult retrieves the extraction result for an article id,
// or nil if absent
func (s *Store) ExtractionResult(articleID uuid.UUID) (*model.ExtractionResult, error) {
	path := filepath.Join(s.extractionsDir, articleID.String()+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read extraction %s: %w", articleID, err)
	}

	var result model.ExtractionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode extraction %s: %w", articleID, err)
	}
	return &result, nil
}

// validateProvenance rejects facts with no traceable origin
func validateProvenance(result *model.ExtractionResult) error {
	if result.ArticleID == uuid.Nil {
		return fmt.Errorf("extraction result has no article id")
	}
	for _, e := range result.Events {
		if e.SourceArticleID == uuid.Nil {
			return fmt.Errorf("event %q has no source article", e.Description)
		}
	}
	for _, st := range result.Statements {
		if st.SourceArticleID == uuid.Nil {
			return fmt.Errorf("statement by %q has no source article", st.Speaker)
		}
	}
	return nil
}

// mergeTopic folds one extraction result into a topic index. The index
// is created lazily on first reference. Merges are idempotent: article
// membership and event/statement lists are keyed by id, so re-merging
// the same result changes nothing.
func (s *Store) mergeTopic(name, category string, result *model.ExtractionResult) error {
	slug := Slugify(name)

	lock := s.topicLock(slug)
	lock.Lock()
	defer lock.Unlock()

	index, err := s.readTopicIndex(slug)
	if err != nil {
		return err
	}
	if index == nil {
		index = &model.TopicIndex{
			Name:       name,
			Category:   category,
			ArticleIDs: []string{},
			Events:     []model.Event{},
			Statements: []model.Statement{},
		}
	}

	articleID := result.ArticleID.String()
	if !containsString(index.ArticleIDs, articleID) {
		index.ArticleIDs = append(index.ArticleIDs, articleID)
	}

	seenEvents := make(map[uuid.UUID]bool, len(index.Events))
	for _, e := range index.Events {
		seenEvents[e.ID] = true
	}
	for _, e := range result.Events {
		if !seenEvents[e.ID] {
			index.Events = append(index.Events, e)
		}
	}

	seenStatements := make(map[uuid.UUID]bool, len(index.Statements))
	for _, st := range index.Statements {
		seenStatements[st.ID] = true
	}
	for _, st := range result.Statements {
		if !seenStatements[st.ID] {
			index.Statements = append(index.Statements, st)
		}
	}

	path := filepath.Join(s.topicsDir, slug+".json")
	return writeJSONAtomic(path, index)
}

// topicLock returns the mutex serializing merges for one topic slug
func (s *Store) topicLock(slug string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.topicLocks[slug]
	if !ok {
		lock = &sync.Mutex{}
		s.topicLocks[slug] = lock
	}
	return lock
}

func (s *Store) readTopicIndex(slug string) (*model.TopicIndex, error) {
	path := filepath.Join(s.topicsDir, slug+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read topic index: %w", err)
	}

	var index model.TopicIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decode topic index: %w", err)
	}
	return &index, nil
}

// Slugify turns a topic name into a storage key: trimmed, path-unsafe
// and space characters replaced, truncated to at most 100 bytes on a
// rune boundary. Two names that slugify to the same key share one
// index; collisions are accepted as rare.
func Slugify(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		" ", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	slug := replacer.Replace(name)
	if len(slug) > 100 {
		cut := 100
		// Back off to a rune start so the cut never leaves a partial
		// multi-byte character in the key.
		for cut > 0 && !utf8.RuneStart(slug[cut]) {
			cut--
		}
		slug = slug[:cut]
	}
	return slug
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// writeJSONAtomic marshals v and writes it via temp file + rename, so
// a failed write never corrupts an existing file.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
