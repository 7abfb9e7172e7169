package model

import (
	"time"

	"github.com/google/uuid"
)

// Entity is a named entity (person, organization, location, etc.)
// extracted from an article. Entities are not deduplicated across
// articles.
type Entity struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	EntityType  string    `json:"entity_type"`
	Aliases     []string  `json:"aliases,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Event is something that happened, extracted from an article.
//
// Events carry two timelines: ValidTime is when the event actually
// occurred (nil if the article doesn't say), ObservationTime is when
// it was reported, defaulting to the source article's publish date.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	EventType   string    `json:"event_type"`

	ValidTime       *time.Time `json:"valid_time"`
	ObservationTime *time.Time `json:"observation_time"`

	Participants []string `json:"participants,omitempty"`
	Location     string   `json:"location,omitempty"`

	SourceArticleID uuid.UUID `json:"source_article_id"`
	SourceURL       string    `json:"source_url,omitempty"`
	Confidence      float64   `json:"confidence"`
}

// Stance classifies a speaker's position
type Stance string

const (
	StancePro     Stance = "pro"
	StanceCon     Stance = "con"
	StanceNeutral Stance = "neutral"
)

// Statement is a quote or paraphrased assertion attributed to a speaker,
// with the same dual-timeline fields as Event.
type Statement struct {
	ID          uuid.UUID `json:"id"`
	Content     string    `json:"content"`
	Speaker     string    `json:"speaker"`
	SpeakerRole string    `json:"speaker_role,omitempty"`

	Stance Stance `json:"stance,omitempty"`
	Target string `json:"target,omitempty"`

	ValidTime       *time.Time `json:"valid_time"`
	ObservationTime *time.Time `json:"observation_time"`

	SourceArticleID uuid.UUID `json:"source_article_id"`
	SourceURL       string    `json:"source_url,omitempty"`
}

// ExtractedTopic is a topic assertion made by extraction for one
// article. Topic names are free text; matching is by exact string
// after trimming, not semantic identity.
type ExtractedTopic struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Relevance float64 `json:"relevance"`
}

// ExtractionResult aggregates everything extracted from one article.
// It is created once per (article, extraction) pair and never mutated.
type ExtractionResult struct {
	ArticleID  uuid.UUID        `json:"article_id"`
	Events     []Event          `json:"events"`
	Statements []Statement      `json:"statements"`
	Entities   []Entity         `json:"entities"`
	Topics     []ExtractedTopic `json:"topics"`
}

// TopicIndex is the persisted aggregate for one topic name: the set of
// contributing articles plus the cumulative lists of events and
// statements merged into it. It grows monotonically and is never
// pruned.
type TopicIndex struct {
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	ArticleIDs []string    `json:"article_ids"`
	Events     []Event     `json:"events"`
	Statements []Statement `json:"statements"`
}

// TopicSummary describes a topic's coverage in the store
type TopicSummary struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	ArticleCount   int    `json:"article_count"`
	EventCount     int    `json:"event_count"`
	StatementCount int    `json:"statement_count"`
}

// Coverage is the ranking score used to order topic summaries
func (s TopicSummary) Coverage() int {
	return s.ArticleCount + s.EventCount + s.StatementCount
}

// TimelineItem is one entry in a topic timeline. Time is the resolved
// timestamp the item was sorted on: the chosen timeline field, falling
// back to observation time when the chosen field is unknown. Nil means
// neither timestamp is known.
type TimelineItem struct {
	Time        *time.Time `json:"time"`
	Kind        string     `json:"kind"` // "event" or "statement"
	Description string     `json:"description,omitempty"`
	Content     string     `json:"content,omitempty"`
	Speaker     string     `json:"speaker,omitempty"`
	Stance      Stance     `json:"stance,omitempty"`
	Location    string     `json:"location,omitempty"`
}

// StoreStats summarizes the knowledge store contents
type StoreStats struct {
	Articles    int `json:"articles"`
	Extractions int `json:"extractions"`
	Topics      int `json:"topics"`
	Events      int `json:"events"`
	Statements  int `json:"statements"`
}
