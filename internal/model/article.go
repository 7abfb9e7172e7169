package model

import (
	"time"

	"github.com/google/uuid"
)

// Headline holds the headline variants of an article
type Headline struct {
	Main          string `json:"main"`
	PrintHeadline string `json:"print_headline,omitempty"`
}

// Byline holds attribution information for an article
type Byline struct {
	Original     string `json:"original,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// Keyword is a tag assigned to an article by the source
type Keyword struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Rank  int    `json:"rank"`
	Major string `json:"major"`
}

// Article is one immutable unit of input text. Once saved to the store
// it is never mutated; PubDate is the observation time inherited by
// facts extracted from it.
type Article struct {
	ID            uuid.UUID `json:"id"`
	WebURL        string    `json:"web_url"`
	Snippet       string    `json:"snippet,omitempty"`
	LeadParagraph string    `json:"lead_paragraph,omitempty"`
	Abstract      string    `json:"abstract,omitempty"`
	Headline      Headline  `json:"headline"`
	Byline        *Byline   `json:"byline,omitempty"`
	Source        string    `json:"source"`
	PubDate       time.Time `json:"pub_date"`
	DocumentType  string    `json:"document_type"`
	SectionName   string    `json:"section_name,omitempty"`
	Keywords      []Keyword `json:"keywords,omitempty"`
	WordCount     int       `json:"word_count"`
}

// Title returns the main headline
func (a *Article) Title() string {
	return a.Headline.Main
}

// SearchPage is one page of article search results
type SearchPage struct {
	Articles  []Article `json:"articles"`
	TotalHits int       `json:"total_hits"`
	Page      int       `json:"page"`
}

// ArchivePage holds every article published in one calendar month
type ArchivePage struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Articles  []Article `json:"articles"`
	TotalHits int       `json:"total_hits"`
}
