package ingest

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/chronicler/internal/model"
)

// Wire types mirror the source API's response shape. They exist so the
// rest of the system only ever sees model.Article.

type searchResponse struct {
	Status   string       `json:"status"`
	Response responseBody `json:"response"`
}

type responseBody struct {
	Docs []wireDoc `json:"docs"`
	Meta wireMeta  `json:"meta"`
}

type wireMeta struct {
	Hits int `json:"hits"`
}

type wireDoc struct {
	WebURL        string        `json:"web_url"`
	Snippet       string        `json:"snippet"`
	LeadParagraph string        `json:"lead_paragraph"`
	Abstract      string        `json:"abstract"`
	Headline      wireHeadline  `json:"headline"`
	Byline        *wireByline   `json:"byline"`
	Source        string        `json:"source"`
	PubDate       string        `json:"pub_date"`
	DocumentType  string        `json:"document_type"`
	SectionName   string        `json:"section_name"`
	Keywords      []wireKeyword `json:"keywords"`
	WordCount     int           `json:"word_count"`
}

type wireHeadline struct {
	Main          string `json:"main"`
	PrintHeadline string `json:"print_headline"`
}

type wireByline struct {
	Original     string `json:"original"`
	Organization string `json:"organization"`
}

type wireKeyword struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Rank  int    `json:"rank"`
	Major string `json:"major"`
}

func (d wireDoc) toArticle() model.Article {
	pubDate := parsePubDate(d.PubDate)

	var byline *model.Byline
	if d.Byline != nil && (d.Byline.Original != "" || d.Byline.Organization != "") {
		byline = &model.Byline{
			Original:     d.Byline.Original,
			Organization: d.Byline.Organization,
		}
	}

	keywords := make([]model.Keyword, 0, len(d.Keywords))
	for _, kw := range d.Keywords {
		keywords = append(keywords, model.Keyword{
			Name:  kw.Name,
			Value: kw.Value,
			Rank:  kw.Rank,
			Major: kw.Major,
		})
	}

	source := d.Source
	if source == "" {
		source = "The New York Times"
	}
	docType := d.DocumentType
	if docType == "" {
		docType = "article"
	}

	return model.Article{
		ID:            uuid.New(),
		WebURL:        d.WebURL,
		Snippet:       d.Snippet,
		LeadParagraph: d.LeadParagraph,
		Abstract:      d.Abstract,
		Headline: model.Headline{
			Main:          d.Headline.Main,
			PrintHeadline: d.Headline.PrintHeadline,
		},
		Byline:       byline,
		Source:       source,
		PubDate:      pubDate,
		DocumentType: docType,
		SectionName:  d.SectionName,
		Keywords:     keywords,
		WordCount:    d.WordCount,
	}
}

func parsePubDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse("2006-01-02T15:04:05-0700", s); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}
