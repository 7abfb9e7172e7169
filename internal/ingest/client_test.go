package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/chronicler/internal/cache"
)

func searchDoc(headline string, pubDate string) string {
	return fmt.Sprintf(`{
		"web_url": "https://example.com/%s",
		"abstract": "About %s",
		"headline": {"main": "%s"},
		"source": "The New York Times",
		"pub_date": "%s",
		"document_type": "article",
		"section_name": "U.S."
	}`, headline, headline, headline, pubDate)
}

func searchBody(hits int, docs ...string) string {
	return fmt.Sprintf(`{
		"status": "OK",
		"response": {
			"docs": [%s],
			"meta": {"hits": %d}
		}
	}`, strings.Join(docs, ","), hits)
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test-key",
		WithBaseURLs(server.URL+"/search", server.URL+"/archive/%d/%d.json"),
		WithRequestsPerMinute(60000),
	)
	return client, server
}

func TestClient_Search(t *testing.T) {
	var gotQuery atomic.Value
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		fmt.Fprint(w, searchBody(1, searchDoc("zoning-vote", "2024-03-05T12:00:00Z")))
	}))

	begin := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	page, err := client.Search(context.Background(), SearchRequest{
		Query:     "zoning",
		BeginDate: &begin,
		Sections:  []string{"U.S.", "New York"},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if page.TotalHits != 1 || len(page.Articles) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	article := page.Articles[0]
	if article.Headline.Main != "zoning-vote" {
		t.Errorf("unexpected headline %q", article.Headline.Main)
	}
	if !article.PubDate.Equal(time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected pub date %v", article.PubDate)
	}
	if article.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("article should be assigned an id")
	}

	params := gotQuery.Load().(url.Values)
	if got := params["api-key"]; len(got) != 1 || got[0] != "test-key" {
		t.Errorf("api-key not sent: %v", got)
	}
	if got := params["q"]; len(got) != 1 || got[0] != "zoning" {
		t.Errorf("query not sent: %v", got)
	}
	if got := params["begin_date"]; len(got) != 1 || got[0] != "20240301" {
		t.Errorf("begin_date not formatted: %v", got)
	}
	if got := params["fq"]; len(got) != 1 || got[0] != `section_name:("U.S." OR "New York")` {
		t.Errorf("section filter wrong: %v", got)
	}
	if got := params["sort"]; len(got) != 1 || got[0] != "newest" {
		t.Errorf("sort should default to newest: %v", got)
	}
}

func TestClient_SearchAllPaginates(t *testing.T) {
	// 13 total hits: one full page of 10, then a short page of 3
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		count := 10
		if page == 1 {
			count = 3
		}
		docs := make([]string, count)
		for i := range docs {
			docs[i] = searchDoc(fmt.Sprintf("p%d-a%d", page, i), "2024-03-05T12:00:00Z")
		}
		fmt.Fprint(w, searchBody(13, docs...))
	}))

	articles, err := client.SearchAll(context.Background(), SearchRequest{Query: "q"}, 5)
	if err != nil {
		t.Fatalf("SearchAll failed: %v", err)
	}
	if len(articles) != 13 {
		t.Errorf("expected 13 articles across 2 pages, got %d", len(articles))
	}
	if articles[0].Headline.Main != "p0-a0" || articles[12].Headline.Main != "p1-a2" {
		t.Errorf("pages out of order: first %q, last %q",
			articles[0].Headline.Main, articles[12].Headline.Main)
	}
}

func TestClient_SearchAllStopsAtMaxPages(t *testing.T) {
	var requests atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		docs := make([]string, 10)
		for i := range docs {
			docs[i] = searchDoc(fmt.Sprintf("a%d", i), "2024-03-05T12:00:00Z")
		}
		fmt.Fprint(w, searchBody(1000, docs...))
	}))

	articles, err := client.SearchAll(context.Background(), SearchRequest{Query: "q"}, 2)
	if err != nil {
		t.Fatalf("SearchAll failed: %v", err)
	}
	if len(articles) != 20 {
		t.Errorf("expected 20 articles, got %d", len(articles))
	}
	if requests.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", requests.Load())
	}
}

func TestClient_SearchErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"fault": "rate limit exceeded"}`, http.StatusTooManyRequests)
	}))

	_, err := client.Search(context.Background(), SearchRequest{Query: "q"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestClient_FetchArchive(t *testing.T) {
	var requests atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/archive/2024/3.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, searchBody(2,
			searchDoc("first", "2024-03-01T08:00:00Z"),
			searchDoc("second", "2024-03-15T08:00:00Z"),
		))
	}))

	page, err := client.FetchArchive(context.Background(), 2024, 3)
	if err != nil {
		t.Fatalf("FetchArchive failed: %v", err)
	}
	if page.Year != 2024 || page.Month != 3 {
		t.Errorf("unexpected page identity: %+v", page)
	}
	if len(page.Articles) != 2 || page.TotalHits != 2 {
		t.Errorf("unexpected articles: %+v", page)
	}
}

func TestClient_FetchArchiveValidatesInput(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for invalid input")
	}))

	if _, err := client.FetchArchive(context.Background(), 2024, 0); err == nil {
		t.Error("expected error for month 0")
	}
	if _, err := client.FetchArchive(context.Background(), 2024, 13); err == nil {
		t.Error("expected error for month 13")
	}
	if _, err := client.FetchArchive(context.Background(), 1850, 6); err == nil {
		t.Error("expected error for year before 1851")
	}
}

func TestClient_FetchArchiveUsesCache(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, searchBody(1, searchDoc("cached", "2024-03-01T08:00:00Z")))
	}))
	t.Cleanup(server.Close)

	client := NewClient("test-key",
		WithBaseURLs(server.URL+"/search", server.URL+"/archive/%d/%d.json"),
		WithRequestsPerMinute(60000),
		WithArchiveCache(cache.NewMemoryCache(time.Hour, time.Hour)),
	)

	for i := 0; i < 3; i++ {
		page, err := client.FetchArchive(context.Background(), 2024, 3)
		if err != nil {
			t.Fatalf("FetchArchive %d failed: %v", i, err)
		}
		if len(page.Articles) != 1 || page.Articles[0].Headline.Main != "cached" {
			t.Errorf("unexpected page on fetch %d: %+v", i, page)
		}
	}

	if requests.Load() != 1 {
		t.Errorf("expected 1 upstream request for a cached month, got %d", requests.Load())
	}
}

func TestClient_FetchArchiveRange(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchBody(0))
	}))

	pages, err := client.FetchArchiveRange(context.Background(), 2023, 11, 2024, 2)
	if err != nil {
		t.Fatalf("FetchArchiveRange failed: %v", err)
	}
	if len(pages) != 4 {
		t.Fatalf("expected 4 months, got %d", len(pages))
	}
	want := [][2]int{{2023, 11}, {2023, 12}, {2024, 1}, {2024, 2}}
	for i, w := range want {
		if pages[i].Year != w[0] || pages[i].Month != w[1] {
			t.Errorf("page %d: got %d-%02d, want %d-%02d",
				i, pages[i].Year, pages[i].Month, w[0], w[1])
		}
	}
}

func TestWireDoc_Defaults(t *testing.T) {
	doc := wireDoc{
		WebURL:   "https://example.com/x",
		Headline: wireHeadline{Main: "Untyped"},
		PubDate:  "2024-03-05T12:00:00+0000",
	}

	article := doc.toArticle()
	if article.Source != "The New York Times" {
		t.Errorf("missing source should default, got %q", article.Source)
	}
	if article.DocumentType != "article" {
		t.Errorf("missing document type should default, got %q", article.DocumentType)
	}
	if !article.PubDate.Equal(time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("offset pub date mishandled: %v", article.PubDate)
	}
	if article.Byline != nil {
		t.Errorf("empty byline should stay nil, got %+v", article.Byline)
	}
}

func TestParsePubDate_FallsBackToNow(t *testing.T) {
	before := time.Now().UTC()
	got := parsePubDate("garbage")
	after := time.Now().UTC()

	if got.Before(before) || got.After(after) {
		t.Errorf("unparseable date should fall back to now, got %v", got)
	}
}
