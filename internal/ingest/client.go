package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ppiankov/chronicler/internal/cache"
	"github.com/ppiankov/chronicler/internal/model"
)

const (
	defaultBaseURL    = "https://api.nytimes.com/svc/search/v2/articlesearch.json"
	defaultArchiveURL = "https://api.nytimes.com/svc/archive/v1/%d/%d.json"

	// Search results page size fixed by the API
	pageSize = 10
)

// Client is a typed wrapper over the Article Search and Archive APIs.
// All requests share one rate limiter sized to the source's 5 req/min
// quota.
type Client struct {
	apiKey     string
	baseURL    string
	archiveURL string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      cache.Cache // nil disables archive caching
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithBaseURLs overrides the API endpoints (used by tests)
func WithBaseURLs(searchURL, archiveURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = searchURL
		c.archiveURL = archiveURL
	}
}

// WithArchiveCache caches archive responses; monthly archives are
// immutable once the month has passed, so re-ingests skip the network.
func WithArchiveCache(cc cache.Cache) ClientOption {
	return func(c *Client) {
		c.cache = cc
	}
}

// WithRequestsPerMinute overrides the outbound rate ceiling
func WithRequestsPerMinute(rpm int) ClientOption {
	return func(c *Client) {
		if rpm > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
		}
	}
}

// NewClient creates an article source client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		archiveURL: defaultArchiveURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(12*time.Second), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchRequest holds article search parameters
type SearchRequest struct {
	Query     string
	BeginDate *time.Time
	EndDate   *time.Time
	Page      int
	Sort      string // "newest", "oldest", "relevance"
	Sections  []string
}

// Search fetches one page of search results
func (c *Client) Search(ctx context.Context, req SearchRequest) (*model.SearchPage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("api-key", c.apiKey)
	params.Set("page", fmt.Sprintf("%d", req.Page))
	sortOrder := req.Sort
	if sortOrder == "" {
		sortOrder = "newest"
	}
	params.Set("sort", sortOrder)

	if req.Query != "" {
		params.Set("q", req.Query)
	}
	if req.BeginDate != nil {
		params.Set("begin_date", req.BeginDate.Format("20060102"))
	}
	if req.EndDate != nil {
		params.Set("end_date", req.EndDate.Format("20060102"))
	}
	if len(req.Sections) > 0 {
		quoted := make([]string, len(req.Sections))
		for i, s := range req.Sections {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		params.Set("fq", fmt.Sprintf("section_name:(%s)", strings.Join(quoted, " OR ")))
	}

	var wire searchResponse
	if err := c.getJSON(ctx, c.baseURL+"?"+params.Encode(), &wire); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	articles := make([]model.Article, 0, len(wire.Response.Docs))
	for _, doc := range wire.Response.Docs {
		articles = append(articles, doc.toArticle())
	}

	return &model.SearchPage{
		Articles:  articles,
		TotalHits: wire.Response.Meta.Hits,
		Page:      req.Page,
	}, nil
}

// SearchAll paginates through search results up to maxPages
func (c *Client) SearchAll(ctx context.Context, req SearchRequest, maxPages int) ([]model.Article, error) {
	var all []model.Article

	for page := 0; page < maxPages; page++ {
		req.Page = page
		result, err := c.Search(ctx, req)
		if err != nil {
			return nil, err
		}

		all = append(all, result.Articles...)

		if len(result.Articles) < pageSize {
			break
		}
		if len(all) >= result.TotalHits {
			break
		}
	}

	return all, nil
}

// SearchRecent searches the last N days, bounded by maxArticles
func (c *Client) SearchRecent(ctx context.Context, query string, days, maxArticles int, sections []string) ([]model.Article, error) {
	end := time.Now().UTC()
	begin := end.AddDate(0, 0, -days)

	maxPages := (maxArticles + pageSize - 1) / pageSize
	return c.SearchAll(ctx, SearchRequest{
		Query:     query,
		BeginDate: &begin,
		EndDate:   &end,
		Sections:  sections,
	}, maxPages)
}

// FetchArchive fetches every article published in one month. The
// Archive API returns the whole month in a single request.
func (c *Client) FetchArchive(ctx context.Context, year, month int) (*model.ArchivePage, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be 1-12, got %d", month)
	}
	if year < 1851 {
		return nil, fmt.Errorf("year must be 1851 or later, got %d", year)
	}

	cacheKey := cache.Key("archive", fmt.Sprintf("%d-%02d", year, month))
	if c.cache != nil {
		if data, found := c.cache.Get(cacheKey); found {
			var page model.ArchivePage
			if err := json.Unmarshal(data, &page); err == nil {
				return &page, nil
			}
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := fmt.Sprintf(c.archiveURL, year, month) + "?api-key=" + url.QueryEscape(c.apiKey)

	var wire searchResponse
	if err := c.getJSON(ctx, endpoint, &wire); err != nil {
		return nil, fmt.Errorf("fetch archive %d-%02d: %w", year, month, err)
	}

	articles := make([]model.Article, 0, len(wire.Response.Docs))
	for _, doc := range wire.Response.Docs {
		articles = append(articles, doc.toArticle())
	}

	page := &model.ArchivePage{
		Year:      year,
		Month:     month,
		Articles:  articles,
		TotalHits: len(articles),
	}

	if c.cache != nil {
		if data, err := json.Marshal(page); err == nil {
			_ = c.cache.Set(cacheKey, data, 0)
		}
	}

	return page, nil
}

// FetchArchiveRange fetches archives for an inclusive month range
func (c *Client) FetchArchiveRange(ctx context.Context, startYear, startMonth, endYear, endMonth int) ([]*model.ArchivePage, error) {
	var pages []*model.ArchivePage

	year, month := startYear, startMonth
	for year < endYear || (year == endYear && month <= endMonth) {
		page, err := c.FetchArchive(ctx, year, month)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)

		month++
		if month > 12 {
			month = 1
			year++
		}
	}

	return pages, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
