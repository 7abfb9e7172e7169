package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ppiankov/chronicler/internal/ingest"
	"github.com/ppiankov/chronicler/internal/model"
)

// archiveServer serves one-doc archive months and records which
// year/month paths were requested.
type archiveServer struct {
	mu    sync.Mutex
	paths []string
	fail  map[string]bool // path -> respond 500
}

func (a *archiveServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.paths = append(a.paths, r.URL.Path)
		fail := a.fail[r.URL.Path]
		a.mu.Unlock()

		if fail {
			http.Error(w, "upstream error", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"status":"OK","response":{"docs":[{"web_url":"https://example.com/a","abstract":"x","headline":{"main":"A"},"pub_date":"2024-03-05T12:00:00Z"}],"meta":{"hits":1}}}`)
	}
}

func (a *archiveServer) requestCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.paths)
}

func newCrawlClient(t *testing.T, a *archiveServer) *ingest.Client {
	t.Helper()
	server := httptest.NewServer(a.handler())
	t.Cleanup(server.Close)
	return ingest.NewClient("test-key",
		ingest.WithBaseURLs(server.URL+"/search", server.URL+"/archive/%d/%d.json"),
		ingest.WithRequestsPerMinute(60000))
}

func TestCrawlArchive_WalksBackwards(t *testing.T) {
	upstream := &archiveServer{}
	client := newCrawlClient(t, upstream)
	dir := t.TempDir()

	result, err := crawlArchive(context.Background(), client, dir, 2024, 2, 2023, 11, 100)
	if err != nil {
		t.Fatalf("crawlArchive failed: %v", err)
	}
	if !result.Complete {
		t.Error("crawl should complete within budget")
	}
	if result.Requests != 4 {
		t.Errorf("expected 4 requests for 4 months, got %d", result.Requests)
	}

	for _, name := range []string{"2024-02.json", "2024-01.json", "2023-12.json", "2023-11.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("expected %s to be saved: %v", name, err)
		}
		var page model.ArchivePage
		if err := json.Unmarshal(data, &page); err != nil {
			t.Fatalf("%s is not valid JSON: %v", name, err)
		}
		if page.TotalHits != 1 || len(page.Articles) != 1 {
			t.Errorf("%s: unexpected page %+v", name, page)
		}
	}

	upstream.mu.Lock()
	defer upstream.mu.Unlock()
	if upstream.paths[0] != "/archive/2024/2.json" || upstream.paths[3] != "/archive/2023/11.json" {
		t.Errorf("expected newest-first order, got %v", upstream.paths)
	}
}

func TestCrawlArchive_SkipsSavedMonths(t *testing.T) {
	upstream := &archiveServer{}
	client := newCrawlClient(t, upstream)
	dir := t.TempDir()

	// A month already on disk is a resumed crawl's leftover
	if err := os.WriteFile(filepath.Join(dir, "2024-01.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := crawlArchive(context.Background(), client, dir, 2024, 2, 2023, 12, 100)
	if err != nil {
		t.Fatalf("crawlArchive failed: %v", err)
	}
	if result.Requests != 2 {
		t.Errorf("expected 2 requests (one month skipped), got %d", result.Requests)
	}
	if upstream.requestCount() != 2 {
		t.Errorf("expected 2 upstream fetches, got %d", upstream.requestCount())
	}
}

func TestCrawlArchive_StopsAtBudgetWithResumePoint(t *testing.T) {
	upstream := &archiveServer{}
	client := newCrawlClient(t, upstream)
	dir := t.TempDir()

	result, err := crawlArchive(context.Background(), client, dir, 2024, 3, 2020, 1, 2)
	if err != nil {
		t.Fatalf("crawlArchive failed: %v", err)
	}
	if result.Complete {
		t.Error("crawl should stop at the request budget")
	}
	if result.Requests != 2 {
		t.Errorf("expected exactly 2 requests, got %d", result.Requests)
	}
	if result.ResumeYear != 2024 || result.ResumeMonth != 1 {
		t.Errorf("expected resume point 2024-01, got %d-%02d", result.ResumeYear, result.ResumeMonth)
	}
	if _, err := os.Stat(filepath.Join(dir, "2024-01.json")); !os.IsNotExist(err) {
		t.Error("month past the budget should not be saved")
	}
}

func TestCrawlArchive_FetchErrorCarriesResumePoint(t *testing.T) {
	upstream := &archiveServer{fail: map[string]bool{"/archive/2024/1.json": true}}
	client := newCrawlClient(t, upstream)
	dir := t.TempDir()

	result, err := crawlArchive(context.Background(), client, dir, 2024, 2, 2023, 12, 100)
	if err == nil {
		t.Fatal("expected error from failing month")
	}
	if result.Complete {
		t.Error("failed crawl must not report completion")
	}
	if result.ResumeYear != 2024 || result.ResumeMonth != 1 {
		t.Errorf("expected resume point at the failed month, got %d-%02d", result.ResumeYear, result.ResumeMonth)
	}
	// The month before the failure is already safe on disk
	if _, err := os.Stat(filepath.Join(dir, "2024-02.json")); err != nil {
		t.Errorf("month fetched before the failure should be saved: %v", err)
	}
}

func TestPreviousMonth(t *testing.T) {
	cases := []struct {
		year, month         int
		wantYear, wantMonth int
	}{
		{2024, 3, 2024, 2},
		{2024, 1, 2023, 12},
		{1852, 1, 1851, 12},
	}
	for _, tc := range cases {
		y, m := previousMonth(tc.year, tc.month)
		if y != tc.wantYear || m != tc.wantMonth {
			t.Errorf("previousMonth(%d, %d) = %d, %d; want %d, %d",
				tc.year, tc.month, y, m, tc.wantYear, tc.wantMonth)
		}
	}
}

func TestMonthBefore(t *testing.T) {
	cases := []struct {
		y1, m1, y2, m2 int
		want           bool
	}{
		{2023, 12, 2024, 1, true},
		{2024, 1, 2024, 2, true},
		{2024, 2, 2024, 2, false},
		{2024, 3, 2024, 2, false},
		{2025, 1, 2024, 12, false},
	}
	for _, tc := range cases {
		if got := monthBefore(tc.y1, tc.m1, tc.y2, tc.m2); got != tc.want {
			t.Errorf("monthBefore(%d-%02d, %d-%02d) = %v, want %v",
				tc.y1, tc.m1, tc.y2, tc.m2, got, tc.want)
		}
	}
}
