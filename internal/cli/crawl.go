package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/chronicler/internal/ingest"
	"github.com/ppiankov/chronicler/internal/model"
)

var (
	crawlStartYear  int
	crawlStartMonth int
	crawlEndYear    int
	crawlEndMonth   int
	crawlLimit      int
	crawlOutput     string
)

// crawlCmd represents the crawl-archive command
var crawlCmd = &cobra.Command{
	Use:   "crawl-archive",
	Short: "Crawl the archive API backwards, saving one JSON file per month",
	Long: `Walk the archive month by month from the start date back to the end
date, saving each month as <data-dir>/archive/YYYY-MM.json. Months
already on disk are skipped, so an interrupted crawl resumes where it
stopped. The crawl halts at the request budget and prints the command
to continue with.

Examples:
  chronicler crawl-archive                          # from Jan 2026 back to Sep 1851
  chronicler crawl-archive -y 2024 -m 6             # start from June 2024
  chronicler crawl-archive -y 2020 -m 1 -o ./dump   # custom output dir`,
	RunE: runCrawlArchive,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().IntVarP(&crawlStartYear, "start-year", "y", 2026, "year to start crawling from")
	crawlCmd.Flags().IntVarP(&crawlStartMonth, "start-month", "m", 1, "month to start crawling from (1-12)")
	crawlCmd.Flags().IntVar(&crawlEndYear, "end-year", 1851, "year to stop at")
	crawlCmd.Flags().IntVar(&crawlEndMonth, "end-month", 9, "month to stop at")
	crawlCmd.Flags().IntVarP(&crawlLimit, "limit", "l", 500, "request budget for this run")
	crawlCmd.Flags().StringVarP(&crawlOutput, "output", "o", "", "output directory (default: <data-dir>/archive)")
}

func runCrawlArchive(cmd *cobra.Command, args []string) error {
	if crawlStartMonth < 1 || crawlStartMonth > 12 {
		return fmt.Errorf("start month must be 1-12, got %d", crawlStartMonth)
	}
	if crawlEndMonth < 1 || crawlEndMonth > 12 {
		return fmt.Errorf("end month must be 1-12, got %d", crawlEndMonth)
	}
	if monthBefore(crawlStartYear, crawlStartMonth, crawlEndYear, crawlEndMonth) {
		return fmt.Errorf("start %d-%02d is before end %d-%02d; the crawl walks backwards in time",
			crawlStartYear, crawlStartMonth, crawlEndYear, crawlEndMonth)
	}

	cfg := loadConfig()
	client, err := newIngestClient(cfg)
	if err != nil {
		return err
	}

	dir := crawlOutput
	if dir == "" {
		dir = filepath.Join(cfg.Store.DataDir, "archive")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintf(os.Stderr, "Starting archive crawl from %d-%02d\n", crawlStartYear, crawlStartMonth)
	fmt.Fprintf(os.Stderr, "Saving to: %s\n\n", dir)

	result, err := crawlArchive(ctx, client, dir,
		crawlStartYear, crawlStartMonth, crawlEndYear, crawlEndMonth, crawlLimit)

	if !result.Complete {
		fmt.Println()
		if err == nil {
			fmt.Println("Request budget reached.")
		}
		fmt.Println("To resume, run:")
		fmt.Printf("  chronicler crawl-archive -y %d -m %d\n", result.ResumeYear, result.ResumeMonth)
		return err
	}

	fmt.Println()
	fmt.Println("Archive crawl complete!")
	fmt.Printf("Total requests: %d\n", result.Requests)
	return nil
}

// crawlResult summarizes one crawl run. An incomplete run carries the
// month to restart from.
type crawlResult struct {
	Requests    int
	Complete    bool
	ResumeYear  int
	ResumeMonth int
}

// crawlArchive walks months from start back to end (inclusive),
// fetching each month not already saved under dir and writing it as
// YYYY-MM.json. It stops once limit fetches have been made or a fetch
// fails; existing files don't consume the budget.
func crawlArchive(ctx context.Context, client *ingest.Client, dir string, startYear, startMonth, endYear, endMonth, limit int) (crawlResult, error) {
	result := crawlResult{}

	year, month := startYear, startMonth
	for !monthBefore(year, month, endYear, endMonth) {
		if result.Requests >= limit {
			result.ResumeYear, result.ResumeMonth = year, month
			return result, nil
		}

		path := filepath.Join(dir, fmt.Sprintf("%d-%02d.json", year, month))
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "Skipping %d-%02d (already saved)\n", year, month)
			year, month = previousMonth(year, month)
			continue
		}

		fmt.Fprintf(os.Stderr, "Fetching %d-%02d... ", year, month)
		page, err := client.FetchArchive(ctx, year, month)
		if err != nil {
			fmt.Fprintln(os.Stderr)
			result.ResumeYear, result.ResumeMonth = year, month
			return result, fmt.Errorf("fetch %d-%02d: %w", year, month, err)
		}
		result.Requests++

		if err := writeArchiveFile(path, page); err != nil {
			fmt.Fprintln(os.Stderr)
			result.ResumeYear, result.ResumeMonth = year, month
			return result, err
		}
		fmt.Fprintf(os.Stderr, "%d articles (%d/%d requests)\n", page.TotalHits, result.Requests, limit)

		year, month = previousMonth(year, month)
	}

	result.Complete = true
	return result, nil
}

// writeArchiveFile saves a month via temp file + rename, so the
// skip-if-exists resume check never trusts a truncated file
func writeArchiveFile(path string, page *model.ArchivePage) error {
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal archive month: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write archive month: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("save archive month: %w", err)
	}
	return nil
}

// monthBefore reports whether y1-m1 is strictly earlier than y2-m2
func monthBefore(y1, m1, y2, m2 int) bool {
	if y1 != y2 {
		return y1 < y2
	}
	return m1 < m2
}

func previousMonth(year, month int) (int, int) {
	month--
	if month < 1 {
		month = 12
		year--
	}
	return year, month
}
