package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/chronicler/internal/extract"
	"github.com/ppiankov/chronicler/internal/model"
)

var (
	archiveQuery    string
	archiveSections string
	archiveMax      int
)

// archiveCmd represents the ingest-archive command
var archiveCmd = &cobra.Command{
	Use:   "ingest-archive <year> <month>",
	Short: "Ingest a whole month of articles from the archive API",
	Long: `Fetch every article published in one calendar month and run the
extraction pipeline over it. Archive responses are cached, so
re-running a month only re-extracts.

Examples:
  chronicler ingest-archive 2025 12                    # all of Dec 2025
  chronicler ingest-archive 2025 12 -q "immigration"   # filter by keyword
  chronicler ingest-archive 2025 12 -s "Politics,U.S." # filter by section
  chronicler ingest-archive 2025 12 -m 50              # cap at 50 articles`,
	Args: cobra.ExactArgs(2),
	RunE: runIngestArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().StringVarP(&archiveQuery, "query", "q", "", "filter articles by keyword in headline/abstract")
	archiveCmd.Flags().StringVarP(&archiveSections, "sections", "s", "", "comma-separated sections to keep")
	archiveCmd.Flags().IntVarP(&archiveMax, "max", "m", 100, "maximum articles to process")
	archiveCmd.Flags().StringVarP(&ingestTopic, "topic", "t", "", "pin every article to this topic instead of auto-discovery")
}

func runIngestArchive(cmd *cobra.Command, args []string) error {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid year %q", args[0])
	}
	month, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid month %q", args[1])
	}

	cfg := loadConfig()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := newIngestClient(cfg)
	if err != nil {
		return err
	}
	gateway, err := newGateway(ctx, cfg)
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	pipeline := extract.NewPipeline(gateway)

	fmt.Fprintf(os.Stderr, "Fetching archive %d-%02d...\n", year, month)
	page, err := client.FetchArchive(ctx, year, month)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Archive holds %d articles\n", len(page.Articles))

	articles := filterArticles(page.Articles, archiveQuery, archiveSections, archiveMax)
	if len(articles) == 0 {
		fmt.Println("No articles matched the filters")
		return nil
	}
	fmt.Fprintf(os.Stderr, "Processing %d articles after filtering\n", len(articles))

	return ingestArticles(ctx, cfg, pipeline, s, articles)
}

// filterArticles keeps articles with content matching the query and
// section filters, skipping ones with no headline or abstract at all.
func filterArticles(articles []model.Article, query, sections string, max int) []model.Article {
	var sectionList []string
	if sections != "" {
		for _, sec := range strings.Split(sections, ",") {
			sectionList = append(sectionList, strings.ToLower(strings.TrimSpace(sec)))
		}
	}
	queryLower := strings.ToLower(query)

	var kept []model.Article
	for _, a := range articles {
		if a.Headline.Main == "" && a.Abstract == "" {
			continue
		}

		if len(sectionList) > 0 {
			section := strings.ToLower(a.SectionName)
			found := false
			for _, want := range sectionList {
				if section == want {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}

		if queryLower != "" {
			haystack := strings.ToLower(a.Headline.Main + " " + a.Abstract + " " + a.Snippet)
			if !strings.Contains(haystack, queryLower) {
				continue
			}
		}

		kept = append(kept, a)
		if max > 0 && len(kept) >= max {
			break
		}
	}

	return kept
}
