package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/chronicler/internal/extract"
	"github.com/ppiankov/chronicler/internal/model"
	"github.com/ppiankov/chronicler/internal/store"
)

var (
	ingestDays     int
	ingestMax      int
	ingestSections string
	ingestTopic    string
	ingestModel    string
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [query]",
	Short: "Fetch recent articles and extract facts into the knowledge store",
	Long: `Ingest articles from the last N days and auto-discover topics.

If no query is given, recent general news is fetched. Topics are
extracted from article content unless --topic pins every article to a
fixed topic.

Examples:
  chronicler ingest --days 7                     # recent news, auto-discover topics
  chronicler ingest "immigration" --days 30      # search for a subject
  chronicler ingest --sections "Politics,U.S."   # filter by sections`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().IntVarP(&ingestDays, "days", "d", 7, "number of days to look back")
	ingestCmd.Flags().IntVarP(&ingestMax, "max", "m", 50, "maximum articles to fetch")
	ingestCmd.Flags().StringVarP(&ingestSections, "sections", "s", "", "comma-separated sections (e.g. 'Politics,U.S.')")
	ingestCmd.Flags().StringVarP(&ingestTopic, "topic", "t", "", "pin every article to this topic instead of auto-discovery")
	ingestCmd.Flags().StringVar(&ingestModel, "model", "", "generation model override")
}

func runIngest(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	cfg := loadConfig()
	if ingestModel != "" {
		cfg.LLM.Model = ingestModel
	}

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

	var sections []string
	if ingestSections != "" {
		for _, sec := range strings.Split(ingestSections, ",") {
			sections = append(sections, strings.TrimSpace(sec))
		}
	}

	if query == "" {
		// The search API needs a query to return results; "news" is a
		// broad stand-in for "recent general news"
		query = "news"
	}

	fmt.Fprintf(os.Stderr, "Fetching articles for %q (last %d days)...\n", query, ingestDays)
	articles, err := client.SearchRecent(ctx, query, ingestDays, ingestMax, sections)
	if err != nil {
		return fmt.Errorf("fetch articles: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Found %d articles\n", len(articles))

	if len(articles) == 0 {
		fmt.Println("No articles found")
		return nil
	}

	return ingestArticles(ctx, cfg, pipeline, s, articles)
}

// ingestArticles saves articles, runs batch extraction, and persists
// the results. Shared by ingest and ingest-archive.
func ingestArticles(ctx context.Context, cfg *model.Config, pipeline *extract.Pipeline, s *store.Store, articles []model.Article) error {
	refs := make([]*model.Article, len(articles))
	for i := range articles {
		refs[i] = &articles[i]
		if err := s.SaveArticle(&articles[i]); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "Extracting from %d articles (max %d concurrent)...\n",
		len(refs), cfg.Extraction.MaxConcurrent)

	results, err := pipeline.ExtractBatch(ctx, refs, ingestTopic, cfg.Extraction.MaxConcurrent)
	if err != nil {
		return fmt.Errorf("extraction: %w", err)
	}

	discovered := map[string]bool{}
	for _, result := range results {
		for _, t := range result.Topics {
			discovered[t.Name] = true
		}
		if err := s.SaveExtractionResult(result); err != nil {
			return err
		}
	}

	stats, err := s.Stats()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Ingestion complete!")
	fmt.Printf("  Articles processed: %d\n", len(articles))
	fmt.Printf("  Total articles:   %d\n", stats.Articles)
	fmt.Printf("  Total events:     %d\n", stats.Events)
	fmt.Printf("  Total statements: %d\n", stats.Statements)
	fmt.Printf("  Total topics:     %d\n", stats.Topics)

	if len(discovered) > 0 {
		names := make([]string, 0, len(discovered))
		for name := range discovered {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Println()
		fmt.Println("Discovered topics:")
		for i, name := range names {
			if i >= 15 {
				fmt.Printf("  ... and %d more (use 'chronicler topics' to see all)\n", len(names)-15)
				break
			}
			fmt.Printf("  - %s\n", name)
		}
	}

	return nil
}
