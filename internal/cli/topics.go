package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	topicsCategory string
	topicsLimit    int
)

// topicsCmd represents the topics command
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List discovered topics, ranked by coverage",
	Long: `List all auto-discovered topics in the knowledge store, sorted by
coverage (articles + events + statements).`,
	RunE: runTopics,
}

func init() {
	rootCmd.AddCommand(topicsCmd)

	topicsCmd.Flags().StringVarP(&topicsCategory, "category", "c", "", "filter by category")
	topicsCmd.Flags().IntVarP(&topicsLimit, "limit", "n", 20, "maximum topics to show")
}

func runTopics(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	summaries, err := s.TopicsSummary()
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No topics found. Use 'chronicler ingest' to add articles.")
		return nil
	}

	categories := map[string]bool{}
	for _, summary := range summaries {
		categories[summary.Category] = true
	}

	if topicsCategory != "" {
		filtered := summaries[:0]
		for _, summary := range summaries {
			if summary.Category == topicsCategory {
				filtered = append(filtered, summary)
			}
		}
		summaries = filtered
	}
	if topicsLimit > 0 && len(summaries) > topicsLimit {
		summaries = summaries[:topicsLimit]
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOPIC\tCATEGORY\tARTICLES\tEVENTS\tSTATEMENTS")
	for _, summary := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
			summary.Name, summary.Category,
			summary.ArticleCount, summary.EventCount, summary.StatementCount)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(categories) > 1 {
		names := make([]string, 0, len(categories))
		for name := range categories {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println()
		fmt.Printf("Categories: %v (use --category to filter)\n", names)
	}

	return nil
}
