package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/chronicler/internal/store"
	"github.com/ppiankov/chronicler/internal/synthesize"
)

var (
	timelineFormat    string
	timelineValidTime bool
	timelineOutput    string
)

// timelineCmd represents the timeline command
var timelineCmd = &cobra.Command{
	Use:   "timeline <topic>",
	Short: "Display or export the timeline for a topic",
	Long: `Display a topic's timeline sorted by valid time (when things
happened) or observation time (when they were reported).

Formats: table (default), json, timelinejs.`,
	Args: cobra.ExactArgs(1),
	RunE: runTimeline,
}

func init() {
	rootCmd.AddCommand(timelineCmd)

	timelineCmd.Flags().StringVarP(&timelineFormat, "format", "f", "table", "output format: table, json, timelinejs")
	timelineCmd.Flags().BoolVar(&timelineValidTime, "valid-time", true, "sort by when events happened; false sorts by when reported")
	timelineCmd.Flags().StringVarP(&timelineOutput, "output", "o", "", "output file path")
}

func runTimeline(cmd *cobra.Command, args []string) error {
	topic := args[0]
	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	if err := requireTopic(s, topic); err != nil {
		return err
	}

	switch timelineFormat {
	case "json":
		items, err := s.Timeline(topic, timelineValidTime)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal timeline: %w", err)
		}
		return writeOutput(data)

	case "timelinejs":
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		gateway, err := newGateway(ctx, cfg)
		if err != nil {
			return err
		}
		writer := synthesize.NewWriter(gateway, s)
		export, err := writer.ExportTimelineJS(topic)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(export, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal timelinejs: %w", err)
		}
		return writeOutput(data)

	default:
		items, err := s.Timeline(topic, timelineValidTime)
		if err != nil {
			return err
		}

		timeLabel := "WHEN HAPPENED"
		if !timelineValidTime {
			timeLabel = "WHEN REPORTED"
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s\tKIND\tDESCRIPTION\n", timeLabel)
		for _, item := range items {
			dateStr := "Unknown"
			if item.Time != nil {
				dateStr = item.Time.Format("2006-01-02")
			}
			desc := item.Description
			if desc == "" {
				desc = item.Content
			}
			if len(desc) > 80 {
				desc = desc[:77] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", dateStr, item.Kind, desc)
		}
		return w.Flush()
	}
}

// requireTopic errors with the list of known topics when the requested
// one doesn't exist
func requireTopic(s *store.Store, topic string) error {
	index, err := s.TopicData(topic)
	if err != nil {
		return err
	}
	if index != nil {
		return nil
	}

	names, err := s.Topics()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Topic %q not found. Available topics:\n", topic)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  - %s\n", name)
	}
	return fmt.Errorf("unknown topic %q", topic)
}

func writeOutput(data []byte) error {
	if timelineOutput == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(timelineOutput, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("Saved to %s\n", timelineOutput)
	return nil
}
