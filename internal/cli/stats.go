package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		s, err := openStore(cfg)
		if err != nil {
			return err
		}

		stats, err := s.Stats()
		if err != nil {
			return err
		}

		fmt.Printf("Articles:    %d\n", stats.Articles)
		fmt.Printf("Extractions: %d\n", stats.Extractions)
		fmt.Printf("Topics:      %d\n", stats.Topics)
		fmt.Printf("Events:      %d\n", stats.Events)
		fmt.Printf("Statements:  %d\n", stats.Statements)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
