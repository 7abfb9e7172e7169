package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/chronicler/internal/synthesize"
)

var (
	generateOutput       string
	generatePerspectives bool
	generateOutline      bool
	generateModel        string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Generate a Wikipedia-style article for a topic",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "output file path")
	generateCmd.Flags().BoolVarP(&generatePerspectives, "perspectives", "p", false, "include perspectives section grouped by stance")
	generateCmd.Flags().BoolVar(&generateOutline, "outline", false, "generate a structured outline (JSON) instead of the article")
	generateCmd.Flags().StringVar(&generateModel, "model", "", "generation model override")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	topic := args[0]

	cfg := loadConfig()
	if generateModel != "" {
		cfg.LLM.Model = generateModel
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	if err := requireTopic(s, topic); err != nil {
		return err
	}

	gateway, err := newGateway(ctx, cfg)
	if err != nil {
		return err
	}
	writer := synthesize.NewWriter(gateway, s)

	if generateOutline {
		fmt.Fprintf(os.Stderr, "Generating outline for %q...\n", topic)
		outline, err := writer.GenerateOutline(ctx, topic)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(outline, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal outline: %w", err)
		}
		if generateOutput != "" {
			if err := os.WriteFile(generateOutput, data, 0o644); err != nil {
				return fmt.Errorf("write outline: %w", err)
			}
			fmt.Printf("Outline saved to %s\n", generateOutput)
			return nil
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Fprintf(os.Stderr, "Generating article for %q...\n", topic)

	var article string
	if generatePerspectives {
		article, err = writer.GenerateWithPerspectives(ctx, topic)
	} else {
		article, err = writer.GenerateArticle(ctx, topic)
	}
	if err != nil {
		return err
	}

	if generateOutput != "" {
		if err := os.WriteFile(generateOutput, []byte(article), 0o644); err != nil {
			return fmt.Errorf("write article: %w", err)
		}
		fmt.Printf("Article saved to %s\n", generateOutput)
		return nil
	}

	fmt.Println(article)
	return nil
}
