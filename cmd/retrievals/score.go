package retrievals

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprediction/retrievals"
	"github.com/soundprediction/retrievals/pkg/config"
	"github.com/soundprediction/retrievals/pkg/reranker"
)

var scoreCmd = &cobra.Command{
	Use:   "score [query] [document]",
	Short: "Score a single query-document pair",
	Long: `Score a single query-document pair with the configured reranker
and print the relevance score.`,
	Args: cobra.ExactArgs(2),
	RunE: runScore,
}

var (
	scoreNormalize bool
	scoreProvider  string
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().BoolVar(&scoreNormalize, "normalize", false, "Map the score through a sigmoid to (0, 1)")
	scoreCmd.Flags().StringVar(&scoreProvider, "provider", "", "Reranker provider (cross-encoder, colbert, embedding, mock)")
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("provider") {
		cfg.Reranker.Provider = scoreProvider
	}

	client, err := retrievals.NewClientFromConfig(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	opts := &reranker.ScoreOptions{Normalize: scoreNormalize}
	score, err := reranker.ScorePair(context.Background(), client, args[0], args[1], opts)
	if err != nil {
		return fmt.Errorf("score failed: %w", err)
	}

	fmt.Printf("%.6f\n", score)
	return nil
}
