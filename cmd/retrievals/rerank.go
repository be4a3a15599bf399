package retrievals

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soundprediction/retrievals"
	"github.com/soundprediction/retrievals/pkg/config"
	"github.com/soundprediction/retrievals/pkg/logger"
	"github.com/soundprediction/retrievals/pkg/reranker"
)

var rerankCmd = &cobra.Command{
	Use:   "rerank [query]",
	Short: "Rerank documents against a query",
	Long: `Rerank documents against a query and print them in descending
relevance order.

Documents are read one per line from --input, or from stdin when --input
is not given. Long documents are split into overlapping chunks and a
document scores as its best chunk.`,
	Args: cobra.ExactArgs(1),
	RunE: runRerank,
}

var (
	rerankInput     string
	rerankTopK      int
	rerankNormalize bool
	rerankProvider  string
)

func init() {
	rootCmd.AddCommand(rerankCmd)

	rerankCmd.Flags().StringVar(&rerankInput, "input", "", "File with one document per line (default stdin)")
	rerankCmd.Flags().IntVar(&rerankTopK, "top-k", 0, "Print only the top K documents (0 prints all)")
	rerankCmd.Flags().BoolVar(&rerankNormalize, "normalize", false, "Map scores through a sigmoid to (0, 1)")
	rerankCmd.Flags().StringVar(&rerankProvider, "provider", "", "Reranker provider (cross-encoder, colbert, embedding, mock)")
}

func runRerank(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("provider") {
		cfg.Reranker.Provider = rerankProvider
	}
	log := logger.NewDefaultLogger(logger.ParseLevel(cfg.Log.Level))

	documents, err := readDocuments(rerankInput)
	if err != nil {
		return err
	}
	if len(documents) == 0 {
		return fmt.Errorf("no documents to rerank")
	}

	client, err := retrievals.NewClientFromConfig(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	log.Info("reranking", "provider", cfg.Reranker.Provider, "documents", len(documents))

	opts := &reranker.RerankOptions{Normalize: rerankNormalize}
	result, err := client.Rerank(context.Background(), args[0], documents, opts)
	if err != nil {
		return fmt.Errorf("rerank failed: %w", err)
	}

	limit := len(result.Documents)
	if rerankTopK > 0 && rerankTopK < limit {
		limit = rerankTopK
	}
	for i := 0; i < limit; i++ {
		fmt.Printf("%d\t%.6f\t%s\n", result.Indices[i], result.Scores[i], result.Documents[i])
	}
	return nil
}

// readDocuments reads one document per line, skipping blank lines.
func readDocuments(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var documents []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			documents = append(documents, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	return documents, nil
}
