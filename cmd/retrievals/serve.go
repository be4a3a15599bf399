package retrievals

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/retrievals"
	"github.com/soundprediction/retrievals/pkg/config"
	"github.com/soundprediction/retrievals/pkg/logger"
	"github.com/soundprediction/retrievals/pkg/server"
	"github.com/soundprediction/retrievals/pkg/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the retrievals HTTP server",
	Long: `Start the retrievals HTTP server to provide REST API access to the
reranker.

The server provides endpoints for:
- Reranking documents against a query
- Scoring query-document pairs
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
	serveMode string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server-specific flags
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Server host")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Server port")
	serveCmd.Flags().StringVar(&serveMode, "mode", "debug", "Server mode (debug, release, test)")

	// Reranker flags
	serveCmd.Flags().String("provider", "", "Reranker provider (cross-encoder, colbert, embedding, mock)")
	serveCmd.Flags().String("model", "", "Reranker model name")
	serveCmd.Flags().String("encoder-base-url", "", "Inference backend base URL")

	// Embedding flags
	serveCmd.Flags().String("embedding-provider", "", "Embedding provider (openai, embedeverything)")
	serveCmd.Flags().String("embedding-model", "", "Embedding model")
	serveCmd.Flags().String("embedding-api-key", "", "Embedding API key")

	// Telemetry flags
	serveCmd.Flags().Bool("telemetry", false, "Record rerank scores to parquet files")
	serveCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for score telemetry")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	overrideConfigWithFlags(cmd, cfg)

	// Validate configuration
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}

	log := logger.NewDefaultLogger(logger.ParseLevel(cfg.Log.Level))

	// Initialize reranker
	client, err := retrievals.NewClientFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize reranker: %w", err)
	}
	defer client.Close()
	log.Info("reranker initialized", "provider", cfg.Reranker.Provider, "model", cfg.Reranker.Model)

	// Optional score telemetry
	var scores *telemetry.ScoreWriter
	if cfg.Telemetry.Enabled {
		scores, err = telemetry.NewScoreWriter(cfg.Telemetry.ParquetPath)
		if err != nil {
			return fmt.Errorf("failed to initialize score telemetry: %w", err)
		}
		defer scores.Close()
		log.Info("score telemetry enabled", "path", cfg.Telemetry.ParquetPath)
	}

	// Create and setup server
	srv := server.New(cfg, client, scores, log)
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("received signal", "signal", sig.String())

		// Create shutdown context with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Shutdown server
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		log.Info("server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	// Server flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serveMode
	}

	// Reranker flags
	if cmd.Flags().Changed("provider") {
		cfg.Reranker.Provider, _ = cmd.Flags().GetString("provider")
	}
	if cmd.Flags().Changed("model") {
		cfg.Reranker.Model, _ = cmd.Flags().GetString("model")
	}
	if cmd.Flags().Changed("encoder-base-url") {
		cfg.Encoder.BaseURL, _ = cmd.Flags().GetString("encoder-base-url")
	}

	// Embedding flags
	if cmd.Flags().Changed("embedding-provider") {
		cfg.Embedding.Provider, _ = cmd.Flags().GetString("embedding-provider")
	}
	if cmd.Flags().Changed("embedding-model") {
		cfg.Embedding.Model, _ = cmd.Flags().GetString("embedding-model")
	}
	if cmd.Flags().Changed("embedding-api-key") {
		cfg.Embedding.APIKey, _ = cmd.Flags().GetString("embedding-api-key")
	}

	// Telemetry flags
	if cmd.Flags().Changed("telemetry") {
		cfg.Telemetry.Enabled, _ = cmd.Flags().GetBool("telemetry")
	}
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}
