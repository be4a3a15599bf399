package main

import (
	"log/slog"

	"github.com/soundprediction/retrievals/pkg/logger"
)

func main() {
	// Create a colored logger
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Info("============================================")
	log.Info("    Retrievals Colored Logger Demo")
	log.Info("============================================")

	log.Debug("Debug message - dimmed")
	log.Info("Info message - standard color")
	log.Warn("Warning message - yellow!")
	log.Error("Error message - red!")

	log.Info("Attributes are rendered as key=value pairs:")
	log.Info("reranking documents", "provider", "cross-encoder", "documents", 120)
	log.Info("chunks scored", "chunks", 311, "duration", "2.5s")
	log.Warn("chunk budget exceeded, capping windows", "max_chunks", 100)
	log.Error("encoder request failed", "error", "timeout", "retry_count", 3)

	log.Info("Demo complete!")
}
