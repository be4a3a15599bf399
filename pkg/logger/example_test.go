package logger_test

import (
	"log/slog"

	"github.com/soundprediction/retrievals/pkg/logger"
)

func ExampleNewDefaultLogger() {
	// Create a logger with default settings
	log := logger.NewDefaultLogger(slog.LevelDebug)

	// Log different levels
	log.Debug("This is a debug message")
	log.Info("This is an info message")
	log.Warn("This is a warning message") // Will be yellow in terminal
	log.Error("This is an error message") // Will be red in terminal
}

func ExampleNewLogger() {
	// Create a logger with custom configuration
	log := logger.NewDefaultLogger(slog.LevelInfo)

	// Log with attributes
	log.Info("Reranking documents", "documents", 120, "batch_size", 32)
	log.Warn("Chunk budget exceeded, capping windows", "max_chunks", 100)
	log.Error("Encoder request failed", "error", "timeout", "retry_count", 3)
}
