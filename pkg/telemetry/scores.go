// Package telemetry persists reranking telemetry as Parquet files for
// offline analysis of score distributions and model drift.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// ScoreRecord represents one scored document from a rerank call
type ScoreRecord struct {
	ID            string    `parquet:"id"`
	Timestamp     time.Time `parquet:"timestamp"`
	Provider      string    `parquet:"provider"`
	Model         string    `parquet:"model"`
	Query         string    `parquet:"query"`
	DocumentIndex int       `parquet:"document_index"`
	Rank          int       `parquet:"rank"`
	Score         float64   `parquet:"score"`
	ChunkCount    int       `parquet:"chunk_count"`
	DurationMs    int64     `parquet:"duration_ms"`
}

// ScoreWriter batches score records and writes them to Parquet files
type ScoreWriter struct {
	outputDir string
	batchSize int

	mu     sync.Mutex
	buffer []ScoreRecord
}

// NewScoreWriter creates a writer persisting batches under outputDir
func NewScoreWriter(outputDir string) (*ScoreWriter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	return &ScoreWriter{
		outputDir: outputDir,
		batchSize: 100,
		buffer:    make([]ScoreRecord, 0, 100),
	}, nil
}

// Record buffers score records, flushing when the batch fills up. IDs and
// timestamps are filled in for records that lack them.
func (w *ScoreWriter) Record(records ...ScoreRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if r.Timestamp.IsZero() {
			r.Timestamp = time.Now().UTC()
		}
		w.buffer = append(w.buffer, r)
	}

	if len(w.buffer) >= w.batchSize {
		return w.flush()
	}
	return nil
}

// Flush writes any buffered records immediately
func (w *ScoreWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flush()
}

// Close flushes remaining records
func (w *ScoreWriter) Close() error {
	return w.Flush()
}

// flush writes the current buffer to a new Parquet file
// Caller must hold the lock
func (w *ScoreWriter) flush() error {
	if len(w.buffer) == 0 {
		return nil
	}

	filename := fmt.Sprintf("rerank_scores_%s_%d.parquet", time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(w.outputDir, filename)

	if err := parquet.WriteFile(path, w.buffer); err != nil {
		return fmt.Errorf("failed to write telemetry parquet file: %w", err)
	}

	w.buffer = w.buffer[:0]
	return nil
}
