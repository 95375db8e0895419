package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// StreamingAggregator buffers transformed data and appends it to one CSV in
// batches. The header is written on the first flush and never changes.
type StreamingAggregator struct {
	pipeline      Pipeline
	config        PipelineConfig
	buffer        [][]TransformedRow
	bufferSize    int64
	headers       []string
	rowCount      int
	mu            sync.Mutex
	flushCallback func(ctx context.Context, csvPath string) error
	lastFlush     time.Time
}

// NewStreamingAggregator creates a new streaming aggregator for a pipeline.
// flushCallback, when set, runs after every flush with the CSV path.
func NewStreamingAggregator(
	pipeline Pipeline,
	config PipelineConfig,
	flushCallback func(ctx context.Context, csvPath string) error,
) *StreamingAggregator {
	var headers []string
	if co, ok := pipeline.(ColumnOrder); ok {
		headers = append(headers, co.Columns()...)
	}
	return &StreamingAggregator{
		pipeline:      pipeline,
		config:        config,
		buffer:        make([][]TransformedRow, 0, config.BatchSize),
		headers:       headers,
		flushCallback: flushCallback,
		lastFlush:     time.Now(),
	}
}

// Path returns the consolidated CSV path.
func (sa *StreamingAggregator) Path() string {
	return filepath.Join(sa.config.OutputDir, sa.config.CSVName())
}

// AddFileData adds transformed data from a single file to the buffer
func (sa *StreamingAggregator) AddFileData(ctx context.Context, rows []TransformedRow) error {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	sa.buffer = append(sa.buffer, rows)

	// Rough estimate: 100 bytes per field
	for _, row := range rows {
		sa.bufferSize += int64(len(row.Data) * 100)
	}

	log.Debug().
		Str("pipeline", sa.pipeline.Name()).
		Int("files", len(sa.buffer)).
		Int64("bytes", sa.bufferSize).
		Msg("aggregator buffer")

	shouldFlush := len(sa.buffer) >= sa.config.BatchSize ||
		(sa.config.BatchSizeBytes > 0 && sa.bufferSize >= sa.config.BatchSizeBytes) ||
		(sa.config.FlushInterval > 0 && time.Since(sa.lastFlush) >= sa.config.FlushInterval)

	if shouldFlush {
		return sa.flushLocked(ctx)
	}

	return nil
}

// Finalize flushes any remaining data
func (sa *StreamingAggregator) Finalize(ctx context.Context) error {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	if len(sa.buffer) == 0 {
		log.Debug().Str("pipeline", sa.pipeline.Name()).Msg("no data to finalize")
		return nil
	}

	return sa.flushLocked(ctx)
}

// flushLocked appends the current buffer to the CSV and triggers the callback.
// Must be called with sa.mu locked
func (sa *StreamingAggregator) flushLocked(ctx context.Context) error {
	if len(sa.buffer) == 0 {
		return nil
	}

	var allRows []TransformedRow
	for _, fileRows := range sa.buffer {
		allRows = append(allRows, fileRows...)
	}

	if err := os.MkdirAll(sa.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	csvPath := sa.Path()
	if err := sa.writeCSV(csvPath, allRows); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	sa.rowCount += len(allRows)

	log.Info().
		Str("pipeline", sa.pipeline.Name()).
		Int("files", len(sa.buffer)).
		Int("rows", len(allRows)).
		Str("path", csvPath).
		Msg("flushed rows to CSV")

	if sa.flushCallback != nil {
		if err := sa.flushCallback(ctx, csvPath); err != nil {
			return fmt.Errorf("flush callback failed: %w", err)
		}
	}

	sa.buffer = sa.buffer[:0]
	sa.bufferSize = 0
	sa.lastFlush = time.Now()

	return nil
}

// writeCSV appends rows to path, creating it with a header on first use
func (sa *StreamingAggregator) writeCSV(path string, rows []TransformedRow) error {
	first := sa.rowCount == 0
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if first {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if len(sa.headers) == 0 {
		sa.headers = sortedKeys(rows)
	}
	if first {
		if err := writer.Write(sa.headers); err != nil {
			return err
		}
	}

	for _, row := range rows {
		record := make([]string, len(sa.headers))
		for i, header := range sa.headers {
			if val, ok := row.Data[header]; ok && val != nil {
				record[i] = fmt.Sprintf("%v", val)
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// sortedKeys collects every key seen in rows in lexical order.
func sortedKeys(rows []TransformedRow) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for key := range row.Data {
			seen[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// RowCount returns the number of rows written so far.
func (sa *StreamingAggregator) RowCount() int {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	return sa.rowCount
}
