package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePipeline emits one row per file and fails for files containing "bad".
// Files containing "slow" sleep first so completion order differs from input order.
type fakePipeline struct {
	columns []string
}

func (p *fakePipeline) Name() string { return "fake" }

func (p *fakePipeline) Validate(inputFile string) error {
	if strings.Contains(inputFile, "invalid") {
		return errors.New("invalid input")
	}
	return nil
}

func (p *fakePipeline) Transform(ctx context.Context, inputFile string) ([]TransformedRow, error) {
	if strings.Contains(inputFile, "slow") {
		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if strings.Contains(inputFile, "bad") {
		return nil, fmt.Errorf("cannot parse %s", inputFile)
	}
	return []TransformedRow{{Data: map[string]interface{}{"file": inputFile, "value": len(inputFile)}}}, nil
}

func (p *fakePipeline) Columns() []string { return p.columns }

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func testConfig(t *testing.T) PipelineConfig {
	cfg := DefaultPipelineConfig("fake")
	cfg.OutputDir = t.TempDir()
	cfg.WorkerCount = 3
	cfg.BatchSize = 2
	return cfg
}

func TestWorker_ProcessBatch_PreservesInputOrder(t *testing.T) {
	cfg := testConfig(t)
	p := &fakePipeline{columns: []string{"file", "value"}}

	report, err := NewWorker(p, cfg).ProcessBatch(context.Background(), []string{"slow-a", "b", "c", "slow-d", "e"})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, report.Status)
	assert.Equal(t, 5, report.Processed())
	assert.Equal(t, 5, report.TotalRows)

	records := readCSVFile(t, report.CSVPath)
	require.Len(t, records, 6)
	assert.Equal(t, []string{"file", "value"}, records[0])
	var order []string
	for _, r := range records[1:] {
		order = append(order, r[0])
	}
	assert.Equal(t, []string{"slow-a", "b", "c", "slow-d", "e"}, order)
}

func TestWorker_ProcessBatch_IsolatesFailures(t *testing.T) {
	cfg := testConfig(t)
	p := &fakePipeline{}

	report, err := NewWorker(p, cfg).ProcessBatch(context.Background(), []string{"one", "bad-two", "invalid-three", "four"})
	require.NoError(t, err)

	assert.Equal(t, StatusPartial, report.Status)
	assert.Equal(t, 2, report.Processed())
	assert.Equal(t, 2, report.Failed())
	assert.Equal(t, FileStatusFailed, report.Files[1].Status)
	assert.Contains(t, report.Files[1].ErrorMessage, "transformation failed")
	assert.Contains(t, report.Files[2].ErrorMessage, "validation failed")

	records := readCSVFile(t, report.CSVPath)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"file", "value"}, records[0], "sorted keys without a column order")
	assert.Equal(t, "one", records[1][0])
	assert.Equal(t, "four", records[2][0])
}

func TestWorker_ProcessBatch_AllFailed(t *testing.T) {
	cfg := testConfig(t)

	report, err := NewWorker(&fakePipeline{}, cfg).ProcessBatch(context.Background(), []string{"bad-1", "bad-2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBatchFailed)
	assert.Equal(t, StatusFailed, report.Status)
}

func TestWorker_ProcessBatch_FailFast(t *testing.T) {
	cfg := testConfig(t)
	cfg.FailFast = true
	cfg.WorkerCount = 1

	report, err := NewWorker(&fakePipeline{}, cfg).ProcessBatch(context.Background(), []string{"bad-1", "two", "three"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBatchFailed)
	assert.Equal(t, StatusFailed, report.Status)
	assert.Equal(t, FileStatusFailed, report.Files[0].Status)
	assert.Equal(t, FileStatusSkipped, report.Files[2].Status)
}

func TestWorker_OnFlush(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchSize = 1

	var flushed []string
	w := NewWorker(&fakePipeline{}, cfg)
	w.OnFlush(func(ctx context.Context, csvPath string) error {
		flushed = append(flushed, csvPath)
		return nil
	})

	report, err := w.ProcessBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, flushed, 2)
	assert.Equal(t, report.CSVPath, flushed[0])
	assert.Len(t, readCSVFile(t, report.CSVPath), 3, "later flushes append without repeating the header")
}

func TestWorker_FlushOnByteBudget(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchSize = 100
	cfg.BatchSizeBytes = 1
	cfg.FlushInterval = 0

	flushes := 0
	w := NewWorker(&fakePipeline{}, cfg)
	w.OnFlush(func(ctx context.Context, csvPath string) error {
		flushes++
		return nil
	})

	_, err := w.ProcessBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 3, flushes, "each file exceeds the byte budget")
}

func TestWorker_OnFileDone(t *testing.T) {
	cfg := testConfig(t)

	var mu sync.Mutex
	done := map[string]FileJobStatus{}
	w := NewWorker(&fakePipeline{}, cfg)
	w.OnFileDone(func(job FileJob) {
		mu.Lock()
		defer mu.Unlock()
		done[job.FilePath] = job.Status
	})

	_, err := w.ProcessBatch(context.Background(), []string{"a", "bad-b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]FileJobStatus{"a": FileStatusCompleted, "bad-b": FileStatusFailed}, done)
}

func TestDiscoverFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xlsx", "a.csv", "notes.txt", ".hidden.xlsx", "~$lock.xlsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xlsx"), 0o755))

	files, err := DiscoverFiles(dir, ".xlsx", ".CSV")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.xlsx")}, files)

	_, err = DiscoverFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestOrchestrator_RunEmpty(t *testing.T) {
	report, err := NewOrchestrator(testConfig(t)).Run(context.Background(), &fakePipeline{}, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, report.Status)
}
