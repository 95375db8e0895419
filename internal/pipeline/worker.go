package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrBatchFailed is returned when every file of a batch failed, or when
// FailFast stopped the batch.
var ErrBatchFailed = errors.New("pipeline batch failed")

// Worker processes files for a specific pipeline. Each file is an isolated
// run; files never share intermediate state.
type Worker struct {
	pipeline      Pipeline
	config        PipelineConfig
	flushCallback func(ctx context.Context, csvPath string) error
	fileDone      func(job FileJob)
}

// NewWorker creates a new pipeline worker
func NewWorker(pipeline Pipeline, config PipelineConfig) *Worker {
	return &Worker{pipeline: pipeline, config: config}
}

// OnFlush registers a callback that runs after each CSV flush.
func (w *Worker) OnFlush(fn func(ctx context.Context, csvPath string) error) {
	w.flushCallback = fn
}

// OnFileDone registers a callback that runs once per file after it finished,
// failed or was skipped. It may be called from several goroutines.
func (w *Worker) OnFileDone(fn func(job FileJob)) {
	w.fileDone = fn
}

// ProcessBatch processes files concurrently and appends their rows to the
// consolidated CSV in input order.
func (w *Worker) ProcessBatch(ctx context.Context, files []string) (*BatchReport, error) {
	report := &BatchReport{
		PipelineName: w.pipeline.Name(),
		Status:       StatusProcessing,
		Files:        make([]FileJob, len(files)),
		StartedAt:    time.Now(),
	}
	for i, f := range files {
		report.Files[i] = FileJob{FilePath: f, Status: FileStatusQueued}
	}

	log.Info().
		Str("pipeline", w.pipeline.Name()).
		Int("files", len(files)).
		Int("workers", w.workerCount()).
		Msg("starting batch")

	aggregator := NewStreamingAggregator(w.pipeline, w.config, w.flushCallback)
	report.CSVPath = aggregator.Path()

	ordered := newOrderedSink(len(files), func(rows []TransformedRow) error {
		return aggregator.AddFileData(ctx, rows)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workerCount())

	for i := range files {
		g.Go(func() error {
			job := &report.Files[i]
			if w.fileDone != nil {
				defer func() { w.fileDone(*job) }()
			}
			if err := gctx.Err(); err != nil {
				job.Status = FileStatusSkipped
				job.ErrorMessage = err.Error()
				return ordered.deliver(i, nil)
			}

			rows, err := w.processFile(gctx, job)
			if err != nil {
				if sinkErr := ordered.deliver(i, nil); sinkErr != nil {
					return sinkErr
				}
				if w.config.FailFast {
					return fmt.Errorf("%s: %w", job.FilePath, err)
				}
				return nil
			}
			return ordered.deliver(i, rows)
		})
	}

	runErr := g.Wait()
	now := time.Now()
	report.CompletedAt = &now

	if runErr == nil {
		if err := aggregator.Finalize(ctx); err != nil {
			runErr = fmt.Errorf("failed to finalize aggregation: %w", err)
		}
	}
	report.TotalRows = aggregator.RowCount()

	switch failed := report.Failed(); {
	case runErr != nil:
		report.Status = StatusFailed
		log.Error().Err(runErr).Str("pipeline", w.pipeline.Name()).Msg("batch aborted")
		return report, errors.Join(ErrBatchFailed, runErr)
	case len(files) > 0 && failed == len(files):
		report.Status = StatusFailed
		return report, fmt.Errorf("%w: all %d files failed", ErrBatchFailed, failed)
	case failed > 0:
		report.Status = StatusPartial
	default:
		report.Status = StatusCompleted
	}

	log.Info().
		Str("pipeline", w.pipeline.Name()).
		Int("processed", report.Processed()).
		Int("failed", report.Failed()).
		Int("rows", report.TotalRows).
		Str("status", string(report.Status)).
		Msg("batch completed")

	return report, nil
}

func (w *Worker) workerCount() int {
	if w.config.WorkerCount < 1 {
		return 1
	}
	return w.config.WorkerCount
}

// processFile validates and transforms a single file, updating job in place
func (w *Worker) processFile(ctx context.Context, job *FileJob) ([]TransformedRow, error) {
	startTime := time.Now()
	job.Status = FileStatusProcessing

	log.Info().Str("pipeline", w.pipeline.Name()).Str("file", job.FilePath).Msg("processing file")

	if err := w.pipeline.Validate(job.FilePath); err != nil {
		return nil, w.markJobFailed(job, startTime, fmt.Errorf("validation failed: %w", err))
	}

	rows, err := w.pipeline.Transform(ctx, job.FilePath)
	if err != nil {
		return nil, w.markJobFailed(job, startTime, fmt.Errorf("transformation failed: %w", err))
	}

	now := time.Now()
	job.Status = FileStatusCompleted
	job.Rows = len(rows)
	job.Duration = now.Sub(startTime)
	job.ProcessedAt = &now

	log.Info().
		Str("pipeline", w.pipeline.Name()).
		Str("file", job.FilePath).
		Dur("duration", job.Duration).
		Int("rows", len(rows)).
		Msg("file completed")

	return rows, nil
}

func (w *Worker) markJobFailed(job *FileJob, startTime time.Time, err error) error {
	now := time.Now()
	job.Status = FileStatusFailed
	job.ErrorMessage = err.Error()
	job.Duration = now.Sub(startTime)
	job.ProcessedAt = &now

	log.Warn().Err(err).Str("pipeline", w.pipeline.Name()).Str("file", job.FilePath).Msg("file failed")
	return err
}

// orderedSink hands per-file results to emit in index order regardless of
// completion order.
type orderedSink struct {
	mu      sync.Mutex
	results [][]TransformedRow
	done    []bool
	next    int
	emit    func([]TransformedRow) error
}

func newOrderedSink(n int, emit func([]TransformedRow) error) *orderedSink {
	return &orderedSink{
		results: make([][]TransformedRow, n),
		done:    make([]bool, n),
		emit:    emit,
	}
}

// deliver records the result of file i; nil rows mark a file without output.
func (s *orderedSink) deliver(i int, rows []TransformedRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results[i] = rows
	s.done[i] = true
	for s.next < len(s.done) && s.done[s.next] {
		if r := s.results[s.next]; len(r) > 0 {
			if err := s.emit(r); err != nil {
				return err
			}
		}
		s.results[s.next] = nil
		s.next++
	}
	return nil
}
