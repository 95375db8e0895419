package pipeline

import (
	"context"
	"time"
)

// Pipeline defines the interface that all file pipelines must implement
type Pipeline interface {
	// Name returns the unique identifier for this pipeline
	Name() string

	// Validate checks if the input file is valid for this pipeline
	Validate(inputFile string) error

	// Transform processes a single input file and returns the transformed data
	Transform(ctx context.Context, inputFile string) ([]TransformedRow, error)
}

// ColumnOrder is implemented by pipelines that fix the column order of the
// consolidated CSV. Without it columns are written in sorted key order.
type ColumnOrder interface {
	Columns() []string
}

// TransformedRow represents a single row of transformed data
type TransformedRow struct {
	Data map[string]interface{}
}

// PipelineConfig holds configuration for a pipeline instance
type PipelineConfig struct {
	Name           string
	BatchSize      int           // Number of files to buffer before flushing
	BatchSizeBytes int64         // Size in bytes to buffer before flushing
	FlushInterval  time.Duration // Max time to wait before flushing
	WorkerCount    int           // Number of concurrent workers
	OutputDir      string        // Directory for the consolidated CSV
	OutputFile     string        // Consolidated CSV name, defaults to <name>.csv
	FailFast       bool          // Stop the batch on the first failed file
}

// DefaultPipelineConfig returns sensible defaults
func DefaultPipelineConfig(name string) PipelineConfig {
	return PipelineConfig{
		Name:           name,
		BatchSize:      5,
		BatchSizeBytes: 10 * 1024 * 1024, // 10MB
		FlushInterval:  5 * time.Minute,
		WorkerCount:    4,
		OutputDir:      "data/output/" + name,
	}
}

// CSVName returns the consolidated CSV file name.
func (c PipelineConfig) CSVName() string {
	if c.OutputFile != "" {
		return c.OutputFile
	}
	return c.Name + ".csv"
}

// PipelineStatus represents the current state of a pipeline run
type PipelineStatus string

const (
	StatusPending    PipelineStatus = "pending"
	StatusProcessing PipelineStatus = "processing"
	StatusCompleted  PipelineStatus = "completed"
	StatusPartial    PipelineStatus = "partial"
	StatusFailed     PipelineStatus = "failed"
)

// FileJobStatus represents the state of a single file processing job
type FileJobStatus string

const (
	FileStatusQueued     FileJobStatus = "queued"
	FileStatusProcessing FileJobStatus = "processing"
	FileStatusCompleted  FileJobStatus = "completed"
	FileStatusFailed     FileJobStatus = "failed"
	FileStatusSkipped    FileJobStatus = "skipped"
)

// FileJob tracks the processing of a single file
type FileJob struct {
	FilePath     string
	Status       FileJobStatus
	ErrorMessage string
	Rows         int
	Duration     time.Duration
	ProcessedAt  *time.Time
}

// BatchReport summarizes one execution of a pipeline over a set of files
type BatchReport struct {
	PipelineName string
	Status       PipelineStatus
	Files        []FileJob
	TotalRows    int
	CSVPath      string
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// Processed returns the number of files that completed.
func (r *BatchReport) Processed() int {
	return r.count(FileStatusCompleted)
}

// Failed returns the number of files that failed.
func (r *BatchReport) Failed() int {
	return r.count(FileStatusFailed)
}

func (r *BatchReport) count(status FileJobStatus) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}
