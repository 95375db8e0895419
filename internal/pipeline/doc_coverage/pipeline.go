package doc_coverage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/doccover/backend-go/internal/coverage"
	"github.com/andresuchdata/doccover/backend-go/internal/pipeline"
	"github.com/andresuchdata/doccover/backend-go/internal/sheet"
	"github.com/rs/zerolog/log"
)

// Name is the pipeline identifier and the default consolidated CSV stem.
const Name = "doc_coverage"

// SummarySuffix is appended to an input's base name for its summary workbook.
const SummarySuffix = "_DOC_summary.xlsx"

// Column names of the consolidated CSV.
const (
	ColFile     = "file"
	ColMonth    = "month"
	ColStock    = "monthly_projected_stock"
	ColDemand   = "monthly_consensus_demand"
	ColDOC      = "doc_days"
	ColWarnings = "warnings"
)

// InputExtensions are the file kinds the pipeline accepts.
var InputExtensions = []string{".xlsx", ".xlsm", ".csv"}

// Config controls a FilePipeline.
type Config struct {
	OutputDir string           // where per-file summary workbooks go
	Options   coverage.Options // per-run calculator settings
	Taxonomy  *coverage.Taxonomy
}

// FilePipeline runs the DOC calculation over one planning export per file.
type FilePipeline struct {
	config     Config
	calculator *coverage.Calculator
}

// NewFilePipeline creates a pipeline; a zero Config writes summaries next to data/output/doc_coverage.
func NewFilePipeline(cfg Config) *FilePipeline {
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join("data", "output", Name)
	}
	return &FilePipeline{
		config:     cfg,
		calculator: coverage.NewCalculator(cfg.Options, cfg.Taxonomy),
	}
}

// Name returns the unique identifier of this pipeline.
func (p *FilePipeline) Name() string {
	return Name
}

// Columns fixes the consolidated CSV header.
func (p *FilePipeline) Columns() []string {
	return []string{ColFile, ColMonth, ColStock, ColDemand, ColDOC, ColWarnings}
}

// Validate performs basic validation on the input file.
func (p *FilePipeline) Validate(inputFile string) error {
	info, err := os.Stat(inputFile)
	if err != nil {
		return fmt.Errorf("cannot stat input file %s: %w", inputFile, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path %s is a directory, expected file", inputFile)
	}
	_, err = sheet.DetectFormat(inputFile)
	return err
}

// SummaryPath returns where the summary workbook of inputFile is written.
func (p *FilePipeline) SummaryPath(inputFile string) string {
	base := filepath.Base(inputFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(p.config.OutputDir, base+SummarySuffix)
}

// Transform reads one export, computes its DOC summary, writes the summary
// workbook and returns one row per month.
func (p *FilePipeline) Transform(ctx context.Context, inputFile string) ([]pipeline.TransformedRow, error) {
	table, err := sheet.ReadFile(inputFile)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("file", inputFile).
		Int("rows", len(table.Rows)).
		Int("columns", len(table.Columns)).
		Msg("read planning export")

	result, err := p.calculator.Run(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, w := range result.Warnings {
		log.Warn().Str("file", inputFile).Msg(w)
	}

	if err := p.writeSummary(inputFile, result.Summary); err != nil {
		return nil, err
	}

	name := filepath.Base(inputFile)
	warnings := strings.Join(result.Warnings, "; ")
	if len(result.Summary) == 0 {
		return []pipeline.TransformedRow{{Data: map[string]interface{}{
			ColFile:     name,
			ColWarnings: warnings,
		}}}, nil
	}

	rows := make([]pipeline.TransformedRow, 0, len(result.Summary))
	for _, s := range result.Summary {
		rows = append(rows, pipeline.TransformedRow{Data: map[string]interface{}{
			ColFile:     name,
			ColMonth:    s.Month.Format("2006-01-02"),
			ColStock:    coverage.RoundFloat(s.Stock, 2),
			ColDemand:   coverage.RoundFloat(s.Demand, 2),
			ColDOC:      coverage.RoundFloat(s.DOCDays, 2),
			ColWarnings: warnings,
		}})
	}
	return rows, nil
}

func (p *FilePipeline) writeSummary(inputFile string, summary []coverage.SummaryRow) error {
	if err := os.MkdirAll(p.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := p.SummaryPath(inputFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := sheet.WriteSummary(f, summary); err != nil {
		return fmt.Errorf("failed to write summary for %s: %w", inputFile, err)
	}
	return nil
}
