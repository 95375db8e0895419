package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/andresuchdata/doccover/backend-go/internal/cache"
	"github.com/andresuchdata/doccover/backend-go/internal/coverage"
	"github.com/andresuchdata/doccover/backend-go/internal/sheet"
	"github.com/andresuchdata/doccover/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

var (
	// ErrEmptyInput is returned for an upload without content.
	ErrEmptyInput = errors.New("input file is empty")
	// ErrUnreadableInput wraps failures to parse the uploaded file.
	ErrUnreadableInput = errors.New("input file could not be read")
)

// AnalyzeInput is one planning export plus the options to run it with.
type AnalyzeInput struct {
	FileName string
	Content  []byte
	Options  coverage.Options
}

// AnalyzeOutput is the result of one run.
type AnalyzeOutput struct {
	Result  *coverage.Result
	Options coverage.Options // effective options
	Cached  bool
}

// ExportOutput is a rendered summary workbook.
type ExportOutput struct {
	FileName    string
	ContentType string
	Data        []byte
	ObjectKey   string // set when the workbook was published to storage
	Result      *coverage.Result
}

// CoverageService runs the calculator over uploaded files. Each call owns
// its table and result; the service holds only read-only collaborators.
type CoverageService struct {
	defaults      coverage.Options
	taxonomy      *coverage.Taxonomy
	cache         cache.ResultCache
	store         storage.ObjectStorage
	storagePrefix string
	now           func() time.Time
}

// Option configures a CoverageService.
type Option func(*CoverageService)

// WithStorage publishes exported workbooks under prefix.
func WithStorage(store storage.ObjectStorage, prefix string) Option {
	return func(s *CoverageService) {
		s.store = store
		s.storagePrefix = prefix
	}
}

// WithTaxonomy replaces the default classifier taxonomy.
func WithTaxonomy(taxonomy *coverage.Taxonomy) Option {
	return func(s *CoverageService) {
		s.taxonomy = taxonomy
	}
}

func withClock(now func() time.Time) Option {
	return func(s *CoverageService) {
		s.now = now
	}
}

func NewCoverageService(defaults coverage.Options, cacheImpl cache.ResultCache, opts ...Option) *CoverageService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopResultCache()
	}
	s := &CoverageService{
		defaults: defaults.WithDefaults(),
		taxonomy: coverage.DefaultTaxonomy(),
		cache:    cacheImpl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the options requests start from.
func (s *CoverageService) Defaults() coverage.Options {
	return s.defaults
}

// Taxonomy returns the classifier taxonomy.
func (s *CoverageService) Taxonomy() *coverage.Taxonomy {
	return s.taxonomy
}

// Analyze reads the uploaded file and computes its DOC summary. Results are
// memoized by content and effective options.
func (s *CoverageService) Analyze(ctx context.Context, in AnalyzeInput) (*AnalyzeOutput, error) {
	if len(in.Content) == 0 {
		return nil, ErrEmptyInput
	}
	opts := in.Options.WithDefaults()
	key := cache.ResultKey(in.Content, opts, s.taxonomy)

	if res, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		log.Debug().Str("file", in.FileName).Msg("coverage: cache hit")
		return &AnalyzeOutput{Result: res, Options: opts, Cached: true}, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("coverage: cache get failed")
	}

	table, err := sheet.ReadBytes(in.FileName, in.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}

	log.Info().
		Str("file", in.FileName).
		Int("rows", len(table.Rows)).
		Int("columns", len(table.Columns)).
		Msg("coverage: read input")

	res, err := s.AnalyzeTable(ctx, table, opts)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, res); err != nil {
		log.Warn().Err(err).Msg("coverage: cache set failed")
	}

	return &AnalyzeOutput{Result: res, Options: opts}, nil
}

// AnalyzeTable runs the calculator over an in-memory table.
func (s *CoverageService) AnalyzeTable(ctx context.Context, table *coverage.Table, opts coverage.Options) (*coverage.Result, error) {
	res, err := coverage.NewCalculator(opts, s.taxonomy).Run(ctx, table)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("months", len(res.Months)).
		Int("stock_rows", res.Stats.StockRows).
		Int("demand_rows", res.Stats.DemandRows).
		Int("unclassified", res.Stats.Unclassified).
		Msg("coverage: calculated")
	for _, w := range res.Warnings {
		log.Warn().Msg("coverage: " + w)
	}
	return res, nil
}

// Export analyzes the input and renders the summary workbook. When storage
// is configured the workbook is also uploaded; upload failures are logged
// and leave ObjectKey empty.
func (s *CoverageService) Export(ctx context.Context, in AnalyzeInput) (*ExportOutput, error) {
	out, err := s.Analyze(ctx, in)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := sheet.WriteSummary(&buf, out.Result.Summary); err != nil {
		return nil, fmt.Errorf("failed to render summary workbook: %w", err)
	}

	export := &ExportOutput{
		FileName:    sheet.SummaryFileName,
		ContentType: sheet.ContentTypeXLSX,
		Data:        buf.Bytes(),
		Result:      out.Result,
	}

	if s.store != nil {
		key := storage.ObjectKey(s.storagePrefix, summaryName(in.FileName), s.now())
		if err := s.store.UploadObject(ctx, key, export.Data, export.ContentType); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("coverage: summary upload failed")
		} else {
			export.ObjectKey = key
			log.Info().Str("key", key).Msg("coverage: summary uploaded")
		}
	}

	return export, nil
}

// summaryName derives "<stem>_DOC_summary.xlsx" from an input file name.
func summaryName(inputName string) string {
	base := filepath.Base(strings.ReplaceAll(inputName, "\\", "/"))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == "/" {
		return sheet.SummaryFileName
	}
	return stem + "_" + sheet.SummaryFileName
}
