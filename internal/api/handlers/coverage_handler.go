package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/doccover/backend-go/internal/coverage"
	"github.com/andresuchdata/doccover/backend-go/internal/demo"
	"github.com/andresuchdata/doccover/backend-go/internal/domain"
	"github.com/andresuchdata/doccover/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// DefaultMaxUploadBytes bounds the multipart file read into memory.
const DefaultMaxUploadBytes = 32 << 20

var errBadRequest = errors.New("bad request")

type CoverageHandler struct {
	service        *service.CoverageService
	maxUploadBytes int64
}

func NewCoverageHandler(service *service.CoverageService, maxUploadBytes int64) *CoverageHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &CoverageHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// Analyze handles POST /analyze with a multipart "file" field.
func (h *CoverageHandler) Analyze(c *gin.Context) {
	in, err := h.readInput(c)
	if err != nil {
		writeError(c, err)
		return
	}

	out, err := h.service.Analyze(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.NewCoverageReport(in.FileName, out.Options, out.Result, out.Cached))
}

// Export handles POST /export and returns the summary workbook.
func (h *CoverageHandler) Export(c *gin.Context) {
	in, err := h.readInput(c)
	if err != nil {
		writeError(c, err)
		return
	}

	out, err := h.service.Export(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	if out.ObjectKey != "" {
		c.Header("X-Object-Key", out.ObjectKey)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.FileName))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}

// Demo handles GET /demo. Optional query: start=YYYY-MM, months, seed.
func (h *CoverageHandler) Demo(c *gin.Context) {
	opts := demo.Options{Seed: demo.DefaultSeed}

	if raw := strings.TrimSpace(c.Query("start")); raw != "" {
		start, err := time.Parse("2006-01", raw)
		if err != nil {
			writeError(c, fmt.Errorf("%w: start must be YYYY-MM", errBadRequest))
			return
		}
		opts.Start = start
	}
	if months, err := strconv.Atoi(c.DefaultQuery("months", "12")); err == nil && months > 0 && months <= 60 {
		opts.Months = months
	}
	if seed, err := strconv.ParseInt(c.Query("seed"), 10, 64); err == nil {
		opts.Seed = seed
	}

	runOpts, err := h.parseOptions(c)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := h.service.AnalyzeTable(c.Request.Context(), demo.Table(opts), runOpts)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.NewCoverageReport("demo", runOpts.WithDefaults(), res, false))
}

// Taxonomy handles GET /taxonomy, optionally filtered by ?class=.
func (h *CoverageHandler) Taxonomy(c *gin.Context) {
	entries := domain.NewTaxonomyEntries(h.service.Taxonomy())

	if raw := c.Query("class"); raw != "" {
		class, ok := domain.ParseClass(raw)
		if !ok {
			writeError(c, fmt.Errorf("%w: unknown class %q", errBadRequest, raw))
			return
		}
		filtered := make([]domain.TaxonomyEntry, 0, 1)
		for _, e := range entries {
			if e.Class == class.String() {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	c.JSON(http.StatusOK, entries)
}

func (h *CoverageHandler) readInput(c *gin.Context) (service.AnalyzeInput, error) {
	opts, err := h.parseOptions(c)
	if err != nil {
		return service.AnalyzeInput{}, err
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		return service.AnalyzeInput{}, fmt.Errorf("%w: multipart field \"file\" is required", errBadRequest)
	}

	file, err := header.Open()
	if err != nil {
		return service.AnalyzeInput{}, fmt.Errorf("%w: cannot open upload", errBadRequest)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return service.AnalyzeInput{}, fmt.Errorf("%w: cannot read upload", errBadRequest)
	}

	log.Debug().Str("filename", header.Filename).Int64("size", header.Size).Msg("received upload")

	return service.AnalyzeInput{FileName: header.Filename, Content: content, Options: opts}, nil
}

// parseOptions starts from the service defaults and applies query overrides.
func (h *CoverageHandler) parseOptions(c *gin.Context) (coverage.Options, error) {
	opts := h.service.Defaults()

	if site := strings.TrimSpace(c.Query("site")); site != "" {
		opts.SiteMarker = site
	}
	if col := strings.TrimSpace(c.Query("location_column")); col != "" {
		opts.LocationColumn = col
	}
	if col := strings.TrimSpace(c.Query("category_column")); col != "" {
		opts.CategoryColumn = col
	}
	if raw := strings.TrimSpace(c.Query("multiplier")); raw != "" {
		m, err := strconv.ParseFloat(raw, 64)
		if err != nil || m <= 0 {
			return opts, fmt.Errorf("%w: multiplier must be a positive number", errBadRequest)
		}
		opts.UnitMultiplier = m
	}
	if raw := strings.TrimSpace(c.Query("assume_site_demand")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("%w: assume_site_demand must be a boolean", errBadRequest)
		}
		opts.AssumeSiteDemand = b
	}

	return opts, nil
}

func writeError(c *gin.Context, err error) {
	var missing *coverage.MissingColumnError

	switch {
	case errors.As(err, &missing):
		c.JSON(http.StatusUnprocessableEntity, domain.ErrorResponse{
			Error:   err.Error(),
			Details: gin.H{"column": missing.Column, "available": missing.Available},
		})
	case errors.Is(err, coverage.ErrInputShape):
		c.JSON(http.StatusUnprocessableEntity, domain.ErrorResponse{Error: err.Error()})
	case errors.Is(err, errBadRequest), errors.Is(err, service.ErrEmptyInput), errors.Is(err, service.ErrUnreadableInput):
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: "internal error"})
	}
}
