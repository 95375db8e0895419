package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andresuchdata/doccover/backend-go/internal/coverage"
	"github.com/andresuchdata/doccover/backend-go/internal/domain"
	"github.com/andresuchdata/doccover/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const planCSV = "Plant,Key Figure,2025-01-01,2025-02-01,2025-03-01\n" +
	"EIP01,Projected Stock,300,200,0\n" +
	"EIP01,Consensus,100,150,50\n" +
	"TR02,Consensus,10,10,10\n"

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCoverageHandler(service.NewCoverageService(coverage.DefaultOptions(), nil), 0)

	r := gin.New()
	r.POST("/analyze", h.Analyze)
	r.POST("/export", h.Export)
	r.GET("/demo", h.Demo)
	r.GET("/taxonomy", h.Taxonomy)
	return r
}

func uploadRequest(t *testing.T, target, field, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeReport(t *testing.T, rec *httptest.ResponseRecorder) domain.CoverageReport {
	t.Helper()
	var report domain.CoverageReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	return report
}

func TestCoverageHandler_Analyze(t *testing.T) {
	r := newTestRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "/analyze", "file", "plan.csv", planCSV))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decodeReport(t, rec)

	assert.Equal(t, "plan.csv", report.Source)
	require.Len(t, report.Summary, 3)
	assert.Equal(t, "2025-01-01", report.Summary[0].Month)
	assert.Equal(t, 100.0, report.Summary[0].MonthlyConsensusDemand, "non-site demand is excluded")
	assert.Equal(t, 600.0, report.Summary[0].DOCDays)
	assert.Equal(t, 3, report.Stats.Rows)
}

func TestCoverageHandler_AnalyzeOverrides(t *testing.T) {
	r := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "/analyze?site=tr&multiplier=2", "file", "plan.csv", planCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decodeReport(t, rec)
	assert.Equal(t, 20.0, report.Summary[0].MonthlyConsensusDemand)
	assert.Equal(t, "tr", report.Options.SiteMarker)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "/analyze?assume_site_demand=true", "file", "plan.csv", planCSV))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 110.0, decodeReport(t, rec).Summary[0].MonthlyConsensusDemand)
}

func TestCoverageHandler_AnalyzeErrors(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"missing file", uploadRequest(t, "/analyze", "", "", ""), http.StatusBadRequest},
		{"empty file", uploadRequest(t, "/analyze", "file", "plan.csv", ""), http.StatusBadRequest},
		{"unsupported", uploadRequest(t, "/analyze", "file", "plan.pdf", "x"), http.StatusBadRequest},
		{"bad multiplier", uploadRequest(t, "/analyze?multiplier=abc", "file", "plan.csv", planCSV), http.StatusBadRequest},
		{"bad bool", uploadRequest(t, "/analyze?assume_site_demand=maybe", "file", "plan.csv", planCSV), http.StatusBadRequest},
		{"no months", uploadRequest(t, "/analyze", "file", "plan.csv", "Plant,Key Figure,Total\nEIP01,Consensus,1\n"), http.StatusUnprocessableEntity},
		{"missing column", uploadRequest(t, "/analyze?location_column=Site", "file", "plan.csv", planCSV), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, tt.req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var body domain.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestCoverageHandler_MissingColumnDetails(t *testing.T) {
	r := newTestRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "/analyze?category_column=Measure", "file", "plan.csv", planCSV))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Details struct {
			Column    string   `json:"column"`
			Available []string `json:"available"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Measure", body.Details.Column)
	assert.Contains(t, body.Details.Available, "Key Figure")
}

func TestCoverageHandler_Export(t *testing.T) {
	r := newTestRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "/export", "file", "plan.csv", planCSV))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "DOC_summary.xlsx")
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("DOC")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestCoverageHandler_Demo(t *testing.T) {
	r := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/demo?start=2025-01&months=6", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decodeReport(t, rec)
	assert.Equal(t, "demo", report.Source)
	require.Len(t, report.Summary, 6)
	assert.Equal(t, "2025-01-01", report.Summary[0].Month)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/demo?start=January", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCoverageHandler_Taxonomy(t *testing.T) {
	r := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/taxonomy?class=projected_stock", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []domain.TaxonomyEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Projected stock", entries[0].ClassLabel)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/taxonomy?class=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
