package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/andresuchdata/doccover/backend-go/internal/coverage"
	"github.com/andresuchdata/doccover/backend-go/internal/domain"
	"github.com/andresuchdata/doccover/backend-go/internal/pipeline"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func printSummary(w io.Writer, res *coverage.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
		headerStyle.Render("month"),
		headerStyle.Render("projected stock"),
		headerStyle.Render("consensus demand"),
		headerStyle.Render("DOC days"))
	for _, row := range res.Summary {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			coverage.FormatValue(row.Month, 0),
			coverage.FormatValue(row.Stock, 2),
			coverage.FormatValue(row.Demand, 2),
			coverage.FormatValue(row.DOCDays, 2))
	}
	tw.Flush()

	if res.NaiveFirstMonthDOC != nil {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("naive first-month DOC: %s days", coverage.FormatValue(*res.NaiveFirstMonthDOC, 2))))
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("rows=%d long_rows=%d stock=%d demand=%d unclassified=%d",
		res.Stats.Rows, res.Stats.LongRows, res.Stats.StockRows, res.Stats.DemandRows, res.Stats.Unclassified)))
	for _, warning := range res.Warnings {
		fmt.Fprintln(w, warningStyle.Render("warning: "+warning))
	}
}

func printLabels(w io.Writer, labels []coverage.LabelMatch) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", headerStyle.Render("label"), headerStyle.Render("class"))
	for _, l := range labels {
		class := domain.ClassLabel(l.Class)
		if l.Class == coverage.ClassUnclassified {
			class = mutedStyle.Render(class)
		}
		fmt.Fprintf(tw, "%s\t%s\n", l.Label, class)
	}
	tw.Flush()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printBatchReport(w io.Writer, report *pipeline.BatchReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("file"),
		headerStyle.Render("status"),
		headerStyle.Render("rows"),
		headerStyle.Render("error"))
	for _, f := range report.Files {
		status := string(f.Status)
		if f.Status != pipeline.FileStatusCompleted {
			status = warningStyle.Render(status)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", f.FilePath, status, f.Rows, firstLine(f.ErrorMessage))
	}
	tw.Flush()
	fmt.Fprintf(w, "%s: %d processed, %d failed, %d rows -> %s\n",
		report.Status, report.Processed(), report.Failed(), report.TotalRows, report.CSVPath)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
