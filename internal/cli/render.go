package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MKhiriev/go-pass-transfer/internal/report"
	"github.com/MKhiriev/go-pass-transfer/internal/service"
	"github.com/MKhiriev/go-pass-transfer/models"
)

func statusStyle(s models.Status) lipgloss.Style {
	switch {
	case s == models.Success:
		return okStyle
	case s.IsFatal():
		return errorStyle
	default:
		return warnStyle
	}
}

// counter is one labelled number of a summary box.
type counter struct {
	label string
	value int
}

func renderSummary(w io.Writer, title string, status models.Status, counters []counter) {
	width := 0
	for _, c := range counters {
		width = max(width, lipgloss.Width(c.label))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("  ")
	b.WriteString(statusStyle(status).Render(status.String()))
	for _, c := range counters {
		fmt.Fprintf(&b, "\n%-*s %d", width+1, c.label+":", c.value)
	}

	fmt.Fprintln(w, summaryStyle.Render(b.String()))
}

func renderImport(w io.Writer, title string, res service.ImportResult) {
	counters := []counter{
		{"imported", res.Stats.Imported},
		{"skipped", res.Stats.Skipped},
		{"renamed", res.Stats.Renamed},
	}
	optional := []counter{
		{"validated", res.Stats.Validated},
		{"history errors", res.Stats.HistoryErrors},
		{"invalid fields", res.Stats.InvalidFields},
		{"unknown record fields", res.Stats.RecordsWithUnknownFields},
		{"header errors", res.Stats.HeaderErrors},
		{"record errors", res.Stats.RecordErrors},
	}
	for _, c := range optional {
		if c.value > 0 {
			counters = append(counters, c)
		}
	}
	renderSummary(w, title, res.Status, counters)
}

func renderExport(w io.Writer, res service.ExportResult) {
	renderSummary(w, "export", res.Status, []counter{{"exported", res.Exported}})
}

func renderReport(w io.Writer, rpt *report.Report) {
	if rpt == nil || rpt.Len() == 0 {
		return
	}
	for _, line := range rpt.Lines() {
		fmt.Fprintln(w, helpStyle.Render(line))
	}
}

func renderEntries(w io.Writer, entries []models.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, helpStyle.Render("the vault is empty"))
		return
	}

	headers := []string{"Group", "Title", "Username", "Type"}
	rows := make([][]string, 0, len(entries))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, e := range entries {
		row := []string{e.Group, e.Title, e.User, e.Type.String()}
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
		rows = append(rows, row)
	}

	line := func(cells []string) string {
		padded := make([]string, len(cells))
		for i, c := range cells {
			padded[i] = c + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
		}
		return strings.TrimRight(strings.Join(padded, "  "), " ")
	}

	fmt.Fprintln(w, titleStyle.Render(line(headers)))
	for _, row := range rows {
		fmt.Fprintln(w, line(row))
	}
	fmt.Fprintln(w, helpStyle.Render(fmt.Sprintf("%d entries", len(entries))))
}
