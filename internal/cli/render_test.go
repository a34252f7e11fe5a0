package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-pass-transfer/internal/logger"
	"github.com/MKhiriev/go-pass-transfer/internal/report"
	"github.com/MKhiriev/go-pass-transfer/internal/service"
	"github.com/MKhiriev/go-pass-transfer/models"
)

func TestRenderImport_OptionalCounters(t *testing.T) {
	var buf bytes.Buffer
	renderImport(&buf, "import xml", service.ImportResult{
		Status: models.Success,
		Stats:  models.Stats{Imported: 3, HistoryErrors: 1},
	})

	out := buf.String()
	assert.Contains(t, out, "imported")
	assert.Contains(t, out, "history errors")
	assert.NotContains(t, out, "invalid fields")
	assert.Contains(t, out, models.Success.String())
}

func TestRenderReport(t *testing.T) {
	var buf bytes.Buffer
	renderReport(&buf, nil)
	assert.Empty(t, buf.String())

	rpt := report.New("import", logger.Nop())
	rpt.WriteLine("Line %d: skipped", 4)
	renderReport(&buf, rpt)
	assert.Contains(t, buf.String(), "Line 4: skipped")
}

func TestRenderEntries(t *testing.T) {
	var buf bytes.Buffer
	renderEntries(&buf, []models.Entry{
		{Group: "Work", Title: "Email", User: "j"},
		{Group: "Home.Bank", Title: "Checking", User: "k", Type: models.EntryAlias},
	})

	out := buf.String()
	assert.Contains(t, out, "Group")
	assert.Contains(t, out, "Home.Bank")
	assert.Contains(t, out, "alias")
	assert.Contains(t, out, "2 entries")
}

func TestStatusStyle(t *testing.T) {
	assert.Equal(t, okStyle, statusStyle(models.Success))
	assert.Equal(t, errorStyle, statusStyle(models.Failure))
	assert.Equal(t, warnStyle, statusStyle(models.OKWithErrors))
}
