// Package exporter writes vault entries to the text and XML export formats.
//
// Output is produced record by record: each record is flushed to the
// destination before the next one is rendered.
package exporter

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-pass-transfer/internal/pwhistory"
	"github.com/MKhiriev/go-pass-transfer/internal/report"
	"github.com/MKhiriev/go-pass-transfer/models"
)

// ErrWrite wraps failures of the destination writer.
var ErrWrite = errors.New("export write failed")

// Exporter writes entries in one external format. It returns the
// completion status and the number of records written.
type Exporter interface {
	Export(ctx context.Context, w io.Writer, entries []models.Entry, req models.ExportRequest, rpt *report.Report) (models.Status, int, error)
}

// ExportHeader is the header row of a text export carrying every field.
var ExportHeader = TextHeader(models.FieldSelection{Fields: models.AllFields, Included: true})

// TextHeader builds the header row for the selected fields, in export
// order.
func TextHeader(sel models.FieldSelection) string {
	var cols []string
	switch group, title := sel.Selects(models.FieldGroup), sel.Selects(models.FieldTitle); {
	case group && title:
		cols = append(cols, "Group/Title")
	case group:
		cols = append(cols, models.FieldGroup.Name())
	case title:
		cols = append(cols, models.FieldTitle.Name())
	}
	for _, f := range models.ExportOrder {
		if sel.Selects(f) {
			cols = append(cols, f.Name())
		}
	}
	return strings.Join(cols, "\t")
}

// precheck decides whether an export can produce anything.
func precheck(entries []models.Entry, req models.ExportRequest, rpt *report.Report) (models.Status, bool) {
	if len(entries) == 0 {
		rpt.WriteLine("Nothing to export: the vault is empty")
		return models.NoEntriesExported, false
	}
	if f := req.Subgroup; f != nil {
		for _, e := range entries {
			if f.Matches(e) {
				return models.Success, true
			}
		}
		rpt.WriteLine("No entry matches the subgroup restriction")
		return models.Failure, false
	}
	return models.Success, true
}

// checkHistory leaves out a password history that Decode could not read
// back and reports the entry.
func checkHistory(e models.Entry, sel models.FieldSelection, rpt *report.Report) models.Entry {
	if !sel.Selects(models.FieldHistory) || e.History.IsZero() {
		return e
	}
	if err := pwhistory.Validate(e.History); err != nil {
		rpt.WriteLine("%s: password history not exported: %v", e.GTU(), err)
		e.History = models.PasswordHistory{}
	}
	return e
}

func selected(e models.Entry, req models.ExportRequest) bool {
	return req.Subgroup == nil || req.Subgroup.Matches(e)
}

// bases indexes entries by identifier for rendering dependent passwords.
type bases map[uuid.UUID]models.Entry

func indexEntries(entries []models.Entry) bases {
	idx := make(bases, len(entries))
	for _, e := range entries {
		idx[e.UUID] = e
	}
	return idx
}

// password returns the password to write for e. Aliases and shortcuts are
// written as a reference to their base entry.
func (b bases) password(e models.Entry) string {
	if !e.IsDependent() {
		return e.Password
	}
	base, ok := b[e.BaseUUID]
	if !ok {
		return e.Password
	}
	ref := base.Group + ":" + base.Title + ":" + base.User
	if e.Type == models.EntryShortcut {
		return "[~" + ref + "~]"
	}
	return "[[" + ref + "]]"
}

// joinLines replaces every line break with delim.
func joinLines(s string, delim rune) string {
	d := string(delim)
	return strings.NewReplacer("\r\n", d, "\n", d, "\r", d).Replace(s)
}
