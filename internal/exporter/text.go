package exporter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-pass-transfer/internal/datetime"
	"github.com/MKhiriev/go-pass-transfer/internal/logger"
	"github.com/MKhiriev/go-pass-transfer/internal/pwhistory"
	"github.com/MKhiriev/go-pass-transfer/internal/report"
	"github.com/MKhiriev/go-pass-transfer/models"
)

// DefaultDelimiter replaces line breaks in notes and dots in titles when
// the request carries none.
const DefaultDelimiter = '^'

// Text writes tab separated plaintext exports.
type Text struct{}

func NewText() *Text {
	return &Text{}
}

func (t *Text) Export(ctx context.Context, w io.Writer, entries []models.Entry, req models.ExportRequest, rpt *report.Report) (models.Status, int, error) {
	log := logger.FromContext(ctx)

	if req.Fields.Effective().IsEmpty() {
		rpt.WriteLine("Nothing to export: no fields selected")
		return models.NoEntriesExported, 0, nil
	}
	if status, ok := precheck(entries, req, rpt); !ok {
		return status, 0, nil
	}
	if req.Delimiter == 0 {
		req.Delimiter = DefaultDelimiter
	}

	header := ExportHeader
	if !req.Fields.IsAll() {
		header = TextHeader(req.Fields)
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, header); err != nil {
		return models.Failure, 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := bw.Flush(); err != nil {
		return models.Failure, 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	idx := indexEntries(entries)
	exported := 0
	for _, e := range entries {
		if !selected(e, req) {
			continue
		}
		e = checkHistory(e, req.Fields, rpt)
		line := textRecord(e, req, idx)
		if line == "" {
			continue
		}

		rpt.WriteLine("%s", e.GTU())
		bw.WriteString(line)
		bw.WriteByte('\n')
		if err := bw.Flush(); err != nil {
			log.Err(err).Str("func", "Text.Export").Int("exported", exported).Msg("write failed")
			return models.Failure, exported, fmt.Errorf("%w: %w", ErrWrite, err)
		}
		exported++
	}

	log.Debug().Str("func", "Text.Export").Int("exported", exported).Msg("text export finished")
	return models.Success, exported, nil
}

// textRecord renders one entry as a tab separated row. Columns follow the
// order of TextHeader.
func textRecord(e models.Entry, req models.ExportRequest, idx bases) string {
	sel := req.Fields
	delim := string(req.Delimiter)
	title := strings.ReplaceAll(e.Title, ".", delim)

	var cols []string
	switch group, withTitle := sel.Selects(models.FieldGroup), sel.Selects(models.FieldTitle); {
	case group && withTitle && e.Group != "":
		cols = append(cols, e.Group+"."+title)
	case withTitle:
		cols = append(cols, title)
	case group:
		cols = append(cols, e.Group)
	}

	for _, f := range models.ExportOrder {
		if !sel.Selects(f) {
			continue
		}
		cols = append(cols, textField(e, f, req.Delimiter, idx))
	}
	return strings.Join(cols, "\t")
}

func textField(e models.Entry, f models.FieldType, delim rune, idx bases) string {
	switch f {
	case models.FieldUser:
		return e.User
	case models.FieldPassword:
		return idx.password(e)
	case models.FieldURL:
		return e.URL
	case models.FieldAutoType:
		return e.AutoType
	case models.FieldCTime:
		return datetime.FormatText(e.CTime)
	case models.FieldPMTime:
		return datetime.FormatText(e.PMTime)
	case models.FieldATime:
		return datetime.FormatText(e.ATime)
	case models.FieldXTime:
		return datetime.FormatText(e.XTime)
	case models.FieldXTimeInterval:
		if e.XTimeInterval > 0 {
			return strconv.Itoa(e.XTimeInterval)
		}
	case models.FieldRMTime:
		return datetime.FormatText(e.RMTime)
	case models.FieldPolicy:
		if e.Policy != nil {
			return e.Policy.String()
		}
	case models.FieldHistory:
		return pwhistory.Encode(e.History)
	case models.FieldRunCommand:
		return e.RunCommand
	case models.FieldDCA:
		if e.DCA != nil {
			return strconv.Itoa(*e.DCA)
		}
	case models.FieldEmail:
		return e.Email
	case models.FieldProtected:
		if e.Protected {
			return "Y"
		}
	case models.FieldSymbols:
		return e.Symbols
	case models.FieldNotes:
		if e.Notes != "" {
			return `"` + joinLines(e.Notes, delim) + `"`
		}
	}
	return ""
}
