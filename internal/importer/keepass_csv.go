package importer

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/MKhiriev/go-pass-transfer/internal/datetime"
	"github.com/MKhiriev/go-pass-transfer/internal/logger"
	"github.com/MKhiriev/go-pass-transfer/models"
)

// KeePassCSV imports the CSV export of KeePass 1.x.
type KeePassCSV struct{}

func NewKeePassCSV() *KeePassCSV {
	return &KeePassCSV{}
}

func (k *KeePassCSV) Import(ctx context.Context, r io.Reader, run *Run) models.Status {
	log := logger.FromContext(ctx)

	data, err := readAll(r)
	if err != nil {
		log.Err(err).Str("func", "KeePassCSV.Import").Msg("error reading input")
		run.Report.WriteLine("Error reading file: %v", err)
		return models.Failure
	}

	ln := newLines(data, true)
	header, ok := ln.next()
	if !ok {
		run.Report.WriteLine("Error: no header record found")
		return models.Failure
	}

	offs := newOffsets[kpColumn](int(kpColumnCount))
	for i, name := range splitKeePassCSV(string(header)) {
		for col, known := range kpColumnNames {
			if name == known {
				offs.set(kpColumn(col), i)
				break
			}
		}
	}

	if offs.found == 0 {
		run.Report.WriteLine("Error: no recognised columns in the header record")
		return models.InvalidFormat
	}
	if !offs.has(kpPassword) || !offs.has(kpTitle) {
		run.Report.WriteLine("Error: the %q and %q columns are mandatory", kpColumnNames[kpTitle], kpColumnNames[kpPassword])
		return models.InvalidFormat
	}
	if offs.found < int(kpColumnCount) {
		var known []string
		for col, name := range kpColumnNames {
			if offs.has(kpColumn(col)) {
				known = append(known, name)
			}
		}
		run.Report.WriteLine("Header has %d recognised columns: %s", offs.found, strings.Join(known, ", "))
	}

	for {
		raw, ok := ln.next()
		if !ok {
			break
		}
		if strings.TrimRight(string(raw), crlf) == "" {
			run.Skip(ln.num, "empty line skipped")
			continue
		}

		tokens := splitKeePassCSV(string(raw))
		if len(tokens) < offs.found {
			run.Skip(ln.num, "has %d fields, %d expected, line skipped", len(tokens), offs.found)
			continue
		}

		if v, _ := offs.token(tokens, kpPassword); v == "" {
			run.Skip(ln.num, "no password, line skipped")
			continue
		}
		if v, _ := offs.token(tokens, kpTitle); v == "" {
			run.Skip(ln.num, "no title, line skipped")
			continue
		}

		rec, ok := keePassCSVRecord(offs, tokens)
		if !ok {
			// Records with a malformed timestamp are dropped as a whole.
			log.Warn().
				Str("func", "KeePassCSV.Import").
				Int("line", ln.num).
				Msg("record with malformed timestamp dropped")
			continue
		}
		rec.line = ln.num
		run.acceptKeePass(ctx, rec)
	}

	log.Debug().
		Str("func", "KeePassCSV.Import").
		Int("imported", run.Stats.Imported).
		Int("skipped", run.Stats.Skipped).
		Msg("KeePass CSV import finished")
	return run.Status()
}

// keePassCSVRecord maps one tokenized row. ok is false when a timestamp
// column holds a value that is not 19 characters long.
func keePassCSVRecord(offs *offsets[kpColumn], tokens []string) (keePassRecord, bool) {
	get := func(c kpColumn) string {
		v, _ := offs.token(tokens, c)
		return v
	}

	rec := keePassRecord{
		title:    strings.ReplaceAll(get(kpTitle), ".", "/"),
		user:     get(kpUser),
		password: get(kpPassword),
		url:      get(kpURL),
		notes:    strings.ReplaceAll(get(kpNotes), `\r\n`, crlf),
	}

	if g := get(kpGroup); g != "" {
		g = strings.ReplaceAll(g, ".", "/")
		rec.group = strings.ReplaceAll(g, `\`, "/")
	}
	if tree := get(kpGroupTree); tree != "" {
		rec.parents = keePassParents(tree)
	}
	if id := get(kpUUID); len(id) == 32 {
		rec.uuid = id
	}

	for _, ts := range []struct {
		col kpColumn
		dst *time.Time
	}{
		{kpCTime, &rec.ctime},
		{kpATime, &rec.atime},
		{kpMTime, &rec.mtime},
		{kpXTime, &rec.xtime},
	} {
		v := get(ts.col)
		if v == "" {
			continue
		}
		if len(v) != 19 {
			return keePassRecord{}, false
		}
		*ts.dst, _ = datetime.ParseLegacy(v)
	}
	return rec, true
}
