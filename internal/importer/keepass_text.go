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

// KeePassPrefix is the top-level group receiving KeePass imports.
const KeePassPrefix = "ImportedKeePass"

// KeePassDefault replaces an empty title or password of a KeePass record.
const KeePassDefault = "Unknown"

// keePassRecord collects the fields of one KeePass record before it is
// turned into an entry.
type keePassRecord struct {
	line         int
	group        string
	parents      string
	title        string
	user         string
	password     string
	url          string
	notes        string
	uuid         string
	ctime, atime time.Time
	mtime, xtime time.Time
}

type kpLineKind int

const (
	kpLineGroup kpLineKind = iota
	kpLineGroupTree
	kpLineUser
	kpLineURL
	kpLinePassword
	kpLineUUID
	kpLineCTime
	kpLineATime
	kpLineMTime
	kpLineXTime
	kpLineNotes
	kpLineIgnored
)

var kpLinePrefixes = []struct {
	prefix string
	kind   kpLineKind
}{
	{"Group: ", kpLineGroup},
	{"Group Tree: ", kpLineGroupTree},
	{"User Name: ", kpLineUser},
	{"URL: ", kpLineURL},
	{"Password: ", kpLinePassword},
	{"UUID: ", kpLineUUID},
	{"Creation Time: ", kpLineCTime},
	{"Last Access: ", kpLineATime},
	{"Last Modification: ", kpLineMTime},
	{"Expires: ", kpLineXTime},
	{"Notes: ", kpLineNotes},
	{"Attachment Description: ", kpLineIgnored},
	{"Attachment: ", kpLineIgnored},
	{"Icon: ", kpLineIgnored},
}

func classifyKeePassLine(line string) (kpLineKind, string, bool) {
	for _, p := range kpLinePrefixes {
		if v, ok := strings.CutPrefix(line, p.prefix); ok {
			return p.kind, v, true
		}
	}
	return 0, "", false
}

func isKeePassTitle(line string) bool {
	return len(line) >= 2 && line[0] == '[' && line[len(line)-1] == ']'
}

// KeePassText imports the text export of KeePass 1.x written with the
// "encode newlines as \n" option.
//
// A record starts with a "[Title]" line and ends at a blank line or at the
// next title line. Attachment and icon lines are ignored.
type KeePassText struct{}

func NewKeePassText() *KeePassText {
	return &KeePassText{}
}

func (k *KeePassText) Import(ctx context.Context, r io.Reader, run *Run) models.Status {
	log := logger.FromContext(ctx)

	data, err := readAll(r)
	if err != nil {
		log.Err(err).Str("func", "KeePassText.Import").Msg("error reading input")
		run.Report.WriteLine("Error reading file: %v", err)
		return models.Failure
	}

	ln := newLines(data, false)
	for {
		raw, ok := ln.next()
		if !ok {
			break
		}
		text := string(raw)
		if text == "" {
			continue
		}

		if !isKeePassTitle(text) {
			if run.Stats.Imported == 0 && run.Stats.Skipped == 0 {
				run.Report.WriteLine("Line %d: expected a [title] line, found %q", ln.num, text)
				return models.InvalidFormat
			}
			run.Skip(ln.num, "unexpected line outside a record, line skipped")
			continue
		}

		rec := keePassRecord{line: ln.num, title: text[1 : len(text)-1]}
		k.readFields(ctx, ln, &rec)
		run.acceptKeePass(ctx, rec)
	}

	log.Debug().
		Str("func", "KeePassText.Import").
		Int("imported", run.Stats.Imported).
		Msg("KeePass text import finished")
	return run.Status()
}

func (k *KeePassText) readFields(ctx context.Context, ln *lines, rec *keePassRecord) {
	log := logger.FromContext(ctx)

	for {
		raw, ok := ln.next()
		if !ok {
			return
		}
		text := string(raw)
		if text == "" {
			return
		}
		if isKeePassTitle(text) {
			ln.unread()
			return
		}

		kind, value, known := classifyKeePassLine(text)
		if !known {
			log.Debug().
				Str("func", "KeePassText.readFields").
				Int("line", ln.num).
				Msg("unrecognised line ignored")
			continue
		}

		switch kind {
		case kpLineGroup:
			rec.group = strings.ReplaceAll(value, ".", "/")
		case kpLineGroupTree:
			rec.parents = keePassParents(value)
		case kpLineUser:
			rec.user = value
		case kpLineURL:
			rec.url = value
		case kpLinePassword:
			rec.password = value
		case kpLineUUID:
			rec.uuid = value
		case kpLineCTime:
			rec.ctime = parseKeePassTime(value)
		case kpLineATime:
			rec.atime = parseKeePassTime(value)
		case kpLineMTime:
			rec.mtime = parseKeePassTime(value)
		case kpLineXTime:
			rec.xtime = parseKeePassTime(value)
		case kpLineNotes:
			rec.notes = strings.ReplaceAll(value, `\r\n`, crlf)
		}
	}
}

// keePassParents turns a backslash separated parent group list into the
// dotted group prefix. Dots inside group names become slashes.
func keePassParents(tree string) string {
	var b strings.Builder
	for _, g := range strings.Split(strings.ReplaceAll(tree, ".", "/"), `\`) {
		b.WriteString(g)
		b.WriteByte('.')
	}
	return b.String()
}

// parseKeePassTime returns the zero time for values that are not in the
// "YYYY-MM-DD hh:mm:ss" form.
func parseKeePassTime(s string) time.Time {
	t, err := datetime.ParseLegacy(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// acceptKeePass builds the entry of a KeePass record, shared by the text
// and CSV importers.
func (r *Run) acceptKeePass(ctx context.Context, rec keePassRecord) {
	group := KeePassPrefix
	if full := rec.parents + rec.group; full != "" {
		group += "." + full
	}
	if r.Request.ImportPrefix != "" {
		group = r.Request.ImportPrefix + "." + group
	}

	title := rec.title
	if title == "" {
		title = KeePassDefault
	}
	password := rec.password
	if password == "" {
		password = KeePassDefault
	}

	e := models.Entry{
		Group:    group,
		User:     rec.user,
		Password: password,
		URL:      rec.url,
		Notes:    rec.notes,
		CTime:    rec.ctime,
		ATime:    rec.atime,
		PMTime:   rec.mtime,
		RMTime:   rec.mtime,
		XTime:    rec.xtime,
	}
	if len(rec.uuid) == 32 {
		e.UUID, _ = r.Reconciler.ReserveIdentifier(rec.uuid)
	} else {
		e.UUID = r.Reconciler.NewIdentifier()
	}
	e.Title = r.Reserve(rec.line, group, title, rec.user)

	r.Accept(ctx, e, false)
}
