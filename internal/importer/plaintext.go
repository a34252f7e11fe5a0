package importer

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-pass-transfer/internal/command"
	"github.com/MKhiriev/go-pass-transfer/internal/datetime"
	"github.com/MKhiriev/go-pass-transfer/internal/logger"
	"github.com/MKhiriev/go-pass-transfer/internal/pwhistory"
	"github.com/MKhiriev/go-pass-transfer/models"
)

const (
	maxExpiryInterval = 3650
	crlf              = "\r\n"
)

// Plaintext imports tab separated text files written by the text exporter.
type Plaintext struct{}

func NewPlaintext() *Plaintext {
	return &Plaintext{}
}

type plaintextRun struct {
	*Run
	offs   *offsets[models.FieldType]
	decode lineDecoder
	lines  *lines
}

func (p *Plaintext) Import(ctx context.Context, r io.Reader, run *Run) models.Status {
	log := logger.FromContext(ctx)

	data, err := readAll(r)
	if err != nil {
		log.Err(err).Str("func", "Plaintext.Import").Msg("error reading input")
		run.Report.WriteLine("Error reading file: %v", err)
		return models.Failure
	}

	decode, err := newLineDecoder(run.Request.Encoding)
	if err != nil {
		run.Report.WriteLine("%v", err)
		return models.Failure
	}

	pr := &plaintextRun{Run: run, decode: decode, lines: newLines(data, false)}
	if status, ok := pr.readHeader(); !ok {
		return status
	}

	for {
		raw, ok := pr.lines.next()
		if !ok {
			break
		}
		if status, ok := pr.processRow(ctx, raw); !ok {
			return status
		}
	}

	log.Debug().
		Str("func", "Plaintext.Import").
		Int("imported", run.Stats.Imported).
		Int("skipped", run.Stats.Skipped).
		Msg("plaintext import finished")
	return run.Status()
}

func (pr *plaintextRun) readHeader() (models.Status, bool) {
	raw, ok := pr.lines.next()
	if !ok {
		pr.Report.WriteLine("Error: no header record found")
		return models.Failure, false
	}
	header, ok := pr.decode(raw)
	if !ok {
		pr.Report.WriteLine("Error: header record is not valid text")
		return models.Failure, false
	}

	pr.offs = newOffsets[models.FieldType](int(models.FieldUUID) + 1)
	for i, name := range splitHeader(header) {
		if f, known := plaintextField(name); known {
			pr.offs.set(f, i)
		}
	}

	if pr.offs.found == 0 {
		pr.Report.WriteLine("Error: no recognised columns in the header record")
		return models.InvalidFormat, false
	}

	missing := !pr.offs.has(models.FieldPassword) || !pr.offs.has(models.FieldGroup)
	if pr.Request.PasswordsOnly {
		missing = missing || !pr.offs.has(models.FieldUser)
		if missing {
			pr.Report.WriteLine("Error: password updates need the %q, %q and %q columns",
				GroupTitleColumn, models.FieldUser.Name(), models.FieldPassword.Name())
			return models.InvalidFormat, false
		}
	} else if missing {
		pr.Report.WriteLine("Error: the %q and %q columns are mandatory", GroupTitleColumn, models.FieldPassword.Name())
		return models.InvalidFormat, false
	}

	if all := PlaintextColumns(); pr.offs.found < len(all) {
		var known []string
		for _, name := range all {
			if f, _ := plaintextField(name); pr.offs.has(f) {
				known = append(known, name)
			}
		}
		pr.Report.WriteLine("Header has %d recognised columns: %s", pr.offs.found, strings.Join(known, ", "))
	}
	return models.Success, true
}

// processRow handles one body row. ok is false when the import has to stop
// and status is its result.
func (pr *plaintextRun) processRow(ctx context.Context, raw []byte) (status models.Status, ok bool) {
	line := pr.lines.num

	if len(raw) == 0 {
		pr.Skip(line, "empty line skipped")
		return 0, true
	}
	row, valid := pr.decode(raw)
	if !valid {
		pr.Skip(line, "not valid %s text, line skipped", pr.encodingName())
		return 0, true
	}

	notesAt := pr.offs.index[models.FieldNotes]
	tokens := splitRow(row, pr.Request.FieldSeparator, notesAt)

	if notesAt >= 0 && notesAt < len(tokens) && quoteCount(tokens[notesAt]) == 1 {
		notes, closed := pr.readNotes(tokens[notesAt])
		if !closed {
			pr.Report.WriteLine("Line %d: notes field is missing its closing quote", line)
			if pr.Stats.Imported > 0 {
				pr.Stats.Skipped++
				return models.OKWithErrors, false
			}
			return models.InvalidFormat, false
		}
		tokens[notesAt] = notes
	}

	if len(tokens) < pr.offs.found {
		pr.Skip(line, "has %d fields, %d expected, line skipped", len(tokens), pr.offs.found)
		return 0, true
	}

	for i := range tokens {
		if i == notesAt {
			tokens[i] = cleanNotes(tokens[i])
			continue
		}
		tokens[i] = cleanToken(tokens[i])
	}

	password, _ := pr.offs.token(tokens, models.FieldPassword)
	if password == "" {
		pr.Skip(line, "no password, line skipped")
		return 0, true
	}

	groupTitle, _ := pr.offs.token(tokens, models.FieldGroup)
	if pr.Request.PasswordsOnly {
		pr.updatePassword(ctx, line, groupTitle, tokens, password)
		return 0, true
	}

	pr.addEntry(ctx, line, groupTitle, tokens, password)
	return 0, true
}

// readNotes joins the continuation lines of a quoted notes field with CRLF
// until a line holding exactly one quote closes it. Lines that cannot be
// decoded are reported and left out.
func (pr *plaintextRun) readNotes(first string) (string, bool) {
	var b strings.Builder
	b.WriteString(first)

	for {
		raw, ok := pr.lines.next()
		if !ok {
			return b.String(), false
		}
		text, valid := pr.decode(raw)
		if !valid {
			pr.Skip(pr.lines.num, "not valid %s text in notes, line dropped", pr.encodingName())
			continue
		}
		b.WriteString(crlf)
		b.WriteString(text)
		if quoteCount(text) == 1 {
			return b.String(), true
		}
	}
}

func (pr *plaintextRun) encodingName() string {
	if pr.Request.Encoding == "" {
		return "UTF-8"
	}
	return pr.Request.Encoding
}

func splitGroupTitle(groupTitle string) (group, title string) {
	if dot := strings.LastIndexByte(groupTitle, '.'); dot >= 0 {
		return groupTitle[:dot], groupTitle[dot+1:]
	}
	return "", groupTitle
}

func (pr *plaintextRun) updatePassword(ctx context.Context, line int, groupTitle string, tokens []string, password string) {
	group, title := splitGroupTitle(groupTitle)
	if title == "" {
		pr.Skip(line, "no title, line skipped")
		return
	}
	user, _ := pr.offs.token(tokens, models.FieldUser)

	key := models.GTU{Group: group, Title: title, User: user}
	e, err := pr.Vault.FindByGTU(ctx, key)
	if err != nil {
		pr.Skip(line, "entry %s not found", key)
		return
	}

	pr.Commands = append(pr.Commands, command.NewUpdatePassword(e.UUID, password, pr.Now().UTC()))
	pr.Stats.Imported++
	pr.Report.WriteLine("%s", key)
}

func (pr *plaintextRun) addEntry(ctx context.Context, line int, groupTitle string, tokens []string, password string) {
	group, title := splitGroupTitle(groupTitle)
	if prefix := pr.Request.ImportPrefix; prefix != "" {
		if group != "" {
			group = prefix + "." + group
		} else {
			group = prefix
		}
	}
	title = strings.ReplaceAll(title, string(pr.Request.Delimiter), ".")
	if title == "" {
		pr.Skip(line, "no title, line skipped")
		return
	}

	e := models.Entry{
		UUID:     pr.Reconciler.NewIdentifier(),
		Group:    group,
		Password: password,
	}
	e.User, _ = pr.offs.token(tokens, models.FieldUser)
	e.Title = pr.Reserve(line, group, title, e.User)

	e.URL, _ = pr.offs.token(tokens, models.FieldURL)
	e.AutoType, _ = pr.offs.token(tokens, models.FieldAutoType)
	e.RunCommand, _ = pr.offs.token(tokens, models.FieldRunCommand)
	e.Email, _ = pr.offs.token(tokens, models.FieldEmail)
	e.Symbols, _ = pr.offs.token(tokens, models.FieldSymbols)

	pr.setTime(line, tokens, models.FieldCTime, &e.CTime)
	pr.setTime(line, tokens, models.FieldPMTime, &e.PMTime)
	pr.setTime(line, tokens, models.FieldATime, &e.ATime)
	pr.setTime(line, tokens, models.FieldXTime, &e.XTime)
	pr.setTime(line, tokens, models.FieldRMTime, &e.RMTime)

	if v, ok := pr.offs.token(tokens, models.FieldXTimeInterval); ok && v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			pr.InvalidField(line, models.FieldXTimeInterval, v, err)
		case n < 0 || n > maxExpiryInterval:
			pr.InvalidField(line, models.FieldXTimeInterval, v, errors.New("out of range"))
		default:
			e.XTimeInterval = n
		}
	}

	if v, ok := pr.offs.token(tokens, models.FieldPolicy); ok && v != "" {
		policy, err := models.ParsePolicy(v)
		if err != nil {
			pr.InvalidField(line, models.FieldPolicy, v, err)
		} else {
			e.Policy = &policy
		}
	}

	if v, ok := pr.offs.token(tokens, models.FieldHistory); ok {
		h, err := pwhistory.Decode(v)
		switch {
		case err == nil:
			e.History = h
		case errors.Is(err, pwhistory.ErrIgnore):
		default:
			pr.HistoryError(line, e.GTU(), err)
		}
	}

	if v, ok := pr.offs.token(tokens, models.FieldDCA); ok && v != "" {
		dca, err := strconv.Atoi(v)
		if err != nil {
			pr.InvalidField(line, models.FieldDCA, v, err)
		} else {
			e.DCA = &dca
		}
	}

	if v, _ := pr.offs.token(tokens, models.FieldProtected); v == "Y" || v == "1" {
		e.Protected = true
	}

	if v, ok := pr.offs.token(tokens, models.FieldNotes); ok && v != "" {
		if n := len(v); n > 1 && v[0] == '"' && v[n-1] == '"' {
			v = v[1 : n-1]
		}
		e.Notes = strings.ReplaceAll(v, string(pr.Request.Delimiter), crlf)
	}

	pr.Accept(ctx, e, false)
}

func (pr *plaintextRun) setTime(line int, tokens []string, f models.FieldType, dst *time.Time) {
	v, ok := pr.offs.token(tokens, f)
	if !ok || v == "" {
		return
	}
	t, err := datetime.Parse(v)
	if err != nil {
		pr.InvalidField(line, f, v, err)
		return
	}
	*dst = t
}
