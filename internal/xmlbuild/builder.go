// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package xmlbuild assembles vault entries from the parse events of an XML
// export.
//
// A Builder runs in one of two modes. Validate walks the document, counts
// entry elements and collects error text without producing anything.
// Import turns every entry element into a models.Entry and hands it to a
// Sink. Running a validate pass first lets consistency problems surface
// before anything is added to the vault.
package xmlbuild

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-pass-transfer/internal/datetime"
	"github.com/MKhiriev/go-pass-transfer/internal/logger"
	"github.com/MKhiriev/go-pass-transfer/internal/pwhistory"
	"github.com/MKhiriev/go-pass-transfer/models"
)

// Mode selects what a Builder does with the events it receives.
type Mode int

const (
	Validate Mode = iota
	Import
)

// DefaultDelimiter is assumed when the root element carries none.
const DefaultDelimiter = '^'

// DefaultMinHashIterations is the lowest key-stretching count; header
// values at or below it are ignored.
const DefaultMinHashIterations = 2048

const maxExpiryInterval = 3650

// ErrPolicyWithoutFlags is reported for an entry policy that sets lengths
// but no character class.
var ErrPolicyWithoutFlags = errors.New("password policy selects no character class")

//go:generate mockgen -source=builder.go -destination=../mock/xml_sink_mock.go -package=mock

// Sink receives the entries built in import mode together with the
// per-record diagnostics.
type Sink interface {
	ReserveIdentifier(raw string) uuid.UUID
	Reserve(line int, group, title, user string) string
	Accept(ctx context.Context, e models.Entry, forceNormal bool)
	InvalidField(line int, field models.FieldType, value string, err error)
	HistoryError(line int, key models.GTU, err error)
}

// Options configure a Builder.
type Options struct {
	Mode Mode

	// Prefix is prepended to the group of every imported entry.
	Prefix string

	// Delimiter stands for line breaks in notes. The delimiter attribute of
	// the root element takes precedence.
	Delimiter rune

	MinHashIterations int
}

// Result is what a Builder has seen once the document has ended.
type Result struct {
	// Entries counts entry elements in validate mode and submitted entries
	// in import mode.
	Entries int

	// Delimiter is the delimiter in effect for the document.
	Delimiter rune

	// Errors holds parser and structural error text.
	Errors []string

	Header models.VaultHeader

	RecordsWithUnknownFields int
	HeaderErrors             int
	RecordErrors             int
}

// Builder is single-use: create one per document and pass.
type Builder struct {
	ctx     context.Context
	opts    Options
	sink    Sink
	locator Locator

	result Result

	depth      int
	sawRoot    bool
	text       strings.Builder
	inHeader   bool
	fieldType  int
	fieldHex   bool
	which      tag
	pending    *pendingEntry
	historyOld *oldPassword
}

type stamp struct {
	date, clock, text string
}

func (s stamp) String() string {
	switch {
	case s.date != "" && s.clock != "":
		return s.date + " " + s.clock
	case s.date != "":
		return s.date
	default:
		return strings.TrimSpace(s.text)
	}
}

type oldPassword struct {
	changed  stamp
	password string
}

type pendingEntry struct {
	line   int
	normal bool

	seen map[tag]bool

	uuid, group, title, user, password string
	url, autotype, notes               string
	runCommand, dca, email, symbols    string
	protected                          string
	xtimeInterval                      string

	stamps map[tag]*stamp

	hasHistory        bool
	hStatus, hMax     int
	hNum              int
	old               []oldPassword
	policy            models.PasswordPolicy
	unknown           []models.UnknownField
	unknownBeforeList int
}

// NewBuilder returns a builder for one pass. sink may be nil in validate
// mode.
func NewBuilder(ctx context.Context, opts Options, sink Sink) *Builder {
	if opts.Delimiter == 0 {
		opts.Delimiter = DefaultDelimiter
	}
	if opts.MinHashIterations == 0 {
		opts.MinHashIterations = DefaultMinHashIterations
	}
	return &Builder{
		ctx:    ctx,
		opts:   opts,
		sink:   sink,
		result: Result{Delimiter: opts.Delimiter},
	}
}

// Result returns the outcome of the pass.
func (b *Builder) Result() Result {
	return b.result
}

func (b *Builder) SetDocumentLocator(l Locator) {
	b.locator = l
}

func (b *Builder) line() int {
	if b.locator == nil {
		return 0
	}
	line, _ := b.locator.Position()
	return line
}

func (b *Builder) addError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if b.locator != nil {
		line, col := b.locator.Position()
		msg = fmt.Sprintf("line %d, column %d: %s", line, col, msg)
	}
	b.result.Errors = append(b.result.Errors, msg)
}

func (b *Builder) StartDocument() {
	b.result.Errors = b.result.Errors[:0]
	b.pending = nil
	b.depth = 0
}

func (b *Builder) EndDocument() {
	if !b.sawRoot {
		b.addError("no passwordsafe root element")
	}
	logger.FromContext(b.ctx).Debug().
		Str("func", "Builder.EndDocument").
		Int("entries", b.result.Entries).
		Int("errors", len(b.result.Errors)).
		Msg("document processed")
}

func (b *Builder) Error(msg string, line, column int) {
	b.result.Errors = append(b.result.Errors, fmt.Sprintf("line %d, column %d: %s", line, column, msg))
}

func (b *Builder) StartElement(name string, attrs []Attr) {
	b.depth++
	b.text.Reset()
	t := lookupTag(name)

	if b.depth == 1 {
		if t != tagPasswordSafe {
			b.addError("root element is <%s>, expected <passwordsafe>", name)
			return
		}
		b.sawRoot = true
		for _, a := range attrs {
			if a.Name == "delimiter" && a.Value != "" {
				r, _ := utf8.DecodeRuneInString(a.Value)
				b.result.Delimiter = r
			}
		}
		return
	}

	if t == tagUnknown {
		if b.opts.Mode == Validate {
			b.addError("unexpected element <%s>", name)
		}
		return
	}

	switch t {
	case tagEntry:
		if b.pending != nil {
			b.addError("nested <entry>")
		}
		b.pending = &pendingEntry{
			line:   b.line(),
			seen:   make(map[tag]bool),
			stamps: make(map[tag]*stamp),
		}
		for _, a := range attrs {
			if a.Name == "normal" && (a.Value == "true" || a.Value == "1") {
				b.pending.normal = true
			}
		}
	case tagUnknownHeaderFields:
		b.inHeader = true
		b.result.Header.UnknownFields = nil
	case tagUnknownRecordFields:
		if b.pending != nil {
			b.pending.unknownBeforeList = len(b.pending.unknown)
		}
	case tagField:
		b.fieldType, b.fieldHex = -1, false
		for _, a := range attrs {
			switch a.Name {
			case "ftype":
				if n, err := strconv.Atoi(strings.TrimSpace(a.Value)); err == nil {
					b.fieldType = n
				}
			case "encoding":
				b.fieldHex = strings.EqualFold(a.Value, "hex")
			}
		}
	case tagHistoryEntry:
		b.historyOld = &oldPassword{}
	}

	if t.timeSlot() {
		b.which = t
		if b.pending != nil && t != tagChanged {
			b.pending.stamps[t] = &stamp{}
		}
	}
}

func (b *Builder) Characters(text string) {
	if b.opts.Mode == Validate {
		return
	}
	b.text.WriteString(text)
}

func (b *Builder) EndElement(name string) {
	defer func() {
		b.depth--
		b.text.Reset()
	}()

	t := lookupTag(name)

	if b.opts.Mode == Validate {
		b.endValidate(t)
		return
	}

	content := b.text.String()
	switch {
	case t == tagEntry:
		b.finishEntry()
	case t == tagNumberHashIterations:
		if n, err := strconv.Atoi(strings.TrimSpace(content)); err == nil && n > b.opts.MinHashIterations {
			b.result.Header.NumberHashIterations = n
		}
	case t == tagUnknownHeaderFields:
		b.inHeader = false
	case t == tagUnknownRecordFields:
		if b.pending != nil && len(b.pending.unknown) > b.pending.unknownBeforeList {
			b.result.RecordsWithUnknownFields++
		}
	case t == tagField:
		b.endField(content)
	case t == tagDate || t == tagTime:
		b.endStampPart(t, content)
	case t.timeSlot():
		b.endStamp(t, content)
	case b.pending != nil:
		b.endEntryLeaf(t, content)
	default:
		b.endPreference(t, content)
	}
}

func (b *Builder) endValidate(t tag) {
	switch t {
	case tagEntry:
		if p := b.pending; p != nil {
			if !p.seen[tagTitle] {
				b.addError("entry %d has no <title>", b.result.Entries+1)
			}
			if !p.seen[tagPassword] {
				b.addError("entry %d has no <password>", b.result.Entries+1)
			}
		}
		b.pending = nil
		b.result.Entries++
	default:
		if b.pending != nil {
			b.pending.seen[t] = true
		}
	}
}

func (b *Builder) endStampPart(t tag, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	var s *stamp
	switch {
	case b.which == tagChanged && b.historyOld != nil:
		s = &b.historyOld.changed
	case b.pending != nil:
		s = b.pending.stamps[b.which]
	}
	if s == nil {
		return
	}
	if t == tagDate {
		s.date = content
	} else {
		s.clock = content
	}
}

// endStamp handles the closing tag of a timestamp element. A timestamp
// written as element text instead of date and time children is kept too.
func (b *Builder) endStamp(t tag, content string) {
	defer func() { b.which = tagUnknown }()

	var s *stamp
	switch {
	case t == tagChanged && b.historyOld != nil:
		s = &b.historyOld.changed
	case b.pending != nil:
		s = b.pending.stamps[t]
	}
	if s != nil && s.date == "" {
		s.text = content
	}
}

func (b *Builder) endField(content string) {
	raw := strings.Join(strings.Fields(content), "")

	var (
		data []byte
		err  error
	)
	if b.fieldHex {
		data, err = hex.DecodeString(raw)
	} else {
		data, err = base64.StdEncoding.DecodeString(raw)
	}

	inRecord := !b.inHeader && b.pending != nil
	if err != nil || b.fieldType < 0 || b.fieldType > 0xff {
		b.addError("unreadable unknown field of type %d", b.fieldType)
		if inRecord {
			b.result.RecordErrors++
		} else {
			b.result.HeaderErrors++
		}
		return
	}

	f := models.UnknownField{Type: byte(b.fieldType), Data: data}
	switch {
	case inRecord && f.Type >= models.RecordLast:
		b.pending.unknown = append(b.pending.unknown, f)
	case inRecord:
		b.result.RecordErrors++
	case f.Type >= models.HeaderLast:
		b.result.Header.UnknownFields = append(b.result.Header.UnknownFields, f)
	default:
		b.result.HeaderErrors++
	}
}

func (b *Builder) endEntryLeaf(t tag, content string) {
	p := b.pending
	p.seen[t] = true

	switch t {
	case tagGroup:
		p.group = content
	case tagTitle:
		p.title = content
	case tagUsername:
		p.user = content
	case tagPassword:
		p.password = content
	case tagURL:
		p.url = content
	case tagAutoType:
		p.autotype = content
	case tagNotes:
		p.notes = content
	case tagUUID:
		p.uuid = strings.TrimSpace(content)
	case tagRunCommand:
		p.runCommand = content
	case tagDCA:
		p.dca = strings.TrimSpace(content)
	case tagEmail:
		p.email = content
	case tagProtected:
		p.protected = strings.TrimSpace(content)
	case tagSymbols:
		p.symbols = content
	case tagXTimeInterval:
		p.xtimeInterval = strings.TrimSpace(content)

	case tagStatus:
		p.hasHistory = true
		p.hStatus = atoi(content)
	case tagMax:
		p.hMax = atoi(content)
	case tagNum:
		p.hNum = atoi(content)
	case tagOldPassword:
		old := oldPassword{password: content}
		if b.historyOld != nil {
			old.changed = b.historyOld.changed
		}
		p.old = append(p.old, old)
	case tagHistoryEntry:
		b.historyOld = nil

	case tagPWLength:
		p.policy.Length = count(content)
	case tagPWUseDigits:
		p.policy.SetFlag(models.PolicyUseDigits, flagValue(content))
	case tagPWUseEasyVision:
		p.policy.SetFlag(models.PolicyUseEasyVision, flagValue(content))
	case tagPWUseHexDigits:
		p.policy.SetFlag(models.PolicyUseHexDigits, flagValue(content))
	case tagPWUseLowercase:
		p.policy.SetFlag(models.PolicyUseLowercase, flagValue(content))
	case tagPWUseSymbols:
		p.policy.SetFlag(models.PolicyUseSymbols, flagValue(content))
	case tagPWUseUppercase:
		p.policy.SetFlag(models.PolicyUseUppercase, flagValue(content))
	case tagPWMakePronounceable:
		p.policy.SetFlag(models.PolicyMakePronounceable, flagValue(content))
	case tagPWDigitMinLength:
		p.policy.DigitMin = count(content)
	case tagPWLowercaseMinLength:
		p.policy.LowerMin = count(content)
	case tagPWSymbolMinLength:
		p.policy.SymbolMin = count(content)
	case tagPWUppercaseMinLength:
		p.policy.UpperMin = count(content)
	}
}

func (b *Builder) endPreference(t tag, content string) {
	prefs := &b.result.Header.Preferences
	content = strings.TrimSpace(content)

	boolPrefs := map[tag]**bool{
		tagDisplayExpandedAddEditDlg: &prefs.DisplayExpandedAddEditDlg,
		tagMaintainDateTimeStamps:    &prefs.MaintainDateTimeStamps,
		tagPWUseDigits:               &prefs.PWUseDigits,
		tagPWUseEasyVision:           &prefs.PWUseEasyVision,
		tagPWUseHexDigits:            &prefs.PWUseHexDigits,
		tagPWUseLowercase:            &prefs.PWUseLowercase,
		tagPWUseSymbols:              &prefs.PWUseSymbols,
		tagPWUseUppercase:            &prefs.PWUseUppercase,
		tagPWMakePronounceable:       &prefs.PWMakePronounceable,
		tagSaveImmediately:           &prefs.SaveImmediately,
		tagSavePasswordHistory:       &prefs.SavePasswordHistory,
		tagShowNotesDefault:          &prefs.ShowNotesDefault,
		tagShowPWDefault:             &prefs.ShowPWDefault,
		tagShowPasswordInTree:        &prefs.ShowPasswordInTree,
		tagShowUsernameInTree:        &prefs.ShowUsernameInTree,
		tagSortAscending:             &prefs.SortAscending,
		tagUseDefaultUser:            &prefs.UseDefaultUser,
	}
	if dst, ok := boolPrefs[t]; ok {
		v := flagValue(content)
		*dst = &v
		return
	}

	intPrefs := map[tag]**int{
		tagPWDefaultLength:      &prefs.PWDefaultLength,
		tagIdleTimeout:          &prefs.IdleTimeout,
		tagNumPWHistoryDefault:  &prefs.NumPWHistoryDefault,
		tagPWDigitMinLength:     &prefs.PWDigitMinLength,
		tagPWLowercaseMinLength: &prefs.PWLowercaseMinLength,
		tagPWSymbolMinLength:    &prefs.PWSymbolMinLength,
		tagPWUppercaseMinLength: &prefs.PWUppercaseMinLength,
	}
	if dst, ok := intPrefs[t]; ok {
		n, err := strconv.Atoi(content)
		if err != nil {
			b.addError("preference value %q is not a number", content)
			return
		}
		*dst = &n
		return
	}

	switch t {
	case tagTreeDisplayStatusAtOpen:
		if s, ok := models.ParseTreeDisplayStatus(content); ok {
			prefs.TreeDisplayStatusAtOpen = &s
		}
	case tagDefaultUsername:
		prefs.DefaultUsername = &content
	case tagDefaultAutotypeString:
		prefs.DefaultAutotypeString = &content
	}
}

// finishEntry turns the pending entry into a vault entry and submits it.
func (b *Builder) finishEntry() {
	p := b.pending
	b.pending = nil
	if p == nil {
		return
	}

	group := emptyIfBlank(p.group)
	if b.opts.Prefix != "" {
		if group != "" {
			group = b.opts.Prefix + "." + group
		} else {
			group = b.opts.Prefix
		}
	}

	title := strings.ReplaceAll(emptyIfBlank(p.title), string(b.result.Delimiter), ".")
	user := emptyIfBlank(p.user)

	e := models.Entry{
		UUID:       b.sink.ReserveIdentifier(p.uuid),
		Group:      group,
		User:       user,
		Password:   p.password,
		URL:        emptyIfBlank(p.url),
		AutoType:   emptyIfBlank(p.autotype),
		RunCommand: p.runCommand,
		Email:      p.email,
		Symbols:    p.symbols,
		Protected:  p.protected == "1" || strings.EqualFold(p.protected, "true"),
	}
	e.Title = b.sink.Reserve(p.line, group, title, user)

	if notes := emptyIfBlank(p.notes); notes != "" {
		e.Notes = strings.ReplaceAll(notes, string(b.result.Delimiter), "\r\n")
	}

	for _, ts := range []struct {
		tag   tag
		field models.FieldType
		dst   *time.Time
	}{
		{tagCTime, models.FieldCTime, &e.CTime},
		{tagPMTime, models.FieldPMTime, &e.PMTime},
		{tagATime, models.FieldATime, &e.ATime},
		{tagXTime, models.FieldXTime, &e.XTime},
		{tagRMTime, models.FieldRMTime, &e.RMTime},
	} {
		s, ok := p.stamps[ts.tag]
		if !ok || s.String() == "" {
			continue
		}
		t, err := datetime.Parse(s.String())
		if err != nil {
			b.sink.InvalidField(p.line, ts.field, s.String(), err)
			continue
		}
		*ts.dst = t
	}

	if p.xtimeInterval != "" {
		n, err := strconv.Atoi(p.xtimeInterval)
		switch {
		case err != nil:
			b.sink.InvalidField(p.line, models.FieldXTimeInterval, p.xtimeInterval, err)
		case n > 0 && n <= maxExpiryInterval:
			e.XTimeInterval = n
		}
	}

	if p.dca != "" {
		n, err := strconv.Atoi(p.dca)
		if err != nil {
			b.sink.InvalidField(p.line, models.FieldDCA, p.dca, err)
		} else {
			e.DCA = &n
		}
	}

	switch {
	case p.policy.Flags != 0:
		policy := p.policy
		e.Policy = &policy
	case p.policy != models.PasswordPolicy{}:
		// lengths alone do not make a policy
		b.sink.InvalidField(p.line, models.FieldPolicy, p.policy.String(), ErrPolicyWithoutFlags)
	}

	if p.hasHistory {
		h, err := pwhistory.Decode(compactHistory(p))
		switch {
		case err == nil:
			e.History = h
		case errors.Is(err, pwhistory.ErrIgnore):
		default:
			b.sink.HistoryError(p.line, e.GTU(), err)
		}
	}

	if len(p.unknown) > 0 {
		e.UnknownFields = p.unknown
	}

	b.sink.Accept(b.ctx, e, p.normal)
	b.result.Entries++
}

// compactHistory renders the history elements of p in the compact string
// form so that one decoder validates both text and XML imports. Values that
// do not fit their digit width are written as non-hex placeholders, which
// the decoder rejects with the matching error kind.
func compactHistory(p *pendingEntry) string {
	var sb strings.Builder
	sb.WriteString(hexDigits(p.hStatus, 1))
	sb.WriteString(hexDigits(p.hMax, 2))
	sb.WriteString(hexDigits(p.hNum, 2))

	for _, old := range p.old {
		secs := 0
		if s := old.changed.String(); s != "" {
			t, err := datetime.Parse(s)
			if err != nil {
				secs = -1
			} else {
				secs = int(t.Unix())
			}
		}
		sb.WriteString(hexDigits(secs, 8))
		sb.WriteString(hexDigits(utf8.RuneCountInString(old.password), 2))
		sb.WriteString(old.password)
	}
	return sb.String()
}

func hexDigits(v, width int) string {
	if v < 0 || v >= 1<<(4*width) {
		return strings.Repeat("z", width)
	}
	return fmt.Sprintf("%0*x", width, v)
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return -1
	}
	return n
}

// count is atoi clamped to zero for policy lengths.
func count(s string) int {
	return max(atoi(s), 0)
}

// flagValue treats an empty element as set, as older exports wrote the
// bare element.
func flagValue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1", "true", "yes":
		return true
	}
	return false
}

func emptyIfBlank(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
