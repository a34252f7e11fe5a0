package exporter

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MKhiriev/go-pass-transfer/internal/datetime"
	"github.com/MKhiriev/go-pass-transfer/internal/logger"
	"github.com/MKhiriev/go-pass-transfer/internal/report"
	"github.com/MKhiriev/go-pass-transfer/internal/utils"
	"github.com/MKhiriev/go-pass-transfer/models"
)

// MinHashIterations is the key-stretching count below which the header
// does not carry NumberHashIterations.
const MinHashIterations = 2048

// XML writes the native XML export.
type XML struct {
	Now func() time.Time
}

func NewXML() *XML {
	return &XML{Now: time.Now}
}

func (x *XML) Export(ctx context.Context, w io.Writer, entries []models.Entry, req models.ExportRequest, rpt *report.Report) (models.Status, int, error) {
	log := logger.FromContext(ctx)

	if status, ok := precheck(entries, req, rpt); !ok {
		return status, 0, nil
	}
	if req.Delimiter == 0 {
		req.Delimiter = DefaultDelimiter
	}

	bw := bufio.NewWriter(w)
	x.writeHeader(bw, req)
	if err := bw.Flush(); err != nil {
		return models.Failure, 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	idx := indexEntries(entries)
	exported, id := 0, 0
	for _, e := range entries {
		id++
		if !selected(e, req) {
			continue
		}
		e = checkHistory(e, req.Fields, rpt)
		rpt.WriteLine("%s", e.GTU())
		writeEntry(bw, id, e, req, idx)
		if err := bw.Flush(); err != nil {
			log.Err(err).Str("func", "XML.Export").Int("exported", exported).Msg("write failed")
			return models.Failure, exported, fmt.Errorf("%w: %w", ErrWrite, err)
		}
		exported++
	}

	bw.WriteString("</passwordsafe>\n")
	if err := bw.Flush(); err != nil {
		return models.Failure, exported, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	log.Debug().Str("func", "XML.Export").Int("exported", exported).Msg("XML export finished")
	return models.Success, exported, nil
}

func (x *XML) writeHeader(bw *bufio.Writer, req models.ExportRequest) {
	h := req.Header
	now := time.Now
	if x.Now != nil {
		now = x.Now
	}
	date, clock := datetime.FormatXML(now())

	bw.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	bw.WriteString("<?xml-stylesheet type=\"text/xsl\" href=\"pwsafe.xsl\"?>\n\n")
	bw.WriteString("<passwordsafe\n")
	fmt.Fprintf(bw, "delimiter=\"%s\"\n", attr(string(req.Delimiter)))
	fmt.Fprintf(bw, "Database=\"%s\"\n", attr(h.DatabaseName))
	fmt.Fprintf(bw, "ExportTimeStamp=\"%sT%s\"\n", date, clock)
	fmt.Fprintf(bw, "FromDatabaseFormat=\"%d.%02d\"\n", h.MajorVersion, h.MinorVersion)
	if h.WhoSaved != "" {
		fmt.Fprintf(bw, "WhoSaved=\"%s\"\n", attr(h.WhoSaved))
	}
	if h.WhatSaved != "" {
		fmt.Fprintf(bw, "WhatSaved=\"%s\"\n", attr(h.WhatSaved))
	}
	if h.WhenLastSaved != "" {
		fmt.Fprintf(bw, "WhenLastSaved=\"%s\"\n", attr(h.WhenLastSaved))
	}
	if h.UUID != "" {
		fmt.Fprintf(bw, "Database_uuid=\"%s\"\n", attr(h.UUID))
	}
	bw.WriteString("xmlns:xsi=\"http://www.w3.org/2001/XMLSchema-instance\"\n")
	bw.WriteString("xsi:noNamespaceSchemaLocation=\"pwsafe.xsd\">\n\n")

	if h.NumberHashIterations > MinHashIterations {
		fmt.Fprintf(bw, "\t<NumberHashIterations>%d</NumberHashIterations>\n", h.NumberHashIterations)
	}

	bw.WriteString(" <!-- Preferences stored in the database --> \n")
	writePreferences(bw, h.Preferences)

	if len(h.UnknownFields) > 0 {
		bw.WriteString("\t<unknownheaderfields>\n")
		for _, f := range h.UnknownFields {
			writeUnknownField(bw, "\t\t", f)
		}
		bw.WriteString("\t</unknownheaderfields>\n")
	}

	writeRestrictions(bw, req)
	bw.WriteString("\n")
}

// writeRestrictions emits a comment describing an active filter, subgroup
// or field restriction.
func writeRestrictions(bw *bufio.Writer, req models.ExportRequest) {
	var lines []string
	if req.FilterName != "" {
		lines = append(lines, "Filter active: "+req.FilterName)
	}
	partialFields := !req.Fields.IsAll()
	if req.Subgroup != nil || partialFields {
		lines = append(lines, "Export restricted to a subset of entries and/or fields")
	}
	if f := req.Subgroup; f != nil {
		sensitivity := "case insensitive"
		if f.CaseSensitive {
			sensitivity = "case sensitive"
		}
		lines = append(lines, "Subset of entries where:",
			fmt.Sprintf(" '%s'  '%s'  '%s' %s", f.Field.Name(), f.Rule, f.Value, sensitivity))
	}
	if partialFields {
		lines = append(lines, "Fields excluded:",
			strings.ReplaceAll(TextHeader(models.FieldSelection{Fields: req.Fields.Effective(), Included: false}), "\t", ", "))
	}
	if len(lines) == 0 {
		return
	}

	bw.WriteString(" <!-- \n")
	for _, l := range lines {
		bw.WriteString("     " + comment(l) + "\n")
	}
	bw.WriteString(" --> \n")
}

type boolPref struct {
	name  string
	value *bool
}

type intPref struct {
	name  string
	value *int
}

func writePreferences(bw *bufio.Writer, p models.Preferences) {
	bools := []boolPref{
		{"DisplayExpandedAddEditDlg", p.DisplayExpandedAddEditDlg},
		{"MaintainDateTimeStamps", p.MaintainDateTimeStamps},
		{"PWUseDigits", p.PWUseDigits},
		{"PWUseEasyVision", p.PWUseEasyVision},
		{"PWUseHexDigits", p.PWUseHexDigits},
		{"PWUseLowercase", p.PWUseLowercase},
		{"PWUseSymbols", p.PWUseSymbols},
		{"PWUseUppercase", p.PWUseUppercase},
		{"PWMakePronounceable", p.PWMakePronounceable},
		{"SaveImmediately", p.SaveImmediately},
		{"SavePasswordHistory", p.SavePasswordHistory},
		{"ShowNotesDefault", p.ShowNotesDefault},
		{"ShowPWDefault", p.ShowPWDefault},
		{"ShowPasswordInTree", p.ShowPasswordInTree},
		{"ShowUsernameInTree", p.ShowUsernameInTree},
		{"SortAscending", p.SortAscending},
		{"UseDefaultUser", p.UseDefaultUser},
	}
	ints := []intPref{
		{"PWDefaultLength", p.PWDefaultLength},
		{"IdleTimeout", p.IdleTimeout},
		{"NumPWHistoryDefault", p.NumPWHistoryDefault},
		{"PWDigitMinLength", p.PWDigitMinLength},
		{"PWLowercaseMinLength", p.PWLowercaseMinLength},
		{"PWSymbolMinLength", p.PWSymbolMinLength},
		{"PWUppercaseMinLength", p.PWUppercaseMinLength},
	}

	var b strings.Builder
	for _, pref := range bools {
		if pref.value != nil {
			fmt.Fprintf(&b, "\t\t<%s>%s</%s>\n", pref.name, boolText(*pref.value), pref.name)
		}
	}
	for _, pref := range ints {
		if pref.value != nil {
			fmt.Fprintf(&b, "\t\t<%s>%d</%s>\n", pref.name, *pref.value, pref.name)
		}
	}
	if p.TreeDisplayStatusAtOpen != nil {
		fmt.Fprintf(&b, "\t\t<TreeDisplayStatusAtOpen>%s</TreeDisplayStatusAtOpen>\n", *p.TreeDisplayStatusAtOpen)
	}
	if p.DefaultUsername != nil {
		fmt.Fprintf(&b, "\t\t<DefaultUsername>%s</DefaultUsername>\n", cdata(*p.DefaultUsername))
	}
	if p.DefaultAutotypeString != nil {
		fmt.Fprintf(&b, "\t\t<DefaultAutotypeString>%s</DefaultAutotypeString>\n", cdata(*p.DefaultAutotypeString))
	}

	if b.Len() == 0 {
		return
	}
	bw.WriteString("\t<Preferences>\n")
	bw.WriteString(b.String())
	bw.WriteString("\t</Preferences>\n")
}

func writeEntry(bw *bufio.Writer, id int, e models.Entry, req models.ExportRequest, idx bases) {
	sel := req.Fields
	password := idx.password(e)
	if password == "" {
		password = "*MISSING*"
	}

	if !e.IsDependent() && models.LooksLikeReference(password) {
		fmt.Fprintf(bw, "\t<entry id=\"%d\" normal=\"true\">\n", id)
	} else {
		fmt.Fprintf(bw, "\t<entry id=\"%d\">\n", id)
	}

	text := func(name, value string) {
		if value != "" {
			fmt.Fprintf(bw, "\t\t<%s>%s</%s>\n", name, cdata(value), name)
		}
	}
	stamp := func(name string, t time.Time) {
		if t.IsZero() {
			return
		}
		date, clock := datetime.FormatXML(t)
		fmt.Fprintf(bw, "\t\t<%s><date>%s</date><time>%s</time></%s>\n", name, date, clock, name)
	}

	if sel.Selects(models.FieldGroup) {
		text("group", e.Group)
	}
	text("title", e.Title)
	if sel.Selects(models.FieldUser) {
		text("username", e.User)
	}
	text("password", password)
	if sel.Selects(models.FieldURL) {
		text("url", e.URL)
	}
	if sel.Selects(models.FieldAutoType) {
		text("autotype", e.AutoType)
	}
	if sel.Selects(models.FieldNotes) {
		text("notes", joinLines(e.Notes, req.Delimiter))
	}
	fmt.Fprintf(bw, "\t\t<uuid>%s</uuid>\n", cdata(utils.FormatEntryUUID(e.UUID)))

	if sel.Selects(models.FieldCTime) {
		stamp("ctime", e.CTime)
	}
	if sel.Selects(models.FieldATime) {
		stamp("atime", e.ATime)
	}
	if sel.Selects(models.FieldXTime) {
		stamp("xtime", e.XTime)
	}
	if sel.Selects(models.FieldXTimeInterval) && e.XTimeInterval > 0 {
		fmt.Fprintf(bw, "\t\t<xtime_interval>%d</xtime_interval>\n", e.XTimeInterval)
	}
	if sel.Selects(models.FieldPMTime) {
		stamp("pmtime", e.PMTime)
	}
	if sel.Selects(models.FieldRMTime) {
		stamp("rmtime", e.RMTime)
	}

	if sel.Selects(models.FieldHistory) && !e.History.IsZero() {
		writeHistory(bw, e.History)
	}
	if sel.Selects(models.FieldPolicy) && e.Policy != nil {
		writePolicy(bw, *e.Policy)
	}

	if sel.Selects(models.FieldRunCommand) {
		text("runcommand", e.RunCommand)
	}
	if sel.Selects(models.FieldDCA) && e.DCA != nil {
		fmt.Fprintf(bw, "\t\t<dca>%d</dca>\n", *e.DCA)
	}
	if sel.Selects(models.FieldEmail) {
		text("email", e.Email)
	}
	if sel.Selects(models.FieldProtected) && e.Protected {
		bw.WriteString("\t\t<protected>1</protected>\n")
	}
	if sel.Selects(models.FieldSymbols) {
		text("symbols", e.Symbols)
	}

	if len(e.UnknownFields) > 0 {
		bw.WriteString("\t\t<unknownrecordfields>\n")
		for _, f := range e.UnknownFields {
			writeUnknownField(bw, "\t\t\t", f)
		}
		bw.WriteString("\t\t</unknownrecordfields>\n")
	}
	bw.WriteString("\t</entry>\n")
}

func writeHistory(bw *bufio.Writer, h models.PasswordHistory) {
	bw.WriteString("\t\t<pwhistory>\n")
	fmt.Fprintf(bw, "\t\t\t<status>%s</status>\n", boolText(h.Enabled))
	fmt.Fprintf(bw, "\t\t\t<max>%d</max>\n", h.Max)
	fmt.Fprintf(bw, "\t\t\t<num>%d</num>\n", len(h.Entries))
	if len(h.Entries) > 0 {
		bw.WriteString("\t\t\t<history_entries>\n")
		for i, old := range h.Entries {
			fmt.Fprintf(bw, "\t\t\t\t<history_entry num=\"%d\">\n", i+1)
			if !old.Changed.IsZero() {
				date, clock := datetime.FormatXML(old.Changed)
				fmt.Fprintf(bw, "\t\t\t\t\t<changed><date>%s</date><time>%s</time></changed>\n", date, clock)
			}
			fmt.Fprintf(bw, "\t\t\t\t\t<oldpassword>%s</oldpassword>\n", cdata(old.Password))
			bw.WriteString("\t\t\t\t</history_entry>\n")
		}
		bw.WriteString("\t\t\t</history_entries>\n")
	}
	bw.WriteString("\t\t</pwhistory>\n")
}

var policyFlagElements = []struct {
	flag uint16
	name string
}{
	{models.PolicyUseLowercase, "PWUseLowercase"},
	{models.PolicyUseUppercase, "PWUseUppercase"},
	{models.PolicyUseDigits, "PWUseDigits"},
	{models.PolicyUseSymbols, "PWUseSymbols"},
	{models.PolicyUseHexDigits, "PWUseHexDigits"},
	{models.PolicyUseEasyVision, "PWUseEasyVision"},
	{models.PolicyMakePronounceable, "PWMakePronounceable"},
}

func writePolicy(bw *bufio.Writer, p models.PasswordPolicy) {
	bw.WriteString("\t\t<PasswordPolicy>\n")
	fmt.Fprintf(bw, "\t\t\t<PWLength>%d</PWLength>\n", p.Length)
	for _, f := range policyFlagElements {
		if p.Flags&f.flag != 0 {
			fmt.Fprintf(bw, "\t\t\t<%s>1</%s>\n", f.name, f.name)
		}
	}
	fmt.Fprintf(bw, "\t\t\t<PWLowercaseMinLength>%d</PWLowercaseMinLength>\n", p.LowerMin)
	fmt.Fprintf(bw, "\t\t\t<PWUppercaseMinLength>%d</PWUppercaseMinLength>\n", p.UpperMin)
	fmt.Fprintf(bw, "\t\t\t<PWDigitMinLength>%d</PWDigitMinLength>\n", p.DigitMin)
	fmt.Fprintf(bw, "\t\t\t<PWSymbolMinLength>%d</PWSymbolMinLength>\n", p.SymbolMin)
	bw.WriteString("\t\t</PasswordPolicy>\n")
}

func writeUnknownField(bw *bufio.Writer, indent string, f models.UnknownField) {
	fmt.Fprintf(bw, "%s<field ftype=\"%d\">%s</field>\n", indent, f.Type, base64.StdEncoding.EncodeToString(f.Data))
}

func boolText(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func cdata(s string) string {
	return "<![CDATA[" + strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>") + "]]>"
}

func attr(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// comment keeps s from closing the surrounding XML comment.
func comment(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "- -")
	}
	return s
}
