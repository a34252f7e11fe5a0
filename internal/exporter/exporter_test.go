package exporter

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pass-transfer/internal/command"
	"github.com/MKhiriev/go-pass-transfer/internal/importer"
	"github.com/MKhiriev/go-pass-transfer/internal/report"
	"github.com/MKhiriev/go-pass-transfer/internal/vault"
	"github.com/MKhiriev/go-pass-transfer/models"
)

var allFields = models.FieldSelection{Fields: models.AllFields, Included: true}

func sampleEntries() []models.Entry {
	dca := 1
	base := models.Entry{
		UUID:     uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		Group:    "Work.Mail",
		Title:    "Inbox v1.2",
		User:     "j",
		Password: "secret",
		URL:      "https://mail.example.com",
		Notes:    "line one\r\nline two",
		CTime:    time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
		History: models.PasswordHistory{Enabled: true, Max: 3, Entries: []models.HistoryEntry{
			{Changed: time.Unix(1000, 0).UTC(), Password: "older"},
		}},
		Policy:    &models.PasswordPolicy{Flags: models.PolicyUseDigits, Length: 12, DigitMin: 2},
		DCA:       &dca,
		Protected: true,
	}
	alias := models.Entry{
		UUID:     uuid.MustParse("66666666-7777-8888-9999-000000000000"),
		Group:    "Work",
		Title:    "Alias",
		Password: "[[Work.Mail:Inbox v1.2:j]]",
		Type:     models.EntryAlias,
		BaseUUID: base.UUID,
	}
	literal := models.Entry{
		UUID:     uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"),
		Title:    "Bracketed",
		Password: "[not:a:ref]",
	}
	return []models.Entry{base, alias, literal}
}

// ── text ──────────────────────────────────────────────────────────────────────

func TestTextHeader(t *testing.T) {
	tests := []struct {
		name string
		sel  models.FieldSelection
		want string
	}{
		{"all fields", allFields, "Group/Title\tUsername\tPassword\tURL\tAutoType\tCreated Time\tPassword Modified Time\tLast Access Time\tPassword Expiry Date\tPassword Expiry Interval\tRecord Modified Time\tPassword Policy\tHistory\tRun Command\tDCA\te-mail\tProtected\tSymbols\tNotes"},
		{"included subset", models.FieldSelection{Fields: models.NewFieldSet(models.FieldGroup, models.FieldTitle, models.FieldPassword, models.FieldNotes), Included: true}, "Group/Title\tPassword\tNotes"},
		{"title only", models.FieldSelection{Fields: models.NewFieldSet(models.FieldTitle, models.FieldUser), Included: true}, "Title\tUsername"},
		{"excluded notes", models.FieldSelection{Fields: models.NewFieldSet(models.FieldNotes, models.FieldHistory), Included: false}, strings.Replace(strings.TrimSuffix(ExportHeader, "\tNotes"), "History\t", "", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TextHeader(tt.sel))
		})
	}
}

func TestText_Export(t *testing.T) {
	entries := sampleEntries()
	var buf bytes.Buffer
	rpt := report.New("export text", nil)

	status, n, err := NewText().Export(context.Background(), &buf, entries, models.ExportRequest{Fields: allFields}, rpt)
	require.NoError(t, err)
	assert.Equal(t, models.Success, status)
	assert.Equal(t, 3, n)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, ExportHeader, lines[0])

	cols := strings.Split(lines[1], "\t")
	require.Len(t, cols, 19)
	assert.Equal(t, "Work.Mail.Inbox v1^2", cols[0])
	assert.Equal(t, "secret", cols[2])
	assert.Equal(t, "2020/01/02 03:04:05", cols[5])
	assert.Equal(t, "200000c000000002000", cols[11])
	assert.Equal(t, "10301000003e805older", cols[12])
	assert.Equal(t, "1", cols[14])
	assert.Equal(t, "Y", cols[16])
	assert.Equal(t, `"line one^line two"`, cols[18])

	alias := strings.Split(lines[2], "\t")
	assert.Equal(t, "[[Work.Mail:Inbox v1.2:j]]", alias[2])

	assert.Equal(t, []string{
		"«Work.Mail» «Inbox v1.2» «j»",
		"«Work» «Alias» «»",
		"«» «Bracketed» «»",
	}, rpt.Lines())
}

func TestExport_UnencodableHistoryIsDropped(t *testing.T) {
	entry := models.Entry{
		UUID:     uuid.MustParse("bbbbbbbb-cccc-dddd-eeee-ffffffffffff"),
		Group:    "Work",
		Title:    "Long",
		Password: "pw",
		History: models.PasswordHistory{Enabled: true, Max: 1, Entries: []models.HistoryEntry{
			{Changed: time.Unix(1000, 0).UTC(), Password: strings.Repeat("x", 300)},
		}},
	}

	tests := []struct {
		name string
		exp  Exporter
	}{
		{"text", NewText()},
		{"xml", NewXML()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			rpt := report.New("export", nil)

			status, n, err := tt.exp.Export(context.Background(), &buf, []models.Entry{entry}, models.ExportRequest{Fields: allFields}, rpt)
			require.NoError(t, err)
			assert.Equal(t, models.Success, status)
			assert.Equal(t, 1, n)
			assert.NotContains(t, buf.String(), strings.Repeat("x", 300))
			assert.Contains(t, rpt.String(), "password history not exported")
		})
	}
}

func TestText_ExportPreconditions(t *testing.T) {
	filter := &models.SubgroupFilter{Field: models.FieldGroup, Rule: models.MatchEquals, Value: "nowhere"}

	tests := []struct {
		name    string
		entries []models.Entry
		req     models.ExportRequest
		status  models.Status
	}{
		{"empty vault", nil, models.ExportRequest{Fields: allFields}, models.NoEntriesExported},
		{"no fields", sampleEntries(), models.ExportRequest{Fields: models.FieldSelection{Included: true}}, models.NoEntriesExported},
		{"nothing matches the subgroup", sampleEntries(), models.ExportRequest{Fields: allFields, Subgroup: filter}, models.Failure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			status, n, err := NewText().Export(context.Background(), &buf, tt.entries, tt.req, report.New("export", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, status)
			assert.Zero(t, n)
			assert.Empty(t, buf.String())
		})
	}
}

func TestText_ExportSubgroup(t *testing.T) {
	filter := &models.SubgroupFilter{Field: models.FieldGroup, Rule: models.MatchBeginsWith, Value: "WORK"}
	var buf bytes.Buffer

	status, n, err := NewText().Export(context.Background(), &buf, sampleEntries(),
		models.ExportRequest{Fields: allFields, Subgroup: filter}, report.New("export", nil))
	require.NoError(t, err)
	assert.Equal(t, models.Success, status)
	assert.Equal(t, 2, n)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestText_ExportWriteError(t *testing.T) {
	status, _, err := NewText().Export(context.Background(), failingWriter{}, sampleEntries(),
		models.ExportRequest{Fields: allFields}, report.New("export", nil))
	assert.ErrorIs(t, err, ErrWrite)
	assert.Equal(t, models.Failure, status)
}

// ── XML ───────────────────────────────────────────────────────────────────────

func TestXML_Export(t *testing.T) {
	yes, length := true, 16
	status := models.TreeAsPerLastSave
	req := models.ExportRequest{
		Fields:     allFields,
		FilterName: "expiring -- soon",
		Header: models.VaultHeader{
			DatabaseName:         "a&b.psafe3",
			UUID:                 "0123456789abcdef0123456789abcdef",
			MajorVersion:         3,
			MinorVersion:         1,
			NumberHashIterations: 4096,
			Preferences: models.Preferences{
				ShowPWDefault:           &yes,
				PWDefaultLength:         &length,
				TreeDisplayStatusAtOpen: &status,
			},
			UnknownFields: []models.UnknownField{{Type: 0x20, Data: []byte{1, 2, 3}}},
		},
	}
	x := &XML{Now: func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }}

	var buf bytes.Buffer
	st, n, err := x.Export(context.Background(), &buf, sampleEntries(), req, report.New("export xml", nil))
	require.NoError(t, err)
	assert.Equal(t, models.Success, st)
	assert.Equal(t, 3, n)

	out := buf.String()
	for _, want := range []string{
		`delimiter="^"`,
		`Database="a&amp;b.psafe3"`,
		`ExportTimeStamp="2026-03-04T05:06:07"`,
		`FromDatabaseFormat="3.01"`,
		`Database_uuid="0123456789abcdef0123456789abcdef"`,
		"<NumberHashIterations>4096</NumberHashIterations>",
		"<ShowPWDefault>1</ShowPWDefault>",
		"<PWDefaultLength>16</PWDefaultLength>",
		"<TreeDisplayStatusAtOpen>AsPerLastSave</TreeDisplayStatusAtOpen>",
		`<field ftype="32">AQID</field>`,
		"Filter active: expiring - - soon",
		`<entry id="1">`,
		"<notes><![CDATA[line one^line two]]></notes>",
		"<ctime><date>2020-01-02</date><time>03:04:05</time></ctime>",
		"<oldpassword><![CDATA[older]]></oldpassword>",
		"<PWUseDigits>1</PWUseDigits>",
		"<protected>1</protected>",
		`<entry id="3" normal="true">`,
		"</passwordsafe>",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Fields excluded")
}

func TestXML_ExportFieldRestriction(t *testing.T) {
	req := models.ExportRequest{
		Fields:   models.FieldSelection{Fields: models.NewFieldSet(models.FieldNotes, models.FieldURL), Included: false},
		Subgroup: &models.SubgroupFilter{Field: models.FieldTitle, Rule: models.MatchContains, Value: "a", CaseSensitive: true},
	}

	var buf bytes.Buffer
	_, n, err := NewXML().Export(context.Background(), &buf, sampleEntries(), req, report.New("export xml", nil))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	out := buf.String()
	assert.Contains(t, out, "Fields excluded:")
	assert.Contains(t, out, "URL, Notes")
	assert.Contains(t, out, "'Title'  'contains'  'a' case sensitive")
	assert.NotContains(t, out, "<notes>")
	assert.NotContains(t, out, "<url>")
	assert.Contains(t, out, `<entry id="2">`, "ids count every candidate entry")
}

func TestXML_ExportMissingPassword(t *testing.T) {
	var buf bytes.Buffer
	entries := []models.Entry{{UUID: uuid.New(), Title: "empty"}}
	_, _, err := NewXML().Export(context.Background(), &buf, entries, models.ExportRequest{Fields: allFields}, report.New("export xml", nil))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<password><![CDATA[*MISSING*]]></password>")
}

func TestCData(t *testing.T) {
	assert.Equal(t, "<![CDATA[a]]]]><![CDATA[>b]]>", cdata("a]]>b"))
}

// ── round trips ───────────────────────────────────────────────────────────────

func reimport(t *testing.T, imp importer.Importer, data []byte) []models.Entry {
	t.Helper()
	run, err := importer.NewRun(context.Background(), vault.NewMemory(), models.ImportRequest{}, report.New("import", nil))
	require.NoError(t, err)

	status := imp.Import(context.Background(), bytes.NewReader(data), run)
	require.Equal(t, models.Success, status, run.Report.String())

	var out []models.Entry
	for _, c := range run.Commands {
		if a, ok := c.(*command.AddEntry); ok {
			out = append(out, a.Entry)
		}
	}
	return out
}

func assertSameContent(t *testing.T, want, got []models.Entry) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Group, got[i].Group)
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.Equal(t, want[i].User, got[i].User)
		assert.Equal(t, want[i].Password, got[i].Password)
		assert.Equal(t, want[i].URL, got[i].URL)
		assert.Equal(t, want[i].Notes, got[i].Notes)
		assert.Equal(t, want[i].CTime, got[i].CTime)
		assert.Equal(t, want[i].History, got[i].History)
		assert.Equal(t, want[i].Policy, got[i].Policy)
		assert.Equal(t, want[i].Protected, got[i].Protected)
	}
}

func TestRoundTrip_Text(t *testing.T) {
	entries := append(sampleEntries(),
		models.Entry{UUID: uuid.New(), Group: "Home", Title: "Disk", Password: "pw", Notes: `5" floppy`},
		models.Entry{UUID: uuid.New(), Group: "Home", Title: "Plain", Password: "pw2", Notes: "plain"},
		models.Entry{UUID: uuid.New(), Group: "Home", Title: "Quoted", Password: "pw3", Notes: `"all quoted"`},
	)
	var buf bytes.Buffer
	_, _, err := NewText().Export(context.Background(), &buf, entries, models.ExportRequest{Fields: allFields}, report.New("export", nil))
	require.NoError(t, err)

	got := reimport(t, importer.NewPlaintext(), buf.Bytes())
	assertSameContent(t, entries, got)
}

func TestRoundTrip_XML(t *testing.T) {
	entries := sampleEntries()
	var buf bytes.Buffer
	_, _, err := NewXML().Export(context.Background(), &buf, entries, models.ExportRequest{Fields: allFields}, report.New("export", nil))
	require.NoError(t, err)

	got := reimport(t, importer.NewXML(), buf.Bytes())
	assertSameContent(t, entries, got)
	for i := range entries {
		assert.Equal(t, entries[i].UUID, got[i].UUID)
	}
}
