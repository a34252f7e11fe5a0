package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pass-transfer/internal/command"
	"github.com/MKhiriev/go-pass-transfer/models"
)

func TestPlaintext_Import(t *testing.T) {
	tests := []struct {
		name   string
		req    models.ImportRequest
		input  string
		status models.Status
		check  func(t *testing.T, run *Run)
	}{
		{
			name:   "single row",
			input:  "Group/Title\tUsername\tPassword\nWork.Email\tj\tsecret1\n",
			status: models.Success,
			check: func(t *testing.T, run *Run) {
				entries := added(run)
				require.Len(t, entries, 1)
				assert.Equal(t, "Work", entries[0].Group)
				assert.Equal(t, "Email", entries[0].Title)
				assert.Equal(t, "j", entries[0].User)
				assert.Equal(t, "secret1", entries[0].Password)
				assert.NotEqual(t, uuid.Nil, entries[0].UUID)
				assert.Equal(t, models.StatusClean, entries[0].Status)
				assert.True(t, reportHas(run, "«Work» «Email» «j»"))
			},
		},
		{
			name:   "duplicate row is renamed",
			input:  "Group/Title\tUsername\tPassword\nWork.Email\tj\tsecret1\nWork.Email\tj\tsecret2\n",
			status: models.Success,
			check: func(t *testing.T, run *Run) {
				entries := added(run)
				require.Len(t, entries, 2)
				assert.Equal(t, "Email (1)", entries[1].Title)
				assert.Equal(t, 1, run.Stats.Renamed)
			},
		},
		{
			name:   "title without group",
			input:  "Group/Title\tPassword\nBank\tpw\n",
			status: models.Success,
			check: func(t *testing.T, run *Run) {
				entries := added(run)
				require.Len(t, entries, 1)
				assert.Empty(t, entries[0].Group)
				assert.Equal(t, "Bank", entries[0].Title)
			},
		},
		{
			name:   "import prefix and delimiter",
			req:    models.ImportRequest{ImportPrefix: "Old"},
			input:  "Group/Title\tPassword\tNotes\nWork.v1^2\tpw\tline one^line two\nTop\tpw\t\n",
			status: models.Success,
			check: func(t *testing.T, run *Run) {
				entries := added(run)
				require.Len(t, entries, 2)
				assert.Equal(t, "Old.Work", entries[0].Group)
				assert.Equal(t, "v1.2", entries[0].Title)
				assert.Equal(t, "line one\r\nline two", entries[0].Notes)
				assert.Equal(t, "Old", entries[1].Group)
			},
		},
		{
			name:   "multi-line notes",
			input:  "Group/Title\tPassword\tNotes\nWork.Email\tpw\t\"first\nsecond\nthird\"\nWork.Bank\tpw2\tplain\n",
			status: models.Success,
			check: func(t *testing.T, run *Run) {
				entries := added(run)
				require.Len(t, entries, 2)
				assert.Equal(t, "first\r\nsecond\r\nthird", entries[0].Notes)
				assert.Equal(t, "plain", entries[1].Notes)
			},
		},
		{
			name:   "quoted notes with inner quotes stay on one line",
			input:  "Group/Title\tPassword\tNotes\nWork.Disk\tpw\t\"5\" floppy\"\nWork.Bank\tpw2\t\"plain\"\n",
			status: models.Success,
			check: func(t *testing.T, run *Run) {
				entries := added(run)
				require.Len(t, entries, 2)
				assert.Equal(t, `5" floppy`, entries[0].Notes)
				assert.Equal(t, "plain", entries[1].Notes)
			},
		},
		{
			name:   "continuation closes on a line with one quote",
			input:  "Group/Title\tPassword\tNotes\n" + "Work.Email\tpw\t\"first\nsay \"hi\" twice\nlast\"\nWork.Bank\tpw2\tplain\n",
			status: models.Success,
			check: func(t *testing.T, run *Run) {
				entries := added(run)
				require.Len(t, entries, 2)
				assert.Equal(t, "first\r\nsay \"hi\" twice\r\nlast", entries[0].Notes)
			},
		},
		{
			name:   "notes take the rest of the row",
			input:  "Group/Title\tPassword\tNotes\nWork.Email\tpw\ta\tb\n",
			status: models.Success,
			check: func(t *testing.T, run *Run) {
				entries := added(run)
				require.Len(t, entries, 1)
				assert.Equal(t, "a\tb", entries[0].Notes)
			},
		},
		{
			name:   "unterminated notes before any entry",
			input:  "Group/Title\tPassword\tNotes\nWork.Email\tpw\t\"never closed\nmore\n",
			status: models.InvalidFormat,
			check: func(t *testing.T, run *Run) {
				assert.Empty(t, run.Commands)
				assert.True(t, reportHas(run, "closing quote"))
			},
		},
		{
			name:   "unterminated notes after an entry",
			input:  "Group/Title\tPassword\tNotes\nWork.A\tpw\tok\nWork.B\tpw\t\"open\n",
			status: models.OKWithErrors,
			check: func(t *testing.T, run *Run) {
				require.Len(t, added(run), 1)
				assert.Equal(t, 1, run.Stats.Skipped)
			},
		},
		{
			name:   "rows without password or with too few fields are skipped",
			input:  "Group/Title\tUsername\tPassword\nWork.A\tu\t\nWork.B\n\nWork.C\tu\tpw\n",
			status: models.OKWithErrors,
			check: func(t *testing.T, run *Run) {
				require.Len(t, added(run), 1)
				assert.Equal(t, 3, run.Stats.Skipped)
				assert.True(t, reportHas(run, "Line 2: no password"))
				assert.True(t, reportHas(run, "Line 4: empty line skipped"))
			},
		},
		{
			name:   "quoted and blank tokens",
			input:  "Group/Title\tUsername\tPassword\tURL\nWork.A\t\"bob\"\tpw\t   \n",
			status: models.Success,
			check: func(t *testing.T, run *Run) {
				entries := added(run)
				require.Len(t, entries, 1)
				assert.Equal(t, "bob", entries[0].User)
				assert.Empty(t, entries[0].URL)
			},
		},
		{
			name: "typed fields",
			input: "Group/Title\tPassword\tCreated Time\tPassword Expiry Interval\tPassword Policy\tDCA\tProtected\n" +
				"Work.A\tpw\t2024/01/02 03:04:05\t30\tf00000c001001001001\t3\tY\n",
			status: models.Success,
			check: func(t *testing.T, run *Run) {
				entries := added(run)
				require.Len(t, entries, 1)
				e := entries[0]
				assert.Equal(t, "2024-01-02T03:04:05Z", e.CTime.Format("2006-01-02T15:04:05Z07:00"))
				assert.Equal(t, 30, e.XTimeInterval)
				require.NotNil(t, e.Policy)
				assert.Equal(t, uint16(0xf000), e.Policy.Flags)
				assert.Equal(t, 12, e.Policy.Length)
				require.NotNil(t, e.DCA)
				assert.Equal(t, 3, *e.DCA)
				assert.True(t, e.Protected)
			},
		},
		{
			name:   "invalid typed fields are dropped",
			input:  "Group/Title\tPassword\tCreated Time\tPassword Expiry Interval\tDCA\nWork.A\tpw\tyesterday\t9999\tx\n",
			status: models.OKWithErrors,
			check: func(t *testing.T, run *Run) {
				entries := added(run)
				require.Len(t, entries, 1)
				assert.True(t, entries[0].CTime.IsZero())
				assert.Zero(t, entries[0].XTimeInterval)
				assert.Nil(t, entries[0].DCA)
				assert.Equal(t, 3, run.Stats.InvalidFields)
			},
		},
		{
			name:   "history",
			input:  "Group/Title\tPassword\tHistory\nWork.A\tpw\t105010000000103old\nWork.B\tpw\t1zz00\nWork.C\tpw\t00000\n",
			status: models.OKWithErrors,
			check: func(t *testing.T, run *Run) {
				entries := added(run)
				require.Len(t, entries, 3)
				assert.True(t, entries[0].History.Enabled)
				require.Len(t, entries[0].History.Entries, 1)
				assert.Equal(t, "old", entries[0].History.Entries[0].Password)
				assert.True(t, entries[1].History.IsZero())
				assert.True(t, entries[2].History.IsZero())
				assert.Equal(t, 1, run.Stats.HistoryErrors)
				assert.True(t, reportHas(run, "password history of «Work» «B» «»"))
			},
		},
		{
			name:   "missing password column",
			input:  "Group/Title\tUsername\nWork.A\tu\n",
			status: models.InvalidFormat,
		},
		{
			name:   "no recognised columns",
			input:  "Foo\tBar\nx\ty\n",
			status: models.InvalidFormat,
		},
		{
			name:   "empty input",
			input:  "",
			status: models.Failure,
		},
		{
			name:   "latin-1 rows",
			req:    models.ImportRequest{Encoding: "iso-8859-1"},
			input:  "Group/Title\tPassword\nWork.Caf\xe9\tpw\n",
			status: models.Success,
			check: func(t *testing.T, run *Run) {
				entries := added(run)
				require.Len(t, entries, 1)
				assert.Equal(t, "Café", entries[0].Title)
			},
		},
		{
			name:   "invalid utf-8 row",
			input:  "Group/Title\tPassword\nWork.Caf\xe9\tpw\n",
			status: models.OKWithErrors,
			check: func(t *testing.T, run *Run) {
				assert.Empty(t, run.Commands)
				assert.Equal(t, 1, run.Stats.Skipped)
			},
		},
		{
			name:   "byte-order mark",
			input:  "\xef\xbb\xbfGroup/Title\tPassword\nWork.A\tpw\n",
			status: models.Success,
			check: func(t *testing.T, run *Run) {
				assert.Len(t, added(run), 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := newTestRun(t, tt.req)
			status := NewPlaintext().Import(context.Background(), strings.NewReader(tt.input), run)
			assert.Equal(t, tt.status, status)
			if tt.check != nil {
				tt.check(t, run)
			}
		})
	}
}

func TestPlaintext_ImportIntoExistingVault(t *testing.T) {
	existing := models.Entry{UUID: uuid.New(), Group: "Work", Title: "Email", User: "j", Password: "old"}
	run := newTestRun(t, models.ImportRequest{}, existing)

	status := NewPlaintext().Import(context.Background(),
		strings.NewReader("Group/Title\tUsername\tPassword\nWork.Email\tj\tnew\n"), run)

	assert.Equal(t, models.Success, status)
	entries := added(run)
	require.Len(t, entries, 1)
	assert.Equal(t, "Email (1)", entries[0].Title)
	assert.Equal(t, models.StatusAdded, entries[0].Status)
}

func TestPlaintext_PasswordsOnly(t *testing.T) {
	existing := models.Entry{UUID: uuid.New(), Group: "Work", Title: "Email", User: "j", Password: "old"}

	t.Run("updates matching entries", func(t *testing.T) {
		run := newTestRun(t, models.ImportRequest{PasswordsOnly: true}, existing)
		input := "Group/Title\tUsername\tPassword\nWork.Email\tj\tnew\nWork.Bank\tj\tx\n"

		status := NewPlaintext().Import(context.Background(), strings.NewReader(input), run)

		assert.Equal(t, models.OKWithErrors, status)
		require.Len(t, run.Commands, 1)
		upd, ok := run.Commands[0].(*command.UpdatePassword)
		require.True(t, ok)
		assert.Equal(t, existing.UUID, upd.UUID)
		assert.Equal(t, "new", upd.Password)
		assert.Equal(t, 1, run.Stats.Imported)
		assert.Equal(t, 1, run.Stats.Skipped)
		assert.True(t, reportHas(run, "entry «Work» «Bank» «j» not found"))
	})

	t.Run("needs the username column", func(t *testing.T) {
		run := newTestRun(t, models.ImportRequest{PasswordsOnly: true}, existing)
		status := NewPlaintext().Import(context.Background(),
			strings.NewReader("Group/Title\tPassword\nWork.Email\tnew\n"), run)
		assert.Equal(t, models.InvalidFormat, status)
	})
}

func TestPlaintext_AliasCandidates(t *testing.T) {
	run := newTestRun(t, models.ImportRequest{})
	input := "Group/Title\tPassword\nWork.A\tpw\nWork.B\t[[Work:A]]\nWork.C\t[~A~]\n"

	status := NewPlaintext().Import(context.Background(), strings.NewReader(input), run)

	assert.Equal(t, models.Success, status)
	entries := added(run)
	require.Len(t, entries, 3)
	assert.Equal(t, []uuid.UUID{entries[1].UUID}, run.Aliases)
	assert.Equal(t, []uuid.UUID{entries[2].UUID}, run.Shortcuts)
}
