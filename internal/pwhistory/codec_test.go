package pwhistory

import (
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/go-pass-transfer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Valid(t *testing.T) {
	// enabled, max 3, two entries: "abc" at 0x5f5e1000 and "hello" at 0x5f5e2000
	raw := "10302" + "5f5e1000" + "03" + "abc" + "5f5e2000" + "05" + "hello"

	h, err := Decode(raw)
	require.NoError(t, err)

	assert.True(t, h.Enabled)
	assert.Equal(t, 3, h.Max)
	require.Len(t, h.Entries, 2)
	assert.Equal(t, "abc", h.Entries[0].Password)
	assert.Equal(t, time.Unix(0x5f5e1000, 0).UTC(), h.Entries[0].Changed)
	assert.Equal(t, "hello", h.Entries[1].Password)
}

func TestDecode_Ignore(t *testing.T) {
	for _, raw := range []string{"", "00000"} {
		_, err := Decode(raw)
		assert.ErrorIs(t, err, ErrIgnore, "raw %q", raw)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ErrorKind
	}{
		{name: "short header", raw: "103", want: InvalidHeader},
		{name: "status not hex", raw: "x0300", want: InvalidCharacter},
		{name: "status out of range", raw: "20300", want: InvalidStatus},
		{name: "max not hex", raw: "1zz00", want: InvalidCharacter},
		{name: "count above max", raw: "10203", want: InvalidCount},
		{name: "count larger than data", raw: "140208fffffff00000000", want: InvalidCount},
		{name: "bad time", raw: "10101" + "5f5eZZ00" + "01" + "a", want: InvalidDateTime},
		{name: "bad length", raw: "10101" + "5f5e1000" + "g1" + "a", want: InvalidPasswordLength},
		{name: "truncated password", raw: "10101" + "5f5e1000" + "05" + "ab", want: TooShort},
		{name: "trailing data", raw: "10101" + "5f5e1000" + "01" + "abc", want: TooLong},
		{name: "zero count with data", raw: "00000junk", want: TooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrIgnore)
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}

func TestDecode_NeverPanics(t *testing.T) {
	inputs := []string{
		"1", "1f", "1ff", "1ffff", "1ffff" + strings.Repeat("f", 10),
		"\x00\x00\x00\x00\x00", "10101\xff\xfe", "10101" + "00000000" + "ff",
		"1ffff" + strings.Repeat("0", 3000), "日本語テキスト", "10101日本語日本語日本語日本語",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { _, _ = Decode(in) }, "input %q", in)
	}
}

func TestDecode_MultibytePasswords(t *testing.T) {
	raw := "10101" + "00000001" + "03" + "пар"

	h, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, h.Entries, 1)
	assert.Equal(t, "пар", h.Entries[0].Password)
}

func TestEncode_RoundTrip(t *testing.T) {
	h := models.PasswordHistory{
		Enabled: true,
		Max:     5,
		Entries: []models.HistoryEntry{
			{Changed: time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), Password: "old-one"},
			{Changed: time.Date(2021, 6, 7, 8, 9, 10, 0, time.UTC), Password: "日本"},
		},
	}

	back, err := Decode(Encode(h))
	require.NoError(t, err)
	assert.Equal(t, h, back)
}

func TestEncode_RoundTripUnknownChangeTime(t *testing.T) {
	h := models.PasswordHistory{
		Enabled: true,
		Max:     2,
		Entries: []models.HistoryEntry{{Password: "no-date"}},
	}

	raw := Encode(h)
	assert.Equal(t, "10201"+"00000000"+"07"+"no-date", raw)

	back, err := Decode(raw)
	require.NoError(t, err)
	assert.True(t, back.Entries[0].Changed.IsZero())
	assert.Equal(t, h, back)
}

func TestEncode_Empty(t *testing.T) {
	assert.Equal(t, "", Encode(models.PasswordHistory{}))
	assert.Equal(t, "10a00", Encode(models.PasswordHistory{Enabled: true, Max: 10}))
}

func TestValidate(t *testing.T) {
	ok := models.PasswordHistory{Enabled: true, Max: 1, Entries: []models.HistoryEntry{{Password: "a"}}}
	assert.NoError(t, Validate(ok))

	tooMany := models.PasswordHistory{Max: 0, Entries: []models.HistoryEntry{{Password: "a"}}}
	assert.Equal(t, InvalidCount, KindOf(Validate(tooMany)))

	longPw := models.PasswordHistory{Max: 1, Entries: []models.HistoryEntry{{Password: strings.Repeat("x", 256)}}}
	assert.Equal(t, InvalidPasswordLength, KindOf(Validate(longPw)))

	bigMax := models.PasswordHistory{Max: 256}
	assert.Equal(t, InvalidCount, KindOf(Validate(bigMax)))

	tooLate := models.PasswordHistory{Max: 1, Entries: []models.HistoryEntry{{Changed: time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC), Password: "a"}}}
	assert.Equal(t, InvalidDateTime, KindOf(Validate(tooLate)))

	beforeEpoch := models.PasswordHistory{Max: 1, Entries: []models.HistoryEntry{{Changed: time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC), Password: "a"}}}
	assert.Equal(t, InvalidDateTime, KindOf(Validate(beforeEpoch)))
}

func TestDescribe(t *testing.T) {
	_, err := Decode("20300")
	line := Describe(err, models.GTU{Group: "g", Title: "t", User: "u"})

	assert.Contains(t, line, "«g» «t» «u»")
	assert.Contains(t, line, "invalid status")
}
