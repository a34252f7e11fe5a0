package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator_Generate(t *testing.T) {
	g := NewUUIDGenerator()

	a := g.Generate()
	b := g.Generate()

	assert.NotEqual(t, uuid.Nil, a)
	assert.NotEqual(t, a, b)
}

func TestParseEntryUUID(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   string
	}{
		{name: "hex form", input: "0123456789abcdef0123456789abcdef", wantOK: true, want: "01234567-89ab-cdef-0123-456789abcdef"},
		{name: "upper hex form", input: "0123456789ABCDEF0123456789ABCDEF", wantOK: true, want: "01234567-89ab-cdef-0123-456789abcdef"},
		{name: "canonical form", input: "01234567-89ab-cdef-0123-456789abcdef", wantOK: true, want: "01234567-89ab-cdef-0123-456789abcdef"},
		{name: "too short", input: "0123", wantOK: false},
		{name: "non hex", input: "zz23456789abcdef0123456789abcdef", wantOK: false},
		{name: "urn form rejected", input: "urn:uuid:01234567-89ab-cdef-0123-456789abcdef", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseEntryUUID(tt.input)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, id.String())
			}
		})
	}
}

func TestFormatEntryUUID_RoundTrip(t *testing.T) {
	id := uuid.MustParse("01234567-89ab-cdef-0123-456789abcdef")

	s := FormatEntryUUID(id)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", s)

	back, ok := ParseEntryUUID(s)
	require.True(t, ok)
	assert.Equal(t, id, back)
}
