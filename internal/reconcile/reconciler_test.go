package reconcile

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pass-transfer/models"
)

// sequenceGenerator hands out the given identifiers in order.
type sequenceGenerator struct {
	ids []uuid.UUID
	pos int
}

func (g *sequenceGenerator) Generate() uuid.UUID {
	id := g.ids[g.pos%len(g.ids)]
	g.pos++
	return id
}

var (
	idA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	idB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	idC = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	idD = uuid.MustParse("00000000-0000-0000-0000-00000000000d")
	idE = uuid.MustParse("00000000-0000-0000-0000-00000000000e")
)

func TestReserve_Unused(t *testing.T) {
	r := New(nil, nil)

	title, renamed := r.Reserve("Work", "Email", "j")
	assert.Equal(t, "Email", title)
	assert.False(t, renamed)
	assert.True(t, r.Contains(models.GTU{Group: "Work", Title: "Email", User: "j"}))
}

func TestReserve_IncreasingSuffixes(t *testing.T) {
	r := New([]models.Entry{{Group: "Work", Title: "Email", User: "j"}}, nil)

	var got []string
	for i := 0; i < 3; i++ {
		title, renamed := r.Reserve("Work", "Email", "j")
		assert.True(t, renamed)
		got = append(got, title)
	}

	assert.Equal(t, []string{"Email (1)", "Email (2)", "Email (3)"}, got)
}

func TestReserve_SkipsTakenSuffix(t *testing.T) {
	r := New([]models.Entry{
		{Group: "g", Title: "t", User: "u"},
		{Group: "g", Title: "t (1)", User: "u"},
	}, nil)

	title, renamed := r.Reserve("g", "t", "u")
	assert.True(t, renamed)
	assert.Equal(t, "t (2)", title)
}

func TestReserve_DifferentUserIsDistinct(t *testing.T) {
	r := New([]models.Entry{{Group: "g", Title: "t", User: "u"}}, nil)

	title, renamed := r.Reserve("g", "t", "other")
	assert.False(t, renamed)
	assert.Equal(t, "t", title)
}

func TestReserveIdentifier(t *testing.T) {
	gen := &sequenceGenerator{ids: []uuid.UUID{idB, idC, idE}}
	r := New([]models.Entry{{UUID: idA}}, gen)

	tests := []struct {
		name         string
		raw          string
		want         uuid.UUID
		wantReplaced bool
	}{
		{name: "taken by vault", raw: "0000000000000000000000000000000a", want: idB, wantReplaced: true},
		{name: "malformed", raw: "not-a-uuid", want: idC, wantReplaced: true},
		{name: "fresh", raw: "0000000000000000000000000000000d", want: idD},
		{name: "now taken by this run", raw: "00000000-0000-0000-0000-00000000000d", want: idE, wantReplaced: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, replaced := r.ReserveIdentifier(tt.raw)
			assert.Equal(t, tt.wantReplaced, replaced)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewIdentifier_SkipsClaimed(t *testing.T) {
	gen := &sequenceGenerator{ids: []uuid.UUID{idA, idA, idB}}
	r := New([]models.Entry{{UUID: idA}}, gen)

	assert.Equal(t, idB, r.NewIdentifier())
}

func TestReserveUUID_Nil(t *testing.T) {
	gen := &sequenceGenerator{ids: []uuid.UUID{idC}}
	r := New(nil, gen)

	id, replaced := r.ReserveUUID(uuid.Nil)
	require.True(t, replaced)
	assert.Equal(t, idC, id)
}
