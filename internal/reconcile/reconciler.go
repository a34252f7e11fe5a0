// Package reconcile keeps entry identity unique during one import call.
//
// A Reconciler is seeded with the vault contents before the first record
// is read and grows with every accepted record, so collisions inside the
// imported file are caught as well as collisions with the vault.
package reconcile

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-pass-transfer/internal/utils"
	"github.com/MKhiriev/go-pass-transfer/models"
)

// Reconciler is scoped to a single import call and is not safe for
// concurrent use.
type Reconciler struct {
	keys map[models.GTU]struct{}
	ids  map[uuid.UUID]struct{}
	gen  utils.IDGenerator
}

// New returns a reconciler seeded with entries.
func New(entries []models.Entry, gen utils.IDGenerator) *Reconciler {
	if gen == nil {
		gen = utils.NewUUIDGenerator()
	}

	r := &Reconciler{
		keys: make(map[models.GTU]struct{}, len(entries)),
		ids:  make(map[uuid.UUID]struct{}, len(entries)),
		gen:  gen,
	}
	for _, e := range entries {
		r.keys[e.GTU()] = struct{}{}
		if e.UUID != uuid.Nil {
			r.ids[e.UUID] = struct{}{}
		}
	}
	return r
}

// Reserve claims (group, title, user). When the triple is taken the title
// gets the lowest free " (n)" suffix, n counting from 1, and renamed is
// true.
func (r *Reconciler) Reserve(group, title, user string) (string, bool) {
	key := models.GTU{Group: group, Title: title, User: user}
	if _, taken := r.keys[key]; !taken {
		r.keys[key] = struct{}{}
		return title, false
	}

	for n := 1; ; n++ {
		key.Title = fmt.Sprintf("%s (%d)", title, n)
		if _, taken := r.keys[key]; !taken {
			r.keys[key] = struct{}{}
			return key.Title, true
		}
	}
}

// Contains reports whether the triple is already claimed.
func (r *Reconciler) Contains(key models.GTU) bool {
	_, ok := r.keys[key]
	return ok
}

// ReserveIdentifier claims the identifier written as raw (32 hex digits or
// the hyphenated form). A malformed, nil or already claimed identifier is
// replaced by a fresh one. replaced reports whether raw was not used.
func (r *Reconciler) ReserveIdentifier(raw string) (id uuid.UUID, replaced bool) {
	parsed, ok := utils.ParseEntryUUID(raw)
	if !ok {
		return r.NewIdentifier(), true
	}
	return r.ReserveUUID(parsed)
}

// ReserveUUID claims id, or a fresh identifier when id is nil or taken.
func (r *Reconciler) ReserveUUID(id uuid.UUID) (uuid.UUID, bool) {
	if id == uuid.Nil {
		return r.NewIdentifier(), true
	}
	if _, taken := r.ids[id]; taken {
		return r.NewIdentifier(), true
	}
	r.ids[id] = struct{}{}
	return id, false
}

// NewIdentifier generates and claims an identifier not seen before.
func (r *Reconciler) NewIdentifier() uuid.UUID {
	for {
		id := r.gen.Generate()
		if _, taken := r.ids[id]; !taken && id != uuid.Nil {
			r.ids[id] = struct{}{}
			return id
		}
	}
}
