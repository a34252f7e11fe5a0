package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-pass-transfer/internal/logger"
	"github.com/MKhiriev/go-pass-transfer/internal/report"
	"github.com/MKhiriev/go-pass-transfer/internal/vault"
	"github.com/MKhiriev/go-pass-transfer/models"
)

// ResolveDependents links alias or shortcut candidates to their base
// entries. A candidate is an entry whose password reads `[[g:t:u]]`
// (alias) or `[~g:t:u~]` (shortcut). Candidates whose base cannot be found
// keep the reference text as a normal password.
type ResolveDependents struct {
	Kind       models.EntryType
	Candidates []uuid.UUID
	Report     *report.Report

	previous []models.Entry
	done     bool
}

// NewResolveAliases returns the resolver for alias candidates.
func NewResolveAliases(candidates []uuid.UUID, rpt *report.Report) *ResolveDependents {
	return &ResolveDependents{Kind: models.EntryAlias, Candidates: candidates, Report: rpt}
}

// NewResolveShortcuts returns the resolver for shortcut candidates.
func NewResolveShortcuts(candidates []uuid.UUID, rpt *report.Report) *ResolveDependents {
	return &ResolveDependents{Kind: models.EntryShortcut, Candidates: candidates, Report: rpt}
}

func (c *ResolveDependents) Name() string {
	if c.Kind == models.EntryShortcut {
		return "resolve shortcuts"
	}
	return "resolve aliases"
}

func (c *ResolveDependents) baseType() models.EntryType {
	if c.Kind == models.EntryShortcut {
		return models.EntryShortcutBase
	}
	return models.EntryAliasBase
}

func (c *ResolveDependents) Execute(ctx context.Context, v vault.Vault) error {
	log := logger.FromContext(ctx)

	all, err := v.Entries(ctx)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}

	c.previous = c.previous[:0]
	saved := make(map[uuid.UUID]bool)
	save := func(e models.Entry) {
		if !saved[e.UUID] {
			saved[e.UUID] = true
			c.previous = append(c.previous, e)
		}
	}

	for _, id := range c.Candidates {
		dep, err := v.FindByUUID(ctx, id)
		if err != nil {
			return fmt.Errorf("find candidate %s: %w", id, err)
		}

		ref, ok := models.ParseReference(dep.Password)
		if !ok {
			continue
		}

		base, found := findBase(all, dep, ref)
		if !found {
			c.writeLine("%s: base entry for %s not found, password kept as text", dep.GTU(), dep.Password)
			log.Debug().
				Str("func", "ResolveDependents.Execute").
				Str("reference", dep.Password).
				Msg("unresolved reference")
			continue
		}
		if base.IsDependent() {
			c.writeLine("%s: base entry %s is itself an alias or shortcut, password kept as text", dep.GTU(), base.GTU())
			continue
		}

		save(dep)
		dep.Type = c.Kind
		dep.BaseUUID = base.UUID
		if err = v.Update(ctx, dep); err != nil {
			return fmt.Errorf("link %s: %w", dep.GTU(), err)
		}

		if base.Type != c.baseType() {
			save(base)
			base.Type = c.baseType()
			if err = v.Update(ctx, base); err != nil {
				return fmt.Errorf("mark base %s: %w", base.GTU(), err)
			}
			replaceEntry(all, base)
		}
	}

	c.done = true
	return nil
}

func (c *ResolveDependents) Undo(ctx context.Context, v vault.Vault) error {
	if !c.done {
		return ErrNotExecuted
	}
	for i := len(c.previous) - 1; i >= 0; i-- {
		if err := v.Update(ctx, c.previous[i]); err != nil {
			return fmt.Errorf("restore %s: %w", c.previous[i].GTU(), err)
		}
	}
	c.previous = c.previous[:0]
	c.done = false
	return nil
}

func (c *ResolveDependents) writeLine(format string, args ...any) {
	if c.Report != nil {
		c.Report.WriteLine(format, args...)
	}
}

// findBase looks up the entry a reference points to. A reference without
// a group points into the group of the dependent entry. A reference
// without a user matches the first entry with the right group and title.
func findBase(all []models.Entry, dep models.Entry, ref models.GTU) (models.Entry, bool) {
	group := ref.Group
	if group == "" {
		group = dep.Group
	}

	var candidate *models.Entry
	for i := range all {
		e := &all[i]
		if e.UUID == dep.UUID || e.Group != group || e.Title != ref.Title {
			continue
		}
		if e.User == ref.User {
			return *e, true
		}
		if ref.User == "" && candidate == nil {
			candidate = e
		}
	}
	if candidate != nil {
		return *candidate, true
	}
	return models.Entry{}, false
}

func replaceEntry(all []models.Entry, e models.Entry) {
	for i := range all {
		if all[i].UUID == e.UUID {
			all[i] = e
			return
		}
	}
}
