package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-pass-transfer/internal/vault"
	"github.com/MKhiriev/go-pass-transfer/models"
)

// AddEntry appends one entry to the vault.
type AddEntry struct {
	Entry models.Entry
	done  bool
}

// NewAddEntry returns a command adding e.
func NewAddEntry(e models.Entry) *AddEntry {
	return &AddEntry{Entry: e}
}

func (c *AddEntry) Name() string { return "add entry" }

func (c *AddEntry) Execute(ctx context.Context, v vault.Vault) error {
	if err := v.Append(ctx, c.Entry); err != nil {
		return fmt.Errorf("append %s: %w", c.Entry.GTU(), err)
	}
	c.done = true
	v.MarkChanged(true)
	return nil
}

func (c *AddEntry) Undo(ctx context.Context, v vault.Vault) error {
	if !c.done {
		return ErrNotExecuted
	}
	if err := v.Remove(ctx, c.Entry.UUID); err != nil {
		return fmt.Errorf("remove %s: %w", c.Entry.GTU(), err)
	}
	c.done = false
	v.MarkChanged(true)
	return nil
}

// UpdatePassword replaces the password of an existing entry. When the
// entry keeps a password history the replaced password is pushed into it,
// dropping the oldest entries beyond the history maximum.
type UpdatePassword struct {
	UUID     uuid.UUID
	Password string
	At       time.Time

	previous *models.Entry
}

// NewUpdatePassword returns a command setting the password of entry id.
func NewUpdatePassword(id uuid.UUID, password string, at time.Time) *UpdatePassword {
	return &UpdatePassword{UUID: id, Password: password, At: at}
}

func (c *UpdatePassword) Name() string { return "update password" }

func (c *UpdatePassword) Execute(ctx context.Context, v vault.Vault) error {
	e, err := v.FindByUUID(ctx, c.UUID)
	if err != nil {
		return fmt.Errorf("find %s: %w", c.UUID, err)
	}
	prev := e
	prev.History.Entries = append([]models.HistoryEntry(nil), e.History.Entries...)

	if e.History.Enabled && e.History.Max > 0 {
		e.History.Entries = append(e.History.Entries, models.HistoryEntry{Changed: c.At, Password: e.Password})
		if extra := len(e.History.Entries) - e.History.Max; extra > 0 {
			e.History.Entries = e.History.Entries[extra:]
		}
	}
	e.Password = c.Password
	e.PMTime = c.At
	e.RMTime = c.At

	if err = v.Update(ctx, e); err != nil {
		return fmt.Errorf("update %s: %w", e.GTU(), err)
	}
	c.previous = &prev
	v.MarkChanged(true)
	return nil
}

func (c *UpdatePassword) Undo(ctx context.Context, v vault.Vault) error {
	if c.previous == nil {
		return ErrNotExecuted
	}
	if err := v.Update(ctx, *c.previous); err != nil {
		return fmt.Errorf("restore %s: %w", c.previous.GTU(), err)
	}
	c.previous = nil
	v.MarkChanged(true)
	return nil
}

// RefreshTrigger selects when a Refresh marker fires.
type RefreshTrigger int

const (
	// RefreshOnUndo fires when the unit is undone. Placed first in a unit.
	RefreshOnUndo RefreshTrigger = iota
	// RefreshOnExecute fires when the unit is executed. Placed last.
	RefreshOnExecute
)

// Refresh is a marker telling the presentation layer to redraw the
// vault once a unit has been applied or reverted. It does not touch the
// vault.
type Refresh struct {
	Trigger RefreshTrigger
	Notify  func()
}

func (c *Refresh) Name() string {
	if c.Trigger == RefreshOnUndo {
		return "refresh on undo"
	}
	return "refresh on execute"
}

func (c *Refresh) Execute(context.Context, vault.Vault) error {
	if c.Trigger == RefreshOnExecute && c.Notify != nil {
		c.Notify()
	}
	return nil
}

func (c *Refresh) Undo(context.Context, vault.Vault) error {
	if c.Trigger == RefreshOnUndo && c.Notify != nil {
		c.Notify()
	}
	return nil
}
