// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package command builds the undoable operations produced by an import.
//
// One import call yields one *Multi. Executing it applies every contained
// operation in order; undoing it reverts them in reverse order, so the
// whole import is a single undo step.
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-pass-transfer/internal/logger"
	"github.com/MKhiriev/go-pass-transfer/internal/vault"
)

// Command is one undoable vault operation.
type Command interface {
	Name() string
	Execute(ctx context.Context, v vault.Vault) error
	Undo(ctx context.Context, v vault.Vault) error
}

// Multi groups commands into a single undoable unit.
type Multi struct {
	name     string
	commands []Command
	executed int
}

// NewMulti returns an empty unit with the given display name.
func NewMulti(name string) *Multi {
	return &Multi{name: name}
}

// Add appends c to the unit.
func (m *Multi) Add(c Command) {
	m.commands = append(m.commands, c)
}

// Len returns the number of contained commands.
func (m *Multi) Len() int {
	return len(m.commands)
}

// Commands returns the contained commands in execution order.
func (m *Multi) Commands() []Command {
	out := make([]Command, len(m.commands))
	copy(out, m.commands)
	return out
}

func (m *Multi) Name() string {
	return m.name
}

// Execute runs every command in order. If one fails, the commands already
// run are undone and the error is returned.
func (m *Multi) Execute(ctx context.Context, v vault.Vault) error {
	log := logger.FromContext(ctx)

	m.executed = 0
	for i, c := range m.commands {
		if err := c.Execute(ctx, v); err != nil {
			log.Err(err).
				Str("func", "Multi.Execute").
				Str("command", c.Name()).
				Int("index", i).
				Msg("command failed, rolling back")

			rollbackErr := m.Undo(ctx, v)
			return errors.Join(fmt.Errorf("%w: %s #%d: %w", ErrCommandFailed, c.Name(), i, err), rollbackErr)
		}
		m.executed = i + 1
	}
	return nil
}

// Undo reverts the executed commands in reverse order.
func (m *Multi) Undo(ctx context.Context, v vault.Vault) error {
	var errs []error
	for i := m.executed - 1; i >= 0; i-- {
		if err := m.commands[i].Undo(ctx, v); err != nil {
			errs = append(errs, fmt.Errorf("undo %s #%d: %w", m.commands[i].Name(), i, err))
		}
	}
	m.executed = 0
	return errors.Join(errs...)
}
