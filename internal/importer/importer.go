// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package importer reads external vault exports and turns them into
// undoable add and update commands.
//
// Four formats are supported: the native XML format, tab separated
// plaintext, and the text and CSV exports of KeePass 1.x. Every importer
// reads the whole input first, reports per-line problems through the run's
// report and never mutates the vault itself; the produced commands are
// applied by the caller.
package importer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-pass-transfer/internal/command"
	"github.com/MKhiriev/go-pass-transfer/internal/logger"
	"github.com/MKhiriev/go-pass-transfer/internal/pwhistory"
	"github.com/MKhiriev/go-pass-transfer/internal/reconcile"
	"github.com/MKhiriev/go-pass-transfer/internal/report"
	"github.com/MKhiriev/go-pass-transfer/internal/vault"
	"github.com/MKhiriev/go-pass-transfer/models"
)

// Importer parses one external format.
type Importer interface {
	Import(ctx context.Context, r io.Reader, run *Run) models.Status
}

// Func adapts a plain function to Importer.
type Func func(ctx context.Context, r io.Reader, run *Run) models.Status

func (f Func) Import(ctx context.Context, r io.Reader, run *Run) models.Status {
	return f(ctx, r, run)
}

// Run is the mutable state of one import call. It is created per call and
// handed to every component taking part in it.
type Run struct {
	Request    models.ImportRequest
	Vault      vault.Vault
	Reconciler *reconcile.Reconciler
	Report     *report.Report
	Stats      models.Stats

	// Commands holds one add or update command per accepted record, in
	// input order.
	Commands []command.Command

	// Aliases and Shortcuts list accepted entries whose password looks
	// like a reference to another entry.
	Aliases   []uuid.UUID
	Shortcuts []uuid.UUID

	// Header receives the preferences and unknown header fields of XML
	// imports.
	Header models.VaultHeader

	// MinHashIterations is the floor for the key-stretching count read
	// from XML headers.
	MinHashIterations int

	Now func() time.Time

	vaultEmpty bool
}

// NewRun prepares a run against v. The reconciler is seeded with the
// current vault contents.
func NewRun(ctx context.Context, v vault.Vault, req models.ImportRequest, rpt *report.Report) (*Run, error) {
	entries, err := v.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("read vault entries: %w", err)
	}

	if req.Delimiter == 0 {
		req.Delimiter = DefaultDelimiter
	}
	if req.FieldSeparator == 0 {
		req.FieldSeparator = '\t'
	}

	return &Run{
		Request:    req,
		Vault:      v,
		Reconciler: reconcile.New(entries, nil),
		Report:     rpt,
		Now:        time.Now,
		vaultEmpty: len(entries) == 0,
	}, nil
}

// DefaultDelimiter stands for line breaks in notes and for dots in titles
// of text exports.
const DefaultDelimiter = '^'

// Accept records e as imported: it classifies alias and shortcut
// candidates, queues the add command and writes the «group» «title»
// «user» report line. forceNormal suppresses the classification for
// passwords flagged as literal by the exporter.
func (r *Run) Accept(ctx context.Context, e models.Entry, forceNormal bool) {
	if !forceNormal {
		switch {
		case e.IsAliasCandidate():
			r.Aliases = append(r.Aliases, e.UUID)
		case e.IsShortcutCandidate():
			r.Shortcuts = append(r.Shortcuts, e.UUID)
		}
	}
	if !r.vaultEmpty {
		e.Status = models.StatusAdded
	}

	r.Commands = append(r.Commands, command.NewAddEntry(e))
	r.Stats.Imported++
	r.Report.WriteLine("%s", e.GTU())

	logger.FromContext(ctx).Debug().
		Str("func", "Run.Accept").
		Str("uuid", e.UUID.String()).
		Msg("entry accepted")
}

// Skip counts a skipped record and reports why.
func (r *Run) Skip(line int, format string, args ...any) {
	r.Stats.Skipped++
	r.Report.WriteLine("Line %d: %s", line, fmt.Sprintf(format, args...))
}

// Rename reports a title changed to keep the identity key unique.
func (r *Run) Rename(line int, group, title, user, newTitle string) {
	r.Stats.Renamed++
	where := fmt.Sprintf("Line %d", line)
	if group != "" {
		where += fmt.Sprintf(", group %q", group)
	}
	r.Report.WriteLine("%s: conflict with title %q and user %q, imported as %q", where, title, user, newTitle)
}

// InvalidField reports a field value that was dropped from an otherwise
// imported record.
func (r *Run) InvalidField(line int, field models.FieldType, value string, err error) {
	r.Stats.InvalidFields++
	r.Report.WriteLine("Line %d: invalid value %q in field %q (%v), field ignored", line, value, field.Name(), err)
}

// Status derives the completion code of a run that reached the end of
// its input.
func (r *Run) Status() models.Status {
	if r.Stats.HasErrors() {
		return models.OKWithErrors
	}
	return models.Success
}

// Reserve claims the identity key of a new record, renaming the title when
// needed, and returns the title to use.
func (r *Run) Reserve(line int, group, title, user string) string {
	newTitle, renamed := r.Reconciler.Reserve(group, title, user)
	if renamed {
		r.Rename(line, group, title, user, newTitle)
	}
	return newTitle
}

// ReserveIdentifier claims the identifier written as raw, or a fresh one
// when raw is malformed or already taken.
func (r *Run) ReserveIdentifier(raw string) uuid.UUID {
	id, _ := r.Reconciler.ReserveIdentifier(raw)
	return id
}

// HistoryError reports a password history field dropped from the entry
// identified by key.
func (r *Run) HistoryError(line int, key models.GTU, err error) {
	r.Stats.HistoryErrors++
	r.Report.WriteLine("Line %d: %s", line, pwhistory.Describe(err, key))
}
