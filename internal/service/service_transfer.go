// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MKhiriev/go-pass-transfer/internal/command"
	"github.com/MKhiriev/go-pass-transfer/internal/config"
	"github.com/MKhiriev/go-pass-transfer/internal/exporter"
	"github.com/MKhiriev/go-pass-transfer/internal/importer"
	"github.com/MKhiriev/go-pass-transfer/internal/logger"
	"github.com/MKhiriev/go-pass-transfer/internal/report"
	"github.com/MKhiriev/go-pass-transfer/internal/vault"
	"github.com/MKhiriev/go-pass-transfer/models"
)

// validatingImporter is implemented by importers with a dry-run pass.
type validatingImporter interface {
	Validate(ctx context.Context, r io.Reader, run *importer.Run) models.Status
}

type transferService struct {
	vault     vault.Vault
	cfg       config.Transfer
	onRefresh func()

	importers map[models.Format]importer.Importer
	exporters map[models.Format]exporter.Exporter

	logger *logger.Logger
}

func NewTransferService(v vault.Vault, cfg config.Transfer, onRefresh func(), logger *logger.Logger) TransferService {
	return &transferService{
		vault:     v,
		cfg:       cfg,
		onRefresh: onRefresh,
		importers: map[models.Format]importer.Importer{
			models.FormatXML:         importer.NewXML(),
			models.FormatText:        importer.NewPlaintext(),
			models.FormatKeePassText: importer.NewKeePassText(),
			models.FormatKeePassCSV:  importer.NewKeePassCSV(),
		},
		exporters: map[models.Format]exporter.Exporter{
			models.FormatXML:  exporter.NewXML(),
			models.FormatText: exporter.NewText(),
		},
		logger: logger,
	}
}

func (s *transferService) Import(ctx context.Context, req models.ImportRequest) (ImportResult, error) {
	imp, ok := s.importers[req.Format]
	if !ok {
		return ImportResult{Status: models.Failure}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, req.Format)
	}
	return s.run(ctx, "import", req, imp.Import)
}

func (s *transferService) Validate(ctx context.Context, req models.ImportRequest) (ImportResult, error) {
	v, ok := s.importers[req.Format].(validatingImporter)
	if !ok {
		return ImportResult{Status: models.Failure}, fmt.Errorf("%w: %q cannot be validated", ErrUnsupportedFormat, req.Format)
	}
	return s.run(ctx, "validate", req, v.Validate)
}

// run opens the file, drives parse over it and, for an import, assembles
// the transaction of the accepted records.
func (s *transferService) run(ctx context.Context, action string, req models.ImportRequest, parse importer.Func) (ImportResult, error) {
	log := logger.FromContext(ctx)

	req = s.importDefaults(req)
	rpt := report.New(action+" "+string(req.Format), s.logger)

	f, err := os.Open(req.Path)
	if err != nil {
		log.Err(err).Str("func", "transferService.run").Str("path", req.Path).Msg("error opening import file")
		rpt.WriteLine("Cannot open file %s: %v", req.Path, err)
		return ImportResult{Status: models.CantOpenFile, Report: rpt}, fmt.Errorf("%w: %w", ErrCantOpenFile, err)
	}
	defer f.Close()

	run, err := importer.NewRun(ctx, s.vault, req, rpt)
	if err != nil {
		return ImportResult{Status: models.Failure, Report: rpt}, fmt.Errorf("%w: %w", ErrVault, err)
	}
	run.MinHashIterations = s.cfg.MinHashIterations

	status := parse(ctx, f, run)
	result := ImportResult{
		Status: status,
		Stats:  run.Stats,
		Report: rpt,
		Header: run.Header,
	}

	log.Info().
		Str("func", "transferService.run").
		Str("action", rpt.Action()).
		Str("status", status.String()).
		Int("imported", run.Stats.Imported).
		Int("skipped", run.Stats.Skipped).
		Int("renamed", run.Stats.Renamed).
		Msg("import file processed")

	if status.IsFatal() || len(run.Commands) == 0 {
		return result, nil
	}
	result.Transaction = s.transaction(run)
	return result, nil
}

// transaction wraps the commands of a run into one undoable unit: a
// refresh marker for undo, the record commands, the alias and shortcut
// resolution steps and a refresh marker for execute.
func (s *transferService) transaction(run *importer.Run) *command.Multi {
	tx := command.NewMulti(fmt.Sprintf("import %s", run.Request.Format))
	tx.Add(&command.Refresh{Trigger: command.RefreshOnUndo, Notify: s.onRefresh})
	for _, c := range run.Commands {
		tx.Add(c)
	}
	tx.Add(command.NewResolveAliases(run.Aliases, run.Report))
	tx.Add(command.NewResolveShortcuts(run.Shortcuts, run.Report))
	tx.Add(&command.Refresh{Trigger: command.RefreshOnExecute, Notify: s.onRefresh})
	return tx
}

func (s *transferService) importDefaults(req models.ImportRequest) models.ImportRequest {
	if req.Delimiter == 0 {
		req.Delimiter = s.cfg.DelimiterRune()
	}
	if req.FieldSeparator == 0 {
		req.FieldSeparator = s.cfg.FieldSeparatorRune()
	}
	if req.ImportPrefix == "" {
		req.ImportPrefix = s.cfg.ImportPrefix
	}
	if req.Encoding == "" {
		req.Encoding = s.cfg.Encoding
	}
	return req
}

func (s *transferService) Apply(ctx context.Context, tx *command.Multi) error {
	if tx == nil {
		return ErrNoTransaction
	}
	if err := tx.Execute(ctx, s.vault); err != nil {
		return fmt.Errorf("error applying %s: %w", tx.Name(), err)
	}
	return nil
}

func (s *transferService) Undo(ctx context.Context, tx *command.Multi) error {
	if tx == nil {
		return ErrNoTransaction
	}
	if err := tx.Undo(ctx, s.vault); err != nil {
		return fmt.Errorf("error undoing %s: %w", tx.Name(), err)
	}
	return nil
}

func (s *transferService) Export(ctx context.Context, req models.ExportRequest) (ExportResult, error) {
	log := logger.FromContext(ctx)

	exp, ok := s.exporters[req.Format]
	if !ok {
		return ExportResult{Status: models.Failure}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, req.Format)
	}
	if req.Delimiter == 0 {
		req.Delimiter = s.cfg.DelimiterRune()
	}
	if req.Header.NumberHashIterations == 0 {
		req.Header.NumberHashIterations = s.cfg.MinHashIterations
	}
	rpt := report.New("export "+string(req.Format), s.logger)

	entries, err := s.vault.Entries(ctx)
	if err != nil {
		return ExportResult{Status: models.Failure, Report: rpt}, fmt.Errorf("%w: %w", ErrVault, err)
	}

	f, err := os.Create(req.Path)
	if err != nil {
		log.Err(err).Str("func", "transferService.Export").Str("path", req.Path).Msg("error creating export file")
		rpt.WriteLine("Cannot open file %s: %v", req.Path, err)
		return ExportResult{Status: models.CantOpenFile, Report: rpt}, fmt.Errorf("%w: %w", ErrCantOpenFile, err)
	}

	status, n, exportErr := exp.Export(ctx, f, entries, req, rpt)
	closeErr := f.Close()

	if status.IsFatal() || status == models.NoEntriesExported {
		// nothing useful was written
		_ = os.Remove(req.Path)
	}
	if err := errors.Join(exportErr, closeErr); err != nil {
		return ExportResult{Status: models.Failure, Exported: n, Report: rpt}, fmt.Errorf("error exporting to %s: %w", req.Path, err)
	}

	log.Info().
		Str("func", "transferService.Export").
		Str("status", status.String()).
		Int("exported", n).
		Msg("export finished")
	return ExportResult{Status: status, Exported: n, Report: rpt}, nil
}

func (s *transferService) List(ctx context.Context) ([]models.Entry, error) {
	entries, err := s.vault.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVault, err)
	}
	return entries, nil
}
