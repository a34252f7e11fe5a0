package service

import (
	"context"

	"github.com/MKhiriev/go-pass-transfer/internal/command"
	"github.com/MKhiriev/go-pass-transfer/internal/report"
	"github.com/MKhiriev/go-pass-transfer/models"
)

// TransferService moves entries between the working vault and external
// files.
type TransferService interface {
	// Import parses the file named by req and returns the transaction that
	// adds its entries. The vault is not modified.
	Import(ctx context.Context, req models.ImportRequest) (ImportResult, error)
	// Validate runs the validate pass of an XML file without building
	// entries.
	Validate(ctx context.Context, req models.ImportRequest) (ImportResult, error)

	// Apply executes a transaction returned by Import against the vault.
	Apply(ctx context.Context, tx *command.Multi) error
	// Undo reverts an applied transaction.
	Undo(ctx context.Context, tx *command.Multi) error

	Export(ctx context.Context, req models.ExportRequest) (ExportResult, error)
	List(ctx context.Context) ([]models.Entry, error)
}

// ImportResult is the outcome of one import call.
type ImportResult struct {
	Status models.Status
	Stats  models.Stats
	Report *report.Report

	// Header holds the preferences and unknown header fields of an XML file.
	Header models.VaultHeader

	// Transaction is nil when the call was fatal or accepted no record.
	Transaction *command.Multi
}

// ExportResult is the outcome of one export call.
type ExportResult struct {
	Status   models.Status
	Exported int
	Report   *report.Report
}

// TransferServiceWrapper defines middleware composition for TransferService.
// Implementations wrap an existing TransferService to add behavior such as
// logging or validating.
type TransferServiceWrapper interface {
	Wrap(TransferService) TransferService // returns a decorated TransferService applying additional behavior
}
