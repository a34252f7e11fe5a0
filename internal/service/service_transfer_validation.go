package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-pass-transfer/internal/command"
	"github.com/MKhiriev/go-pass-transfer/internal/validators"
	"github.com/MKhiriev/go-pass-transfer/models"
)

type TransferValidationService struct {
	inner     TransferService
	validator validators.Validator
}

func NewTransferValidationService() TransferServiceWrapper {
	return &TransferValidationService{
		validator: validators.NewTransferValidator(),
	}
}

func (v *TransferValidationService) Import(ctx context.Context, req models.ImportRequest) (ImportResult, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return ImportResult{Status: models.Failure}, fmt.Errorf("%w: %w", ErrValidationImportRequest, err)
	}

	return v.inner.Import(ctx, req)
}

func (v *TransferValidationService) Validate(ctx context.Context, req models.ImportRequest) (ImportResult, error) {
	if err := v.validator.Validate(ctx, req, validators.FieldPath, validators.FieldDelimiter); err != nil {
		return ImportResult{Status: models.Failure}, fmt.Errorf("%w: %w", ErrValidationImportRequest, err)
	}

	return v.inner.Validate(ctx, req)
}

func (v *TransferValidationService) Apply(ctx context.Context, tx *command.Multi) error {
	return v.inner.Apply(ctx, tx)
}

func (v *TransferValidationService) Undo(ctx context.Context, tx *command.Multi) error {
	return v.inner.Undo(ctx, tx)
}

func (v *TransferValidationService) Export(ctx context.Context, req models.ExportRequest) (ExportResult, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return ExportResult{Status: models.Failure}, fmt.Errorf("%w: %w", ErrValidationExportRequest, err)
	}

	return v.inner.Export(ctx, req)
}

func (v *TransferValidationService) List(ctx context.Context) ([]models.Entry, error) {
	return v.inner.List(ctx)
}

func (v *TransferValidationService) Wrap(wrapper TransferService) TransferService {
	v.inner = wrapper
	return v
}
