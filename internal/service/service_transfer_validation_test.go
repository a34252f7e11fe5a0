package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pass-transfer/internal/command"
	"github.com/MKhiriev/go-pass-transfer/internal/validators"
	"github.com/MKhiriev/go-pass-transfer/models"
)

// ─────────────────────────────────────────────
// Mocks
// ─────────────────────────────────────────────

type mockInnerService struct {
	importFn   func(ctx context.Context, req models.ImportRequest) (ImportResult, error)
	validateFn func(ctx context.Context, req models.ImportRequest) (ImportResult, error)
	exportFn   func(ctx context.Context, req models.ExportRequest) (ExportResult, error)
	calls      int
}

func (m *mockInnerService) Import(ctx context.Context, req models.ImportRequest) (ImportResult, error) {
	m.calls++
	if m.importFn != nil {
		return m.importFn(ctx, req)
	}
	return ImportResult{}, nil
}
func (m *mockInnerService) Validate(ctx context.Context, req models.ImportRequest) (ImportResult, error) {
	m.calls++
	if m.validateFn != nil {
		return m.validateFn(ctx, req)
	}
	return ImportResult{}, nil
}
func (m *mockInnerService) Apply(context.Context, *command.Multi) error {
	m.calls++
	return nil
}
func (m *mockInnerService) Undo(context.Context, *command.Multi) error {
	m.calls++
	return nil
}
func (m *mockInnerService) Export(ctx context.Context, req models.ExportRequest) (ExportResult, error) {
	m.calls++
	if m.exportFn != nil {
		return m.exportFn(ctx, req)
	}
	return ExportResult{}, nil
}
func (m *mockInnerService) List(context.Context) ([]models.Entry, error) {
	m.calls++
	return nil, nil
}

// ─────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────

func TestTransferValidationService_Import(t *testing.T) {
	tests := []struct {
		name      string
		req       models.ImportRequest
		wantErr   error
		wantCalls int
	}{
		{
			name:      "valid request reaches the inner service",
			req:       models.ImportRequest{Format: models.FormatKeePassCSV, Path: "kp.csv"},
			wantCalls: 1,
		},
		{
			name:    "missing path",
			req:     models.ImportRequest{Format: models.FormatXML},
			wantErr: validators.ErrEmptyPath,
		},
		{
			name:    "passwords only outside plaintext",
			req:     models.ImportRequest{Format: models.FormatKeePassText, Path: "kp.txt", PasswordsOnly: true},
			wantErr: validators.ErrPasswordsOnlyFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &mockInnerService{
				importFn: func(_ context.Context, req models.ImportRequest) (ImportResult, error) {
					return ImportResult{Status: models.Success}, nil
				},
			}
			svc := NewTransferValidationService().Wrap(inner)

			res, err := svc.Import(context.Background(), tt.req)
			assert.Equal(t, tt.wantCalls, inner.calls)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, ErrValidationImportRequest)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, models.Failure, res.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.Success, res.Status)
		})
	}
}

func TestTransferValidationService_ValidateChecksPathOnly(t *testing.T) {
	inner := &mockInnerService{}
	svc := NewTransferValidationService().Wrap(inner)

	// the format is left to the inner service, which knows which importers
	// have a validate pass
	_, err := svc.Validate(context.Background(), models.ImportRequest{Format: "yaml", Path: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	_, err = svc.Validate(context.Background(), models.ImportRequest{Format: models.FormatXML})
	assert.ErrorIs(t, err, validators.ErrEmptyPath)
	assert.Equal(t, 1, inner.calls)
}

func TestTransferValidationService_Export(t *testing.T) {
	inner := &mockInnerService{
		exportFn: func(_ context.Context, req models.ExportRequest) (ExportResult, error) {
			return ExportResult{Status: models.Success, Exported: 3}, nil
		},
	}
	svc := NewTransferValidationService().Wrap(inner)

	res, err := svc.Export(context.Background(), models.ExportRequest{Format: models.FormatText, Path: "out.txt"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Exported)

	res, err = svc.Export(context.Background(), models.ExportRequest{Format: models.FormatKeePassCSV, Path: "out.csv"})
	assert.ErrorIs(t, err, ErrValidationExportRequest)
	assert.ErrorIs(t, err, validators.ErrUnsupportedFormat)
	assert.Equal(t, models.Failure, res.Status)
	assert.Equal(t, 1, inner.calls)
}

func TestTransferValidationService_PassThrough(t *testing.T) {
	inner := &mockInnerService{}
	svc := NewTransferValidationService().Wrap(inner)
	ctx := context.Background()

	require.NoError(t, svc.Apply(ctx, nil))
	require.NoError(t, svc.Undo(ctx, nil))
	_, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)
}
