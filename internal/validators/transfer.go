package validators

import (
	"context"
	"strings"
	"unicode"

	"github.com/MKhiriev/go-pass-transfer/models"
)

// Field name constants used to restrict validation to a subset of a
// request.
const (
	// FieldPath targets the file name of a request.
	FieldPath = "path"

	// FieldFormat targets the file format of a request.
	FieldFormat = "format"

	// FieldDelimiter targets the line-break and title-dot replacement
	// character.
	FieldDelimiter = "delimiter"

	// FieldSeparator targets the plaintext column separator.
	FieldSeparator = "field_separator"

	// FieldPasswordsOnly targets the password-only update flag.
	FieldPasswordsOnly = "passwords_only"

	// FieldEncoding targets the plaintext character set.
	FieldEncoding = "encoding"

	// FieldSubgroup targets the subgroup restriction of an export.
	FieldSubgroup = "subgroup"
)

var importFormats = map[models.Format]bool{
	models.FormatXML:         true,
	models.FormatText:        true,
	models.FormatKeePassText: true,
	models.FormatKeePassCSV:  true,
}

var exportFormats = map[models.Format]bool{
	models.FormatXML:  true,
	models.FormatText: true,
}

// filterFields are the text fields a subgroup restriction can match.
var filterFields = map[models.FieldType]bool{
	models.FieldGroup:      true,
	models.FieldTitle:      true,
	models.FieldUser:       true,
	models.FieldPassword:   true,
	models.FieldURL:        true,
	models.FieldAutoType:   true,
	models.FieldNotes:      true,
	models.FieldEmail:      true,
	models.FieldRunCommand: true,
	models.FieldSymbols:    true,
}

var encodings = map[string]bool{
	"":             true,
	"utf-8":        true,
	"windows-1252": true,
	"iso-8859-1":   true,
}

// TransferValidator validates ImportRequest and ExportRequest values.
type TransferValidator struct {
}

func NewTransferValidator() Validator {
	return &TransferValidator{}
}

// Validate dispatches on the dynamic type of obj. Both value and pointer
// forms are accepted. Returns ErrUnsupportedType for anything else.
func (v *TransferValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.ImportRequest:
		return v.validateImportRequest(ctx, value, fields...)
	case *models.ImportRequest:
		return v.validateImportRequest(ctx, *value, fields...)

	case models.ExportRequest:
		return v.validateExportRequest(ctx, value, fields...)
	case *models.ExportRequest:
		return v.validateExportRequest(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *TransferValidator) validateImportRequest(_ context.Context, req models.ImportRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldPath, FieldFormat, FieldDelimiter, FieldSeparator, FieldPasswordsOnly, FieldEncoding}
	}

	for _, f := range fields {
		switch f {
		case FieldPath:
			if strings.TrimSpace(req.Path) == "" {
				return ErrEmptyPath
			}
		case FieldFormat:
			if !importFormats[req.Format] {
				return ErrUnsupportedFormat
			}
		case FieldDelimiter:
			if !validDelimiter(req.Delimiter) {
				return ErrInvalidDelimiter
			}
		case FieldSeparator:
			if req.FieldSeparator == '\n' || req.FieldSeparator == '\r' || req.FieldSeparator == '"' {
				return ErrInvalidFieldSeparator
			}
		case FieldPasswordsOnly:
			if req.PasswordsOnly && req.Format != models.FormatText {
				return ErrPasswordsOnlyFormat
			}
		case FieldEncoding:
			if !encodings[strings.ToLower(req.Encoding)] {
				return ErrUnsupportedEncoding
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *TransferValidator) validateExportRequest(_ context.Context, req models.ExportRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldPath, FieldFormat, FieldDelimiter, FieldSubgroup}
	}

	for _, f := range fields {
		switch f {
		case FieldPath:
			if strings.TrimSpace(req.Path) == "" {
				return ErrEmptyPath
			}
		case FieldFormat:
			if !exportFormats[req.Format] {
				return ErrUnsupportedFormat
			}
		case FieldDelimiter:
			if !validDelimiter(req.Delimiter) {
				return ErrInvalidDelimiter
			}
		case FieldSubgroup:
			if s := req.Subgroup; s != nil && (s.Value == "" || !filterFields[s.Field]) {
				return ErrInvalidSubgroup
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validDelimiter accepts zero (use the default) or any printable
// character other than the double quote.
func validDelimiter(r rune) bool {
	if r == 0 {
		return true
	}
	return r != '"' && unicode.IsPrint(r) && !unicode.IsSpace(r)
}
