package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyPath             = errors.New("file path is required")
	ErrUnsupportedFormat     = errors.New("unsupported file format")
	ErrInvalidDelimiter      = errors.New("invalid delimiter")
	ErrInvalidFieldSeparator = errors.New("invalid field separator")
	ErrPasswordsOnlyFormat   = errors.New("password-only updates need a plaintext file")
	ErrUnsupportedEncoding   = errors.New("unsupported encoding")
	ErrInvalidSubgroup       = errors.New("invalid subgroup restriction")
)
