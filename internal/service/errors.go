package service

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrCantOpenFile      = errors.New("cannot open file")
	ErrVault             = errors.New("vault store failure")
	ErrNoTransaction     = errors.New("no transaction to apply")

	ErrValidationImportRequest = errors.New("invalid import request")
	ErrValidationExportRequest = errors.New("invalid export request")
)
