package config

import "errors"

// Validation errors returned by [StructuredConfig.validate].
var (
	// ErrInvalidVaultConfigs indicates a missing vault DSN.
	ErrInvalidVaultConfigs = errors.New("invalid vault configuration")
	// ErrInvalidTransferConfigs indicates a delimiter or separator that is
	// not exactly one character, an unknown encoding or a non-positive
	// hash iteration floor.
	ErrInvalidTransferConfigs = errors.New("invalid transfer configuration")
)
