// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// encodings lists the character sets plaintext imports can decode.
var encodings = map[string]bool{
	"utf-8":        true,
	"windows-1252": true,
	"iso-8859-1":   true,
}

// validate checks that the final merged [StructuredConfig] is usable.
func (cfg *StructuredConfig) validate() error {
	if cfg.Vault.DSN == "" {
		return ErrInvalidVaultConfigs
	}

	t := cfg.Transfer
	if t.Delimiter != "" && utf8.RuneCountInString(t.Delimiter) != 1 {
		return fmt.Errorf("%w: delimiter %q must be a single character", ErrInvalidTransferConfigs, t.Delimiter)
	}
	if t.FieldSeparator != "" && utf8.RuneCountInString(t.FieldSeparator) != 1 {
		return fmt.Errorf("%w: field separator %q must be a single character", ErrInvalidTransferConfigs, t.FieldSeparator)
	}
	if t.Encoding != "" && !encodings[strings.ToLower(t.Encoding)] {
		return fmt.Errorf("%w: unsupported encoding %q", ErrInvalidTransferConfigs, t.Encoding)
	}
	if t.MinHashIterations < 0 {
		return fmt.Errorf("%w: negative hash iteration floor", ErrInvalidTransferConfigs)
	}

	return nil
}
