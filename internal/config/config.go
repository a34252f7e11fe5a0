// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"unicode/utf8"
)

// StructuredConfig is the top-level configuration container for the
// pwtransfer tool. It is populated by merging values from environment
// variables, command-line flags and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Vault selects the working vault imports are applied to.
	Vault Vault `envPrefix:"PWT_VAULT_"`

	// Transfer holds the defaults applied to import and export requests.
	Transfer Transfer `envPrefix:"PWT_TRANSFER_"`

	// Log holds the log file location and level.
	Log Log `envPrefix:"PWT_LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged after the values
	// already loaded from environment variables and flags.
	// Populated via the PWT_CONFIG environment variable or the --config flag.
	JSONFilePath string `env:"PWT_CONFIG"`
}

// Vault holds the working vault settings.
type Vault struct {
	// DSN is the SQLite file holding the working vault. MemoryDSN selects
	// a vault that lives for one process only.
	// Env: PWT_VAULT_DSN
	DSN string `env:"DSN"`
}

// MemoryDSN selects the in-memory vault.
const MemoryDSN = ":memory:"

// Transfer holds the defaults of import and export calls.
type Transfer struct {
	// Delimiter stands for line breaks in notes and dots in titles of
	// text files. Exactly one character.
	// Env: PWT_TRANSFER_DELIMITER
	Delimiter string `env:"DELIMITER"`

	// FieldSeparator splits body rows of plaintext imports.
	// Env: PWT_TRANSFER_FIELD_SEPARATOR
	FieldSeparator string `env:"FIELD_SEPARATOR"`

	// ImportPrefix is prepended to the group of every imported entry.
	// Env: PWT_TRANSFER_IMPORT_PREFIX
	ImportPrefix string `env:"IMPORT_PREFIX"`

	// Encoding is the character set of plaintext rows that are not
	// valid UTF-8.
	// Env: PWT_TRANSFER_ENCODING
	Encoding string `env:"ENCODING"`

	// MinHashIterations is the smallest key-stretching count accepted from
	// an XML header.
	// Env: PWT_TRANSFER_MIN_HASH_ITERATIONS
	MinHashIterations int `env:"MIN_HASH_ITERATIONS"`
}

// DelimiterRune returns the delimiter character, or zero when unset.
func (t Transfer) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(t.Delimiter)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// FieldSeparatorRune returns the field separator character, or zero when
// unset.
func (t Transfer) FieldSeparatorRune() rune {
	r, _ := utf8.DecodeRuneInString(t.FieldSeparator)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// Log holds logging settings.
type Log struct {
	// File is the log file path. Empty selects a "logs" file next to the
	// executable.
	// Env: PWT_LOG_FILE
	File string `env:"FILE"`

	// Level is a zerolog level name.
	// Env: PWT_LOG_LEVEL
	Level string `env:"LEVEL"`
}

// Defaults are merged last and fill every field no source has set.
var Defaults = StructuredConfig{
	Vault: Vault{DSN: "vault.db"},
	Transfer: Transfer{
		Delimiter:         "^",
		FieldSeparator:    "\t",
		Encoding:          "utf-8",
		MinHashIterations: 2048,
	},
	Log: Log{Level: "info"},
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources in the following priority order (earlier sources
// win for non-zero fields):
//  1. Environment variables
//  2. Command-line flags, already parsed by the caller into flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Defaults
//
// flags may be nil.
func GetStructuredConfig(flags *StructuredConfig) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(flags).
		withJSON().
		withDefaults().
		build()
}
