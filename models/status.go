// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Status is the completion code of an import or export call.
type Status int

const (
	Success Status = iota
	OKWithErrors
	Failure
	CantOpenFile
	InvalidFormat
	NoEntriesExported
	XMLFailedValidation
	XMLFailedImport
)

var statusNames = map[Status]string{
	Success:             "success",
	OKWithErrors:        "completed with errors",
	Failure:             "failure",
	CantOpenFile:        "cannot open file",
	InvalidFormat:       "invalid format",
	NoEntriesExported:   "no entries exported",
	XMLFailedValidation: "XML validation failed",
	XMLFailedImport:     "XML import failed",
}

// String returns a human-readable status.
func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

// IsFatal reports whether the call produced no usable result.
func (s Status) IsFatal() bool {
	switch s {
	case Success, OKWithErrors, NoEntriesExported:
		return false
	default:
		return true
	}
}

// Stats aggregates the counters of one import or export call.
type Stats struct {
	Imported      int `json:"imported"`
	Skipped       int `json:"skipped"`
	Renamed       int `json:"renamed"`
	HistoryErrors int `json:"history_errors"`
	InvalidFields int `json:"invalid_fields"`
	Exported      int `json:"exported"`

	// Validated is the number of entry elements seen by an XML validate pass.
	Validated int `json:"validated"`

	RecordsWithUnknownFields int  `json:"records_with_unknown_fields"`
	HeaderUnknownFields      bool `json:"header_unknown_fields"`
	HeaderErrors             int  `json:"header_errors"`
	RecordErrors             int  `json:"record_errors"`
}

// HasErrors reports whether any record was skipped or degraded, or the XML
// carried malformed unknown fields. Renames are informational.
func (s Stats) HasErrors() bool {
	return s.Skipped+s.HistoryErrors+s.InvalidFields+s.HeaderErrors+s.RecordErrors > 0
}
