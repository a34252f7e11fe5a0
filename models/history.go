package models

import "time"

// Bounds of a password history record.
const (
	MaxHistoryEntries  = 255
	MaxHistoryPassword = 255
)

// PasswordHistory is the bounded log of previous passwords of an entry.
type PasswordHistory struct {
	Enabled bool           `json:"enabled"`
	Max     int            `json:"max"`
	Entries []HistoryEntry `json:"entries,omitempty"`
}

// HistoryEntry is one previous password and the time it was replaced.
type HistoryEntry struct {
	Changed  time.Time `json:"changed"`
	Password string    `json:"password"`
}

// IsZero reports whether the history carries nothing worth exporting.
func (h PasswordHistory) IsZero() bool {
	return !h.Enabled && h.Max == 0 && len(h.Entries) == 0
}
