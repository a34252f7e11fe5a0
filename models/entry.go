// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntryType classifies an entry by its relation to other entries.
//
// Alias and shortcut entries are recognised by password content
// (`[[...]]` and `[~...~]`) and only get a non-Normal type once their base
// entry has been resolved.
type EntryType int

const (
	EntryNormal EntryType = iota
	EntryAliasBase
	EntryAlias
	EntryShortcutBase
	EntryShortcut
)

// String returns a lower-case name of the entry type.
func (t EntryType) String() string {
	switch t {
	case EntryAliasBase:
		return "aliasbase"
	case EntryAlias:
		return "alias"
	case EntryShortcutBase:
		return "shortcutbase"
	case EntryShortcut:
		return "shortcut"
	default:
		return "normal"
	}
}

// EntryStatus marks entries added to a non-empty vault by an import.
type EntryStatus int

const (
	StatusClean EntryStatus = iota
	StatusAdded
)

// Entry is one credential record of the vault.
//
// Zero time values mean "not set". XTimeInterval is the password expiry
// interval in days (0 = none).
type Entry struct {
	UUID     uuid.UUID `json:"uuid"`
	Group    string    `json:"group"`
	Title    string    `json:"title"`
	User     string    `json:"user"`
	Password string    `json:"password"`
	URL      string    `json:"url"`
	AutoType string    `json:"autotype"`
	Notes    string    `json:"notes"`

	CTime         time.Time `json:"ctime"`
	PMTime        time.Time `json:"pmtime"`
	ATime         time.Time `json:"atime"`
	XTime         time.Time `json:"xtime"`
	XTimeInterval int       `json:"xtime_interval"`
	RMTime        time.Time `json:"rmtime"`

	History PasswordHistory `json:"history"`
	Policy  *PasswordPolicy `json:"policy,omitempty"`

	RunCommand string `json:"runcommand"`
	DCA        *int   `json:"dca,omitempty"`
	Email      string `json:"email"`
	Protected  bool   `json:"protected"`
	Symbols    string `json:"symbols"`

	UnknownFields []UnknownField `json:"unknown_fields,omitempty"`

	Type     EntryType   `json:"type"`
	BaseUUID uuid.UUID   `json:"base_uuid"`
	Status   EntryStatus `json:"-"`
}

// GTU returns the identity key of the entry.
func (e Entry) GTU() GTU {
	return GTU{Group: e.Group, Title: e.Title, User: e.User}
}

// IsAliasCandidate reports whether the password holds an alias reference.
func (e Entry) IsAliasCandidate() bool {
	return IsAliasReference(e.Password)
}

// IsShortcutCandidate reports whether the password holds a shortcut reference.
func (e Entry) IsShortcutCandidate() bool {
	return IsShortcutReference(e.Password)
}

// IsDependent reports whether the entry has been linked to a base entry.
func (e Entry) IsDependent() bool {
	return e.Type == EntryAlias || e.Type == EntryShortcut
}

// GTU is the (group, title, user) identity key of an entry.
type GTU struct {
	Group string
	Title string
	User  string
}

// String renders the key the way import reports show it.
func (k GTU) String() string {
	return "«" + k.Group + "» «" + k.Title + "» «" + k.User + "»"
}

// UnknownField is a record or header field this build cannot interpret.
// It is kept verbatim so that a later export writes it back.
type UnknownField struct {
	Type byte   `json:"type"`
	Data []byte `json:"data"`
}

// Len returns the byte length of the field payload.
func (f UnknownField) Len() int {
	return len(f.Data)
}

// Unknown field type boundaries. Codes at or above these values belong to
// newer formats and are preserved.
const (
	HeaderLast byte = 0x11
	RecordLast byte = 0x1b
)

// IsAliasReference reports whether s has the `[[...]]` alias shape with at
// most two colons inside.
func IsAliasReference(s string) bool {
	return hasReferenceShape(s, "[[", "]]")
}

// IsShortcutReference reports whether s has the `[~...~]` shortcut shape
// with at most two colons inside.
func IsShortcutReference(s string) bool {
	return hasReferenceShape(s, "[~", "~]")
}

// LooksLikeReference reports whether a normal password would be mistaken
// for a reference on re-import: it starts with '[' and ends with ']' and
// contains at most two colons.
func LooksLikeReference(s string) bool {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return false
	}
	return strings.Count(s, ":") <= 2
}

func hasReferenceShape(s, open, closing string) bool {
	if len(s) <= len(open)+len(closing) {
		return false
	}
	if !strings.HasPrefix(s, open) || !strings.HasSuffix(s, closing) {
		return false
	}
	return strings.Count(s, ":") <= 2
}

// ParseReference splits the inside of an alias or shortcut reference into
// its group, title and user parts. `[[t]]` carries only a title,
// `[[g:t]]` a group and a title.
func ParseReference(s string) (GTU, bool) {
	var inner string
	switch {
	case IsAliasReference(s):
		inner = s[2 : len(s)-2]
	case IsShortcutReference(s):
		inner = s[2 : len(s)-2]
	default:
		return GTU{}, false
	}

	parts := strings.Split(inner, ":")
	switch len(parts) {
	case 1:
		return GTU{Title: parts[0]}, parts[0] != ""
	case 2:
		return GTU{Group: parts[0], Title: parts[1]}, parts[1] != ""
	default:
		return GTU{Group: parts[0], Title: parts[1], User: parts[2]}, parts[1] != ""
	}
}
