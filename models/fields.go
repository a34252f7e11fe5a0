package models

import "strings"

// FieldType identifies one logical entry field in the external formats.
type FieldType int

const (
	FieldGroup FieldType = iota
	FieldTitle
	FieldUser
	FieldPassword
	FieldURL
	FieldAutoType
	FieldCTime
	FieldPMTime
	FieldATime
	FieldXTime
	FieldXTimeInterval
	FieldRMTime
	FieldPolicy
	FieldHistory
	FieldRunCommand
	FieldDCA
	FieldEmail
	FieldProtected
	FieldSymbols
	FieldNotes
	FieldUUID

	fieldCount
)

// ExportOrder is the fixed canonical column order of text exports.
// Group and Title share the leading "Group/Title" column.
var ExportOrder = []FieldType{
	FieldUser,
	FieldPassword,
	FieldURL,
	FieldAutoType,
	FieldCTime,
	FieldPMTime,
	FieldATime,
	FieldXTime,
	FieldXTimeInterval,
	FieldRMTime,
	FieldPolicy,
	FieldHistory,
	FieldRunCommand,
	FieldDCA,
	FieldEmail,
	FieldProtected,
	FieldSymbols,
	FieldNotes,
}

var fieldNames = map[FieldType]string{
	FieldGroup:         "Group",
	FieldTitle:         "Title",
	FieldUser:          "Username",
	FieldPassword:      "Password",
	FieldURL:           "URL",
	FieldAutoType:      "AutoType",
	FieldCTime:         "Created Time",
	FieldPMTime:        "Password Modified Time",
	FieldATime:         "Last Access Time",
	FieldXTime:         "Password Expiry Date",
	FieldXTimeInterval: "Password Expiry Interval",
	FieldRMTime:        "Record Modified Time",
	FieldPolicy:        "Password Policy",
	FieldHistory:       "History",
	FieldRunCommand:    "Run Command",
	FieldDCA:           "DCA",
	FieldEmail:         "e-mail",
	FieldProtected:     "Protected",
	FieldSymbols:       "Symbols",
	FieldNotes:         "Notes",
	FieldUUID:          "UUID",
}

var fieldKeys = map[string]FieldType{
	"group":          FieldGroup,
	"title":          FieldTitle,
	"user":           FieldUser,
	"username":       FieldUser,
	"password":       FieldPassword,
	"url":            FieldURL,
	"autotype":       FieldAutoType,
	"ctime":          FieldCTime,
	"pmtime":         FieldPMTime,
	"atime":          FieldATime,
	"xtime":          FieldXTime,
	"xtime_interval": FieldXTimeInterval,
	"rmtime":         FieldRMTime,
	"policy":         FieldPolicy,
	"history":        FieldHistory,
	"runcommand":     FieldRunCommand,
	"dca":            FieldDCA,
	"email":          FieldEmail,
	"protected":      FieldProtected,
	"symbols":        FieldSymbols,
	"notes":          FieldNotes,
	"uuid":           FieldUUID,
}

// Name returns the display name used in export headers.
func (f FieldType) Name() string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	return "Unknown"
}

// ParseFieldType resolves a short field key (as used on the command line)
// to its FieldType.
func ParseFieldType(key string) (FieldType, bool) {
	f, ok := fieldKeys[strings.ToLower(strings.TrimSpace(key))]
	return f, ok
}

// FieldSet is a bitmask over FieldType.
type FieldSet uint32

// AllFields has every field bit set.
const AllFields FieldSet = 1<<fieldCount - 1

// NewFieldSet builds a set from the given fields.
func NewFieldSet(fields ...FieldType) FieldSet {
	var s FieldSet
	for _, f := range fields {
		s = s.With(f)
	}
	return s
}

// Has reports whether f is a member of the set.
func (s FieldSet) Has(f FieldType) bool {
	return s&(1<<f) != 0
}

// With returns a copy of the set with f added.
func (s FieldSet) With(f FieldType) FieldSet {
	return s | 1<<f
}

// Without returns a copy of the set with f removed.
func (s FieldSet) Without(f FieldType) FieldSet {
	return s &^ (1 << f)
}

// IsEmpty reports whether no field is selected.
func (s FieldSet) IsEmpty() bool {
	return s&AllFields == 0
}

// FieldSelection is a field bitmask with a polarity: when Included is false
// the bitmask lists the fields to leave out.
type FieldSelection struct {
	Fields   FieldSet
	Included bool
}

// Selects reports whether f takes part in the output.
func (fs FieldSelection) Selects(f FieldType) bool {
	return fs.Fields.Has(f) == fs.Included
}

// Effective returns the set of selected fields with polarity applied.
func (fs FieldSelection) Effective() FieldSet {
	if fs.Included {
		return fs.Fields & AllFields
	}
	return AllFields &^ fs.Fields
}

// IsAll reports whether every exportable field is selected.
func (fs FieldSelection) IsAll() bool {
	eff := fs.Effective()
	if !eff.Has(FieldGroup) || !eff.Has(FieldTitle) {
		return false
	}
	for _, f := range ExportOrder {
		if !eff.Has(f) {
			return false
		}
	}
	return true
}
