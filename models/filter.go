package models

import (
	"strconv"
	"strings"
)

// MatchRule is the comparison applied by a subgroup filter.
type MatchRule int

const (
	MatchEquals MatchRule = iota
	MatchNotEquals
	MatchBeginsWith
	MatchNotBeginsWith
	MatchEndsWith
	MatchNotEndsWith
	MatchContains
	MatchNotContains
)

var matchRuleNames = map[MatchRule]string{
	MatchEquals:        "equals",
	MatchNotEquals:     "does not equal",
	MatchBeginsWith:    "begins with",
	MatchNotBeginsWith: "does not begin with",
	MatchEndsWith:      "ends with",
	MatchNotEndsWith:   "does not end with",
	MatchContains:      "contains",
	MatchNotContains:   "does not contain",
}

var matchRuleKeys = map[string]MatchRule{
	"eq":           MatchEquals,
	"ne":           MatchNotEquals,
	"begins":       MatchBeginsWith,
	"not-begins":   MatchNotBeginsWith,
	"ends":         MatchEndsWith,
	"not-ends":     MatchNotEndsWith,
	"contains":     MatchContains,
	"not-contains": MatchNotContains,
}

// String returns the wording used in export comments.
func (r MatchRule) String() string {
	if n, ok := matchRuleNames[r]; ok {
		return n
	}
	return "rule " + strconv.Itoa(int(r))
}

// ParseMatchRule resolves a command-line rule key.
func ParseMatchRule(key string) (MatchRule, bool) {
	r, ok := matchRuleKeys[strings.ToLower(key)]
	return r, ok
}

// SubgroupFilter restricts an export to entries whose Field matches Value.
type SubgroupFilter struct {
	Field         FieldType
	Rule          MatchRule
	Value         string
	CaseSensitive bool
}

// Matches reports whether the entry passes the filter.
func (f SubgroupFilter) Matches(e Entry) bool {
	subject := fieldText(e, f.Field)
	value := f.Value
	if !f.CaseSensitive {
		subject = strings.ToLower(subject)
		value = strings.ToLower(value)
	}

	switch f.Rule {
	case MatchEquals:
		return subject == value
	case MatchNotEquals:
		return subject != value
	case MatchBeginsWith:
		return strings.HasPrefix(subject, value)
	case MatchNotBeginsWith:
		return !strings.HasPrefix(subject, value)
	case MatchEndsWith:
		return strings.HasSuffix(subject, value)
	case MatchNotEndsWith:
		return !strings.HasSuffix(subject, value)
	case MatchContains:
		return strings.Contains(subject, value)
	case MatchNotContains:
		return !strings.Contains(subject, value)
	}
	return false
}

func fieldText(e Entry, f FieldType) string {
	switch f {
	case FieldGroup:
		return e.Group
	case FieldTitle:
		return e.Title
	case FieldUser:
		return e.User
	case FieldPassword:
		return e.Password
	case FieldURL:
		return e.URL
	case FieldAutoType:
		return e.AutoType
	case FieldNotes:
		return e.Notes
	case FieldEmail:
		return e.Email
	case FieldRunCommand:
		return e.RunCommand
	case FieldSymbols:
		return e.Symbols
	}
	return ""
}
