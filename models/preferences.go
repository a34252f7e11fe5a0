package models

// TreeDisplayStatus is the initial tree expansion mode of the vault view.
type TreeDisplayStatus int

const (
	TreeAllCollapsed TreeDisplayStatus = iota
	TreeAllExpanded
	TreeAsPerLastSave
)

var treeDisplayNames = map[TreeDisplayStatus]string{
	TreeAllCollapsed:  "AllCollapsed",
	TreeAllExpanded:   "AllExpanded",
	TreeAsPerLastSave: "AsPerLastSave",
}

// String returns the XML spelling of the mode.
func (t TreeDisplayStatus) String() string {
	return treeDisplayNames[t]
}

// ParseTreeDisplayStatus maps the XML spelling back to the mode.
func ParseTreeDisplayStatus(s string) (TreeDisplayStatus, bool) {
	for k, v := range treeDisplayNames {
		if v == s {
			return k, true
		}
	}
	return 0, false
}

// Preferences is the vault-wide preference block carried in the XML header.
// A nil field means "not overridden".
type Preferences struct {
	DisplayExpandedAddEditDlg *bool
	MaintainDateTimeStamps    *bool
	PWUseDigits               *bool
	PWUseEasyVision           *bool
	PWUseHexDigits            *bool
	PWUseLowercase            *bool
	PWUseSymbols              *bool
	PWUseUppercase            *bool
	PWMakePronounceable       *bool
	SaveImmediately           *bool
	SavePasswordHistory       *bool
	ShowNotesDefault          *bool
	ShowPWDefault             *bool
	ShowPasswordInTree        *bool
	ShowUsernameInTree        *bool
	SortAscending             *bool
	UseDefaultUser            *bool

	PWDefaultLength      *int
	IdleTimeout          *int
	NumPWHistoryDefault  *int
	PWDigitMinLength     *int
	PWLowercaseMinLength *int
	PWSymbolMinLength    *int
	PWUppercaseMinLength *int

	TreeDisplayStatusAtOpen *TreeDisplayStatus

	DefaultUsername       *string
	DefaultAutotypeString *string
}

// VaultHeader describes the vault being exported.
type VaultHeader struct {
	DatabaseName         string
	UUID                 string
	MajorVersion         int
	MinorVersion         int
	WhoSaved             string
	WhatSaved            string
	WhenLastSaved        string
	NumberHashIterations int
	Preferences          Preferences
	UnknownFields        []UnknownField
}
