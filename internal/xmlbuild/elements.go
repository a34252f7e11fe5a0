package xmlbuild

// tag identifies an element the builder knows about.
type tag int

const (
	tagUnknown tag = iota

	tagPasswordSafe
	tagNumberHashIterations
	tagPreferences
	tagUnknownHeaderFields
	tagUnknownRecordFields
	tagField

	tagEntry
	tagGroup
	tagTitle
	tagUsername
	tagPassword
	tagURL
	tagAutoType
	tagNotes
	tagUUID
	tagRunCommand
	tagDCA
	tagEmail
	tagProtected
	tagSymbols

	tagCTime
	tagATime
	tagXTime
	tagPMTime
	tagRMTime
	tagChanged
	tagDate
	tagTime
	tagXTimeInterval

	tagPWHistory
	tagStatus
	tagMax
	tagNum
	tagHistoryEntries
	tagHistoryEntry
	tagOldPassword

	tagPasswordPolicy
	tagPWLength

	// preferences; the PWUse* flags and minimum lengths double as
	// per-entry policy elements inside an entry
	tagDisplayExpandedAddEditDlg
	tagMaintainDateTimeStamps
	tagPWUseDigits
	tagPWUseEasyVision
	tagPWUseHexDigits
	tagPWUseLowercase
	tagPWUseSymbols
	tagPWUseUppercase
	tagPWMakePronounceable
	tagSaveImmediately
	tagSavePasswordHistory
	tagShowNotesDefault
	tagShowPWDefault
	tagShowPasswordInTree
	tagShowUsernameInTree
	tagSortAscending
	tagUseDefaultUser
	tagPWDefaultLength
	tagIdleTimeout
	tagTreeDisplayStatusAtOpen
	tagNumPWHistoryDefault
	tagPWDigitMinLength
	tagPWLowercaseMinLength
	tagPWSymbolMinLength
	tagPWUppercaseMinLength
	tagDefaultUsername
	tagDefaultAutotypeString
)

var elementTags = map[string]tag{
	"passwordsafe":         tagPasswordSafe,
	"NumberHashIterations": tagNumberHashIterations,
	"Preferences":          tagPreferences,
	"unknownheaderfields":  tagUnknownHeaderFields,
	"unknownrecordfields":  tagUnknownRecordFields,
	"field":                tagField,

	"entry":      tagEntry,
	"group":      tagGroup,
	"title":      tagTitle,
	"username":   tagUsername,
	"password":   tagPassword,
	"url":        tagURL,
	"autotype":   tagAutoType,
	"notes":      tagNotes,
	"uuid":       tagUUID,
	"runcommand": tagRunCommand,
	"dca":        tagDCA,
	"email":      tagEmail,
	"protected":  tagProtected,
	"symbols":    tagSymbols,

	"ctime":          tagCTime,
	"atime":          tagATime,
	"xtime":          tagXTime,
	"ltime":          tagXTime,
	"pmtime":         tagPMTime,
	"rmtime":         tagRMTime,
	"changed":        tagChanged,
	"date":           tagDate,
	"time":           tagTime,
	"xtime_interval": tagXTimeInterval,

	"pwhistory":       tagPWHistory,
	"status":          tagStatus,
	"max":             tagMax,
	"num":             tagNum,
	"history_entries": tagHistoryEntries,
	"history_entry":   tagHistoryEntry,
	"oldpassword":     tagOldPassword,

	"PasswordPolicy": tagPasswordPolicy,
	"PWLength":       tagPWLength,

	"DisplayExpandedAddEditDlg": tagDisplayExpandedAddEditDlg,
	"MaintainDateTimeStamps":    tagMaintainDateTimeStamps,
	"PWUseDigits":               tagPWUseDigits,
	"PWUseEasyVision":           tagPWUseEasyVision,
	"PWUseHexDigits":            tagPWUseHexDigits,
	"PWUseLowercase":            tagPWUseLowercase,
	"PWUseSymbols":              tagPWUseSymbols,
	"PWUseUppercase":            tagPWUseUppercase,
	"PWMakePronounceable":       tagPWMakePronounceable,
	"SaveImmediately":           tagSaveImmediately,
	"SavePasswordHistory":       tagSavePasswordHistory,
	"ShowNotesDefault":          tagShowNotesDefault,
	"ShowPWDefault":             tagShowPWDefault,
	"ShowPasswordInTree":        tagShowPasswordInTree,
	"ShowUsernameInTree":        tagShowUsernameInTree,
	"SortAscending":             tagSortAscending,
	"UseDefaultUser":            tagUseDefaultUser,
	"PWDefaultLength":           tagPWDefaultLength,
	"IdleTimeout":               tagIdleTimeout,
	"TreeDisplayStatusAtOpen":   tagTreeDisplayStatusAtOpen,
	"NumPWHistoryDefault":       tagNumPWHistoryDefault,
	"PWDigitMinLength":          tagPWDigitMinLength,
	"PWLowercaseMinLength":      tagPWLowercaseMinLength,
	"PWSymbolMinLength":         tagPWSymbolMinLength,
	"PWUppercaseMinLength":      tagPWUppercaseMinLength,
	"DefaultUsername":           tagDefaultUsername,
	"DefaultAutotypeString":     tagDefaultAutotypeString,
}

func lookupTag(name string) tag {
	return elementTags[name]
}

// timeSlot reports whether t selects which timestamp the following date
// and time elements belong to.
func (t tag) timeSlot() bool {
	switch t {
	case tagCTime, tagATime, tagXTime, tagPMTime, tagRMTime, tagChanged:
		return true
	}
	return false
}
