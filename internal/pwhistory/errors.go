package pwhistory

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-pass-transfer/models"
)

// ErrIgnore marks an empty or all-zero history string: the field carries
// nothing and should be left out silently.
var ErrIgnore = errors.New("password history disabled")

// ErrorKind classifies a malformed history string.
type ErrorKind int

const (
	InvalidHeader ErrorKind = iota + 1
	InvalidStatus
	InvalidCount
	InvalidDateTime
	InvalidPasswordLength
	TooShort
	TooLong
	InvalidCharacter
)

var kindNames = map[ErrorKind]string{
	InvalidHeader:         "invalid header",
	InvalidStatus:         "invalid status",
	InvalidCount:          "invalid number of entries",
	InvalidDateTime:       "invalid date/time",
	InvalidPasswordLength: "invalid password length",
	TooShort:              "too short",
	TooLong:               "too long",
	InvalidCharacter:      "invalid character",
}

func (k ErrorKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind %d", int(k))
}

// DecodeError reports where and why a history string failed to decode.
type DecodeError struct {
	Kind   ErrorKind
	Offset int
	Detail string
}

func newDecodeError(kind ErrorKind, offset int, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("password history %s at offset %d: %s", e.Kind, e.Offset, e.Detail)
}

// KindOf extracts the error kind from err, or 0 if err is not a
// *DecodeError.
func KindOf(err error) ErrorKind {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// Describe formats the diagnostic line for a history field that could not
// be used on the entry identified by key.
func Describe(err error, key models.GTU) string {
	return fmt.Sprintf("Error in password history of %s: %v; field ignored", key, err)
}
