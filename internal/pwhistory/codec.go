// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package pwhistory encodes and decodes the compact password history string.
//
// The encoded form is one hex digit of status (0 disabled, 1 enabled), two
// hex digits of maximum retained count, two hex digits of current count,
// then for every stored password: 8 hex digits of change time (Unix
// seconds), 2 hex digits of password length in characters, and the password
// characters themselves.
package pwhistory

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/MKhiriev/go-pass-transfer/models"
)

const (
	headerLen    = 5
	timeDigits   = 8
	lengthDigits = 2
	entryMinLen  = timeDigits + lengthDigits
)

// Decode parses raw into a history record.
//
// An empty string and the all-zero "00000" encoding yield ErrIgnore. Any
// malformed segment yields a *DecodeError; the returned record then holds
// the entries decoded before the failure.
func Decode(raw string) (models.PasswordHistory, error) {
	var h models.PasswordHistory

	if raw == "" {
		return h, ErrIgnore
	}

	r := []rune(raw)
	if len(r) < headerLen {
		return h, newDecodeError(InvalidHeader, 0, "header needs %d characters, got %d", headerLen, len(r))
	}

	status, ok := hexValue(r[0:1])
	if !ok {
		return h, newDecodeError(InvalidCharacter, 0, "status %q is not hexadecimal", string(r[0]))
	}
	if status > 1 {
		return h, newDecodeError(InvalidStatus, 0, "status %d", status)
	}

	maxCount, ok := hexValue(r[1:3])
	if !ok {
		return h, newDecodeError(InvalidCharacter, 1, "maximum %q is not hexadecimal", string(r[1:3]))
	}
	num, ok := hexValue(r[3:5])
	if !ok {
		return h, newDecodeError(InvalidCharacter, 3, "count %q is not hexadecimal", string(r[3:5]))
	}

	if status == 0 && maxCount == 0 && num == 0 && len(r) == headerLen {
		return h, ErrIgnore
	}

	h.Enabled = status == 1
	h.Max = maxCount

	if num > maxCount {
		return h, newDecodeError(InvalidCount, 3, "count %d exceeds maximum %d", num, maxCount)
	}
	if len(r)-headerLen < num*entryMinLen {
		return h, newDecodeError(InvalidCount, 3, "count %d does not fit %d remaining characters", num, len(r)-headerLen)
	}

	pos := headerLen
	h.Entries = make([]models.HistoryEntry, 0, num)
	for i := 0; i < num; i++ {
		if len(r)-pos < entryMinLen {
			return h, newDecodeError(TooShort, pos, "entry %d truncated", i+1)
		}

		secs, ok := hexValue(r[pos : pos+timeDigits])
		if !ok {
			return h, newDecodeError(InvalidDateTime, pos, "entry %d time %q", i+1, string(r[pos:pos+timeDigits]))
		}
		pos += timeDigits

		pwLen, ok := hexValue(r[pos : pos+lengthDigits])
		if !ok {
			return h, newDecodeError(InvalidPasswordLength, pos, "entry %d length %q", i+1, string(r[pos:pos+lengthDigits]))
		}
		pos += lengthDigits

		if len(r)-pos < pwLen {
			return h, newDecodeError(TooShort, pos, "entry %d needs %d password characters, %d left", i+1, pwLen, len(r)-pos)
		}

		// a zero time field stands for an unknown change time
		var changed time.Time
		if secs != 0 {
			changed = time.Unix(int64(secs), 0).UTC()
		}
		h.Entries = append(h.Entries, models.HistoryEntry{
			Changed:  changed,
			Password: string(r[pos : pos+pwLen]),
		})
		pos += pwLen
	}

	if pos != len(r) {
		return h, newDecodeError(TooLong, pos, "%d trailing characters", len(r)-pos)
	}

	return h, nil
}

// Encode renders h in the compact form understood by Decode. A history that
// is disabled and empty encodes to the empty string.
func Encode(h models.PasswordHistory) string {
	if h.IsZero() {
		return ""
	}

	var b strings.Builder
	status := 0
	if h.Enabled {
		status = 1
	}
	fmt.Fprintf(&b, "%01x%02x%02x", status, h.Max, len(h.Entries))
	for _, e := range h.Entries {
		var secs int64
		if !e.Changed.IsZero() {
			secs = e.Changed.Unix()
		}
		fmt.Fprintf(&b, "%08x%02x%s", uint32(secs), len([]rune(e.Password)), e.Password)
	}
	return b.String()
}

// Validate reports whether Encode can render h in a form Decode reads back:
// count ≤ max ≤ 255, every password at most 255 characters long and every
// change time within the 32-bit Unix seconds range.
func Validate(h models.PasswordHistory) error {
	if h.Max < 0 || h.Max > models.MaxHistoryEntries {
		return newDecodeError(InvalidCount, 1, "maximum %d above %d", h.Max, models.MaxHistoryEntries)
	}
	if len(h.Entries) > h.Max {
		return newDecodeError(InvalidCount, 3, "count %d exceeds maximum %d", len(h.Entries), h.Max)
	}
	for i, e := range h.Entries {
		if n := len([]rune(e.Password)); n > models.MaxHistoryPassword {
			return newDecodeError(InvalidPasswordLength, 0, "entry %d length %d", i+1, n)
		}
		if !e.Changed.IsZero() {
			if secs := e.Changed.Unix(); secs <= 0 || secs > math.MaxUint32 {
				return newDecodeError(InvalidDateTime, 0, "entry %d time %s", i+1, e.Changed.Format(time.RFC3339))
			}
		}
	}
	return nil
}

func hexValue(r []rune) (int, bool) {
	v := 0
	for _, c := range r {
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'f':
			d = int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = int(c-'A') + 10
		default:
			return 0, false
		}
		v = v<<4 | d
	}
	return v, true
}
