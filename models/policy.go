package models

import (
	"errors"
	"fmt"
	"strconv"
)

// Password policy flags.
const (
	PolicyUseLowercase      uint16 = 0x8000
	PolicyUseUppercase      uint16 = 0x4000
	PolicyUseDigits         uint16 = 0x2000
	PolicyUseSymbols        uint16 = 0x1000
	PolicyUseHexDigits      uint16 = 0x0800
	PolicyUseEasyVision     uint16 = 0x0400
	PolicyMakePronounceable uint16 = 0x0200
)

const policyStringLen = 19

// ErrInvalidPolicy is returned by ParsePolicy for malformed policy strings.
var ErrInvalidPolicy = errors.New("invalid password policy")

// PasswordPolicy is the per-entry password generation policy.
type PasswordPolicy struct {
	Flags     uint16 `json:"flags"`
	Length    int    `json:"length"`
	LowerMin  int    `json:"lower_min"`
	UpperMin  int    `json:"upper_min"`
	DigitMin  int    `json:"digit_min"`
	SymbolMin int    `json:"symbol_min"`
}

// SetFlag turns the flag on or off.
func (p *PasswordPolicy) SetFlag(flag uint16, on bool) {
	if on {
		p.Flags |= flag
	} else {
		p.Flags &^= flag
	}
}

// String encodes the policy as 4 hex digits of flags followed by five
// 3 hex digit numbers (length, lowercase, uppercase, digit, symbol minimums).
func (p PasswordPolicy) String() string {
	return fmt.Sprintf("%04x%03x%03x%03x%03x%03x",
		p.Flags, p.Length, p.LowerMin, p.UpperMin, p.DigitMin, p.SymbolMin)
}

// ParsePolicy decodes the 19 character text form produced by String.
func ParsePolicy(s string) (PasswordPolicy, error) {
	if len(s) != policyStringLen {
		return PasswordPolicy{}, fmt.Errorf("%w: length %d", ErrInvalidPolicy, len(s))
	}

	flags, err := strconv.ParseUint(s[0:4], 16, 16)
	if err != nil {
		return PasswordPolicy{}, fmt.Errorf("%w: flags: %w", ErrInvalidPolicy, err)
	}

	nums := make([]int, 5)
	for i := range nums {
		start := 4 + i*3
		n, err := strconv.ParseUint(s[start:start+3], 16, 16)
		if err != nil {
			return PasswordPolicy{}, fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
		}
		nums[i] = int(n)
	}

	return PasswordPolicy{
		Flags:     uint16(flags),
		Length:    nums[0],
		LowerMin:  nums[1],
		UpperMin:  nums[2],
		DigitMin:  nums[3],
		SymbolMin: nums[4],
	}, nil
}
