package importer

import (
	"strings"
)

const whitespace = " \t\r\n\f\v"

// splitRow splits a plaintext row on sep. Every separator produces a
// token, so leading, doubled and trailing separators yield empty tokens.
// When restAt is a valid column, the token at that column takes the rest
// of the row including any further separators.
func splitRow(row string, sep rune, restAt int) []string {
	parts := strings.Split(row, string(sep))
	if restAt >= 0 && restAt < len(parts)-1 {
		rest := strings.Join(parts[restAt:], string(sep))
		parts = append(parts[:restAt], rest)
	}
	return parts
}

// splitHeader splits the plaintext header row on tabs, skipping empty
// names.
func splitHeader(row string) []string {
	return strings.FieldsFunc(row, func(r rune) bool { return r == '\t' })
}

// cleanToken drops one pair of wrapping double quotes, unless a quote is
// left inside, and clears tokens made of whitespace only.
func cleanToken(tok string) string {
	if n := len(tok); n > 1 && tok[0] == '"' && tok[n-1] == '"' {
		if inner := tok[1 : n-1]; !strings.Contains(inner, `"`) {
			tok = inner
		}
	}
	if strings.Trim(tok, whitespace) == "" {
		return ""
	}
	return tok
}

// cleanNotes drops the quotes the text exporter wraps around notes, even
// when the notes hold quotes of their own.
func cleanNotes(tok string) string {
	if n := len(tok); n > 1 && tok[0] == '"' && tok[n-1] == '"' {
		tok = tok[1 : n-1]
	}
	if strings.Trim(tok, whitespace) == "" {
		return ""
	}
	return tok
}

// quoteCount returns the number of double quotes in s.
func quoteCount(s string) int {
	return strings.Count(s, `"`)
}

// splitKeePassCSV tokenizes one line of a KeePass 1.x CSV export,
// including its line terminator.
//
// Double quotes open and close a field. Outside a field ",," and a comma
// before CR or LF end an empty field. A backslash escapes the next
// character: `\r` and `\n` stand for CR and LF, anything else is taken
// literally. NUL bytes are dropped.
func splitKeePassCSV(line string) []string {
	var (
		tokens  []string
		item    strings.Builder
		inField bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		var next byte
		if i+1 < len(line) {
			next = line[i+1]
		}

		switch {
		case ch == 0:
		case ch == '\\' && next != 0:
			i++
			switch next {
			case 'r':
				item.WriteByte('\r')
			case 'n':
				item.WriteByte('\n')
			default:
				item.WriteByte(next)
			}
		case !inField && ch == ',' && (next == ',' || next == '\r' || next == '\n'):
			tokens = append(tokens, item.String())
			item.Reset()
		case ch == '"':
			if inField {
				tokens = append(tokens, item.String())
				item.Reset()
			}
			inField = !inField
		case inField:
			item.WriteByte(ch)
		}
	}
	return tokens
}
