package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned for an encoding name that has no decoder.
var ErrUnknownEncoding = errors.New("unknown encoding")

// lineDecoder converts one physical line from the external character set.
// ok is false when the line is not valid in that character set.
type lineDecoder func(line []byte) (text string, ok bool)

func newLineDecoder(name string) (lineDecoder, error) {
	var enc encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return func(line []byte) (string, bool) {
			return string(line), utf8.Valid(line)
		}, nil
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	case "iso-8859-1", "latin1":
		enc = charmap.ISO8859_1
	case "iso-8859-15", "latin9":
		enc = charmap.ISO8859_15
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}

	dec := enc.NewDecoder()
	return func(line []byte) (string, bool) {
		out, err := dec.Bytes(line)
		if err != nil {
			return "", false
		}
		return string(out), true
	}, nil
}

// readAll loads the whole input, dropping a leading UTF-8 byte-order mark.
// Inputs starting with a UTF-16 byte-order mark are converted to UTF-8.
func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// lines splits data into physical lines. The terminator is kept when keep
// is true, otherwise a trailing CR is dropped together with the LF.
type lines struct {
	data []byte
	pos  int
	last int
	keep bool
	num  int
}

func newLines(data []byte, keep bool) *lines {
	return &lines{data: data, keep: keep}
}

func (l *lines) next() ([]byte, bool) {
	if l.pos >= len(l.data) {
		return nil, false
	}
	rest := l.data[l.pos:]
	l.last = l.pos
	l.num++

	i := bytes.IndexByte(rest, '\n')
	if i < 0 {
		l.pos = len(l.data)
		if l.keep {
			return rest, true
		}
		return bytes.TrimSuffix(rest, []byte{'\r'}), true
	}

	l.pos += i + 1
	if l.keep {
		return rest[:i+1], true
	}
	return bytes.TrimSuffix(rest[:i], []byte{'\r'}), true
}

// unread steps back over the line returned by the last call to next.
func (l *lines) unread() {
	l.pos = l.last
	l.num--
}
