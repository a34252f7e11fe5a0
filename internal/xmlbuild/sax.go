package xmlbuild

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// ErrMalformed is returned by Parse when the document is not well-formed.
var ErrMalformed = errors.New("malformed XML document")

// Attr is one attribute of a start tag.
type Attr struct {
	Name  string
	Value string
}

// Locator reports the current position of the parser.
type Locator interface {
	Position() (line, column int)
}

// Handler receives the parse events of one document, in document order.
type Handler interface {
	SetDocumentLocator(l Locator)
	StartDocument()
	StartElement(name string, attrs []Attr)
	Characters(text string)
	EndElement(name string)
	EndDocument()
	Error(msg string, line, column int)
}

// Parse reads a document from r and feeds its events to h. Comments,
// processing instructions and directives are not reported. A syntax error,
// including a mismatched end tag, is passed to h.Error and stops the parse.
func Parse(r io.Reader, h Handler) error {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader
	h.SetDocumentLocator(decoderLocator{dec})

	h.StartDocument()
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line, col := dec.InputPos()
			h.Error(err.Error(), line, col)
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			attrs := make([]Attr, 0, len(t.Attr))
			for _, a := range t.Attr {
				attrs = append(attrs, Attr{Name: qualified(a.Name), Value: a.Value})
			}
			h.StartElement(qualified(t.Name), attrs)
		case xml.EndElement:
			h.EndElement(qualified(t.Name))
		case xml.CharData:
			h.Characters(string(t))
		}
	}
	h.EndDocument()
	return nil
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

type decoderLocator struct {
	dec *xml.Decoder
}

func (l decoderLocator) Position() (int, int) {
	return l.dec.InputPos()
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "utf-8", "utf8", "us-ascii":
		return input, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "iso-8859-15":
		return charmap.ISO8859_15.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
}
