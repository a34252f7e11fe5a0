// Package report collects the human-readable progress and error lines of one
// import or export call.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/MKhiriev/go-pass-transfer/internal/logger"
)

// Report is an append-only list of diagnostic lines. Each line is mirrored
// to the debug log.
type Report struct {
	action string
	lines  []string
	logger *logger.Logger
}

// New returns an empty report for the named action ("import xml",
// "export text", ...).
func New(action string, log *logger.Logger) *Report {
	if log == nil {
		log = logger.Nop()
	}
	return &Report{action: action, logger: log}
}

// Action returns the name given to New.
func (r *Report) Action() string {
	return r.action
}

// WriteLine appends one formatted line.
func (r *Report) WriteLine(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	r.lines = append(r.lines, line)
	r.logger.Debug().Str("action", r.action).Msg(line)
}

// Lines returns the collected lines in order.
func (r *Report) Lines() []string {
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Len returns the number of lines.
func (r *Report) Len() int {
	return len(r.lines)
}

func (r *Report) String() string {
	return strings.Join(r.lines, "\n")
}

// WriteTo writes every line followed by a newline.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, l := range r.lines {
		n, err := io.WriteString(w, l+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
