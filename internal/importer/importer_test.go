package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pass-transfer/internal/command"
	"github.com/MKhiriev/go-pass-transfer/internal/report"
	"github.com/MKhiriev/go-pass-transfer/internal/vault"
	"github.com/MKhiriev/go-pass-transfer/models"
)

func newTestRun(t *testing.T, req models.ImportRequest, existing ...models.Entry) *Run {
	t.Helper()
	run, err := NewRun(context.Background(), vault.NewMemory(existing...), req, report.New("import test", nil))
	require.NoError(t, err)
	return run
}

// added returns the entries queued by add commands, in order.
func added(run *Run) []models.Entry {
	var out []models.Entry
	for _, c := range run.Commands {
		if a, ok := c.(*command.AddEntry); ok {
			out = append(out, a.Entry)
		}
	}
	return out
}

func reportHas(run *Run, substr string) bool {
	for _, l := range run.Report.Lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
