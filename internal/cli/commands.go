package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	urfave "github.com/urfave/cli/v2"

	"github.com/MKhiriev/go-pass-transfer/internal/report"
	"github.com/MKhiriev/go-pass-transfer/internal/utils"
	"github.com/MKhiriev/go-pass-transfer/models"
)

var errOneFile = errors.New("exactly one FILE argument is required")

func fileArg(c *urfave.Context) (string, error) {
	if c.NArg() != 1 {
		return "", urfave.Exit(errOneFile.Error(), exitUsage)
	}
	return c.Args().First(), nil
}

// singleRune reads a one-character flag value. An empty value is zero.
func singleRune(name, v string) (rune, error) {
	if v == "" {
		return 0, nil
	}
	if utf8.RuneCountInString(v) != 1 {
		return 0, urfave.Exit(fmt.Sprintf("--%s must be a single character, got %q", name, v), exitUsage)
	}
	r, _ := utf8.DecodeRuneInString(v)
	return r, nil
}

func writeReportFile(path string, rpt *report.Report) error {
	if path == "" || rpt == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating report file: %w", err)
	}
	_, err = rpt.WriteTo(f)
	return errors.Join(err, f.Close())
}

// ── import ───────────────────────────────────────────────────────────────

func importCmd(rt *runtime) *urfave.Command {
	return &urfave.Command{
		Name:      "import",
		Usage:     "import entries from a file into the vault",
		ArgsUsage: "FILE",
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(models.FormatXML), Usage: "xml, text, keepass-text or keepass-csv"},
			&urfave.BoolFlag{Name: "passwords-only", Usage: "update passwords of existing entries (text only)"},
			&urfave.StringFlag{Name: "prefix", Usage: "group prepended to every imported entry"},
			&urfave.StringFlag{Name: "separator", Usage: "field separator of text files"},
			&urfave.StringFlag{Name: "encoding", Usage: "character set of text files"},
			&urfave.StringFlag{Name: "report", Usage: "write the import report to this file"},
		},
		Action: func(c *urfave.Context) error {
			path, err := fileArg(c)
			if err != nil {
				return err
			}
			sep, err := singleRune("separator", c.String("separator"))
			if err != nil {
				return err
			}

			req := models.ImportRequest{
				Format:         models.Format(strings.ToLower(c.String("format"))),
				Path:           path,
				FieldSeparator: sep,
				ImportPrefix:   c.String("prefix"),
				PasswordsOnly:  c.Bool("passwords-only"),
				Encoding:       c.String("encoding"),
			}

			svc := rt.services.TransferService
			res, err := svc.Import(c.Context, req)
			if err != nil {
				renderReport(c.App.ErrWriter, res.Report)
				return urfave.Exit(fmt.Sprintf("import failed: %v", err), exitFailure)
			}
			if res.Transaction != nil {
				if err = svc.Apply(c.Context, res.Transaction); err != nil {
					return urfave.Exit(err.Error(), exitFailure)
				}
			}

			renderImport(c.App.Writer, "import "+string(req.Format), res)
			renderReport(c.App.Writer, res.Report)
			if err = writeReportFile(c.String("report"), res.Report); err != nil {
				return urfave.Exit(err.Error(), exitFailure)
			}
			return statusError("import", res.Status)
		},
	}
}

// ── validate ─────────────────────────────────────────────────────────────

func validateCmd(rt *runtime) *urfave.Command {
	return &urfave.Command{
		Name:      "validate",
		Usage:     "check an XML file without changing the vault",
		ArgsUsage: "FILE",
		Action: func(c *urfave.Context) error {
			path, err := fileArg(c)
			if err != nil {
				return err
			}

			res, err := rt.services.TransferService.Validate(c.Context, models.ImportRequest{
				Format: models.FormatXML,
				Path:   path,
			})
			if err != nil {
				renderReport(c.App.ErrWriter, res.Report)
				return urfave.Exit(fmt.Sprintf("validation failed: %v", err), exitFailure)
			}

			renderImport(c.App.Writer, "validate", res)
			renderReport(c.App.Writer, res.Report)
			return statusError("validate", res.Status)
		},
	}
}

// ── export ───────────────────────────────────────────────────────────────

func exportCmd(rt *runtime) *urfave.Command {
	return &urfave.Command{
		Name:      "export",
		Usage:     "write the vault entries to a file",
		ArgsUsage: "FILE",
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(models.FormatXML), Usage: "xml or text"},
			&urfave.StringFlag{Name: "fields", Usage: "comma separated field keys to export"},
			&urfave.BoolFlag{Name: "exclude", Usage: "treat --fields as the fields to leave out"},
			&urfave.StringFlag{Name: "subgroup-field", Usage: "field tested by the subgroup filter"},
			&urfave.StringFlag{Name: "subgroup-rule", Value: "contains", Usage: "eq, ne, begins, not-begins, ends, not-ends, contains or not-contains"},
			&urfave.StringFlag{Name: "subgroup-value", Usage: "value the subgroup field is compared with"},
			&urfave.BoolFlag{Name: "case", Usage: "case sensitive subgroup match"},
		},
		Action: func(c *urfave.Context) error {
			path, err := fileArg(c)
			if err != nil {
				return err
			}
			fields, err := fieldSelection(c.String("fields"), c.Bool("exclude"))
			if err != nil {
				return err
			}
			subgroup, err := subgroupFilter(c)
			if err != nil {
				return err
			}

			req := models.ExportRequest{
				Format:   models.Format(strings.ToLower(c.String("format"))),
				Path:     path,
				Fields:   fields,
				Subgroup: subgroup,
				Header: models.VaultHeader{
					DatabaseName:  rt.cfg.Vault.DSN,
					UUID:          utils.FormatEntryUUID(utils.NewUUIDGenerator().Generate()),
					WhoSaved:      whoSaved(),
					WhatSaved:     "pwtransfer " + rt.build.BuildVersion(),
					WhenLastSaved: time.Now().UTC().Format(time.RFC3339),
				},
			}

			res, err := rt.services.TransferService.Export(c.Context, req)
			if err != nil {
				renderReport(c.App.ErrWriter, res.Report)
				return urfave.Exit(fmt.Sprintf("export failed: %v", err), exitFailure)
			}

			renderExport(c.App.Writer, res)
			renderReport(c.App.Writer, res.Report)
			return statusError("export", res.Status)
		},
	}
}

func fieldSelection(list string, exclude bool) (models.FieldSelection, error) {
	if strings.TrimSpace(list) == "" {
		if exclude {
			return models.FieldSelection{}, urfave.Exit("--exclude needs --fields", exitUsage)
		}
		return models.FieldSelection{Fields: models.AllFields, Included: true}, nil
	}

	var set models.FieldSet
	for _, key := range strings.Split(list, ",") {
		f, ok := models.ParseFieldType(key)
		if !ok {
			return models.FieldSelection{}, urfave.Exit(fmt.Sprintf("unknown field %q", strings.TrimSpace(key)), exitUsage)
		}
		set = set.With(f)
	}
	return models.FieldSelection{Fields: set, Included: !exclude}, nil
}

func subgroupFilter(c *urfave.Context) (*models.SubgroupFilter, error) {
	key := c.String("subgroup-field")
	if key == "" {
		return nil, nil
	}
	field, ok := models.ParseFieldType(key)
	if !ok {
		return nil, urfave.Exit(fmt.Sprintf("unknown subgroup field %q", key), exitUsage)
	}
	rule, ok := models.ParseMatchRule(c.String("subgroup-rule"))
	if !ok {
		return nil, urfave.Exit(fmt.Sprintf("unknown subgroup rule %q", c.String("subgroup-rule")), exitUsage)
	}
	return &models.SubgroupFilter{
		Field:         field,
		Rule:          rule,
		Value:         c.String("subgroup-value"),
		CaseSensitive: c.Bool("case"),
	}, nil
}

// ── list ─────────────────────────────────────────────────────────────────

func listCmd(rt *runtime) *urfave.Command {
	return &urfave.Command{
		Name:  "list",
		Usage: "show the entries of the vault",
		Action: func(c *urfave.Context) error {
			entries, err := rt.services.TransferService.List(c.Context)
			if err != nil {
				return urfave.Exit(fmt.Sprintf("error listing vault: %v", err), exitFailure)
			}
			renderEntries(c.App.Writer, entries)
			return nil
		},
	}
}
