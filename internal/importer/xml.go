package importer

import (
	"bytes"
	"context"
	"io"

	"github.com/MKhiriev/go-pass-transfer/internal/logger"
	"github.com/MKhiriev/go-pass-transfer/internal/xmlbuild"
	"github.com/MKhiriev/go-pass-transfer/models"
)

// XML imports documents written by the XML exporter. The document is
// parsed twice: a validate pass that must come out clean, then the import
// pass.
type XML struct{}

func NewXML() *XML {
	return &XML{}
}

func (x *XML) Import(ctx context.Context, r io.Reader, run *Run) models.Status {
	log := logger.FromContext(ctx)

	data, err := io.ReadAll(r)
	if err != nil {
		log.Err(err).Str("func", "XML.Import").Msg("error reading input")
		run.Report.WriteLine("Error reading file: %v", err)
		return models.Failure
	}

	validated, ok := x.validate(ctx, data, run)
	if !ok {
		return models.XMLFailedValidation
	}
	run.Stats.Validated = validated.Entries

	builder := xmlbuild.NewBuilder(ctx, xmlbuild.Options{
		Mode:              xmlbuild.Import,
		Prefix:            run.Request.ImportPrefix,
		Delimiter:         validated.Delimiter,
		MinHashIterations: run.MinHashIterations,
	}, run)

	err = xmlbuild.Parse(bytes.NewReader(data), builder)
	res := builder.Result()
	for _, msg := range res.Errors {
		run.Report.WriteLine("%s", msg)
	}
	if err != nil {
		log.Err(err).Str("func", "XML.Import").Msg("import pass failed")
		return models.XMLFailedImport
	}

	run.Header = res.Header
	run.Stats.RecordsWithUnknownFields = res.RecordsWithUnknownFields
	run.Stats.HeaderUnknownFields = len(res.Header.UnknownFields) > 0
	run.Stats.HeaderErrors = res.HeaderErrors
	run.Stats.RecordErrors = res.RecordErrors

	log.Debug().
		Str("func", "XML.Import").
		Int("validated", run.Stats.Validated).
		Int("imported", run.Stats.Imported).
		Msg("XML import finished")
	return run.Status()
}

// Validate runs only the validate pass and reports the number of entry
// elements.
func (x *XML) Validate(ctx context.Context, r io.Reader, run *Run) models.Status {
	data, err := io.ReadAll(r)
	if err != nil {
		run.Report.WriteLine("Error reading file: %v", err)
		return models.Failure
	}
	res, ok := x.validate(ctx, data, run)
	if !ok {
		return models.XMLFailedValidation
	}
	run.Stats.Validated = res.Entries
	return models.Success
}

func (x *XML) validate(ctx context.Context, data []byte, run *Run) (xmlbuild.Result, bool) {
	builder := xmlbuild.NewBuilder(ctx, xmlbuild.Options{
		Mode:      xmlbuild.Validate,
		Delimiter: run.Request.Delimiter,
	}, nil)

	err := xmlbuild.Parse(bytes.NewReader(data), builder)
	res := builder.Result()
	if err == nil && len(res.Errors) == 0 {
		return res, true
	}

	run.Report.WriteLine("XML validation failed:")
	for _, msg := range res.Errors {
		run.Report.WriteLine("%s", msg)
	}
	return res, false
}
