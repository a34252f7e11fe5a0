package models

// Format names an external file representation.
type Format string

const (
	FormatXML         Format = "xml"
	FormatText        Format = "text"
	FormatKeePassText Format = "keepass-text"
	FormatKeePassCSV  Format = "keepass-csv"
)

// ImportRequest describes one import call.
type ImportRequest struct {
	Format Format
	Path   string

	// Delimiter replaces line breaks in notes and dots in titles of text
	// files. XML files carry their own delimiter.
	Delimiter rune

	// FieldSeparator splits body rows of plaintext files.
	FieldSeparator rune

	// ImportPrefix is prepended to the group of every imported entry.
	ImportPrefix string

	// PasswordsOnly updates the passwords of existing entries instead of
	// adding new ones (plaintext only).
	PasswordsOnly bool

	// Encoding is the external character set of plaintext rows.
	Encoding string
}

// ExportRequest describes one export call.
type ExportRequest struct {
	Format    Format
	Path      string
	Fields    FieldSelection
	Delimiter rune
	Subgroup  *SubgroupFilter

	// FilterName is the name of a display filter that narrowed the entry
	// list before it reached the writer.
	FilterName string

	Header VaultHeader
}
