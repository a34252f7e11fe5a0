package importer

import "github.com/MKhiriev/go-pass-transfer/models"

// GroupTitleColumn is the name of the combined group and title column of
// plaintext files.
const GroupTitleColumn = "Group/Title"

// PlaintextColumns lists the recognised plaintext header names in export
// order. Group and title share the first column.
func PlaintextColumns() []string {
	cols := make([]string, 0, len(models.ExportOrder)+1)
	cols = append(cols, GroupTitleColumn)
	for _, f := range models.ExportOrder {
		cols = append(cols, f.Name())
	}
	return cols
}

// plaintextField maps a plaintext header name to the field it carries.
func plaintextField(name string) (models.FieldType, bool) {
	if name == GroupTitleColumn {
		return models.FieldGroup, true
	}
	for _, f := range models.ExportOrder {
		if f.Name() == name {
			return f, true
		}
	}
	return 0, false
}

// kpColumn identifies a column of KeePass 1.x CSV exports.
type kpColumn int

const (
	kpGroup kpColumn = iota
	kpGroupTree
	kpTitle
	kpUser
	kpPassword
	kpURL
	kpNotes
	kpUUID
	kpIcon
	kpCTime
	kpATime
	kpMTime
	kpXTime
	kpAttachmentDesc
	kpAttachment
	kpColumnCount
)

var kpColumnNames = [kpColumnCount]string{
	kpGroup:          "Password Groups",
	kpGroupTree:      "Group Tree",
	kpTitle:          "Account",
	kpUser:           "Login Name",
	kpPassword:       "Password",
	kpURL:            "Web Site",
	kpNotes:          "Comments",
	kpUUID:           "UUID",
	kpIcon:           "Icon",
	kpCTime:          "Creation Time",
	kpATime:          "Last Access",
	kpMTime:          "Last Modification",
	kpXTime:          "Expires",
	kpAttachmentDesc: "Attachment Description",
	kpAttachment:     "Attachment",
}

// offsets is the field-offset map of one import call: the column index of
// each known field, or -1 when the file does not carry it.
type offsets[K ~int] struct {
	index []int
	found int
}

func newOffsets[K ~int](n int) *offsets[K] {
	o := &offsets[K]{index: make([]int, n)}
	for i := range o.index {
		o.index[i] = -1
	}
	return o
}

func (o *offsets[K]) set(k K, column int) {
	if o.index[k] == -1 {
		o.found++
	}
	o.index[k] = column
}

func (o *offsets[K]) has(k K) bool {
	return o.index[k] >= 0
}

// token returns the value of field k in tokens, or "" when the field is
// absent from the file or missing from the row.
func (o *offsets[K]) token(tokens []string, k K) (string, bool) {
	i := o.index[k]
	if i < 0 || i >= len(tokens) {
		return "", false
	}
	return tokens[i], true
}
