package ingest

import (
	"io"
	"time"
)

// Inferred column types.
const (
	TypeDatetime = "datetime"
	TypeNumeric  = "numeric"
	TypeString   = "string"
)

const (
	// sampleValues is the number of values shown per column.
	sampleValues = 5

	// nullScanRows bounds the rows scanned when counting empty cells.
	nullScanRows = 99

	// DefaultPreviewRows is used when Inspect is given a non-positive count.
	DefaultPreviewRows = 10
)

// Column describes one column of an uploaded file.
type Column struct {
	Name         string   `json:"name"`
	InferredType string   `json:"inferred_type"`
	SampleValues []string `json:"sample_values"`
	NullCount    int      `json:"null_count"`
}

// Inspection is the structure of an uploaded file.
type Inspection struct {
	Columns      []Column   `json:"columns"`
	PreviewRows  [][]string `json:"preview_rows"`
	TotalRows    int        `json:"total_rows"`
	TotalColumns int        `json:"total_columns"`
	Encoding     string     `json:"encoding"`
}

// ColumnNames returns the header names in file order.
func (i *Inspection) ColumnNames() []string {
	names := make([]string, 0, len(i.Columns))
	for _, c := range i.Columns {
		names = append(names, c.Name)
	}
	return names
}

// HasColumn reports whether the file has a column called name.
func (i *Inspection) HasColumn(name string) bool {
	return i.columnIndex(name) >= 0
}

func (i *Inspection) columnIndex(name string) int {
	for idx, c := range i.Columns {
		if c.Name == name {
			return idx
		}
	}
	return -1
}

// Inspect reads a CSV generation file and describes its columns. The first
// row is the header. previewRows data rows are returned verbatim.
func Inspect(r io.Reader, previewRows int) (*Inspection, error) {
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}

	rows, encoding, err := readRows(r)
	if err != nil {
		return nil, err
	}

	insp := &Inspection{
		Columns:     []Column{},
		PreviewRows: [][]string{},
		Encoding:    encoding,
	}
	if len(rows) == 0 {
		return insp, nil
	}

	header, data := rows[0], rows[1:]
	insp.TotalRows = len(data)
	insp.TotalColumns = len(header)

	scan := data
	if len(scan) > nullScanRows {
		scan = scan[:nullScanRows]
	}

	for i, name := range header {
		samples := make([]string, 0, sampleValues)
		for _, row := range scan {
			if len(samples) == sampleValues {
				break
			}
			samples = append(samples, cell(row, i))
		}

		nulls := 0
		for _, row := range scan {
			if cell(row, i) == "" {
				nulls++
			}
		}

		insp.Columns = append(insp.Columns, Column{
			Name:         name,
			InferredType: inferType(samples),
			SampleValues: samples,
			NullCount:    nulls,
		})
	}

	for _, row := range data {
		if len(insp.PreviewRows) == previewRows {
			break
		}
		insp.PreviewRows = append(insp.PreviewRows, row)
	}

	return insp, nil
}

// inferType classifies a column by its first non-empty sample.
func inferType(samples []string) string {
	for _, s := range samples {
		if s == "" {
			continue
		}
		if _, err := parseTimestamp(s, "", time.UTC); err == nil {
			return TypeDatetime
		}
		if _, err := parseNumber(s); err == nil {
			return TypeNumeric
		}
	}
	return TypeString
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
