// Package excel reads and writes record lists as xlsx workbooks.
package excel

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/scaffold/pkg/record"
)

// DefaultSheet is the name of the sheet written by Write.
const DefaultSheet = "Worksheet 1"

// ContentType is the MIME type of xlsx files.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	ErrEmptyWorkbook = errors.New("excel: workbook has no sheets")
	ErrReadFailed    = errors.New("excel: failed to read workbook")
	ErrWriteFailed   = errors.New("excel: failed to write workbook")
)

// Column maps a record field to a column header.
type Column struct {
	Field  string
	Header string
}

// Columns builds columns for fields, deriving headers by title-casing the
// field name ("created_at" becomes "Created At").
func Columns(fields ...string) []Column {
	out := make([]Column, len(fields))
	for i, f := range fields {
		out[i] = Column{Field: f, Header: Label(f)}
	}
	return out
}

// Label derives a human header from a field path.
func Label(field string) string {
	r := strings.NewReplacer("_", " ", ".", " ", "-", " ")
	return cases.Title(language.English).String(r.Replace(field))
}

// HeaderName normalises a header cell into a field name.
func HeaderName(cell string) string {
	return strings.TrimSpace(strings.ReplaceAll(cell, "\n", " "))
}

// ReadFirstSheet parses the first sheet of a workbook. The first row holds
// field names; every following non-empty row becomes a record with string
// values. Columns with an empty header are skipped.
func ReadFirstSheet(r io.Reader) ([]record.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Join(ErrReadFailed, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Join(ErrReadFailed, err)
	}
	if len(rows) == 0 {
		return []record.Record{}, nil
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = HeaderName(cell)
	}

	out := make([]record.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		item := record.Record{}
		empty := true
		for j, name := range header {
			if name == "" {
				continue
			}
			var val string
			if j < len(row) {
				val = row[j]
			}
			if val != "" {
				empty = false
			}
			item[name] = val
		}
		if !empty {
			out = append(out, item)
		}
	}
	return out, nil
}

// Write renders records as a single-sheet workbook. An empty sheet name
// uses DefaultSheet.
func Write(w io.Writer, sheet string, columns []Column, records []record.Record) error {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.Join(ErrWriteFailed, err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Join(ErrWriteFailed, err)
	}

	for i, r := range records {
		row := make([]any, len(columns))
		for j, c := range columns {
			v, _ := r.Get(c.Field)
			row[j] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Join(ErrWriteFailed, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Join(ErrWriteFailed, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Join(ErrWriteFailed, err)
	}
	return nil
}

func cellValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case string, bool, int, int64, float64:
		return val
	case map[string]any:
		if id, ok := val[record.FieldID]; ok {
			return fmt.Sprint(id)
		}
		return fmt.Sprint(val)
	default:
		return fmt.Sprint(val)
	}
}
