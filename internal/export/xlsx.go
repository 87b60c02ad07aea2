// Package export writes stored normalizations to spreadsheet files.
package export

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tphakala/datanorm/internal/datastore"
	"github.com/tphakala/datanorm/internal/errors"
)

// Sheet names in the exported workbook
const (
	SheetRecords = "Records"
	SheetValues  = "Values"
)

// timeLayout is how created_at is written to the workbook
const timeLayout = "2006-01-02 15:04:05"

var (
	recordHeaders = []string{"id", "created_at", "method", "data_points", "original_data", "normalized_data"}
	valueHeaders  = []string{"record_id", "index", "original", "normalized"}
)

// WriteXLSX writes records as a workbook with one summary row per record on
// the Records sheet and one row per value on the Values sheet.
func WriteXLSX(w io.Writer, records []datastore.Record) error {
	f, err := buildWorkbook(records)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return exportError(err, "write")
	}
	return nil
}

// SaveXLSX writes the workbook to path, creating the parent directory.
func SaveXLSX(path string, records []datastore.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return exportError(err, "create_dir")
	}

	f, err := buildWorkbook(records)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return exportError(err, "save")
	}
	return nil
}

func buildWorkbook(records []datastore.Record) (*excelize.File, error) {
	f := excelize.NewFile()

	// the default sheet becomes the records sheet
	if err := f.SetSheetName(f.GetSheetName(0), SheetRecords); err != nil {
		return nil, exportError(err, "rename_sheet")
	}
	if _, err := f.NewSheet(SheetValues); err != nil {
		return nil, exportError(err, "new_sheet")
	}

	if err := writeRow(f, SheetRecords, 1, toAny(recordHeaders)); err != nil {
		return nil, err
	}
	if err := writeRow(f, SheetValues, 1, toAny(valueHeaders)); err != nil {
		return nil, err
	}

	valueRow := 2
	for i := range records {
		rec := &records[i]
		summary := []any{
			rec.ID,
			rec.CreatedAt.Format(timeLayout),
			rec.Method,
			rec.PointCount(),
			joinFloats(rec.OriginalData),
			joinFloats(rec.NormalizedData),
		}
		if err := writeRow(f, SheetRecords, i+2, summary); err != nil {
			return nil, err
		}

		for j, v := range rec.OriginalData {
			row := []any{rec.ID, j + 1, v, nil}
			if j < len(rec.NormalizedData) {
				row[3] = rec.NormalizedData[j]
			}
			if err := writeRow(f, SheetValues, valueRow, row); err != nil {
				return nil, err
			}
			valueRow++
		}
	}

	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return exportError(err, "cell_name")
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return exportError(err, "set_row")
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}

func exportError(err error, operation string) error {
	return errors.New(err).
		Component("export").
		Category(errors.CategoryFileIO).
		Context("operation", operation).
		Build()
}
