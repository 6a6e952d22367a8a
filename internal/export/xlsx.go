package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSXWriter writes tables to a local .xlsx workbook, one sheet per table.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates a writer for the workbook at path. The file is overwritten.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

func (w *XLSXWriter) Write(_ context.Context, tables []Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		idx, err := f.NewSheet(t.Name)
		if err != nil {
			return fmt.Errorf("creating sheet %s: %w", t.Name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		for r, row := range t.Values() {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return fmt.Errorf("sheet %s row %d: %w", t.Name, r+1, err)
			}
			if err := f.SetSheetRow(t.Name, cell, &row); err != nil {
				return fmt.Errorf("writing sheet %s row %d: %w", t.Name, r+1, err)
			}
		}
	}

	if len(tables) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("removing default sheet: %w", err)
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving %s: %w", w.path, err)
	}
	return nil
}
