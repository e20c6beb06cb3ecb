// Package sheet reads inspection rows out of lab workbooks.
package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// CellReader reads one cell as its raw text. Rows and columns are 1-based.
type CellReader interface {
	ReadCell(sheet string, row, col int) (string, error)
}

// Workbook is a CellReader over an .xlsx file.
type Workbook struct {
	f    *excelize.File
	path string
}

// OpenWorkbook opens the workbook at path. Call Close when done.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open workbook %s: %w", path, err)
	}
	return &Workbook{f: f, path: path}, nil
}

// ReadWorkbook opens a workbook from an upload stream; name is used in messages.
func ReadWorkbook(r io.Reader, name string) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not read workbook %s: %w", name, err)
	}
	return &Workbook{f: f, path: name}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Path returns the file the workbook was opened from.
func (w *Workbook) Path() string {
	return w.path
}

// SheetNames lists the sheets in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// ReadCell returns the stored value of a cell without number formatting, so date
// cells come back as day serials and decimals keep the digits that were typed.
func (w *Workbook) ReadCell(sheet string, row, col int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	v, err := w.f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", fmt.Errorf("read %s!%s: %w", sheet, cell, err)
	}
	return v, nil
}
