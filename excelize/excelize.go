// Package excelize exports wine rows to xlsx workbooks.
package excelize

import (
	"io"
	"unicode/utf8"

	"github.com/fwojciec/winefetch"
	"github.com/fwojciec/winefetch/fs"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the exported rows.
const SheetName = "Wine Data"

// maxColumnWidth caps auto-sized columns.
const maxColumnWidth = 50

var _ winefetch.Exporter = (*Exporter)(nil)

// Exporter writes wines to a spreadsheet, one row per wine.
type Exporter struct{}

// NewExporter creates a new Exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export writes wines to path atomically. Rows keep the order of wines.
func (e *Exporter) Export(path string, wines []*winefetch.Wine) error {
	return fs.WriteAtomic(path, func(w io.Writer) error {
		return e.Encode(w, wines)
	})
}

// Encode writes the workbook to w.
func (e *Exporter) Encode(w io.Writer, wines []*winefetch.Wine) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	widths := make([]int, len(winefetch.WineHeaders))
	if err := writeRow(f, 1, winefetch.WineHeaders, widths); err != nil {
		return err
	}
	for i, wine := range wines {
		if err := writeRow(f, i+2, wine.Values(), widths); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(winefetch.WineHeaders), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return err
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, float64(min(width+2, maxColumnWidth))); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

// writeRow sets one row of cells and widens widths to fit its values.
func writeRow(f *excelize.File, row int, values []string, widths []int) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
		widths[i] = max(widths[i], utf8.RuneCountInString(v))
	}
	return f.SetSheetRow(SheetName, cell, &cells)
}
