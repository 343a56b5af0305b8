package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"playerstats/pkg/contracts/domain"
)

// SheetName is the name of the exported worksheet
const SheetName = "Filtered Player Stats"

// XLSXContentType is the MIME type of .xlsx downloads
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSXWriter writes a table as a single-sheet workbook
type XLSXWriter struct{}

// NewXLSXWriter creates a workbook writer
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

// Format returns the format name
func (w *XLSXWriter) Format() string {
	return FormatXLSX
}

// Filename returns the download name
func (w *XLSXWriter) Filename() string {
	return BaseFilename + "." + FormatXLSX
}

// ContentType returns the MIME type
func (w *XLSXWriter) ContentType() string {
	return XLSXContentType
}

// Write renders table into a new workbook and writes it to out. Numbers are
// stored as numeric cells, text as strings, and missing or NaN cells stay blank.
func (w *XLSXWriter) Write(out io.Writer, table *domain.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	if len(table.Columns) > 0 {
		if err := sw.SetColWidth(1, len(table.Columns), 18); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	header := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: col}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		cells := make([]interface{}, len(table.Columns))
		for j, col := range table.Columns {
			cells[j] = cellValue(row[col])
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
