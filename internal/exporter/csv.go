package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"playerstats/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes a table as comma-separated values
type CSVWriter struct {
	// BOMPrefix adds a UTF-8 BOM for Excel compatibility
	BOMPrefix bool
}

// NewCSVWriter creates a CSV writer that emits a BOM
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{BOMPrefix: true}
}

// Format returns the format name
func (w *CSVWriter) Format() string {
	return FormatCSV
}

// Filename returns the download name
func (w *CSVWriter) Filename() string {
	return BaseFilename + "." + FormatCSV
}

// ContentType returns the MIME type
func (w *CSVWriter) ContentType() string {
	return "text/csv; charset=utf-8"
}

// Write writes the header and every row of table to out.
func (w *CSVWriter) Write(out io.Writer, table *domain.Table) error {
	if w.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(table.Columns))
	for i, row := range table.Rows {
		for j, col := range table.Columns {
			record[j] = formatCell(row[col])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
