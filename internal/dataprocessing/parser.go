package dataprocessing

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"playerstats/pkg/contracts/domain"
)

// ParseWorkbook reads the first sheet of an .xlsx stream. The first row is the
// header; every following non-blank row becomes a table row.
func ParseWorkbook(r io.Reader) (*domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseFirstSheet(f)
}

// ParseFile reads the first sheet of an .xlsx file on disk.
func ParseFile(filePath string) (*domain.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return parseFirstSheet(f)
}

func parseFirstSheet(f *excelize.File) (*domain.Table, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in workbook")
	}

	// Raw values keep number formats such as "#,##0" out of the cell text.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return TableFromRows(rows)
}

// TableFromRows builds a table from a header row followed by data rows.
func TableFromRows(rows [][]string) (*domain.Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows found in sheet")
	}

	header := NormalizeHeaders(rows[0])
	table := domain.NewTable(header)

	for _, raw := range rows[1:] {
		if isBlankRow(raw) {
			continue
		}
		row := make(domain.Row, len(header))
		for i, col := range header {
			if i < len(raw) {
				row[col] = ParseCell(raw[i])
			} else {
				row[col] = domain.Missing()
			}
		}
		table.AppendRow(row)
	}
	return table, nil
}

// NormalizeHeaders trims header names, names blank headers "Unnamed: <index>"
// and suffixes repeated names with ".1", ".2", ...
func NormalizeHeaders(raw []string) []string {
	header := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		header[i] = name
	}
	return header
}

// ParseCell converts a raw cell to a Value: blank cells are missing, numeric
// text becomes a number and anything else stays text.
func ParseCell(s string) domain.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Missing()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) {
		return domain.Number(f)
	}
	return domain.Text(s)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
