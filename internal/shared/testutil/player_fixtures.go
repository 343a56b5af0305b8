package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"playerstats/pkg/contracts/domain"
)

// PlayerHeader is the header row of the sample player workbook
var PlayerHeader = []string{
	domain.ColumnName, domain.ColumnTeam, domain.ColumnAge, domain.ColumnPrimaryPosition,
	domain.ColumnCompetition, domain.ColumnLeague, domain.ColumnMatches, domain.ColumnMinutesPlayed,
	"OBV", "xG",
}

// PlayerRecords returns the sample player rows. A nil cell is left blank.
//
// Derived values for the default OBV metrics:
//
//	A. Silva  Alpha FC     OBV 25%   xG 80%   Usage 50
//	B. Jones  Alpha FC     OBV 75%   xG 20%   Usage 100
//	C. Diaz   Beta United  OBV 100%  xG 100%  Usage undefined (no matches)
//	D. Park   Beta United  OBV 0%    xG 0%    Usage 0
//	E. Novak  Gamma        OBV 100%  xG N/A   Usage 102.5
func PlayerRecords() [][]interface{} {
	return [][]interface{}{
		{"A. Silva", "Alpha FC", 22.7, "Centre Forward", "Premier", "England", 10, 450, 1.0, 2.0},
		{"B. Jones", "Alpha FC", 30, "Left Back", "Premier", "England", 10, 900, 3.0, 0.5},
		{"C. Diaz", "Beta United", 19, "Centre Forward", "Championship", "England", 0, 0, 2.0, 1.5},
		{"D. Park", "Beta United", 34, "Goalkeeper", "Championship", "England", 5, 0, 0, 0},
		{"E. Novak", "Gamma", 41, "Centre Back", "Serie A", "Italy", 20, 1845.4, 0.4, nil},
	}
}

// PlayerTable returns the sample rows as a raw, underived table.
func PlayerTable() *domain.Table {
	return TableOf(PlayerHeader, PlayerRecords())
}

// TableOf builds a table from loosely typed cells.
func TableOf(header []string, records [][]interface{}) *domain.Table {
	table := domain.NewTable(header)
	for _, rec := range records {
		row := make(domain.Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = ValueOf(rec[i])
			} else {
				row[col] = domain.Missing()
			}
		}
		table.AppendRow(row)
	}
	return table
}

// ValueOf converts a Go value into a table cell
func ValueOf(v interface{}) domain.Value {
	switch x := v.(type) {
	case nil:
		return domain.Missing()
	case int:
		return domain.Number(float64(x))
	case float64:
		return domain.Number(x)
	case string:
		return domain.Text(x)
	case domain.Value:
		return x
	default:
		panic("testutil: unsupported cell type")
	}
}

// WriteWorkbook renders header and records as an .xlsx workbook with a single sheet.
func WriteWorkbook(t testing.TB, header []string, records [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	write := func(rowIdx int, cells []interface{}) {
		for colIdx, val := range cells {
			if val == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
			if err != nil {
				t.Fatalf("invalid cell coordinates: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				t.Fatalf("failed to set %s: %v", cell, err)
			}
		}
	}

	headerCells := make([]interface{}, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	write(1, headerCells)
	for i, rec := range records {
		write(i+2, rec)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

// PlayerWorkbook returns the sample rows as .xlsx bytes
func PlayerWorkbook(t testing.TB) []byte {
	return WriteWorkbook(t, PlayerHeader, PlayerRecords())
}

// WritePlayerWorkbookFile saves the sample workbook under dir and returns its path.
func WritePlayerWorkbookFile(t testing.TB, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "player_stats.xlsx")
	if err := os.WriteFile(path, PlayerWorkbook(t), 0o644); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}
