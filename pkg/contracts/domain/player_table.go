package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Well-known column names of the player statistics workbook
const (
	ColumnName             = "Name"
	ColumnTeam             = "Team"
	ColumnAge              = "Age"
	ColumnPrimaryPosition  = "Primary Position"
	ColumnCompetition      = "Competition"
	ColumnLeague           = "League"
	ColumnMatches          = "Matches"
	ColumnMinutesPlayed    = "Minutes Played"
	ColumnAvailableMinutes = "Available Minutes"
	ColumnUsage            = "Usage"
)

const contributionSuffix = " Contribution"

// TeamColumn returns the name of the per-team total column for a metric.
func TeamColumn(metric string) string {
	return "Team " + metric
}

// ContributionColumn returns the name of the contribution percentage column for a metric.
func ContributionColumn(metric string) string {
	return metric + contributionSuffix
}

// IsContributionColumn reports whether column holds a contribution percentage.
func IsContributionColumn(column string) bool {
	return strings.HasSuffix(column, contributionSuffix) && len(column) > len(contributionSuffix)
}

// ValueKind identifies what a cell holds
type ValueKind uint8

const (
	KindMissing ValueKind = iota
	KindNumber
	KindText
)

// Value is a single table cell. A number cell may hold NaN, which marks an
// undefined derived value (zero denominator, missing operand).
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// Number creates a numeric cell
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// Text creates a text cell
func Text(s string) Value {
	return Value{Kind: KindText, Str: s}
}

// Missing creates an empty cell
func Missing() Value {
	return Value{}
}

// NaN creates the not-a-number sentinel
func NaN() Value {
	return Number(math.NaN())
}

// Float returns the numeric content of the cell. ok is false for text and
// missing cells; NaN cells return ok=true with a NaN value.
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return math.NaN(), false
	}
	return v.Num, true
}

// Defined reports whether the cell is a number other than NaN.
func (v Value) Defined() bool {
	return v.Kind == KindNumber && !math.IsNaN(v.Num)
}

// IsMissing reports whether the cell is empty
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

// String renders the cell the way it is compared in set filters and group keys.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		if math.IsNaN(v.Num) {
			return ""
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Str
	default:
		return ""
	}
}

// MarshalJSON encodes numbers as JSON numbers, text as strings and missing or
// NaN cells as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.Num, 'f', -1, 64)), nil
	case KindText:
		return json.Marshal(v.Str)
	default:
		return []byte("null"), nil
	}
}

// Row is one player-season record keyed by column name
type Row map[string]Value

// Table is an ordered set of rows sharing a common column list.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given columns
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether the table carries the named column
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends a column name if it is not present yet.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// AppendRow adds a row to the end of the table
func (t *Table) AppendRow(row Row) {
	t.Rows = append(t.Rows, row)
}

// Clone returns a copy whose rows can be modified without touching t.
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns)
	out.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// Records returns the cells of every row in column order.
func (t *Table) Records() [][]Value {
	records := make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		rec := make([]Value, len(t.Columns))
		for j, col := range t.Columns {
			rec[j] = row[col]
		}
		records[i] = rec
	}
	return records
}
