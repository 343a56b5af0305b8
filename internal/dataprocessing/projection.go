package dataprocessing

import (
	"fmt"
	"math"

	"playerstats/pkg/contracts/domain"
)

// NotAvailable is shown in place of undefined percentages
const NotAvailable = "N/A"

// Project keeps the requested columns that exist in table, in the requested
// order. Absent or repeated names are dropped without error.
func Project(table *domain.Table, columns []string) *domain.Table {
	seen := make(map[string]struct{}, len(columns))
	kept := make([]string, 0, len(columns))
	for _, c := range columns {
		if _, dup := seen[c]; dup || !table.HasColumn(c) {
			continue
		}
		seen[c] = struct{}{}
		kept = append(kept, c)
	}

	out := domain.NewTable(kept)
	out.Rows = make([]domain.Row, len(table.Rows))
	for i, row := range table.Rows {
		projected := make(domain.Row, len(kept))
		for _, c := range kept {
			projected[c] = row[c]
		}
		out.Rows[i] = projected
	}
	return out
}

// Format renders a projected table for display: Age as a whole number, Usage
// to two decimals and every contribution column as a "12.34%" string, with
// undefined values shown as N/A. The input is left untouched.
func Format(table *domain.Table) *domain.Table {
	out := domain.NewTable(table.Columns)
	out.Rows = make([]domain.Row, len(table.Rows))

	formatters := make(map[string]func(domain.Value) domain.Value, len(table.Columns))
	for _, c := range table.Columns {
		if f := formatterFor(c); f != nil {
			formatters[c] = f
		}
	}

	for i, row := range table.Rows {
		formatted := make(domain.Row, len(row))
		for c, v := range row {
			if f, ok := formatters[c]; ok {
				v = f(v)
			}
			formatted[c] = v
		}
		out.Rows[i] = formatted
	}
	return out
}

func formatterFor(column string) func(domain.Value) domain.Value {
	switch {
	case column == domain.ColumnAge:
		return formatAge
	case column == domain.ColumnUsage:
		return formatUsage
	case domain.IsContributionColumn(column):
		return formatPercent
	default:
		return nil
	}
}

func formatAge(v domain.Value) domain.Value {
	if !v.Defined() {
		return v
	}
	return domain.Number(math.Trunc(v.Num))
}

func formatUsage(v domain.Value) domain.Value {
	if !v.Defined() {
		return domain.Text(NotAvailable)
	}
	return domain.Number(roundTo(v.Num, 2))
}

func formatPercent(v domain.Value) domain.Value {
	if !v.Defined() {
		return domain.Text(NotAvailable)
	}
	return domain.Text(fmt.Sprintf("%.2f%%", v.Num))
}
