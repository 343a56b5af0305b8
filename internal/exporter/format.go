package exporter

import (
	"math"
	"strconv"

	"playerstats/pkg/contracts/domain"
)

// formatFloat renders a number with the fewest digits that round-trip
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatCell renders a cell for text output. Missing and NaN cells are empty.
func formatCell(v domain.Value) string {
	switch v.Kind {
	case domain.KindNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return ""
		}
		return formatFloat(v.Num)
	case domain.KindText:
		return v.Str
	default:
		return ""
	}
}

// cellValue returns the typed value for a spreadsheet cell, nil for blanks.
func cellValue(v domain.Value) interface{} {
	switch v.Kind {
	case domain.KindNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return nil
		}
		return v.Num
	case domain.KindText:
		return v.Str
	default:
		return nil
	}
}
