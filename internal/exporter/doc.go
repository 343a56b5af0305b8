// Package exporter serializes formatted player tables as downloadable files.
//
// Two writers are provided:
//
// XLSXWriter: a single "Filtered Player Stats" sheet with a bold header row and
// typed cells, streamed with excelize.
//
// CSVWriter: a UTF-8 BOM followed by the header and rows, so spreadsheet
// applications detect the encoding.
//
// Both satisfy Writer and always produce a file named filtered_player_stats
// with the matching extension.
//
// Example usage:
//
//	w, err := exporter.ForFormat("xlsx")
//	if err != nil {
//	    return err
//	}
//	path, err := exporter.WriteFile("exports", w, formatted)
package exporter
