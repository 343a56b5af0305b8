// Package dataprocessing turns the player statistics workbook into the
// filtered, display-ready tables served by the dashboard.
//
// # Stages
//
// A table flows through four stages, each a pure function over *domain.Table:
//
//  1. Derive: per-team totals and contribution percentages for every metric,
//     then Available Minutes and Usage.
//  2. Filter: age and usage ranges plus position, competition and team
//     selections combined with AND. "ALL" in a selection disables it.
//  3. Project: keep the display columns that exist, in display order.
//  4. Format: Age as a whole number, Usage to two decimals and contribution
//     columns as "12.34%" strings, with undefined values shown as N/A.
//
// Derive runs once per process inside a Loader; the derived table is then
// shared read-only by every request.
//
// # Usage
//
//	cfg, _ := dataprocessing.Preset("obv")
//	pipeline := dataprocessing.NewPipeline(cfg)
//	loader := dataprocessing.NewLoader(dataprocessing.NewHTTPSource(url, time.Minute, 0, logger), pipeline, logger)
//
//	table, err := loader.Table(ctx)
//	if err != nil {
//	    return err
//	}
//	view := pipeline.FilterAndProject(table, pipeline.DefaultSpec())
//
// # Sources
//
// HTTPSource downloads an .xlsx workbook, FileSource reads one from disk and
// SheetsSource reads a Google Sheets range. All of them report failures
// wrapped in ErrSourceUnavailable.
package dataprocessing
