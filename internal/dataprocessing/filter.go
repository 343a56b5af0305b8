package dataprocessing

import (
	"strings"

	"playerstats/pkg/contracts/domain"
)

// AllOption is the synthetic multi-select entry that disables a set filter
const AllOption = "ALL"

// Range is an inclusive numeric interval. A range with Min > Max matches nothing.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether f lies inside the range, bounds included.
func (r Range) Contains(f float64) bool {
	return f >= r.Min && f <= r.Max
}

// Inverted reports whether the range cannot match any value
func (r Range) Inverted() bool {
	return r.Min > r.Max
}

// FilterSpec holds the user's filter selections.
type FilterSpec struct {
	Age          Range    `json:"age_range"`
	Usage        Range    `json:"usage_range"`
	Positions    []string `json:"positions,omitempty"`
	Competitions []string `json:"competitions,omitempty"`
	Teams        []string `json:"teams,omitempty"`
}

// selectsAll reports whether a multi-select imposes no restriction.
func selectsAll(selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if strings.EqualFold(strings.TrimSpace(s), AllOption) {
			return true
		}
	}
	return false
}

type predicate func(domain.Row) bool

func rangePredicate(column string, r Range) predicate {
	return func(row domain.Row) bool {
		v := row[column]
		return v.Defined() && r.Contains(v.Num)
	}
}

func setPredicate(column string, selected []string) predicate {
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[s] = struct{}{}
	}
	return func(row domain.Row) bool {
		_, ok := set[row[column].String()]
		return ok
	}
}

// buildPredicates compiles spec into the list of checks that apply to table.
// ok is false when the spec can never match (an inverted range).
func buildPredicates(table *domain.Table, spec FilterSpec, cfg Config) ([]predicate, bool) {
	if spec.Age.Inverted() || spec.Usage.Inverted() {
		return nil, false
	}

	var preds []predicate
	if table.HasColumn(domain.ColumnAge) {
		preds = append(preds, rangePredicate(domain.ColumnAge, spec.Age))
	}
	if table.HasColumn(domain.ColumnUsage) {
		preds = append(preds, rangePredicate(domain.ColumnUsage, spec.Usage))
	}

	sets := []struct {
		column   string
		selected []string
	}{
		{domain.ColumnPrimaryPosition, spec.Positions},
		{cfg.CompetitionColumn, spec.Competitions},
		{cfg.GroupColumn, spec.Teams},
	}
	for _, s := range sets {
		if selectsAll(s.selected) || !table.HasColumn(s.column) {
			continue
		}
		preds = append(preds, setPredicate(s.column, s.selected))
	}
	return preds, true
}

// Filter returns the rows of table that satisfy every predicate in spec, in
// their original order. Predicates on columns the table lacks are skipped.
// The returned rows are shared with table and must be treated as read-only.
func Filter(table *domain.Table, spec FilterSpec, cfg Config) *domain.Table {
	out := domain.NewTable(table.Columns)

	preds, ok := buildPredicates(table, spec, cfg)
	if !ok {
		return out
	}

	for _, row := range table.Rows {
		pass := true
		for _, p := range preds {
			if !p(row) {
				pass = false
				break
			}
		}
		if pass {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// TeamOptions lists the teams a user may pick given the selected
// competitions, headed by AllOption. No selection, or a selection containing
// ALL, offers every team.
func TeamOptions(table *domain.Table, competitions []string, cfg Config) []string {
	if selectsAll(competitions) || !table.HasColumn(cfg.CompetitionColumn) {
		return withAll(distinct(table, cfg.GroupColumn, nil))
	}

	keep := setPredicate(cfg.CompetitionColumn, competitions)
	return withAll(distinct(table, cfg.GroupColumn, keep))
}

// SliderBounds describes a numeric range input.
type SliderBounds struct {
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Step    int    `json:"step"`
	Default [2]int `json:"default"`
}

// Range converts the slider default into a filter range
func (s SliderBounds) Range() Range {
	return Range{Min: float64(s.Default[0]), Max: float64(s.Default[1])}
}

// FilterOptions is everything a presentation layer needs to draw the filters.
type FilterOptions struct {
	Age               SliderBounds `json:"age"`
	Usage             SliderBounds `json:"usage"`
	Positions         []string     `json:"positions"`
	Competitions      []string     `json:"competitions"`
	Teams             []string     `json:"teams"`
	CompetitionColumn string       `json:"competition_column"`
}

// Options collects the selectable values observed in table.
func Options(table *domain.Table, cfg Config) FilterOptions {
	return FilterOptions{
		Age:               cfg.AgeSlider,
		Usage:             cfg.UsageSlider,
		Positions:         withAll(distinct(table, domain.ColumnPrimaryPosition, nil)),
		Competitions:      withAll(distinct(table, cfg.CompetitionColumn, nil)),
		Teams:             TeamOptions(table, nil, cfg),
		CompetitionColumn: cfg.CompetitionColumn,
	}
}

// distinct returns the non-empty values of column in first-seen order,
// optionally restricted to rows accepted by keep.
func distinct(table *domain.Table, column string, keep predicate) []string {
	if !table.HasColumn(column) {
		return nil
	}
	seen := make(map[string]struct{})
	var values []string
	for _, row := range table.Rows {
		if keep != nil && !keep(row) {
			continue
		}
		v := row[column].String()
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values
}

func withAll(values []string) []string {
	return append([]string{AllOption}, values...)
}
