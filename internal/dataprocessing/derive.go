package dataprocessing

import (
	"math"

	"playerstats/pkg/contracts/domain"
)

// MinutesPerMatch is the playing time available to a player in one match
const MinutesPerMatch = 90

// Derive appends the team total and contribution columns for every configured
// metric present in table, then Available Minutes and Usage when their inputs
// exist. The input table is not modified. Deriving an already derived table
// produces identical values.
func Derive(table *domain.Table, cfg Config) *domain.Table {
	out := table.Clone()

	if out.HasColumn(cfg.GroupColumn) {
		for _, metric := range cfg.Metrics {
			if !out.HasColumn(metric) {
				continue
			}
			deriveContribution(out, cfg.GroupColumn, metric)
		}
	}

	deriveUsage(out)
	return out
}

// deriveContribution adds "Team <metric>" and "<metric> Contribution".
// Rows without a group key get NaN for both, mirroring a groupby that drops
// null keys. Undefined metric cells contribute nothing to the team sum.
func deriveContribution(table *domain.Table, groupColumn, metric string) {
	totals := make(map[string]float64)
	for _, row := range table.Rows {
		key, ok := groupKey(row, groupColumn)
		if !ok {
			continue
		}
		if v := row[metric]; v.Defined() {
			totals[key] += v.Num
		} else if _, seen := totals[key]; !seen {
			totals[key] = 0
		}
	}

	teamCol := domain.TeamColumn(metric)
	contribCol := domain.ContributionColumn(metric)
	table.AddColumn(teamCol)
	table.AddColumn(contribCol)

	for _, row := range table.Rows {
		key, ok := groupKey(row, groupColumn)
		if !ok {
			row[teamCol] = domain.NaN()
			row[contribCol] = domain.NaN()
			continue
		}
		total := totals[key]
		row[teamCol] = domain.Number(total)
		row[contribCol] = domain.Number(percentOf(numeric(row[metric]), total))
	}
}

// deriveUsage rounds Minutes Played to whole minutes, then adds Available
// Minutes (Matches x 90) and Usage (percentage of available minutes played).
func deriveUsage(table *domain.Table) {
	hasMinutes := table.HasColumn(domain.ColumnMinutesPlayed)
	if hasMinutes {
		for _, row := range table.Rows {
			if v := row[domain.ColumnMinutesPlayed]; v.Defined() {
				row[domain.ColumnMinutesPlayed] = domain.Number(roundTo(v.Num, 0))
			}
		}
	}

	if !table.HasColumn(domain.ColumnMatches) {
		return
	}

	table.AddColumn(domain.ColumnAvailableMinutes)
	for _, row := range table.Rows {
		row[domain.ColumnAvailableMinutes] = domain.Number(numeric(row[domain.ColumnMatches]) * MinutesPerMatch)
	}

	if !hasMinutes {
		return
	}

	table.AddColumn(domain.ColumnUsage)
	for _, row := range table.Rows {
		available := numeric(row[domain.ColumnAvailableMinutes])
		row[domain.ColumnUsage] = domain.Number(percentOf(numeric(row[domain.ColumnMinutesPlayed]), available))
	}
}

// groupKey returns the aggregation key of a row; ok is false for rows with an
// empty key.
func groupKey(row domain.Row, column string) (string, bool) {
	v := row[column]
	if v.IsMissing() {
		return "", false
	}
	key := v.String()
	return key, key != ""
}

// numeric coerces a cell to float64, mapping text and missing cells to NaN.
func numeric(v domain.Value) float64 {
	if f, ok := v.Float(); ok {
		return f
	}
	return math.NaN()
}
