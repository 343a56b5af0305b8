package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"playerstats/internal/shared/testutil"
	"playerstats/pkg/contracts/domain"
)

func obvConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := Preset("obv")
	require.NoError(t, err)
	return cfg
}

func derivedFixture(t *testing.T) *domain.Table {
	t.Helper()
	return Derive(testutil.PlayerTable(), obvConfig(t))
}

// cellText flattens a table to strings so NaN cells compare equal.
func cellText(table *domain.Table) [][]string {
	out := make([][]string, 0, table.Len())
	for _, rec := range table.Records() {
		row := make([]string, len(rec))
		for i, v := range rec {
			row[i] = v.String()
		}
		out = append(out, row)
	}
	return out
}

func names(table *domain.Table) []string {
	out := make([]string, 0, table.Len())
	for _, row := range table.Rows {
		out = append(out, row[domain.ColumnName].String())
	}
	return out
}

func rowByName(t *testing.T, table *domain.Table, name string) domain.Row {
	t.Helper()
	for _, row := range table.Rows {
		if row[domain.ColumnName].String() == name {
			return row
		}
	}
	t.Fatalf("row %q not found", name)
	return nil
}
