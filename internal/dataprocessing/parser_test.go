package dataprocessing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playerstats/internal/shared/testutil"
	"playerstats/pkg/contracts/domain"
)

func TestParseWorkbook(t *testing.T) {
	table, err := ParseWorkbook(bytes.NewReader(testutil.PlayerWorkbook(t)))
	require.NoError(t, err)

	assert.Equal(t, testutil.PlayerHeader, table.Columns)
	require.Equal(t, 5, table.Len())

	silva := table.Rows[0]
	assert.Equal(t, domain.Text("A. Silva"), silva[domain.ColumnName])
	assert.Equal(t, domain.Number(22.7), silva[domain.ColumnAge])
	assert.Equal(t, domain.Number(10), silva[domain.ColumnMatches])

	novak := table.Rows[4]
	assert.Equal(t, domain.Number(1845.4), novak[domain.ColumnMinutesPlayed])
	assert.True(t, novak["xG"].IsMissing())
}

func TestParseWorkbook_MatchesFixtureTable(t *testing.T) {
	table, err := ParseWorkbook(bytes.NewReader(testutil.PlayerWorkbook(t)))
	require.NoError(t, err)

	assert.Equal(t, cellText(testutil.PlayerTable()), cellText(table))
}

func TestParseWorkbook_Invalid(t *testing.T) {
	_, err := ParseWorkbook(strings.NewReader("not a workbook"))
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := testutil.WritePlayerWorkbookFile(t, t.TempDir())

	table, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())

	_, err = ParseFile(path + ".missing")
	assert.Error(t, err)
}

func TestTableFromRows(t *testing.T) {
	table, err := TableFromRows([][]string{
		{"Name", "Age", "Team"},
		{"p1", "21", "A"},
		{"", " ", ""},
		{"p2", "x"},
	})
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, domain.Number(21), table.Rows[0]["Age"])
	assert.Equal(t, domain.Text("x"), table.Rows[1]["Age"])
	assert.True(t, table.Rows[1]["Team"].IsMissing())

	_, err = TableFromRows(nil)
	assert.Error(t, err)
}

func TestNormalizeHeaders(t *testing.T) {
	got := NormalizeHeaders([]string{"Name", " Team ", "", "Name", "Name"})

	assert.Equal(t, []string{"Name", "Team", "Unnamed: 2", "Name.1", "Name.2"}, got)
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Value
	}{
		{"", domain.Missing()},
		{"   ", domain.Missing()},
		{"12", domain.Number(12)},
		{" 0.25 ", domain.Number(0.25)},
		{"-3e2", domain.Number(-300)},
		{"Inf", domain.Text("Inf")},
		{"Left Back", domain.Text("Left Back")},
		{"1,000", domain.Text("1,000")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCell(tt.in))
		})
	}
}
