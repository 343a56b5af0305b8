package testutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"playerstats/pkg/contracts/domain"
)

func TestPlayerTable(t *testing.T) {
	table := PlayerTable()

	assert.Equal(t, PlayerHeader, table.Columns)
	require.Equal(t, 5, table.Len())
	assert.Equal(t, domain.Number(22.7), table.Rows[0][domain.ColumnAge])
	assert.Equal(t, domain.Text("Alpha FC"), table.Rows[0][domain.ColumnTeam])
	assert.True(t, table.Rows[4]["xG"].IsMissing())
}

func TestWriteWorkbook(t *testing.T) {
	data := PlayerWorkbook(t)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, PlayerHeader, rows[0])
	assert.Equal(t, "E. Novak", rows[5][0])
}
