package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playerstats/internal/shared/testutil"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	workbook := testutil.WritePlayerWorkbookFile(t, dir)
	t.Setenv("OBV_SOURCE_KIND", "file")
	t.Setenv("OBV_SOURCE_PATH", workbook)
	t.Setenv("OBV_LOGGING_OUTPUT", "console")

	tests := []struct {
		name      string
		args      []string
		wantCode  int
		wantNames []string
	}{
		{
			name:      "defaults",
			args:      []string{"-format", "csv"},
			wantNames: []string{"A. Silva", "B. Jones", "D. Park"},
		},
		{
			name:      "filters",
			args:      []string{"-format", "csv", "-age-min", "25", "-team", "Alpha FC"},
			wantNames: []string{"B. Jones"},
		},
		{
			name:      "repeated positions",
			args:      []string{"-format", "csv", "-position", "Goalkeeper", "-position", "Centre Forward"},
			wantNames: []string{"A. Silva", "D. Park"},
		},
		{name: "bad bound", args: []string{"-age-min", "young"}, wantCode: 2},
		{name: "bad format", args: []string{"-format", "pdf"}, wantCode: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out")
			code := run(append([]string{"-out", out}, tt.args...))
			require.Equal(t, tt.wantCode, code)
			if tt.wantCode != 0 {
				return
			}

			f, err := os.Open(filepath.Join(out, "filtered_player_stats.csv"))
			require.NoError(t, err)
			defer f.Close()
			records, err := csv.NewReader(f).ReadAll()
			require.NoError(t, err)

			var names []string
			for _, rec := range records[1:] {
				names = append(names, rec[0])
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, "Name", strings.TrimPrefix(records[0][0], "\ufeff"))
		})
	}
}

func TestRun_SourceUnavailable(t *testing.T) {
	t.Setenv("OBV_SOURCE_KIND", "file")
	t.Setenv("OBV_SOURCE_PATH", filepath.Join(t.TempDir(), "missing.xlsx"))
	t.Setenv("OBV_LOGGING_OUTPUT", "console")

	assert.Equal(t, 1, run([]string{"-out", t.TempDir()}))
}
