package dataprocessing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playerstats/internal/shared/testutil"
)

func TestHTTPSource_Fetch(t *testing.T) {
	workbook := testutil.PlayerWorkbook(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stats.xlsx":
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			_, _ = w.Write(workbook)
		case "/garbage.xlsx":
			_, _ = w.Write([]byte("<html>maintenance</html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	logger, _ := testutil.NewTestLogger(t)

	tests := []struct {
		name     string
		path     string
		maxBytes int64
		wantRows int
		wantErr  bool
	}{
		{name: "workbook", path: "/stats.xlsx", wantRows: 5},
		{name: "not found", path: "/missing.xlsx", wantErr: true},
		{name: "not a workbook", path: "/garbage.xlsx", wantErr: true},
		{name: "truncated by size cap", path: "/stats.xlsx", maxBytes: 64, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := NewHTTPSource(server.URL+tt.path, 5*time.Second, tt.maxBytes, logger)
			assert.Equal(t, server.URL+tt.path, source.Describe())

			table, err := source.Fetch(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSourceUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, table.Len())
		})
	}
}

func TestHTTPSource_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPSource(server.URL, time.Second, 0, nil).Fetch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrSourceUnavailable)
}

func TestHTTPSource_ClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	_, err := NewHTTPSource(server.URL, 50*time.Millisecond, 0, nil).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFileSource_Fetch(t *testing.T) {
	path := testutil.WritePlayerWorkbookFile(t, t.TempDir())

	table, err := NewFileSource(path).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())

	_, err = NewFileSource(path + ".missing").Fetch(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestValuesToRows(t *testing.T) {
	rows := valuesToRows([][]interface{}{
		{"Name", "Age", "Team"},
		{"p1", float64(21), nil},
		{"p2", 22.5, true},
	})

	assert.Equal(t, [][]string{
		{"Name", "Age", "Team"},
		{"p1", "21", ""},
		{"p2", "22.5", "true"},
	}, rows)

	table, err := TableFromRows(rows)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}
