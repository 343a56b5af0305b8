package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"playerstats/internal/dataprocessing"
	apierrors "playerstats/internal/errors"
	"playerstats/internal/exporter"
	"playerstats/internal/shared/testutil"
	api "playerstats/pkg/contracts/api/v1"
	"playerstats/pkg/contracts/domain"
)

func newPipeline(t *testing.T) *dataprocessing.Pipeline {
	t.Helper()
	cfg, err := dataprocessing.Preset("obv")
	require.NoError(t, err)
	return dataprocessing.NewPipeline(cfg)
}

func newTestService(t *testing.T) (*StatsService, *MockTableLoader) {
	t.Helper()
	pipeline := newPipeline(t)
	loader := &MockTableLoader{}
	loader.On("Loaded").Return(true, time.Now()).Maybe()
	loader.On("Table", mock.Anything).Return(pipeline.Derive(testutil.PlayerTable()), nil).Maybe()

	logger, _ := testutil.NewTestLogger(t)
	return NewStatsService(loader, pipeline, nil, nil, logger), loader
}

func namesOf(t *domain.Table) []string {
	out := make([]string, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, row[domain.ColumnName].String())
	}
	return out
}

func ptr(f float64) *float64 { return &f }

func TestStatsService_Spec(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		req  api.FilterRequest
		want dataprocessing.FilterSpec
	}{
		{
			name: "defaults",
			req:  api.FilterRequest{},
			want: dataprocessing.FilterSpec{
				Age:   dataprocessing.Range{Min: 15, Max: 35},
				Usage: dataprocessing.Range{Min: 0, Max: 140},
			},
		},
		{
			name: "partial bounds",
			req:  api.FilterRequest{AgeMax: ptr(25), UsageMin: ptr(50)},
			want: dataprocessing.FilterSpec{
				Age:   dataprocessing.Range{Min: 15, Max: 25},
				Usage: dataprocessing.Range{Min: 50, Max: 140},
			},
		},
		{
			name: "explicit zero is kept",
			req:  api.FilterRequest{AgeMin: ptr(0), UsageMax: ptr(0)},
			want: dataprocessing.FilterSpec{
				Age:   dataprocessing.Range{Min: 0, Max: 35},
				Usage: dataprocessing.Range{Min: 0, Max: 0},
			},
		},
		{
			name: "sets",
			req: api.FilterRequest{
				Positions:    []string{"Left Back"},
				Competitions: []string{"Premier"},
				Teams:        []string{"ALL"},
			},
			want: dataprocessing.FilterSpec{
				Age:          dataprocessing.Range{Min: 15, Max: 35},
				Usage:        dataprocessing.Range{Min: 0, Max: 140},
				Positions:    []string{"Left Back"},
				Competitions: []string{"Premier"},
				Teams:        []string{"ALL"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.Spec(tt.req))
		})
	}
}

func TestStatsService_Query(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  api.FilterRequest
		want []string
	}{
		{"defaults", api.FilterRequest{}, []string{"A. Silva", "B. Jones", "D. Park"}},
		{"age 30 only", api.FilterRequest{AgeMin: ptr(30), AgeMax: ptr(30)}, []string{"B. Jones"}},
		{"inverted usage", api.FilterRequest{UsageMin: ptr(100), UsageMax: ptr(10)}, []string{}},
		{"team", api.FilterRequest{Teams: []string{"Beta United"}}, []string{"D. Park"}},
		{"competition", api.FilterRequest{Competitions: []string{"Premier"}}, []string{"A. Silva", "B. Jones"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Query(ctx, svc.Spec(tt.req))
			require.NoError(t, err)
			assert.Equal(t, tt.want, namesOf(result))
		})
	}

	t.Run("formatted projection", func(t *testing.T) {
		result, err := svc.Query(ctx, svc.Spec(api.FilterRequest{}))
		require.NoError(t, err)

		assert.Equal(t, []string{
			domain.ColumnName, domain.ColumnTeam, domain.ColumnAge, domain.ColumnPrimaryPosition, domain.ColumnUsage,
			"OBV", "Team OBV", "OBV Contribution", "xG", "Team xG", "xG Contribution",
		}, result.Columns)

		first := result.Rows[0]
		assert.Equal(t, domain.Number(22), first[domain.ColumnAge])
		assert.Equal(t, domain.Number(50), first[domain.ColumnUsage])
		assert.Equal(t, domain.Text("25.00%"), first["OBV Contribution"])
		assert.Equal(t, domain.Text("80.00%"), first["xG Contribution"])
	})
}

func TestStatsService_Options(t *testing.T) {
	svc, _ := newTestService(t)

	opts, err := svc.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ALL", "Premier", "Championship", "Serie A"}, opts.Competitions)
	assert.Equal(t, []string{"ALL", "Alpha FC", "Beta United", "Gamma"}, opts.Teams)
	assert.Equal(t, 15, opts.Age.Min)
	assert.Equal(t, domain.ColumnCompetition, opts.CompetitionColumn)

	teams, err := svc.TeamOptions(context.Background(), []string{"Championship"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ALL", "Beta United"}, teams)

	all, err := svc.TeamOptions(context.Background(), []string{"ALL"})
	require.NoError(t, err)
	assert.Equal(t, opts.Teams, all)
}

func TestStatsService_SourceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantSource bool
		wantIs     error
	}{
		{"source unavailable", fmt.Errorf("%w: status 502", dataprocessing.ErrSourceUnavailable), true, dataprocessing.ErrSourceUnavailable},
		{"other failure", errors.New("boom"), true, nil},
		{"cancelled", context.Canceled, false, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &MockTableLoader{}
			loader.On("Loaded").Return(false, time.Time{})
			loader.On("Table", mock.Anything).Return(nil, tt.err)
			svc := NewStatsService(loader, newPipeline(t), nil, nil, nil)

			_, err := svc.Query(context.Background(), svc.Spec(api.FilterRequest{}))
			require.Error(t, err)

			var appErr *apierrors.AppError
			assert.Equal(t, tt.wantSource, errors.As(err, &appErr))
			if tt.wantSource {
				assert.Equal(t, apierrors.ErrTypeSource, appErr.Type)
			}
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			loader.AssertExpectations(t)
		})
	}
}

func TestStatsService_NoPipeline(t *testing.T) {
	svc := NewStatsService(&MockTableLoader{}, nil, nil, nil, nil)
	_, err := svc.Options(context.Background())
	assert.ErrorIs(t, err, ErrNoPipeline)
}

func TestStatsService_Export(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("xlsx", func(t *testing.T) {
		exp, err := svc.Export(ctx, svc.Spec(api.FilterRequest{}), "")
		require.NoError(t, err)
		assert.Equal(t, "filtered_player_stats.xlsx", exp.Filename)
		assert.Equal(t, exporter.XLSXContentType, exp.ContentType)
		assert.Equal(t, exporter.FormatXLSX, exp.Format)
		assert.Equal(t, 3, exp.Rows)

		f, err := excelize.OpenReader(bytes.NewReader(exp.Data))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(exporter.SheetName)
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, domain.ColumnName, rows[0][0])
		assert.Equal(t, "A. Silva", rows[1][0])
	})

	t.Run("csv", func(t *testing.T) {
		exp, err := svc.Export(ctx, svc.Spec(api.FilterRequest{Teams: []string{"Alpha FC"}}), "csv")
		require.NoError(t, err)
		assert.Equal(t, "filtered_player_stats.csv", exp.Filename)
		assert.Equal(t, 2, exp.Rows)
		assert.True(t, bytes.HasPrefix(exp.Data, []byte("\ufeffName,Team,Age")))
	})

	t.Run("empty result still has a header", func(t *testing.T) {
		exp, err := svc.Export(ctx, svc.Spec(api.FilterRequest{AgeMin: ptr(90)}), "csv")
		require.NoError(t, err)
		assert.Equal(t, 0, exp.Rows)
		assert.Contains(t, string(exp.Data), "Name,Team")
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := svc.Export(ctx, svc.Spec(api.FilterRequest{}), "pdf")
		var appErr *apierrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apierrors.ErrTypeValidation, appErr.Type)
		assert.Equal(t, "pdf", appErr.Context["format"])
	})
}

func TestStatsService_ExportToDir(t *testing.T) {
	svc, _ := newTestService(t)
	dir := filepath.Join(t.TempDir(), "exports")

	path, err := svc.ExportToDir(context.Background(), svc.Spec(api.FilterRequest{}), "csv", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "filtered_player_stats.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "B. Jones")

	_, err = svc.ExportToDir(context.Background(), svc.Spec(api.FilterRequest{}), "ods", dir)
	assert.Error(t, err)
}

func TestStatsService_RecordsSourceLoad(t *testing.T) {
	pipeline := newPipeline(t)
	loader := &MockTableLoader{}
	loader.On("Loaded").Return(false, time.Time{}).Once()
	loader.On("Table", mock.Anything).Return(pipeline.Derive(testutil.PlayerTable()), nil).Once()

	svc := NewStatsService(loader, pipeline, nil, nil, nil)
	_, err := svc.Options(context.Background())
	require.NoError(t, err)
	loader.AssertExpectations(t)
}
