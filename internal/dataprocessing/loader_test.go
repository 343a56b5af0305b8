package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"playerstats/internal/shared/testutil"
	"playerstats/pkg/contracts/domain"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Fetch(ctx context.Context) (*domain.Table, error) {
	args := m.Called(ctx)
	if t := args.Get(0); t != nil {
		return t.(*domain.Table), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSource) Describe() string {
	return "mock"
}

func TestLoader_LoadsOnce(t *testing.T) {
	source := &mockSource{}
	source.On("Fetch", mock.Anything).Return(testutil.PlayerTable(), nil)

	logger, handler := testutil.NewTestLogger(t)
	loader := NewLoader(source, NewPipeline(obvConfig(t)), logger)

	loaded, _ := loader.Loaded()
	assert.False(t, loaded)

	var wg sync.WaitGroup
	tables := make([]*domain.Table, 10)
	for i := range tables {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table, err := loader.Table(context.Background())
			assert.NoError(t, err)
			tables[i] = table
		}(i)
	}
	wg.Wait()

	source.AssertNumberOfCalls(t, "Fetch", 1)
	for _, table := range tables {
		assert.Same(t, tables[0], table)
	}
	assert.True(t, tables[0].HasColumn(domain.ColumnUsage))

	loaded, at := loader.Loaded()
	assert.True(t, loaded)
	assert.False(t, at.IsZero())
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Player table loaded")
}

func TestLoader_FailureIsNotCached(t *testing.T) {
	source := &mockSource{}
	source.On("Fetch", mock.Anything).Return(nil, fmt.Errorf("%w: boom", ErrSourceUnavailable)).Once()
	source.On("Fetch", mock.Anything).Return(testutil.PlayerTable(), nil).Once()

	logger, handler := testutil.NewTestLogger(t)
	loader := NewLoader(source, NewPipeline(obvConfig(t)), logger)

	_, err := loader.Table(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
	testutil.AssertLogAttr(t, handler, "component", "loader")

	loaded, _ := loader.Loaded()
	assert.False(t, loaded)

	table, err := loader.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())
	source.AssertExpectations(t)
}
