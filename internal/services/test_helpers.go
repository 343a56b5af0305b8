package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"playerstats/pkg/contracts/domain"
)

// MockTableLoader is a mock for the TableLoader interface
type MockTableLoader struct {
	mock.Mock
}

func (m *MockTableLoader) Table(ctx context.Context) (*domain.Table, error) {
	args := m.Called(ctx)
	if t, ok := args.Get(0).(*domain.Table); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTableLoader) Loaded() (bool, time.Time) {
	args := m.Called()
	return args.Bool(0), args.Get(1).(time.Time)
}

// MockSessionCounter is a mock for the SessionCounter interface
type MockSessionCounter struct {
	mock.Mock
}

func (m *MockSessionCounter) SessionCount() int {
	return m.Called().Int(0)
}
