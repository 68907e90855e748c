package mocks

import (
	"context"
	"time"

	"github.com/dukex/n8ngen/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockArchive is a mock implementation of persistence.Archive interface.
type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Save(ctx context.Context, record *models.Record) error {
	args := m.Called(ctx, record)

	return args.Error(0)
}

func (m *MockArchive) ByID(ctx context.Context, id string) (*models.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Record), args.Error(1)
}

func (m *MockArchive) Recent(ctx context.Context, limit int) ([]*models.Record, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Record), args.Error(1)
}

func (m *MockArchive) Prune(ctx context.Context, before time.Time) (int, error) {
	args := m.Called(ctx, before)

	return args.Int(0), args.Error(1)
}

func (m *MockArchive) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockArchive) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
