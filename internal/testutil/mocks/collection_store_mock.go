package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCollectionStore is a mock implementation of repository.CollectionStore
type MockCollectionStore struct {
	mock.Mock
}

func (m *MockCollectionStore) Read(ctx context.Context, scopeKey string) ([]byte, bool, error) {
	args := m.Called(ctx, scopeKey)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockCollectionStore) Write(ctx context.Context, scopeKey string, data []byte) error {
	args := m.Called(ctx, scopeKey, data)
	return args.Error(0)
}
