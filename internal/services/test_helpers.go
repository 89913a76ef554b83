package services

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPinger is a mock for the Pinger interface
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
