package mocks

import (
	"context"

	"github.com/metinatakli/cinema-ticket-inventory/internal/lock"
	"github.com/stretchr/testify/mock"
)

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Acquire(ctx context.Context, keys ...string) (lock.ReleaseFunc, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(lock.ReleaseFunc), args.Error(1)
}
