package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type PostCleaner struct {
	mock.Mock
}

func (m *PostCleaner) DeleteNotifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type SubscriptionRenewer struct {
	mock.Mock
}

func (m *SubscriptionRenewer) RenewIfNeeded(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
