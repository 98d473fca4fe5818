package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/central-university-dev/go-tubecord/internal/relay/community"
	"github.com/central-university-dev/go-tubecord/internal/relay/websub"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type FeedProcessor struct {
	mock.Mock
}

func (m *FeedProcessor) ProcessFeedItem(ctx context.Context, item *models.FeedItem) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

func NewFeedProcessor(t testingT) *FeedProcessor {
	m := &FeedProcessor{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

type SubscriptionManager struct {
	mock.Mock
}

func (m *SubscriptionManager) Subscribe(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *SubscriptionManager) Unsubscribe(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *SubscriptionManager) RecordVerification(mode, leaseSeconds string) {
	m.Called(mode, leaseSeconds)
}

func (m *SubscriptionManager) RecordNotification() {
	m.Called()
}

func (m *SubscriptionManager) Status() websub.Status {
	args := m.Called()
	return args.Get(0).(websub.Status)
}

func NewSubscriptionManager(t testingT) *SubscriptionManager {
	m := &SubscriptionManager{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

type CommunityChecker struct {
	mock.Mock
}

func (m *CommunityChecker) ForceCheck(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *CommunityChecker) Status() community.Status {
	args := m.Called()
	return args.Get(0).(community.Status)
}

func NewCommunityChecker(t testingT) *CommunityChecker {
	m := &CommunityChecker{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
