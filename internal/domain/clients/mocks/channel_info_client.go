package mocks

import (
	"context"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/stretchr/testify/mock"
)

type ChannelInfoClient struct {
	mock.Mock
}

func (m *ChannelInfoClient) ChannelInfo(ctx context.Context, channelID string) (*models.ChannelInfo, error) {
	args := m.Called(ctx, channelID)

	info, _ := args.Get(0).(*models.ChannelInfo)

	return info, args.Error(1)
}

func NewChannelInfoClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *ChannelInfoClient {
	m := &ChannelInfoClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

type ChannelPageFetcher struct {
	mock.Mock
}

func (m *ChannelPageFetcher) FetchChannelPage(ctx context.Context, channelID string) (string, error) {
	args := m.Called(ctx, channelID)
	return args.String(0), args.Error(1)
}

func NewChannelPageFetcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *ChannelPageFetcher {
	m := &ChannelPageFetcher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
