package mocks

import (
	"context"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/stretchr/testify/mock"
)

type ChannelHandleRepository struct {
	mock.Mock
}

func (m *ChannelHandleRepository) Get(ctx context.Context, channelID string) (*models.ChannelHandle, error) {
	args := m.Called(ctx, channelID)

	handle, _ := args.Get(0).(*models.ChannelHandle)

	return handle, args.Error(1)
}

func (m *ChannelHandleRepository) Save(ctx context.Context, handle *models.ChannelHandle) error {
	args := m.Called(ctx, handle)
	return args.Error(0)
}

func NewChannelHandleRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *ChannelHandleRepository {
	m := &ChannelHandleRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
