package mocks

import (
	"context"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/stretchr/testify/mock"
)

type VideoMetadataClient struct {
	mock.Mock
}

func (m *VideoMetadataClient) VideoMetadata(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	args := m.Called(ctx, videoID)

	metadata, _ := args.Get(0).(*models.VideoMetadata)

	return metadata, args.Error(1)
}

func NewVideoMetadataClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *VideoMetadataClient {
	m := &VideoMetadataClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
