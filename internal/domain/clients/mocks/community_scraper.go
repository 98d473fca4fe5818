package mocks

import (
	"context"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/stretchr/testify/mock"
)

type CommunityScraper struct {
	mock.Mock
}

func (m *CommunityScraper) Fetch(ctx context.Context, channelURL string, limit int) ([]models.RawPost, error) {
	args := m.Called(ctx, channelURL, limit)

	posts, _ := args.Get(0).([]models.RawPost)

	return posts, args.Error(1)
}

func NewCommunityScraper(t interface {
	mock.TestingT
	Cleanup(func())
}) *CommunityScraper {
	m := &CommunityScraper{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
