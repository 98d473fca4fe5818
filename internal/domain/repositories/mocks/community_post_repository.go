package mocks

import (
	"context"
	"time"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/stretchr/testify/mock"
)

type CommunityPostRepository struct {
	mock.Mock
}

func (m *CommunityPostRepository) Insert(ctx context.Context, post *models.CommunityPost) (bool, error) {
	args := m.Called(ctx, post)
	return args.Bool(0), args.Error(1)
}

func (m *CommunityPostRepository) FindByID(ctx context.Context, postID string) (*models.CommunityPost, error) {
	args := m.Called(ctx, postID)

	post, _ := args.Get(0).(*models.CommunityPost)

	return post, args.Error(1)
}

func (m *CommunityPostRepository) FindUnnotified(ctx context.Context, channelID string) ([]*models.CommunityPost, error) {
	args := m.Called(ctx, channelID)

	posts, _ := args.Get(0).([]*models.CommunityPost)

	return posts, args.Error(1)
}

func (m *CommunityPostRepository) MarkNotified(ctx context.Context, postIDs ...string) error {
	args := m.Called(ctx, postIDs)
	return args.Error(0)
}

func (m *CommunityPostRepository) DeleteNotifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CommunityPostRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func NewCommunityPostRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *CommunityPostRepository {
	m := &CommunityPostRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
