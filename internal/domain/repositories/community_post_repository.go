package repositories

import (
	"context"
	"time"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

type CommunityPostRepository interface {
	// Insert сохраняет пост, если его id еще не встречался. Для известного id inserted равен false.
	Insert(ctx context.Context, post *models.CommunityPost) (inserted bool, err error)

	FindByID(ctx context.Context, postID string) (*models.CommunityPost, error)

	FindUnnotified(ctx context.Context, channelID string) ([]*models.CommunityPost, error)

	MarkNotified(ctx context.Context, postIDs ...string) error

	DeleteNotifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Count(ctx context.Context) (int, error)
}
