package repositories

import (
	"context"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

type ChannelHandleRepository interface {
	Get(ctx context.Context, channelID string) (*models.ChannelHandle, error)

	Save(ctx context.Context, handle *models.ChannelHandle) error
}
