package clients

import (
	"context"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

// VideoMetadataClient возвращает метаданные с Found=false, если видео не найдено.
type VideoMetadataClient interface {
	VideoMetadata(ctx context.Context, videoID string) (*models.VideoMetadata, error)
}

type ChannelInfoClient interface {
	ChannelInfo(ctx context.Context, channelID string) (*models.ChannelInfo, error)
}

type ChannelPageFetcher interface {
	FetchChannelPage(ctx context.Context, channelID string) (string, error)
}
