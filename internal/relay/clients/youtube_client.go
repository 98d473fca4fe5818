package clients

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/central-university-dev/go-tubecord/internal/common/httputil"
	"github.com/central-university-dev/go-tubecord/internal/common/metrics"
	"github.com/central-university-dev/go-tubecord/internal/config"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

const youtubeRequestTimeout = 10 * time.Second

// YouTubeClient ходит в YouTube Data API v3. HTTP клиент подменяется на resty
// с повторами и circuit breaker, ключ передается параметром запроса.
type YouTubeClient struct {
	service *youtube.Service
	apiKey  string
	logger  *slog.Logger
}

func NewYouTubeClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*YouTubeClient, error) {
	if cfg.YouTubeAPIKey == "" {
		return nil, &customerrors.ErrMissingRequiredField{FieldName: "YOUTUBE_API_KEY"}
	}

	opts := []option.ClientOption{
		option.WithHTTPClient(httputil.CreateResilientStdClient(cfg, logger, "youtube_api",
			httputil.WithTimeout(youtubeRequestTimeout))),
	}

	if cfg.YouTubeAPIBaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.YouTubeAPIBaseURL))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании клиента YouTube API: %w", err)
	}

	return &YouTubeClient{
		service: service,
		apiKey:  cfg.YouTubeAPIKey,
		logger:  logger,
	}, nil
}

func (c *YouTubeClient) VideoMetadata(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, youtubeRequestTimeout)
	defer cancel()

	resp, err := c.service.Videos.List([]string{"snippet", "liveStreamingDetails", "status"}).
		Id(videoID).
		Context(ctx).
		Do(googleapi.QueryParameter("key", c.apiKey))
	if err != nil {
		metrics.RecordMetadataLookup("error")
		return nil, &customerrors.ErrMetadataUnavailable{VideoID: videoID, Cause: err}
	}

	if len(resp.Items) == 0 {
		metrics.RecordMetadataLookup("not_found")
		return &models.VideoMetadata{Found: false}, nil
	}

	metrics.RecordMetadataLookup("found")

	item := resp.Items[0]
	metadata := &models.VideoMetadata{Found: true}

	if item.Snippet != nil {
		metadata.LiveBroadcastContent = item.Snippet.LiveBroadcastContent
	}

	if item.Status != nil {
		metadata.UploadStatus = item.Status.UploadStatus
	}

	if details := item.LiveStreamingDetails; details != nil {
		metadata.HasLiveDetails = true
		metadata.ScheduledStartTime = c.parseTime(videoID, "scheduledStartTime", details.ScheduledStartTime)
		metadata.ActualStartTime = c.parseTime(videoID, "actualStartTime", details.ActualStartTime)
		metadata.ActualEndTime = c.parseTime(videoID, "actualEndTime", details.ActualEndTime)
	}

	return metadata, nil
}

func (c *YouTubeClient) ChannelInfo(ctx context.Context, channelID string) (*models.ChannelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, youtubeRequestTimeout)
	defer cancel()

	resp, err := c.service.Channels.List([]string{"snippet"}).
		Id(channelID).
		Fields("items/snippet/customUrl", "items/snippet/title").
		Context(ctx).
		Do(googleapi.QueryParameter("key", c.apiKey))
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе канала %s в YouTube API: %w", channelID, err)
	}

	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return nil, &customerrors.ErrChannelHandleNotFound{ChannelID: channelID}
	}

	snippet := resp.Items[0].Snippet

	return &models.ChannelInfo{
		ChannelID: channelID,
		CustomURL: snippet.CustomUrl,
		Title:     snippet.Title,
	}, nil
}

func (c *YouTubeClient) parseTime(videoID, field, value string) *time.Time {
	if value == "" {
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		c.logger.Warn("Некорректное время в метаданных видео",
			"video_id", videoID,
			"field", field,
			"value", value,
		)

		return nil
	}

	parsed = parsed.UTC()

	return &parsed
}
