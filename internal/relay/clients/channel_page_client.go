package clients

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/central-university-dev/go-tubecord/internal/common/httputil"
	"github.com/central-university-dev/go-tubecord/internal/config"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
)

const (
	defaultChannelPageBaseURL = "https://www.youtube.com"
	channelPageTimeout        = 15 * time.Second
	browserUserAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

type ChannelPageClient struct {
	client  *resty.Client
	baseURL string
	logger  *slog.Logger
}

func NewChannelPageClient(baseURL string, cfg *config.Config, logger *slog.Logger) *ChannelPageClient {
	if baseURL == "" {
		baseURL = defaultChannelPageBaseURL
	}

	client := httputil.CreateResilientHTTPClient(cfg, logger, "youtube_page", httputil.WithTimeout(channelPageTimeout))

	return &ChannelPageClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (c *ChannelPageClient) FetchChannelPage(ctx context.Context, channelID string) (string, error) {
	url := fmt.Sprintf("%s/channel/%s", c.baseURL, channelID)

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", browserUserAgent).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("ошибка при загрузке страницы канала %s: %w", channelID, err)
	}

	if resp.StatusCode() != 200 {
		return "", &customerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	return resp.String(), nil
}
