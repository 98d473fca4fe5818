package community

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/central-university-dev/go-tubecord/internal/domain/clients"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/central-university-dev/go-tubecord/internal/domain/repositories"
)

var (
	canonicalLinkPattern = regexp.MustCompile(`<link rel="canonical" href="https://www\.youtube\.com/@([^"]+)"`)
	ogTitlePattern       = regexp.MustCompile(`<meta property="og:title" content="([^"]+)"`)

	// Порядок важен: первые шаблоны точнее.
	handlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`"webCommandMetadata":\{"url":"/(@[^/"]+)`),
		regexp.MustCompile(`"canonicalChannelUrl":"https://www\.youtube\.com/(@[^"]+)"`),
		regexp.MustCompile(`"canonicalBaseUrl":"/(@[^"\\]+)"`),
		regexp.MustCompile(`"vanityChannelUrl":"https://www\.youtube\.com/(@[^"]+)"`),
	}
)

// HandleResolver определяет @handle канала: кэш, затем YouTube Data API, затем страница канала.
type HandleResolver struct {
	store  repositories.ChannelHandleRepository
	info   clients.ChannelInfoClient
	page   clients.ChannelPageFetcher
	now    func() time.Time
	logger *slog.Logger
}

// NewHandleResolver принимает nil info, если ключ API не настроен.
func NewHandleResolver(
	store repositories.ChannelHandleRepository,
	info clients.ChannelInfoClient,
	page clients.ChannelPageFetcher,
	logger *slog.Logger,
) *HandleResolver {
	return &HandleResolver{
		store:  store,
		info:   info,
		page:   page,
		now:    time.Now,
		logger: logger,
	}
}

// Resolve возвращает хэндл с префиксом "@" или пустую строку, если определить его не удалось.
func (r *HandleResolver) Resolve(ctx context.Context, channelID string) string {
	if cached := r.cached(ctx, channelID); cached != nil && !cached.IsStale(r.now()) {
		r.logger.Debug("Хэндл канала взят из кэша", "channelID", channelID, "handle", cached.Handle)
		return cached.Handle
	}

	r.logger.Info("Определение хэндла канала", "channelID", channelID)

	handle, name := r.resolveViaAPI(ctx, channelID)
	if handle == "" {
		handle, name = r.resolveViaPage(ctx, channelID)
	}

	if handle == "" {
		r.logger.Warn("Не удалось определить хэндл канала", "channelID", channelID)
		return ""
	}

	now := r.now().UTC()

	err := r.store.Save(ctx, &models.ChannelHandle{
		ChannelID:    channelID,
		Handle:       handle,
		ChannelName:  name,
		ResolvedAt:   now,
		LastVerified: now,
	})
	if err != nil {
		r.logger.Error("Ошибка при сохранении хэндла канала", "channelID", channelID, "error", err)
	}

	return handle
}

// ChannelURL предпочитает адрес с хэндлом, с ним скрапер работает надежнее.
func (r *HandleResolver) ChannelURL(ctx context.Context, channelID string) string {
	return models.ChannelURL(channelID, r.Resolve(ctx, channelID))
}

func (r *HandleResolver) ChannelName(ctx context.Context, channelID string) string {
	if cached := r.cached(ctx, channelID); cached != nil && cached.ChannelName != "" {
		return cached.ChannelName
	}

	return "Channel " + channelID
}

func (r *HandleResolver) cached(ctx context.Context, channelID string) *models.ChannelHandle {
	handle, err := r.store.Get(ctx, channelID)
	if err != nil {
		if !errors.Is(err, &customerrors.ErrChannelHandleNotFound{}) {
			r.logger.Warn("Ошибка при чтении хэндла из кэша", "channelID", channelID, "error", err)
		}

		return nil
	}

	return handle
}

func (r *HandleResolver) resolveViaAPI(ctx context.Context, channelID string) (handle, name string) {
	if r.info == nil {
		return "", ""
	}

	info, err := r.info.ChannelInfo(ctx, channelID)
	if err != nil {
		r.logger.Warn("YouTube API не вернул данные канала", "channelID", channelID, "error", err)
		return "", ""
	}

	if info.CustomURL == "" {
		return "", info.Title
	}

	return "@" + strings.TrimPrefix(info.CustomURL, "@"), info.Title
}

func (r *HandleResolver) resolveViaPage(ctx context.Context, channelID string) (handle, name string) {
	if r.page == nil {
		return "", ""
	}

	content, err := r.page.FetchChannelPage(ctx, channelID)
	if err != nil {
		r.logger.Warn("Не удалось загрузить страницу канала", "channelID", channelID, "error", err)
		return "", ""
	}

	return ExtractHandle(content, channelID)
}

// ExtractHandle ищет хэндл в HTML страницы канала, имя канала берется из og:title.
func ExtractHandle(content, channelID string) (handle, name string) {
	if title := ogTitlePattern.FindStringSubmatch(content); title != nil {
		name = html.UnescapeString(title[1])
	}

	if match := canonicalLinkPattern.FindStringSubmatch(content); match != nil {
		return "@" + match[1], name
	}

	for _, pattern := range handlePatterns {
		if match := pattern.FindStringSubmatch(content); match != nil {
			return match[1], name
		}
	}

	loose := regexp.MustCompile(`(@[A-Za-z0-9_.\-]+)"[^\n]+channelId":"` + regexp.QuoteMeta(channelID) + `"`)
	if match := loose.FindStringSubmatch(content); match != nil {
		return match[1], name
	}

	return "", name
}
