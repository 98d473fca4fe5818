package community

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/central-university-dev/go-tubecord/internal/common/metrics"
	"github.com/central-university-dev/go-tubecord/internal/domain/clients"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/central-university-dev/go-tubecord/internal/domain/repositories"
)

const maxErrorBackoff = time.Minute

type Dispatcher interface {
	Dispatch(ctx context.Context, notification *models.Notification) (int, error)
}

type Transactor interface {
	WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error
}

type ChannelResolver interface {
	ChannelURL(ctx context.Context, channelID string) string
	ChannelName(ctx context.Context, channelID string) string
}

// Callbacks вызываются синхронно из цикла проверки. Любое поле может быть nil.
type Callbacks struct {
	OnPostsFound    func(posts []*models.CommunityPost)
	OnCheckComplete func(checkedAt time.Time, newPosts int)
	OnError         func(err error)
}

type Status struct {
	Running          bool       `json:"running"`
	Checking         bool       `json:"checking"`
	ChannelID        string     `json:"channel_id"`
	IntervalSeconds  float64    `json:"interval_seconds"`
	LastCheck        *time.Time `json:"last_check"`
	LastNewPosts     int        `json:"last_new_posts"`
	LastError        string     `json:"last_error,omitempty"`
	NextCheckSeconds *float64   `json:"next_check_seconds"`
}

// Coordinator периодически опрашивает вкладку сообщества канала и уведомляет только
// о самом новом из неотправленных постов. Проверки сериализованы мьютексом cycleMu.
type Coordinator struct {
	channelID string
	interval  time.Duration
	limit     int

	scraper    clients.CommunityScraper
	resolver   ChannelResolver
	posts      repositories.CommunityPostRepository
	txManager  Transactor
	dispatcher Dispatcher
	callbacks  Callbacks
	now        func() time.Time
	logger     *slog.Logger

	cycleMu sync.Mutex

	mu           sync.RWMutex
	running      bool
	checking     bool
	lastCheck    time.Time
	lastNewPosts int
	lastErr      error
	nextCheck    time.Time
}

func NewCoordinator(
	channelID string,
	interval time.Duration,
	limit int,
	scraper clients.CommunityScraper,
	resolver ChannelResolver,
	posts repositories.CommunityPostRepository,
	txManager Transactor,
	dispatcher Dispatcher,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		channelID:  channelID,
		interval:   interval,
		limit:      limit,
		scraper:    scraper,
		resolver:   resolver,
		posts:      posts,
		txManager:  txManager,
		dispatcher: dispatcher,
		now:        time.Now,
		logger:     logger,
	}
}

func (c *Coordinator) SetCallbacks(callbacks Callbacks) {
	c.callbacks = callbacks
}

// Run выполняет первую проверку сразу и затем повторяет их, пока не отменен ctx.
func (c *Coordinator) Run(ctx context.Context) {
	c.setRunning(true)
	defer c.setRunning(false)

	c.logger.Info("Запуск опроса постов сообщества",
		"channelID", c.channelID,
		"interval", c.interval,
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Опрос постов сообщества остановлен")
			return
		case <-timer.C:
		}

		wait := c.interval

		if _, err := c.Check(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}

			wait = min(c.interval, maxErrorBackoff)
		}

		c.mu.Lock()
		c.nextCheck = c.now().Add(wait)
		c.mu.Unlock()

		timer.Reset(wait)
	}
}

// Check выполняет один цикл проверки, дожидаясь завершения текущего.
func (c *Coordinator) Check(ctx context.Context) (int, error) {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	return c.check(ctx)
}

// ForceCheck запускает проверку немедленно, но не параллельно с уже идущей.
func (c *Coordinator) ForceCheck(ctx context.Context) (int, error) {
	if !c.cycleMu.TryLock() {
		return 0, &customerrors.ErrCheckInProgress{}
	}
	defer c.cycleMu.Unlock()

	c.logger.Info("Принудительная проверка постов сообщества")

	return c.check(ctx)
}

func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := Status{
		Running:         c.running,
		Checking:        c.checking,
		ChannelID:       c.channelID,
		IntervalSeconds: c.interval.Seconds(),
		LastNewPosts:    c.lastNewPosts,
	}

	if !c.lastCheck.IsZero() {
		lastCheck := c.lastCheck
		status.LastCheck = &lastCheck
	}

	if c.lastErr != nil {
		status.LastError = c.lastErr.Error()
	}

	if c.running && !c.nextCheck.IsZero() {
		next := max(c.nextCheck.Sub(c.now()).Seconds(), 0)
		status.NextCheckSeconds = &next
	}

	return status
}

func (c *Coordinator) check(ctx context.Context) (int, error) {
	c.setChecking(true)
	defer c.setChecking(false)

	start := c.now()

	channelURL := c.resolver.ChannelURL(ctx, c.channelID)

	raws, err := c.scraper.Fetch(ctx, channelURL, c.limit)
	if err != nil {
		c.logger.Error("Ошибка при получении постов сообщества",
			"channelURL", channelURL,
			"error", err,
		)
		c.finish(start, 0, err)
		metrics.RecordCommunityCheck("error", 0)

		if c.callbacks.OnError != nil {
			c.callbacks.OnError(err)
		}

		return 0, err
	}

	channelName := c.resolver.ChannelName(ctx, c.channelID)
	newPosts := c.storeNew(ctx, raws, channelName)

	c.logger.Info("Проверка постов сообщества завершена",
		"fetched", len(raws),
		"new", len(newPosts),
		"duration", c.now().Sub(start),
	)

	if len(newPosts) > 0 && c.callbacks.OnPostsFound != nil {
		c.callbacks.OnPostsFound(newPosts)
	}

	c.notifyPending(ctx, newPosts, channelName)

	c.finish(start, len(newPosts), nil)
	metrics.RecordCommunityCheck("success", len(newPosts))

	if c.callbacks.OnCheckComplete != nil {
		c.callbacks.OnCheckComplete(start, len(newPosts))
	}

	return len(newPosts), nil
}

// storeNew сохраняет посты и возвращает те, что встретились впервые, от новых к старым.
func (c *Coordinator) storeNew(ctx context.Context, raws []models.RawPost, channelName string) []*models.CommunityPost {
	now := c.now()
	newPosts := make([]*models.CommunityPost, 0, len(raws))

	for i := range raws {
		post := ParseRawPost(&raws[i], c.channelID, channelName, now)

		inserted, err := c.posts.Insert(ctx, post)
		if err != nil {
			c.logger.Error("Ошибка при сохранении поста сообщества",
				"postID", post.PostID,
				"error", err,
			)

			continue
		}

		if inserted {
			newPosts = append(newPosts, post)
		}
	}

	sort.SliceStable(newPosts, func(i, j int) bool {
		return newPosts[i].PublishedTime.After(newPosts[j].PublishedTime)
	})

	return newPosts
}

// notifyPending отправляет самый новый из неотправленных постов канала, включая посты
// прошлых циклов, доставка которых не удалась. Остальные отмечаются без отправки.
func (c *Coordinator) notifyPending(ctx context.Context, newPosts []*models.CommunityPost, channelName string) {
	pending, err := c.posts.FindUnnotified(ctx, c.channelID)
	if err != nil {
		c.logger.Error("Ошибка при получении неотправленных постов", "error", err)
		return
	}

	if len(pending) == 0 {
		return
	}

	newest := pending[0]

	if len(pending) > 1 {
		superseded := make([]string, 0, len(pending)-1)
		for _, post := range pending[1:] {
			superseded = append(superseded, post.PostID)
		}

		err := c.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			return c.posts.MarkNotified(ctx, superseded...)
		})
		if err != nil {
			c.logger.Error("Ошибка при отметке пропущенных постов", "error", err)
		} else {
			markNotified(newPosts, superseded...)
		}
	}

	if newest.ChannelName == "" {
		newest.ChannelName = channelName
	}

	delivered, err := c.dispatcher.Dispatch(ctx, models.NewCommunityNotification(newest))

	switch {
	case err != nil:
		c.logger.Error("Не удалось отправить пост сообщества, повтор в следующем цикле",
			"postID", newest.PostID,
			"error", err,
		)
	case delivered == 0:
		c.logger.Warn("Пост сообщества не отправлен: нет вебхуков", "postID", newest.PostID)
	default:
		if err := c.posts.MarkNotified(ctx, newest.PostID); err != nil {
			c.logger.Error("Ошибка при отметке поста как отправленного",
				"postID", newest.PostID,
				"error", err,
			)

			return
		}

		markNotified(newPosts, newest.PostID)
	}
}

func markNotified(posts []*models.CommunityPost, postIDs ...string) {
	for _, post := range posts {
		if slices.Contains(postIDs, post.PostID) {
			post.Notified = true
		}
	}
}

func (c *Coordinator) finish(checkedAt time.Time, newPosts int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastCheck = checkedAt
	c.lastNewPosts = newPosts
	c.lastErr = err
}

func (c *Coordinator) setRunning(running bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.running = running
	if !running {
		c.nextCheck = time.Time{}
	}
}

func (c *Coordinator) setChecking(checking bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checking = checking
}

// IsBusy сообщает, что ошибка означает уже идущую проверку.
func IsBusy(err error) bool {
	return errors.Is(err, &customerrors.ErrCheckInProgress{})
}
