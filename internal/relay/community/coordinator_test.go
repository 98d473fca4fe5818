package community_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-tubecord/internal/domain/clients/mocks"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	repomocks "github.com/central-university-dev/go-tubecord/internal/domain/repositories/mocks"
	"github.com/central-university-dev/go-tubecord/internal/relay/community"
	servicemocks "github.com/central-university-dev/go-tubecord/internal/relay/service/mocks"
	txsmocks "github.com/central-university-dev/go-tubecord/pkg/txs/mocks"
)

const channelURL = "https://www.youtube.com/@test"

type staticResolver struct{}

func (staticResolver) ChannelURL(context.Context, string) string  { return channelURL }
func (staticResolver) ChannelName(context.Context, string) string { return "Test Channel" }

type coordinatorDeps struct {
	scraper    *mocks.CommunityScraper
	posts      *repomocks.CommunityPostRepository
	txManager  *txsmocks.TxManager
	dispatcher *servicemocks.Dispatcher
}

func newCoordinator(t *testing.T, interval time.Duration) (*community.Coordinator, *coordinatorDeps) {
	t.Helper()

	deps := &coordinatorDeps{
		scraper:    mocks.NewCommunityScraper(t),
		posts:      repomocks.NewCommunityPostRepository(t),
		txManager:  txsmocks.NewTxManager(t),
		dispatcher: servicemocks.NewDispatcher(t),
	}

	coordinator := community.NewCoordinator(channelID, interval, 20,
		deps.scraper, staticResolver{}, deps.posts, deps.txManager, deps.dispatcher, discardLogger())

	return coordinator, deps
}

func rawPost(id, timeSince string) models.RawPost {
	return models.RawPost{
		PostLink:  "https://www.youtube.com/post/" + id,
		Text:      "Пост " + id,
		TimeSince: timeSince,
	}
}

func storedPost(id string, published time.Time) *models.CommunityPost {
	return &models.CommunityPost{
		PostID:        id,
		ChannelID:     channelID,
		ChannelName:   "Test Channel",
		Content:       "Пост " + id,
		PublishedTime: published,
		URL:           "https://www.youtube.com/post/" + id,
	}
}

func expectTransaction(txManager *txsmocks.TxManager) {
	txManager.On("WithTransaction", mock.Anything, mock.AnythingOfType("func(context.Context) error")).
		Run(func(args mock.Arguments) {
			fn := args.Get(1).(func(context.Context) error)
			_ = fn(args.Get(0).(context.Context))
		}).Return(nil).Once()
}

func TestCoordinator_Check_NotifiesOnlyNewest(t *testing.T) {
	t.Parallel()

	coordinator, deps := newCoordinator(t, time.Minute)
	ctx := context.Background()

	deps.scraper.On("Fetch", mock.Anything, channelURL, 20).Return([]models.RawPost{
		rawPost("old", "3 days ago"),
		rawPost("newest", "1 hour ago"),
		rawPost("seen", "5 days ago"),
		rawPost("middle", "2 days ago"),
	}, nil).Once()

	deps.posts.On("Insert", mock.Anything, mock.MatchedBy(func(p *models.CommunityPost) bool {
		return p.PostID != "seen"
	})).Return(true, nil).Times(3)
	deps.posts.On("Insert", mock.Anything, mock.MatchedBy(func(p *models.CommunityPost) bool {
		return p.PostID == "seen"
	})).Return(false, nil).Once()

	now := time.Now()
	deps.posts.On("FindUnnotified", mock.Anything, channelID).Return([]*models.CommunityPost{
		storedPost("newest", now.Add(-time.Hour)),
		storedPost("middle", now.Add(-48*time.Hour)),
		storedPost("old", now.Add(-72*time.Hour)),
	}, nil).Once()

	expectTransaction(deps.txManager)
	deps.posts.On("MarkNotified", mock.Anything, []string{"middle", "old"}).Return(nil).Once()

	deps.dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Type == models.TypeCommunityPost && n.Post.PostID == "newest" && n.Post.ChannelName == "Test Channel"
	})).Return(1, nil).Once()
	deps.posts.On("MarkNotified", mock.Anything, []string{"newest"}).Return(nil).Once()

	var (
		found     []*models.CommunityPost
		completed int
	)

	coordinator.SetCallbacks(community.Callbacks{
		OnPostsFound:    func(posts []*models.CommunityPost) { found = posts },
		OnCheckComplete: func(_ time.Time, newPosts int) { completed = newPosts },
	})

	newPosts, err := coordinator.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, newPosts)
	assert.Equal(t, 3, completed)
	require.Len(t, found, 3)
	assert.Equal(t, "newest", found[0].PostID)
	for _, post := range found {
		assert.Truef(t, post.Notified, "пост %s должен быть отмечен", post.PostID)
	}

	status := coordinator.Status()
	assert.Equal(t, 3, status.LastNewPosts)
	assert.NotNil(t, status.LastCheck)
	assert.Empty(t, status.LastError)
	assert.False(t, status.Checking)
}

func TestCoordinator_Check_FailedDeliveryRetriedNextCycle(t *testing.T) {
	t.Parallel()

	coordinator, deps := newCoordinator(t, time.Minute)
	ctx := context.Background()
	pending := storedPost("only", time.Now().Add(-time.Hour))

	deps.scraper.On("Fetch", mock.Anything, channelURL, 20).Return([]models.RawPost{rawPost("only", "1 hour ago")}, nil).Twice()
	deps.posts.On("Insert", mock.Anything, mock.Anything).Return(true, nil).Once()
	deps.posts.On("Insert", mock.Anything, mock.Anything).Return(false, nil).Once()
	deps.posts.On("FindUnnotified", mock.Anything, channelID).Return([]*models.CommunityPost{pending}, nil).Twice()

	deps.dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Post.PostID == "only"
	})).Return(0, &customerrors.ErrDeliveryFailed{NotificationID: "only", Attempts: 1}).Once()

	newPosts, err := coordinator.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, newPosts)
	deps.posts.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything)

	deps.dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Post.PostID == "only"
	})).Return(1, nil).Once()
	deps.posts.On("MarkNotified", mock.Anything, []string{"only"}).Return(nil).Once()

	newPosts, err = coordinator.Check(ctx)
	require.NoError(t, err)
	assert.Zero(t, newPosts)
	deps.dispatcher.AssertNumberOfCalls(t, "Dispatch", 2)
}

func TestCoordinator_Check_NewerPostSupersedesFailedOne(t *testing.T) {
	t.Parallel()

	coordinator, deps := newCoordinator(t, time.Minute)
	now := time.Now()

	deps.scraper.On("Fetch", mock.Anything, channelURL, 20).Return([]models.RawPost{
		rawPost("fresh", "1 minute ago"),
		rawPost("failed", "1 hour ago"),
	}, nil).Once()
	deps.posts.On("Insert", mock.Anything, mock.MatchedBy(func(p *models.CommunityPost) bool {
		return p.PostID == "fresh"
	})).Return(true, nil).Once()
	deps.posts.On("Insert", mock.Anything, mock.MatchedBy(func(p *models.CommunityPost) bool {
		return p.PostID == "failed"
	})).Return(false, nil).Once()
	deps.posts.On("FindUnnotified", mock.Anything, channelID).Return([]*models.CommunityPost{
		storedPost("fresh", now.Add(-time.Minute)),
		storedPost("failed", now.Add(-time.Hour)),
	}, nil).Once()

	expectTransaction(deps.txManager)
	deps.posts.On("MarkNotified", mock.Anything, []string{"failed"}).Return(nil).Once()
	deps.dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Post.PostID == "fresh"
	})).Return(2, nil).Once()
	deps.posts.On("MarkNotified", mock.Anything, []string{"fresh"}).Return(nil).Once()

	newPosts, err := coordinator.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, newPosts)
}

func TestCoordinator_Check_PendingLookupError(t *testing.T) {
	t.Parallel()

	coordinator, deps := newCoordinator(t, time.Minute)

	deps.scraper.On("Fetch", mock.Anything, channelURL, 20).Return([]models.RawPost{rawPost("only", "1 hour ago")}, nil).Once()
	deps.posts.On("Insert", mock.Anything, mock.Anything).Return(true, nil).Once()
	deps.posts.On("FindUnnotified", mock.Anything, channelID).
		Return(nil, &customerrors.ErrSQLExecution{Operation: "FindUnnotified"}).Once()

	newPosts, err := coordinator.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, newPosts)
	deps.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestCoordinator_Check_NothingNew(t *testing.T) {
	t.Parallel()

	coordinator, deps := newCoordinator(t, time.Minute)

	deps.scraper.On("Fetch", mock.Anything, channelURL, 20).Return([]models.RawPost{rawPost("seen", "1 day ago")}, nil).Once()
	deps.posts.On("Insert", mock.Anything, mock.Anything).Return(false, nil).Once()
	deps.posts.On("FindUnnotified", mock.Anything, channelID).Return([]*models.CommunityPost{}, nil).Once()

	newPosts, err := coordinator.Check(context.Background())
	require.NoError(t, err)
	assert.Zero(t, newPosts)
	deps.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestCoordinator_Check_ScraperError(t *testing.T) {
	t.Parallel()

	coordinator, deps := newCoordinator(t, time.Minute)

	scraperErr := &customerrors.ErrScraperFailed{ChannelURL: channelURL}
	deps.scraper.On("Fetch", mock.Anything, channelURL, 20).Return(nil, scraperErr).Once()

	var reported error

	coordinator.SetCallbacks(community.Callbacks{OnError: func(err error) { reported = err }})

	_, err := coordinator.Check(context.Background())
	require.ErrorIs(t, err, scraperErr)
	assert.Equal(t, scraperErr, reported)
	assert.NotEmpty(t, coordinator.Status().LastError)
}

func TestCoordinator_ForceCheckWhileBusy(t *testing.T) {
	t.Parallel()

	coordinator, deps := newCoordinator(t, time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})

	deps.scraper.On("Fetch", mock.Anything, channelURL, 20).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]models.RawPost{}, nil).Once()
	deps.posts.On("FindUnnotified", mock.Anything, channelID).Return(nil, nil).Once()

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		_, err := coordinator.Check(context.Background())
		assert.NoError(t, err)
	}()

	<-started

	assert.True(t, coordinator.Status().Checking)

	_, err := coordinator.ForceCheck(context.Background())
	require.ErrorIs(t, err, &customerrors.ErrCheckInProgress{})
	assert.True(t, community.IsBusy(err))

	close(release)
	wg.Wait()
}

func TestCoordinator_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	coordinator, deps := newCoordinator(t, time.Hour)

	checked := make(chan struct{}, 1)

	deps.scraper.On("Fetch", mock.Anything, channelURL, 20).
		Run(func(mock.Arguments) { checked <- struct{}{} }).
		Return([]models.RawPost{}, nil).Once()
	deps.posts.On("FindUnnotified", mock.Anything, channelID).Return(nil, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		coordinator.Run(ctx)
		close(done)
	}()

	select {
	case <-checked:
	case <-time.After(5 * time.Second):
		t.Fatal("первая проверка не была выполнена")
	}

	require.Eventually(t, func() bool {
		status := coordinator.Status()
		return status.Running && status.NextCheckSeconds != nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("цикл опроса не остановился после отмены контекста")
	}

	assert.False(t, coordinator.Status().Running)
}
