package actors

import (
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goorm-board/internal/config"
	"goorm-board/internal/events"
	"goorm-board/internal/gate"
	"goorm-board/internal/models"
	"goorm-board/internal/transport"
	"goorm-board/internal/utils"
)

func spawnCommentActor(api transport.API, cfg *config.Config) (*actor.ActorSystem, *actor.PID, *utils.MetricsCollector) {
	logger := testLogger()
	metrics := utils.NewMetricsCollector()
	hub := events.NewHub(logger)
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewCommentActor(api, cfg, gate.SystemClock(), metrics, hub, logger)
	})
	pid := system.Root.Spawn(props)
	return system, pid, metrics
}

func parentOf(id int64) *int64 { return &id }

func seedCommentPages(api *stubAPI) {
	now := time.Now()
	api.setCommentPage(1, &transport.CommentPage{
		Comments: []models.Comment{
			{ID: 1, PostID: 7, Author: "alice", Content: "great write-up", Likes: 5, CreatedAt: now, UpdatedAt: now},
			{ID: 2, PostID: 7, Author: "bob", Content: "agreed", ParentID: parentOf(1), CreatedAt: now, UpdatedAt: now},
			{ID: 3, PostID: 7, Author: "carol", Content: "one question though", CreatedAt: now, UpdatedAt: now},
		},
		Pagination: models.Pagination{CurrentPage: 1, TotalPages: 2, TotalItems: 12, ItemsPerPage: 10},
	})
	api.setCommentPage(2, &transport.CommentPage{
		Comments: []models.Comment{
			{ID: 4, PostID: 7, Author: "dave", Content: "late reply", CreatedAt: now, UpdatedAt: now},
		},
		Pagination: models.Pagination{CurrentPage: 2, TotalPages: 2, TotalItems: 12, ItemsPerPage: 10},
	})
}

func loadThread(t *testing.T, system *actor.ActorSystem, pid *actor.PID, postID int64) *ThreadSnapshot {
	t.Helper()
	future := system.Root.RequestFuture(pid, &LoadCommentsMsg{PostID: postID}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)
	snapshot, ok := result.(*ThreadSnapshot)
	require.True(t, ok, "expected thread snapshot, got %T", result)
	return snapshot
}

func commentFetches(api *stubAPI) int {
	api.mu.Lock()
	defer api.mu.Unlock()
	return api.commentCalls
}

func TestLoadCommentsResolvesThread(t *testing.T) {
	api := newStubAPI()
	seedCommentPages(api)
	system, pid, _ := spawnCommentActor(api, testConfig())

	snapshot := loadThread(t, system, pid, 7)

	assert.Equal(t, int64(7), snapshot.PostID)
	assert.Equal(t, 1, snapshot.Page)
	assert.Equal(t, 12, snapshot.Pagination.TotalItems)

	require.Len(t, snapshot.Thread, 2)
	assert.Equal(t, int64(1), snapshot.Thread[0].ID)
	require.Len(t, snapshot.Thread[0].Replies, 1)
	assert.Equal(t, int64(2), snapshot.Thread[0].Replies[0].ID)
	assert.Equal(t, int64(3), snapshot.Thread[1].ID)
}

func TestCommentPagingBounds(t *testing.T) {
	api := newStubAPI()
	seedCommentPages(api)
	system, pid, _ := spawnCommentActor(api, testConfig())

	snapshot := loadThread(t, system, pid, 7)
	assert.Equal(t, 1, snapshot.Page)
	assert.Equal(t, 1, commentFetches(api))

	// Backing up from the first page is a no-op, served from cache.
	result, err := system.Root.RequestFuture(pid, &PrevCommentPageMsg{PostID: 7}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.Equal(t, 1, result.(*ThreadSnapshot).Page)
	assert.Equal(t, 1, commentFetches(api))

	result, err = system.Root.RequestFuture(pid, &NextCommentPageMsg{PostID: 7}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.Equal(t, 2, result.(*ThreadSnapshot).Page)
	assert.Equal(t, 2, commentFetches(api))

	// Advancing past the last page is a no-op too.
	result, err = system.Root.RequestFuture(pid, &NextCommentPageMsg{PostID: 7}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.Equal(t, 2, result.(*ThreadSnapshot).Page)
	assert.Equal(t, 2, commentFetches(api))

	// Returning to a previously fetched page hits the cache.
	result, err = system.Root.RequestFuture(pid, &PrevCommentPageMsg{PostID: 7}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.Equal(t, 1, result.(*ThreadSnapshot).Page)
	assert.Equal(t, 2, commentFetches(api))
}

func TestCreateCommentValidatedLocally(t *testing.T) {
	api := newStubAPI()
	seedCommentPages(api)
	system, pid, _ := spawnCommentActor(api, testConfig())

	result, err := system.Root.RequestFuture(pid, &CreateCommentMsg{PostID: 7, Content: "   \n\t"}, 5*time.Second).Result()
	require.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected validation error, got %T", result)
	assert.Equal(t, utils.ErrValidation, appErr.Code)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, 0, api.createCommentCalls)
}

func TestCreateCommentInvalidatesThread(t *testing.T) {
	api := newStubAPI()
	seedCommentPages(api)
	system, pid, _ := spawnCommentActor(api, testConfig())

	loadThread(t, system, pid, 7)
	assert.Equal(t, 1, commentFetches(api))

	result, err := system.Root.RequestFuture(pid, &CreateCommentMsg{PostID: 7, Content: "new comment"}, 5*time.Second).Result()
	require.NoError(t, err)
	created, ok := result.(*models.Comment)
	require.True(t, ok, "expected created comment, got %T", result)
	assert.Equal(t, int64(500), created.ID)

	// The next load refetches the page; placement is the server's call.
	loadThread(t, system, pid, 7)
	assert.Equal(t, 2, commentFetches(api))
}

func TestCommentLikeDedupAndToggle(t *testing.T) {
	api := newStubAPI()
	seedCommentPages(api)
	system, pid, metrics := spawnCommentActor(api, testConfig())

	loadThread(t, system, pid, 7)

	first, err := system.Root.RequestFuture(pid, &LikeCommentMsg{CommentID: 1}, 5*time.Second).Result()
	require.NoError(t, err)
	snapshot, ok := first.(*CommentSnapshot)
	require.True(t, ok, "expected comment snapshot, got %T", first)
	assert.Equal(t, 6, snapshot.Comment.Likes)
	assert.True(t, snapshot.Liked)

	second, err := system.Root.RequestFuture(pid, &LikeCommentMsg{CommentID: 1}, 5*time.Second).Result()
	require.NoError(t, err)
	appErr, ok := second.(*utils.AppError)
	require.True(t, ok, "expected rejection, got %T", second)
	assert.Equal(t, utils.ErrDuplicate, appErr.Code)
	assert.Equal(t, uint64(1), metrics.DedupRejections("like_comment"))

	// Settled, the toggle reverses.
	assert.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.commentLikeCalls == 1
	}, 2*time.Second, 5*time.Millisecond)
	system.Root.Send(pid, &settleCommentLikeMsg{CommentID: 1})

	third, err := system.Root.RequestFuture(pid, &LikeCommentMsg{CommentID: 1}, 5*time.Second).Result()
	require.NoError(t, err)
	snapshot, ok = third.(*CommentSnapshot)
	require.True(t, ok, "expected comment snapshot, got %T", third)
	assert.Equal(t, 5, snapshot.Comment.Likes)
	assert.False(t, snapshot.Liked)
}

func TestCommentUnlikeAfterServerZeroKeepsFloor(t *testing.T) {
	api := newStubAPI()
	seedCommentPages(api)
	api.fixedCommentLikes = fixedCount(0)
	system, pid, _ := spawnCommentActor(api, testConfig())

	loadThread(t, system, pid, 7)

	first, err := system.Root.RequestFuture(pid, &LikeCommentMsg{CommentID: 2}, 5*time.Second).Result()
	require.NoError(t, err)
	snapshot, ok := first.(*CommentSnapshot)
	require.True(t, ok, "expected comment snapshot, got %T", first)
	assert.Equal(t, 1, snapshot.Comment.Likes)

	// Wait for the confirmation to reconcile the reply's count to zero.
	assert.Eventually(t, func() bool {
		future := system.Root.RequestFuture(pid, &LoadCommentsMsg{PostID: 7}, time.Second)
		result, err := future.Result()
		if err != nil {
			return false
		}
		thread, ok := result.(*ThreadSnapshot)
		if !ok || len(thread.Thread) == 0 {
			return false
		}
		for _, reply := range thread.Thread[0].Replies {
			if reply.ID == 2 {
				return reply.Likes == 0
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	system.Root.Send(pid, &settleCommentLikeMsg{CommentID: 2})

	// Unliking a comment already at zero must not go negative.
	result, err := system.Root.RequestFuture(pid, &LikeCommentMsg{CommentID: 2}, 5*time.Second).Result()
	require.NoError(t, err)
	snapshot, ok = result.(*CommentSnapshot)
	require.True(t, ok, "expected comment snapshot, got %T", result)
	assert.Equal(t, 0, snapshot.Comment.Likes)
	assert.False(t, snapshot.Liked)
}

func TestEditCommentPatchesInPlace(t *testing.T) {
	api := newStubAPI()
	seedCommentPages(api)
	system, pid, _ := spawnCommentActor(api, testConfig())

	loadThread(t, system, pid, 7)

	result, err := system.Root.RequestFuture(pid, &EditCommentMsg{CommentID: 3, Content: "edited question"}, 5*time.Second).Result()
	require.NoError(t, err)
	updated, ok := result.(*models.Comment)
	require.True(t, ok, "expected updated comment, got %T", result)
	assert.Equal(t, "edited question", updated.Content)

	// Content swaps in place without invalidating the page.
	snapshot := loadThread(t, system, pid, 7)
	assert.Equal(t, 1, commentFetches(api))
	require.Len(t, snapshot.Thread, 2)
	assert.Equal(t, "edited question", snapshot.Thread[1].Content)
}

func TestDeleteCommentInvalidatesThread(t *testing.T) {
	api := newStubAPI()
	seedCommentPages(api)
	system, pid, _ := spawnCommentActor(api, testConfig())

	loadThread(t, system, pid, 7)

	result, err := system.Root.RequestFuture(pid, &DeleteCommentMsg{CommentID: 2}, 5*time.Second).Result()
	require.NoError(t, err)
	status, ok := result.(*models.StatusResponse)
	require.True(t, ok, "expected status, got %T", result)
	assert.True(t, status.Success)

	loadThread(t, system, pid, 7)
	assert.Equal(t, 2, commentFetches(api))
}

func TestLikeUnknownCommentNotFound(t *testing.T) {
	api := newStubAPI()
	seedCommentPages(api)
	system, pid, _ := spawnCommentActor(api, testConfig())

	result, err := system.Root.RequestFuture(pid, &LikeCommentMsg{CommentID: 404}, 5*time.Second).Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrNotFound, appErr.Code)
}

func TestCommentCount(t *testing.T) {
	api := newStubAPI()
	seedCommentPages(api)
	system, pid, _ := spawnCommentActor(api, testConfig())

	result, err := system.Root.RequestFuture(pid, &CommentCountMsg{PostID: 7}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.Equal(t, 0, result.(int))

	loadThread(t, system, pid, 7)

	result, err = system.Root.RequestFuture(pid, &CommentCountMsg{PostID: 7}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.Equal(t, 12, result.(int))
}
