package actors

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/asynkron/protoactor-go/actor"

	"goorm-board/internal/config"
	"goorm-board/internal/events"
	"goorm-board/internal/gate"
	"goorm-board/internal/models"
	"goorm-board/internal/store"
	"goorm-board/internal/transport"
	"goorm-board/internal/utils"
)

// Message types for Post operations
type (
	ListPostsMsg struct {
		Section models.Section // local filter; empty means every section
		Filters models.PostFilters
		Refresh bool // bypass the cached page
	}

	GetPostMsg struct {
		PostID int64
	}

	CreatePostMsg struct {
		Draft transport.PostDraft
	}

	EditPostMsg struct {
		PostID int64
		Draft  transport.PostDraft
	}

	DeletePostMsg struct {
		PostID int64
	}

	LikePostMsg struct {
		PostID int64
	}

	ViewPostMsg struct {
		PostID int64
	}

	PinPostMsg struct {
		PostID int64
	}

	UnpinPostMsg struct {
		PostID int64
	}

	GetCountsMsg struct{}

	// StoreSnapshotMsg asks for every post the session holds, newest
	// first, for renderers that show the whole store rather than a page.
	StoreSnapshotMsg struct{}

	// Confirmation and settle messages the actor sends to itself, so
	// every state mutation happens on the actor's own mailbox thread.
	likeConfirmedMsg struct {
		PostID int64
		Result *transport.LikeResult
		Err    error
	}

	viewConfirmedMsg struct {
		PostID int64
		Result *transport.ViewResult
		Err    error
	}

	settleLikeMsg struct {
		PostID int64
	}
)

// ListSnapshot is a consistent view of one cached list page: pinned
// posts first, then the rest in server order, plus the membership sets
// the renderer needs for icon state.
type ListSnapshot struct {
	Posts      []models.Post
	Pagination models.Pagination
	Liked      map[int64]bool
	Pinned     map[int64]bool
}

// PostSnapshot is a consistent view of one post.
type PostSnapshot struct {
	Post   models.Post
	Liked  bool
	Pinned bool
}

// PostActor owns the post side of the session: the entity store, the
// like/pin membership sets, the cached list pages, and the dedup gate.
// All of it is mutated only from Receive; confirmations and settle
// timers come back as self-messages.
type PostActor struct {
	api      transport.API
	store    *store.PostStore
	liked    *store.IDSet
	pinned   *store.IDSet
	likeGate *gate.Gate

	// listCache maps a filter key to the last fetched page. Counter
	// confirmations are patched into it in place; structural operations
	// clear it entirely.
	listCache map[string]*transport.PostPage

	settle  time.Duration
	timeout time.Duration
	metrics *utils.MetricsCollector
	hub     *events.Hub
	logger  *slog.Logger
}

func NewPostActor(api transport.API, cfg *config.Config, clock gate.Clock, metrics *utils.MetricsCollector, hub *events.Hub, logger *slog.Logger) actor.Actor {
	return &PostActor{
		api:       api,
		store:     store.NewPostStore(),
		liked:     store.NewIDSet(),
		pinned:    store.NewIDSet(),
		likeGate:  gate.New(clock, cfg.Interaction.Cooldown),
		listCache: make(map[string]*transport.PostPage),
		settle:    cfg.Interaction.Settle,
		timeout:   cfg.API.RequestTimeout,
		metrics:   metrics,
		hub:       hub,
		logger:    logger,
	}
}

// Receive handles incoming messages
func (a *PostActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		a.logger.Info("PostActor started", "pid", context.Self().String())

	case *actor.Stopping:
		a.logger.Info("PostActor stopping")

	case *ListPostsMsg:
		a.handleList(context, msg)
	case *GetPostMsg:
		a.handleGet(context, msg)
	case *CreatePostMsg:
		a.handleCreate(context, msg)
	case *EditPostMsg:
		a.handleEdit(context, msg)
	case *DeletePostMsg:
		a.handleDelete(context, msg)
	case *LikePostMsg:
		a.handleLike(context, msg)
	case *ViewPostMsg:
		a.handleView(context, msg)
	case *PinPostMsg:
		a.pinned.Add(msg.PostID)
		context.Respond(&models.StatusResponse{Success: true, Message: "pinned"})
	case *UnpinPostMsg:
		a.pinned.Remove(msg.PostID)
		context.Respond(&models.StatusResponse{Success: true, Message: "unpinned"})
	case *GetCountsMsg:
		context.Respond(a.store.Len())
	case *StoreSnapshotMsg:
		context.Respond(a.store.All())

	case *likeConfirmedMsg:
		a.handleLikeConfirmed(msg)
	case *viewConfirmedMsg:
		a.handleViewConfirmed(msg)
	case *settleLikeMsg:
		a.likeGate.Settle(msg.PostID)

	default:
		a.logger.Debug("PostActor: unknown message", "type", fmt.Sprintf("%T", msg))
	}
}

func cacheKey(f models.PostFilters) string {
	return fmt.Sprintf("%s|%s|%s|%d|%d", f.Category, f.Search, f.SortBy, f.Page, f.Limit)
}

func (a *PostActor) handleList(context actor.Context, msg *ListPostsMsg) {
	startTime := time.Now()
	key := cacheKey(msg.Filters)

	page, cached := a.listCache[key]
	if !cached || msg.Refresh {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), a.timeout)
		defer cancel()

		fetched, err := a.api.ListPosts(ctx, msg.Filters)
		a.metrics.IncrementRequests()
		if err != nil {
			a.metrics.IncrementErrors()
			context.Respond(err)
			return
		}
		for _, p := range fetched.Posts {
			a.store.Put(p)
		}
		a.listCache[key] = fetched
		page = fetched
	}

	context.Respond(a.snapshotList(page, msg.Section))
	a.metrics.AddOperationLatency("list_posts", time.Since(startTime))
}

// snapshotList copies the cached page into a render-ready view: section
// filter applied, pinned posts first, order otherwise preserved.
func (a *PostActor) snapshotList(page *transport.PostPage, section models.Section) *ListSnapshot {
	pinnedPart := make([]models.Post, 0)
	rest := make([]models.Post, 0, len(page.Posts))
	for _, p := range page.Posts {
		if section != "" && p.Section != section {
			continue
		}
		if a.pinned.Has(p.ID) {
			pinnedPart = append(pinnedPart, p.Clone())
		} else {
			rest = append(rest, p.Clone())
		}
	}
	return &ListSnapshot{
		Posts:      append(pinnedPart, rest...),
		Pagination: page.Pagination,
		Liked:      a.liked.Snapshot(),
		Pinned:     a.pinned.Snapshot(),
	}
}

func (a *PostActor) handleGet(context actor.Context, msg *GetPostMsg) {
	// Try the store first, then the server; the store is what detail
	// views render from.
	if post, ok := a.store.Get(msg.PostID); ok {
		context.Respond(&PostSnapshot{
			Post:   post,
			Liked:  a.liked.Has(msg.PostID),
			Pinned: a.pinned.Has(msg.PostID),
		})
		return
	}

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), a.timeout)
	defer cancel()

	post, err := a.api.GetPost(ctx, msg.PostID)
	a.metrics.IncrementRequests()
	if err != nil {
		a.metrics.IncrementErrors()
		a.hub.Publish(events.Event{
			Kind:     events.KindNotFound,
			EntityID: msg.PostID,
			Message:  "post is no longer available",
		})
		context.Respond(utils.NewNotFoundError("post", msg.PostID))
		return
	}

	a.store.Put(*post)
	context.Respond(&PostSnapshot{
		Post:   post.Clone(),
		Liked:  a.liked.Has(msg.PostID),
		Pinned: a.pinned.Has(msg.PostID),
	})
}

func validateDraft(draft transport.PostDraft) *utils.AppError {
	if strings.TrimSpace(draft.Title) == "" {
		return utils.NewValidationError("title")
	}
	if strings.TrimSpace(draft.Content) == "" {
		return utils.NewValidationError("content")
	}
	if strings.TrimSpace(draft.Author) == "" {
		return utils.NewValidationError("author")
	}
	return nil
}

func (a *PostActor) handleCreate(context actor.Context, msg *CreatePostMsg) {
	startTime := time.Now()

	if err := validateDraft(msg.Draft); err != nil {
		context.Respond(err)
		return
	}

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), a.timeout)
	defer cancel()

	post, err := a.api.CreatePost(ctx, msg.Draft)
	a.metrics.IncrementRequests()
	if err != nil {
		a.metrics.IncrementErrors()
		context.Respond(err)
		return
	}

	a.store.Put(*post)
	// The new post's sort position and page membership cannot be
	// derived locally, so every cached list page goes stale.
	a.invalidateListCache()

	a.logger.Info("created post", "postId", post.ID, "section", post.Section)
	a.metrics.AddOperationLatency("create_post", time.Since(startTime))
	context.Respond(post)
}

func (a *PostActor) handleEdit(context actor.Context, msg *EditPostMsg) {
	if err := validateDraft(msg.Draft); err != nil {
		context.Respond(err)
		return
	}
	if _, ok := a.store.Get(msg.PostID); !ok {
		context.Respond(utils.NewNotFoundError("post", msg.PostID))
		return
	}

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), a.timeout)
	defer cancel()

	post, err := a.api.UpdatePost(ctx, msg.PostID, msg.Draft)
	a.metrics.IncrementRequests()
	if err != nil {
		a.metrics.IncrementErrors()
		context.Respond(err)
		return
	}

	a.store.Put(*post)
	a.invalidateListCache()
	context.Respond(post)
}

func (a *PostActor) handleDelete(context actor.Context, msg *DeletePostMsg) {
	if _, ok := a.store.Get(msg.PostID); !ok {
		context.Respond(utils.NewNotFoundError("post", msg.PostID))
		return
	}

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), a.timeout)
	defer cancel()

	err := a.api.DeletePost(ctx, msg.PostID)
	a.metrics.IncrementRequests()
	if err != nil {
		a.metrics.IncrementErrors()
		context.Respond(err)
		return
	}

	a.store.Delete(msg.PostID)
	a.liked.Remove(msg.PostID)
	a.pinned.Remove(msg.PostID)
	a.invalidateListCache()

	a.logger.Info("deleted post", "postId", msg.PostID)
	context.Respond(&models.StatusResponse{Success: true, Message: "post deleted"})
}

func (a *PostActor) handleLike(context actor.Context, msg *LikePostMsg) {
	startTime := time.Now()

	if _, ok := a.store.Get(msg.PostID); !ok {
		context.Respond(utils.NewNotFoundError("post", msg.PostID))
		return
	}

	if !a.likeGate.Admit(msg.PostID) {
		a.metrics.IncrementDedupRejections("like_post")
		a.logger.Debug("like ignored by dedup gate", "postId", msg.PostID)
		context.Respond(utils.NewAppError(utils.ErrDuplicate, "like already processing", nil))
		return
	}

	// Optimistic step: membership flip and counter change land in the
	// same Receive call, so no reader ever sees one without the other.
	liked := a.liked.Toggle(msg.PostID)
	a.store.Update(msg.PostID, func(p *models.Post) {
		if liked {
			p.Likes++
		} else if p.Likes > 0 {
			p.Likes--
		}
	})
	post, _ := a.store.Get(msg.PostID)
	a.patchCachedLists(msg.PostID, func(p *models.Post) { p.Likes = post.Likes })

	context.Respond(&PostSnapshot{Post: post, Liked: liked, Pinned: a.pinned.Has(msg.PostID)})

	self := context.Self()
	system := context.ActorSystem()

	go func() {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), a.timeout)
		defer cancel()
		result, err := a.api.ToggleLike(ctx, msg.PostID)
		system.Root.Send(self, &likeConfirmedMsg{PostID: msg.PostID, Result: result, Err: err})
	}()

	// The settle timer runs out whether or not the confirmation has
	// returned; the next refetch reconciles any drift.
	time.AfterFunc(a.settle, func() {
		system.Root.Send(self, &settleLikeMsg{PostID: msg.PostID})
	})

	a.metrics.AddOperationLatency("like_post", time.Since(startTime))
}

func (a *PostActor) handleView(context actor.Context, msg *ViewPostMsg) {
	// Views are not deduplicated; every detail open counts.
	if ok := a.store.Update(msg.PostID, func(p *models.Post) { p.Views++ }); !ok {
		context.Respond(utils.NewNotFoundError("post", msg.PostID))
		return
	}
	post, _ := a.store.Get(msg.PostID)
	a.patchCachedLists(msg.PostID, func(p *models.Post) { p.Views = post.Views })

	context.Respond(&PostSnapshot{Post: post, Liked: a.liked.Has(msg.PostID), Pinned: a.pinned.Has(msg.PostID)})

	self := context.Self()
	system := context.ActorSystem()
	go func() {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), a.timeout)
		defer cancel()
		result, err := a.api.IncrementViews(ctx, msg.PostID)
		system.Root.Send(self, &viewConfirmedMsg{PostID: msg.PostID, Result: result, Err: err})
	}()
}

func (a *PostActor) handleLikeConfirmed(msg *likeConfirmedMsg) {
	a.metrics.IncrementRequests()
	if msg.Err != nil {
		// The optimistic change stands; only the next full refetch can
		// repair the drift.
		a.metrics.IncrementErrors()
		a.logger.Warn("like confirmation failed", "postId", msg.PostID, "error", msg.Err)
		a.hub.Publish(events.Event{
			Kind:     events.KindError,
			EntityID: msg.PostID,
			Message:  "like could not be saved",
		})
		return
	}

	count := msg.Result.LikesCount
	a.store.Update(msg.PostID, func(p *models.Post) { p.Likes = count })
	a.patchCachedLists(msg.PostID, func(p *models.Post) { p.Likes = count })
}

func (a *PostActor) handleViewConfirmed(msg *viewConfirmedMsg) {
	a.metrics.IncrementRequests()
	if msg.Err != nil {
		a.metrics.IncrementErrors()
		a.logger.Warn("view confirmation failed", "postId", msg.PostID, "error", msg.Err)
		return
	}

	count := msg.Result.ViewsCount
	a.store.Update(msg.PostID, func(p *models.Post) { p.Views = count })
	a.patchCachedLists(msg.PostID, func(p *models.Post) { p.Views = count })
}

// patchCachedLists applies fn to every cached copy of the post so list
// and detail views keep identical counters. Counter patches never move
// an entity between pages, so in-place is safe here.
func (a *PostActor) patchCachedLists(postID int64, fn func(*models.Post)) {
	for _, page := range a.listCache {
		for i := range page.Posts {
			if page.Posts[i].ID == postID {
				fn(&page.Posts[i])
			}
		}
	}
}

func (a *PostActor) invalidateListCache() {
	a.listCache = make(map[string]*transport.PostPage)
}
