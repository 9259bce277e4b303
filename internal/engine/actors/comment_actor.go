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

// Message types for CommentActor
type (
	LoadCommentsMsg struct {
		PostID int64
		Page   int // zero means the post's current page (or 1)
	}

	NextCommentPageMsg struct {
		PostID int64
	}

	PrevCommentPageMsg struct {
		PostID int64
	}

	CreateCommentMsg struct {
		PostID   int64
		ParentID *int64
		Content  string
	}

	EditCommentMsg struct {
		CommentID int64
		Content   string
	}

	DeleteCommentMsg struct {
		CommentID int64
	}

	LikeCommentMsg struct {
		CommentID int64
	}

	CommentCountMsg struct {
		PostID int64
	}

	commentLikeConfirmedMsg struct {
		CommentID int64
		Result    *transport.LikeResult
		Err       error
	}

	settleCommentLikeMsg struct {
		CommentID int64
	}
)

// ThreadSnapshot is a consistent two-level view of one comment page.
type ThreadSnapshot struct {
	PostID     int64
	Page       int
	Pagination models.Pagination
	Thread     []*models.Comment
	Liked      map[int64]bool
}

// CommentSnapshot is a consistent view of one comment.
type CommentSnapshot struct {
	Comment models.Comment
	Liked   bool
}

// threadPage is a cached flat comment page as the server returned it.
type threadPage struct {
	flat       []models.Comment
	pagination models.Pagination
}

// commentLocation remembers which cached page holds a comment, so
// counter patches and edits find their entry without a rescan.
type commentLocation struct {
	postID int64
	page   int
}

// CommentActor owns the comment side of the session: cached pages per
// post, the current page cursor, and the comment-scoped like set with
// its own dedup gate.
type CommentActor struct {
	api       transport.API
	pages     map[int64]map[int]*threadPage
	current   map[int64]int
	locations map[int64]commentLocation
	liked     *store.IDSet
	likeGate  *gate.Gate

	limit   int
	settle  time.Duration
	timeout time.Duration
	metrics *utils.MetricsCollector
	hub     *events.Hub
	logger  *slog.Logger
}

func NewCommentActor(api transport.API, cfg *config.Config, clock gate.Clock, metrics *utils.MetricsCollector, hub *events.Hub, logger *slog.Logger) actor.Actor {
	return &CommentActor{
		api:       api,
		pages:     make(map[int64]map[int]*threadPage),
		current:   make(map[int64]int),
		locations: make(map[int64]commentLocation),
		liked:     store.NewIDSet(),
		likeGate:  gate.New(clock, cfg.Interaction.Cooldown),
		limit:     cfg.Paging.CommentLimit,
		settle:    cfg.Interaction.Settle,
		timeout:   cfg.API.RequestTimeout,
		metrics:   metrics,
		hub:       hub,
		logger:    logger,
	}
}

func (a *CommentActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		a.logger.Info("CommentActor started", "pid", context.Self().String())

	case *LoadCommentsMsg:
		page := msg.Page
		if page == 0 {
			page = a.currentPage(msg.PostID)
		}
		a.handleLoad(context, msg.PostID, page)

	case *NextCommentPageMsg:
		a.handleLoad(context, msg.PostID, a.currentPage(msg.PostID)+1)

	case *PrevCommentPageMsg:
		a.handleLoad(context, msg.PostID, a.currentPage(msg.PostID)-1)

	case *CreateCommentMsg:
		a.handleCreate(context, msg)

	case *EditCommentMsg:
		a.handleEdit(context, msg)

	case *DeleteCommentMsg:
		a.handleDelete(context, msg)

	case *LikeCommentMsg:
		a.handleLike(context, msg)

	case *CommentCountMsg:
		a.handleCount(context, msg)

	case *commentLikeConfirmedMsg:
		a.handleLikeConfirmed(msg)

	case *settleCommentLikeMsg:
		a.likeGate.Settle(msg.CommentID)

	default:
		a.logger.Debug("CommentActor: unknown message", "type", fmt.Sprintf("%T", msg))
	}
}

func (a *CommentActor) currentPage(postID int64) int {
	if page, ok := a.current[postID]; ok {
		return page
	}
	return 1
}

// handleLoad serves or fetches one comment page. Requests past either
// bound are a no-op: the current page's snapshot is returned unchanged.
func (a *CommentActor) handleLoad(context actor.Context, postID int64, page int) {
	startTime := time.Now()
	cur := a.currentPage(postID)

	if page < 1 {
		page = cur
	}
	if cached, ok := a.pages[postID][cur]; ok {
		if total := cached.pagination.TotalPages; total > 0 && page > total {
			page = cur
		}
	}

	if cached, ok := a.pages[postID][page]; ok {
		a.current[postID] = page
		context.Respond(a.snapshot(postID, page, cached))
		return
	}

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), a.timeout)
	defer cancel()

	fetched, err := a.api.ListComments(ctx, postID, page, a.limit)
	a.metrics.IncrementRequests()
	if err != nil {
		a.metrics.IncrementErrors()
		context.Respond(err)
		return
	}

	tp := &threadPage{flat: fetched.Comments, pagination: fetched.Pagination}
	if a.pages[postID] == nil {
		a.pages[postID] = make(map[int]*threadPage)
	}
	a.pages[postID][page] = tp
	for _, c := range fetched.Comments {
		a.locations[c.ID] = commentLocation{postID: postID, page: page}
	}
	a.current[postID] = page

	a.metrics.AddOperationLatency("load_comments", time.Since(startTime))
	context.Respond(a.snapshot(postID, page, tp))
}

func (a *CommentActor) snapshot(postID int64, page int, tp *threadPage) *ThreadSnapshot {
	return &ThreadSnapshot{
		PostID:     postID,
		Page:       page,
		Pagination: tp.pagination,
		Thread:     models.BuildThread(tp.flat),
		Liked:      a.liked.Snapshot(),
	}
}

func (a *CommentActor) handleCreate(context actor.Context, msg *CreateCommentMsg) {
	startTime := time.Now()

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		// Resolved locally; the transport never sees this.
		context.Respond(utils.NewValidationError("comment content"))
		return
	}

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), a.timeout)
	defer cancel()

	comment, err := a.api.CreateComment(ctx, msg.PostID, content, msg.ParentID)
	a.metrics.IncrementRequests()
	if err != nil {
		a.metrics.IncrementErrors()
		context.Respond(err)
		return
	}

	// A new node's page placement and ordering cannot be derived
	// locally, so the post's comment cache goes stale as a whole.
	a.invalidatePost(msg.PostID)

	a.logger.Info("created comment", "commentId", comment.ID, "postId", msg.PostID, "reply", msg.ParentID != nil)
	a.metrics.AddOperationLatency("create_comment", time.Since(startTime))
	context.Respond(comment)
}

func (a *CommentActor) handleEdit(context actor.Context, msg *EditCommentMsg) {
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		context.Respond(utils.NewValidationError("comment content"))
		return
	}

	loc, ok := a.locations[msg.CommentID]
	if !ok {
		context.Respond(utils.NewNotFoundError("comment", msg.CommentID))
		return
	}

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), a.timeout)
	defer cancel()

	updated, err := a.api.UpdateComment(ctx, msg.CommentID, content)
	a.metrics.IncrementRequests()
	if err != nil {
		a.metrics.IncrementErrors()
		context.Respond(err)
		return
	}

	// Content replaces in place; the node's identity and position are
	// unchanged, so no invalidation is needed.
	a.patchComment(loc, msg.CommentID, func(c *models.Comment) {
		c.Content = updated.Content
		c.UpdatedAt = updated.UpdatedAt
	})
	context.Respond(updated)
}

func (a *CommentActor) handleDelete(context actor.Context, msg *DeleteCommentMsg) {
	loc, ok := a.locations[msg.CommentID]
	if !ok {
		context.Respond(utils.NewNotFoundError("comment", msg.CommentID))
		return
	}

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), a.timeout)
	defer cancel()

	err := a.api.DeleteComment(ctx, msg.CommentID)
	a.metrics.IncrementRequests()
	if err != nil {
		a.metrics.IncrementErrors()
		context.Respond(err)
		return
	}

	// Removing a node may orphan its replies and shifts pagination, so
	// the whole post cache is refetched on next access.
	a.invalidatePost(loc.postID)

	a.logger.Info("deleted comment", "commentId", msg.CommentID, "postId", loc.postID)
	context.Respond(&models.StatusResponse{Success: true, Message: "comment deleted"})
}

func (a *CommentActor) handleLike(context actor.Context, msg *LikeCommentMsg) {
	startTime := time.Now()

	loc, ok := a.locations[msg.CommentID]
	if !ok {
		context.Respond(utils.NewNotFoundError("comment", msg.CommentID))
		return
	}

	if !a.likeGate.Admit(msg.CommentID) {
		a.metrics.IncrementDedupRejections("like_comment")
		a.logger.Debug("comment like ignored by dedup gate", "commentId", msg.CommentID)
		context.Respond(utils.NewAppError(utils.ErrDuplicate, "like already processing", nil))
		return
	}

	liked := a.liked.Toggle(msg.CommentID)
	a.patchComment(loc, msg.CommentID, func(c *models.Comment) {
		if liked {
			c.Likes++
		} else if c.Likes > 0 {
			c.Likes--
		}
	})

	snapshot, _ := a.lookup(loc, msg.CommentID)
	context.Respond(&CommentSnapshot{Comment: snapshot, Liked: liked})

	self := context.Self()
	system := context.ActorSystem()

	go func() {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), a.timeout)
		defer cancel()
		result, err := a.api.ToggleCommentLike(ctx, msg.CommentID)
		system.Root.Send(self, &commentLikeConfirmedMsg{CommentID: msg.CommentID, Result: result, Err: err})
	}()

	time.AfterFunc(a.settle, func() {
		system.Root.Send(self, &settleCommentLikeMsg{CommentID: msg.CommentID})
	})

	a.metrics.AddOperationLatency("like_comment", time.Since(startTime))
}

func (a *CommentActor) handleLikeConfirmed(msg *commentLikeConfirmedMsg) {
	a.metrics.IncrementRequests()
	if msg.Err != nil {
		a.metrics.IncrementErrors()
		a.logger.Warn("comment like confirmation failed", "commentId", msg.CommentID, "error", msg.Err)
		a.hub.Publish(events.Event{
			Kind:     events.KindError,
			EntityID: msg.CommentID,
			Message:  "comment like could not be saved",
		})
		return
	}

	loc, ok := a.locations[msg.CommentID]
	if !ok {
		// The page was invalidated while the request was in flight;
		// the refetch will carry the server's count.
		return
	}
	count := msg.Result.LikesCount
	a.patchComment(loc, msg.CommentID, func(c *models.Comment) { c.Likes = count })
}

func (a *CommentActor) handleCount(context actor.Context, msg *CommentCountMsg) {
	if cached, ok := a.pages[msg.PostID][a.currentPage(msg.PostID)]; ok {
		if cached.pagination.TotalItems > 0 {
			context.Respond(cached.pagination.TotalItems)
			return
		}
		context.Respond(len(cached.flat))
		return
	}
	context.Respond(0)
}

func (a *CommentActor) patchComment(loc commentLocation, commentID int64, fn func(*models.Comment)) {
	tp, ok := a.pages[loc.postID][loc.page]
	if !ok {
		return
	}
	for i := range tp.flat {
		if tp.flat[i].ID == commentID {
			fn(&tp.flat[i])
			return
		}
	}
}

func (a *CommentActor) lookup(loc commentLocation, commentID int64) (models.Comment, bool) {
	tp, ok := a.pages[loc.postID][loc.page]
	if !ok {
		return models.Comment{}, false
	}
	for i := range tp.flat {
		if tp.flat[i].ID == commentID {
			return tp.flat[i].Clone(), true
		}
	}
	return models.Comment{}, false
}

func (a *CommentActor) invalidatePost(postID int64) {
	for id, loc := range a.locations {
		if loc.postID == postID {
			delete(a.locations, id)
		}
	}
	delete(a.pages, postID)
}
