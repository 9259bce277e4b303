// Package simulator drives a synthetic interaction session through the
// engine: bursts of likes with deliberate double-clicks, view storms,
// pins, and comment traffic. It exists to measure how the dedup gate
// and reconciliation behave under abuse, against a real backend or a
// stub transport.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"goorm-board/internal/engine"
	"goorm-board/internal/engine/actors"
	"goorm-board/internal/models"
	"goorm-board/internal/utils"
)

type SimConfig struct {
	Actions         int           // total user intents to fire
	DoubleClickRate float64       // fraction of likes immediately repeated
	CommentRate     float64       // fraction of intents that touch comments
	ActionDelay     time.Duration // pause between intents
	RequestTimeout  time.Duration
	Seed            int64
}

type SimulationStats struct {
	mu              sync.Mutex
	StartTime       time.Time
	TotalIntents    int64
	Likes           int64
	DedupRejections int64
	Views           int64
	Pins            int64
	Comments        int64
	Errors          int64
}

func (s *SimulationStats) record(fn func(*SimulationStats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// Summary renders the run's tallies for the log.
func (s *SimulationStats) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf(
		"intents=%d likes=%d dedup_rejected=%d views=%d pins=%d comments=%d errors=%d elapsed=%s",
		s.TotalIntents, s.Likes, s.DedupRejections, s.Views, s.Pins, s.Comments, s.Errors,
		time.Since(s.StartTime).Round(time.Millisecond),
	)
}

type Simulator struct {
	config SimConfig
	stats  *SimulationStats
	engine *engine.Engine
	rng    *rand.Rand
	logger *slog.Logger
}

func New(config SimConfig, eng *engine.Engine, logger *slog.Logger) *Simulator {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		config: config,
		stats:  &SimulationStats{StartTime: time.Now()},
		engine: eng,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger.With("runId", uuid.NewString()),
	}
}

func (s *Simulator) Stats() *SimulationStats { return s.stats }

// Run fires the configured number of intents and returns when they have
// all been answered or ctx ends.
func (s *Simulator) Run(ctx context.Context) error {
	s.logger.Info("starting interaction simulation", "actions", s.config.Actions)

	posts, err := s.loadPosts()
	if err != nil {
		return fmt.Errorf("initial post load failed: %w", err)
	}
	if len(posts) == 0 {
		return fmt.Errorf("no posts to interact with")
	}
	s.logger.Info("loaded posts", "count", len(posts))

	for i := 0; i < s.config.Actions; i++ {
		select {
		case <-ctx.Done():
			s.logger.Info("simulation cancelled", "completed", i)
			return ctx.Err()
		default:
		}

		post := posts[s.rng.Intn(len(posts))]
		s.fireIntent(post)

		if s.config.ActionDelay > 0 {
			time.Sleep(s.config.ActionDelay)
		}
	}

	s.logger.Info("simulation finished", "summary", s.stats.Summary())
	return nil
}

func (s *Simulator) loadPosts() ([]models.Post, error) {
	result, err := s.engine.Ask(
		s.engine.GetPostActor(),
		&actors.ListPostsMsg{Refresh: true, Filters: models.PostFilters{Page: 1}},
		s.config.RequestTimeout,
	)
	if err != nil {
		return nil, err
	}
	if appErr, ok := result.(*utils.AppError); ok {
		return nil, appErr
	}
	snapshot := result.(*actors.ListSnapshot)
	return snapshot.Posts, nil
}

func (s *Simulator) fireIntent(post models.Post) {
	s.stats.record(func(st *SimulationStats) { st.TotalIntents++ })

	roll := s.rng.Float64()
	switch {
	case roll < s.config.CommentRate:
		s.commentIntent(post)
	case roll < s.config.CommentRate+0.2:
		s.viewIntent(post)
	case roll < s.config.CommentRate+0.3:
		s.pinIntent(post)
	default:
		s.likeIntent(post)
	}
}

// likeIntent toggles a like, and with the configured probability fires
// an immediate duplicate the way a real double-click lands.
func (s *Simulator) likeIntent(post models.Post) {
	s.sendLike(post.ID)
	if s.rng.Float64() < s.config.DoubleClickRate {
		s.sendLike(post.ID)
	}
}

func (s *Simulator) sendLike(postID int64) {
	result, err := s.engine.Ask(
		s.engine.GetPostActor(),
		&actors.LikePostMsg{PostID: postID},
		s.config.RequestTimeout,
	)
	if err != nil {
		s.stats.record(func(st *SimulationStats) { st.Errors++ })
		return
	}
	if appErr, ok := result.(*utils.AppError); ok {
		if appErr.Code == utils.ErrDuplicate {
			s.stats.record(func(st *SimulationStats) { st.DedupRejections++ })
		} else {
			s.stats.record(func(st *SimulationStats) { st.Errors++ })
		}
		return
	}
	s.stats.record(func(st *SimulationStats) { st.Likes++ })
}

func (s *Simulator) viewIntent(post models.Post) {
	if _, err := s.engine.Ask(
		s.engine.GetPostActor(),
		&actors.ViewPostMsg{PostID: post.ID},
		s.config.RequestTimeout,
	); err != nil {
		s.stats.record(func(st *SimulationStats) { st.Errors++ })
		return
	}
	s.stats.record(func(st *SimulationStats) { st.Views++ })
}

func (s *Simulator) pinIntent(post models.Post) {
	var msg interface{} = &actors.PinPostMsg{PostID: post.ID}
	if s.rng.Float64() < 0.5 {
		msg = &actors.UnpinPostMsg{PostID: post.ID}
	}
	if _, err := s.engine.Ask(s.engine.GetPostActor(), msg, s.config.RequestTimeout); err != nil {
		s.stats.record(func(st *SimulationStats) { st.Errors++ })
		return
	}
	s.stats.record(func(st *SimulationStats) { st.Pins++ })
}

func (s *Simulator) commentIntent(post models.Post) {
	// Load the thread, then either like a comment on it or add one.
	result, err := s.engine.Ask(
		s.engine.GetCommentActor(),
		&actors.LoadCommentsMsg{PostID: post.ID},
		s.config.RequestTimeout,
	)
	if err != nil {
		s.stats.record(func(st *SimulationStats) { st.Errors++ })
		return
	}
	snapshot, ok := result.(*actors.ThreadSnapshot)
	if !ok {
		s.stats.record(func(st *SimulationStats) { st.Errors++ })
		return
	}

	if len(snapshot.Thread) > 0 && s.rng.Float64() < 0.5 {
		target := snapshot.Thread[s.rng.Intn(len(snapshot.Thread))]
		if _, err := s.engine.Ask(
			s.engine.GetCommentActor(),
			&actors.LikeCommentMsg{CommentID: target.ID},
			s.config.RequestTimeout,
		); err != nil {
			s.stats.record(func(st *SimulationStats) { st.Errors++ })
			return
		}
		s.stats.record(func(st *SimulationStats) { st.Comments++ })
		return
	}

	result, err = s.engine.Ask(
		s.engine.GetCommentActor(),
		&actors.CreateCommentMsg{
			PostID:  post.ID,
			Content: fmt.Sprintf("simulated comment %d", s.rng.Intn(1_000_000)),
		},
		s.config.RequestTimeout,
	)
	if err != nil {
		s.stats.record(func(st *SimulationStats) { st.Errors++ })
		return
	}
	if _, isErr := result.(*utils.AppError); isErr {
		s.stats.record(func(st *SimulationStats) { st.Errors++ })
		return
	}
	s.stats.record(func(st *SimulationStats) { st.Comments++ })
}
