// Package engine wires the session's actors together. One Engine per
// client session: the PostActor and CommentActor each own their slice
// of state and process intents serially, which is the whole concurrency
// model: UI events and network confirmations all land in one mailbox.
package engine

import (
	"log/slog"
	"time"

	"github.com/asynkron/protoactor-go/actor"

	"goorm-board/internal/config"
	"goorm-board/internal/engine/actors"
	"goorm-board/internal/events"
	"goorm-board/internal/gate"
	"goorm-board/internal/transport"
	"goorm-board/internal/utils"
)

// Engine coordinates communication between actors
type Engine struct {
	root         *actor.RootContext
	postActor    *actor.PID
	commentActor *actor.PID
}

func NewEngine(system *actor.ActorSystem, api transport.API, cfg *config.Config, metrics *utils.MetricsCollector, hub *events.Hub, logger *slog.Logger) *Engine {
	context := system.Root
	clock := gate.SystemClock()

	postProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewPostActor(api, cfg, clock, metrics, hub, logger)
	})
	postPID := context.Spawn(postProps)

	commentProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewCommentActor(api, cfg, clock, metrics, hub, logger)
	})
	commentPID := context.Spawn(commentProps)

	return &Engine{
		root:         context,
		postActor:    postPID,
		commentActor: commentPID,
	}
}

// Ask sends msg to one of the engine's actors and waits for the reply.
// A request the mailbox never answers within timeout surfaces as an
// ACTOR_TIMEOUT error instead of a bare future failure.
func (e *Engine) Ask(pid *actor.PID, msg interface{}, timeout time.Duration) (interface{}, error) {
	result, err := e.root.RequestFuture(pid, msg, timeout).Result()
	if err != nil {
		return nil, utils.NewAppError(utils.ErrActorTimeout, "actor did not reply in time", err)
	}
	return result, nil
}

// GetPostActor returns the PID of the post actor
func (e *Engine) GetPostActor() *actor.PID {
	return e.postActor
}

// GetCommentActor returns the PID of the comment actor
func (e *Engine) GetCommentActor() *actor.PID {
	return e.commentActor
}
