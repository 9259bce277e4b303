package engine

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goorm-board/internal/config"
	"goorm-board/internal/engine/actors"
	"goorm-board/internal/events"
	"goorm-board/internal/models"
	"goorm-board/internal/transport"
	"goorm-board/internal/utils"
)

// silentAPI panics if any transport method is reached; these tests only
// exercise operations that never leave the actors.
type silentAPI struct{ transport.API }

func newTestEngine() *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	system := actor.NewActorSystem()
	return NewEngine(system, silentAPI{}, config.DefaultConfig(), utils.NewMetricsCollector(), events.NewHub(logger), logger)
}

func TestAskDeliversReply(t *testing.T) {
	eng := newTestEngine()

	result, err := eng.Ask(eng.GetPostActor(), &actors.PinPostMsg{PostID: 1}, 5*time.Second)
	require.NoError(t, err)

	status, ok := result.(*models.StatusResponse)
	require.True(t, ok, "expected status, got %T", result)
	assert.True(t, status.Success)
}

func TestAskMapsUnansweredRequestToTimeout(t *testing.T) {
	eng := newTestEngine()

	// Unrecognized messages are logged and dropped, never answered.
	type unansweredMsg struct{}
	_, err := eng.Ask(eng.GetPostActor(), &unansweredMsg{}, 100*time.Millisecond)

	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrActorTimeout))
}
