package client

import (
	"context"
	"errors"
	"io"
	"sync"

	"docq-cli/internal/render"
	"docq-cli/internal/stream"
	"docq-cli/internal/transcript"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Controller orchestrates one send/receive cycle per user message: it
// owns the run's transcript state, drives the decoder, folds every
// event, and re-renders after each one. Starting a new message replaces
// the live run; a superseded run's remaining events are discarded.
type Controller struct {
	transport     *Transport
	sink          render.Sink
	toHTML        render.HTMLFunc
	logger        *zap.Logger
	collapseLimit int

	mu    sync.Mutex
	runID string
}

// NewController wires the transport, display sink, and markdown
// converter together. A nil toHTML falls back to identity passthrough.
func NewController(transport *Transport, sink render.Sink, toHTML render.HTMLFunc, logger *zap.Logger, collapseLimit int) *Controller {
	if toHTML == nil {
		toHTML = render.Identity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		transport:     transport,
		sink:          sink,
		toHTML:        toHTML,
		logger:        logger,
		collapseLimit: collapseLimit,
	}
}

// Send runs one full exchange. The returned error reflects transport
// and read failures; agent-reported errors terminate the transcript
// visibly but return nil.
func (c *Controller) Send(ctx context.Context, sessionID, message string) error {
	runID := uuid.NewString()
	c.mu.Lock()
	c.runID = runID
	c.mu.Unlock()

	state := transcript.NewState(c.collapseLimit)
	c.display(runID, state)

	body, err := c.transport.OpenStream(ctx, sessionID, message)
	if err != nil {
		c.logger.Error("stream request failed", zap.Error(err), zap.String("run_id", runID))
		state.Fail(err.Error())
		c.display(runID, state)
		return err
	}
	defer func() { _ = body.Close() }()

	decoder := stream.NewDecoder(body, c.logger)
	for {
		ev, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !c.live(runID) {
				return nil
			}
			c.logger.Error("stream read failed", zap.Error(err), zap.String("run_id", runID))
			state.Fail(err.Error())
			c.display(runID, state)
			return err
		}
		if !c.live(runID) {
			return nil
		}
		state.Apply(ev)
		c.display(runID, state)
	}

	if !c.live(runID) {
		return nil
	}
	if !state.Terminal() {
		c.logger.Warn("stream closed without a terminal event",
			zap.String("run_id", runID),
			zap.Int("skipped_frames", decoder.Anomalies()))
		state.Interrupt()
		c.display(runID, state)
	}
	return nil
}

func (c *Controller) live(runID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runID == runID
}

func (c *Controller) display(runID string, state *transcript.State) {
	if !c.live(runID) {
		return
	}
	c.sink.Display(c.toHTML(state.Markdown()))
}
