// Package stream bridges a generation chunk stream to outward wire events
// while keeping the conversation store eventually consistent with the
// accumulated text.
package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/contextforge/ragchat/internal/chatstore"
	"github.com/contextforge/ragchat/internal/genai"
	"github.com/contextforge/ragchat/internal/metrics"
	"github.com/contextforge/ragchat/internal/model"
)

// InterruptionMarker is appended to persisted partial content when a stream
// ends abnormally, so readers can tell a truncated answer from a complete
// one.
const InterruptionMarker = "[Streaming interrupted]"

const (
	defaultPersistInterval = 500 * time.Millisecond
	defaultChunkTimeout    = 10 * time.Second
	persistTimeout         = 5 * time.Second
)

// Event is one outward wire event of a streaming turn. Content is always the
// delta since the previous event; events are strictly ordered and never
// rewind. The terminal event has Done=true with empty content, plus Error on
// abnormal termination.
type Event struct {
	MessageID string `json:"id"`
	Content   string `json:"content"`
	Done      bool   `json:"done"`
	Error     string `json:"error,omitempty"`
}

// Adapter multiplexes generation chunk streams into outward events with
// time-debounced persistence of partial content.
type Adapter struct {
	store           chatstore.Store
	persistInterval time.Duration
	chunkTimeout    time.Duration
	metrics         *metrics.Metrics
	log             zerolog.Logger
}

// NewAdapter builds an adapter persisting to store. Non-positive durations
// take the package defaults. metrics may be nil.
func NewAdapter(store chatstore.Store, persistInterval, chunkTimeout time.Duration, m *metrics.Metrics, log zerolog.Logger) *Adapter {
	if persistInterval <= 0 {
		persistInterval = defaultPersistInterval
	}
	if chunkTimeout <= 0 {
		chunkTimeout = defaultChunkTimeout
	}
	return &Adapter{store: store, persistInterval: persistInterval, chunkTimeout: chunkTimeout, metrics: m, log: log}
}

// Turn is one in-flight streaming response.
//
// Two concurrent turns against the same conversation are not coordinated;
// their interleaved persists have undefined ordering.
type Turn struct {
	// MessageID identifies the assistant placeholder being filled.
	MessageID string

	events chan Event
}

// Events yields the outward events in order. The channel is closed after the
// terminal event.
func (t *Turn) Events() <-chan Event { return t.events }

// Run creates the assistant placeholder message and starts pumping src into
// the returned Turn. Cancelling ctx stops consumption, persists the partial
// content with the interruption marker, and releases the backend stream.
func (a *Adapter) Run(ctx context.Context, conversationID string, src *genai.Stream) (*Turn, error) {
	placeholder, err := a.store.AddMessage(ctx, conversationID, model.RoleAssistant, "")
	if err != nil {
		src.Close()
		return nil, err
	}
	t := &Turn{MessageID: placeholder.ID, events: make(chan Event, 16)}
	if a.metrics != nil {
		a.metrics.StreamsInFlight.Inc()
	}
	go a.pump(ctx, conversationID, t, src)
	return t, nil
}

func (a *Adapter) pump(ctx context.Context, conversationID string, t *Turn, src *genai.Stream) {
	defer close(t.events)
	defer src.Close()
	if a.metrics != nil {
		defer a.metrics.StreamsInFlight.Dec()
	}

	var acc strings.Builder
	lastPersist := time.Now()

	for {
		chunkCtx, cancel := context.WithTimeout(ctx, a.chunkTimeout)
		text, err := src.Recv(chunkCtx)
		cancel()

		switch {
		case err == nil:
			// fall through to emit below

		case errors.Is(err, io.EOF):
			a.persist(conversationID, t.MessageID, acc.String())
			a.emit(ctx, t, Event{MessageID: t.MessageID, Content: "", Done: true})
			return

		case ctx.Err() != nil:
			// Caller went away; keep what we have, marked as truncated.
			a.log.Info().Str("messageId", t.MessageID).Msg("stream cancelled by caller")
			a.interrupt(ctx, conversationID, t, acc.String(), ctx.Err())
			return

		case errors.Is(err, context.DeadlineExceeded):
			// One slow chunk is skipped, not fatal.
			a.log.Warn().Str("messageId", t.MessageID).Dur("timeout", a.chunkTimeout).Msg("chunk wait timed out; skipping tick")
			continue

		default:
			a.log.Warn().Err(err).Str("messageId", t.MessageID).Msg("generation stream failed mid-turn")
			a.interrupt(ctx, conversationID, t, acc.String(), err)
			return
		}

		if text != "" {
			acc.WriteString(text)
			if a.metrics != nil {
				a.metrics.StreamChunksTotal.Inc()
			}
			if !a.emit(ctx, t, Event{MessageID: t.MessageID, Content: text}) {
				a.interrupt(ctx, conversationID, t, acc.String(), ctx.Err())
				return
			}
		}

		if time.Since(lastPersist) >= a.persistInterval {
			a.persist(conversationID, t.MessageID, acc.String())
			lastPersist = time.Now()
		}
	}
}

// interrupt persists the partial text with the interruption marker and emits
// the terminal error event.
func (a *Adapter) interrupt(ctx context.Context, conversationID string, t *Turn, partial string, cause error) {
	if a.metrics != nil {
		a.metrics.StreamInterruptions.Inc()
	}
	a.persist(conversationID, t.MessageID, partial+InterruptionMarker)
	desc := model.ErrStreamInterrupted.Error()
	if cause != nil {
		desc = cause.Error()
	}
	ev := Event{MessageID: t.MessageID, Content: "", Done: true, Error: desc}
	if a.emit(ctx, t, ev) {
		return
	}
	// The consumer is gone; leave the event if the buffer has room so late
	// readers still see the terminal marker.
	select {
	case t.events <- ev:
	default:
	}
}

// persist writes the accumulated content into the placeholder message. It is
// deliberately detached from the turn's context so a cancelled caller still
// gets its partial content saved.
func (a *Adapter) persist(conversationID, messageID, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := a.store.UpdateMessageContent(ctx, conversationID, messageID, content); err != nil {
		a.log.Warn().Err(err).Str("messageId", messageID).Msg("partial content persist failed")
		return
	}
	if a.metrics != nil {
		a.metrics.StreamPersistsTotal.Inc()
	}
}

func (a *Adapter) emit(ctx context.Context, t *Turn, ev Event) bool {
	select {
	case t.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
