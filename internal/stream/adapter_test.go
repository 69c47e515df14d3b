package stream

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/contextforge/ragchat/internal/chatstore"
	"github.com/contextforge/ragchat/internal/genai"
	"github.com/contextforge/ragchat/internal/model"
)

// countingStore wraps a real store and counts content persists.
type countingStore struct {
	chatstore.Store
	persists atomic.Int32
}

func (c *countingStore) UpdateMessageContent(ctx context.Context, id, messageID, content string) error {
	c.persists.Add(1)
	return c.Store.UpdateMessageContent(ctx, id, messageID, content)
}

func newTestAdapter(t *testing.T, store chatstore.Store, persistEvery, chunkTimeout time.Duration) *Adapter {
	t.Helper()
	return NewAdapter(store, persistEvery, chunkTimeout, nil, zerolog.Nop())
}

func collect(t *testing.T, turn *Turn) []Event {
	t.Helper()
	var events []Event
	for {
		select {
		case ev, ok := <-turn.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for events, got %d so far", len(events))
		}
	}
}

func assistantContent(t *testing.T, store chatstore.Store, convID, messageID string) string {
	t.Helper()
	msgs, err := store.GetMessages(context.Background(), convID)
	require.NoError(t, err)
	for _, m := range msgs {
		if m.ID == messageID {
			return m.Content
		}
	}
	t.Fatalf("message %s not found", messageID)
	return ""
}

func TestAdapterAccumulatesAndPersistsFullResponse(t *testing.T) {
	store := chatstore.NewMemoryStore()
	conv, err := store.Create(context.Background(), "t")
	require.NoError(t, err)

	src, w := genai.NewPipe()
	adapter := newTestAdapter(t, store, time.Hour, time.Second)
	turn, err := adapter.Run(context.Background(), conv.ID, src)
	require.NoError(t, err)

	go func() {
		for _, c := range []string{"Hel", "lo", "!"} {
			w.Send(c)
		}
		w.CloseSend()
	}()

	events := collect(t, turn)
	require.Len(t, events, 4)
	require.Equal(t, "Hel", events[0].Content)
	require.Equal(t, "lo", events[1].Content)
	require.Equal(t, "!", events[2].Content)
	require.False(t, events[2].Done)
	require.True(t, events[3].Done)
	require.Empty(t, events[3].Content)
	require.Empty(t, events[3].Error)
	for _, ev := range events {
		require.Equal(t, turn.MessageID, ev.MessageID)
	}

	require.Equal(t, "Hello!", assistantContent(t, store, conv.ID, turn.MessageID))
}

func TestAdapterMarksInterruptedStream(t *testing.T) {
	store := chatstore.NewMemoryStore()
	conv, err := store.Create(context.Background(), "t")
	require.NoError(t, err)

	src, w := genai.NewPipe()
	adapter := newTestAdapter(t, store, time.Hour, time.Second)
	turn, err := adapter.Run(context.Background(), conv.ID, src)
	require.NoError(t, err)

	go func() {
		w.Send("Par")
		w.Send("tial")
		w.Fail(errors.New("backend reset"))
	}()

	events := collect(t, turn)
	last := events[len(events)-1]
	require.True(t, last.Done)
	require.Contains(t, last.Error, "backend reset")

	require.Equal(t, "Partial"+InterruptionMarker, assistantContent(t, store, conv.ID, turn.MessageID))
}

func TestAdapterCancellationReleasesSource(t *testing.T) {
	store := chatstore.NewMemoryStore()
	conv, err := store.Create(context.Background(), "t")
	require.NoError(t, err)

	src, w := genai.NewPipe()
	adapter := newTestAdapter(t, store, time.Hour, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	turn, err := adapter.Run(ctx, conv.ID, src)
	require.NoError(t, err)

	require.True(t, w.Send("half"))
	select {
	case ev := <-turn.Events():
		require.Equal(t, "half", ev.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("first chunk never arrived")
	}

	cancel()
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("producer was not released after cancellation")
	}

	require.Eventually(t, func() bool {
		return assistantContent(t, store, conv.ID, turn.MessageID) == "half"+InterruptionMarker
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAdapterDebouncesPersists(t *testing.T) {
	store := &countingStore{Store: chatstore.NewMemoryStore()}
	conv, err := store.Create(context.Background(), "t")
	require.NoError(t, err)

	src, w := genai.NewPipe()
	adapter := newTestAdapter(t, store, 30*time.Millisecond, time.Second)
	turn, err := adapter.Run(context.Background(), conv.ID, src)
	require.NoError(t, err)

	go func() {
		for i := 0; i < 5; i++ {
			w.Send("x")
			time.Sleep(20 * time.Millisecond)
		}
		w.CloseSend()
	}()

	collect(t, turn)
	// Mid-stream persists happen on the interval, plus one final flush; far
	// fewer than one write per chunk would be without the debounce window at
	// this cadence, but at least one intermediate write must land.
	n := store.persists.Load()
	require.GreaterOrEqual(t, n, int32(2))
	require.Equal(t, "xxxxx", assistantContent(t, store, conv.ID, turn.MessageID))
}

func TestAdapterSkipsSlowChunkTicks(t *testing.T) {
	store := chatstore.NewMemoryStore()
	conv, err := store.Create(context.Background(), "t")
	require.NoError(t, err)

	src, w := genai.NewPipe()
	adapter := newTestAdapter(t, store, time.Hour, 15*time.Millisecond)
	turn, err := adapter.Run(context.Background(), conv.ID, src)
	require.NoError(t, err)

	go func() {
		w.Send("slow")
		time.Sleep(60 * time.Millisecond)
		w.Send("er")
		w.CloseSend()
	}()

	events := collect(t, turn)
	require.True(t, events[len(events)-1].Done)
	require.Equal(t, "slower", assistantContent(t, store, conv.ID, turn.MessageID))
}

func TestAdapterFailsWhenConversationMissing(t *testing.T) {
	store := chatstore.NewMemoryStore()
	src, w := genai.NewPipe()
	adapter := newTestAdapter(t, store, time.Hour, time.Second)

	_, err := adapter.Run(context.Background(), "no-such-conversation", src)
	require.ErrorIs(t, err, model.ErrNotFound)

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("source not released after placeholder failure")
	}
}
