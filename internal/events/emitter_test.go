package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	newEvent := func(t *testing.T) *Event {
		t.Helper()
		event, err := NewRunRequested(uuid.New(), uuid.New())
		require.NoError(t, err)
		return event
	}

	t.Run("nil logger falls back to default", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		h := &recordingHandler{}
		emitter.RegisterHandler(h)
		assert.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t)))
		assert.Len(t, h.events, 1)
	})

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		assert.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t)))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		h1, h2 := &recordingHandler{}, &recordingHandler{}
		emitter.RegisterHandler(h1)
		emitter.RegisterHandler(h2)

		event := newEvent(t)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		require.Len(t, h1.events, 1)
		require.Len(t, h2.events, 1)
		assert.Same(t, event, h1.events[0])
		assert.Same(t, event, h2.events[0])
	})

	t.Run("failing handler does not stop delivery", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		handlerErr := errors.New("handler error")
		failing := &recordingHandler{err: handlerErr}
		ok := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(ok)

		err := emitter.EmitEvent(context.Background(), newEvent(t))

		assert.ErrorIs(t, err, handlerErr)
		assert.Len(t, failing.events, 1)
		assert.Len(t, ok.events, 1)
	})
}
