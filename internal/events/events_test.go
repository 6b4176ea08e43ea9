package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler implements EventHandler for tests.
type recordingHandler struct {
	events []*Event
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *Event) error {
	h.events = append(h.events, event)
	return h.err
}

func TestNewRunRequested(t *testing.T) {
	runID, clientID := uuid.New(), uuid.New()

	event, err := NewRunRequested(runID, clientID)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeRunRequested, event.Type)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	payload, err := DecodeRunRequested(event)
	require.NoError(t, err)
	assert.Equal(t, runID, payload.RunID)
	assert.Equal(t, clientID, payload.ClientID)
}

func TestDecodeRunRequestedErrors(t *testing.T) {
	other, err := NewEvent("something_else", map[string]string{"k": "v"})
	require.NoError(t, err)

	testCases := []struct {
		name  string
		event *Event
		want  string
	}{
		{
			name:  "wrong type",
			event: other,
			want:  "unexpected event type",
		},
		{
			name:  "malformed payload",
			event: &Event{Type: TypeRunRequested, Payload: []byte(`{"run_id":`)},
			want:  "invalid run_requested payload",
		},
		{
			name:  "missing run id",
			event: &Event{Type: TypeRunRequested, Payload: []byte(`{}`)},
			want:  "missing run_id",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeRunRequested(tc.event)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestNewEventRejectsUnmarshalablePayload(t *testing.T) {
	_, err := NewEvent("bad", make(chan int))
	assert.Error(t, err)
}

func TestHandlerFunc(t *testing.T) {
	var got *Event
	h := HandlerFunc(func(_ context.Context, e *Event) error {
		got = e
		return nil
	})

	event, err := NewEvent("x", nil)
	require.NoError(t, err)
	require.NoError(t, h.HandleEvent(context.Background(), event))
	assert.Same(t, event, got)
}
