package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TypeRunRequested identifies the event emitted when a pipeline run has been
// created and should be executed.
const TypeRunRequested = "run_requested"

// ErrUnexpectedType is returned when an event is decoded as a type it is not.
var ErrUnexpectedType = errors.New("unexpected event type")

// Event is a message passed from an emitter to every registered handler.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type names the kind of event, e.g. TypeRunRequested
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with the specified type and payload.
func NewEvent(eventType string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// RunRequested is the payload of a TypeRunRequested event.
type RunRequested struct {
	RunID    uuid.UUID `json:"run_id"`
	ClientID uuid.UUID `json:"client_id"`
}

// NewRunRequested builds a TypeRunRequested event for the given run.
func NewRunRequested(runID, clientID uuid.UUID) (*Event, error) {
	return NewEvent(TypeRunRequested, RunRequested{RunID: runID, ClientID: clientID})
}

// DecodeRunRequested extracts the RunRequested payload of e.
func DecodeRunRequested(e *Event) (RunRequested, error) {
	var p RunRequested
	if e.Type != TypeRunRequested {
		return p, fmt.Errorf("%w: %q", ErrUnexpectedType, e.Type)
	}
	if err := e.UnmarshalPayload(&p); err != nil {
		return p, fmt.Errorf("invalid %s payload: %w", TypeRunRequested, err)
	}
	if p.RunID == uuid.Nil {
		return p, fmt.Errorf("invalid %s payload: missing run_id", TypeRunRequested)
	}
	return p, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Handlers ignore event types they do not understand.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}
