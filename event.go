package autoresearch

import (
	"context"
	"log/slog"
)

// EventKind classifies a progress event.
type EventKind string

const (
	EventPlanning     EventKind = "planning"
	EventSearching    EventKind = "searching"
	EventReflecting   EventKind = "reflecting"
	EventSynthesizing EventKind = "synthesizing"
	EventReport       EventKind = "report"
	EventError        EventKind = "error"
	EventDone         EventKind = "done"
)

// Event is an immutable progress record emitted by a step. The JSON shape is
// the wire format of the streaming endpoint.
type Event struct {
	Kind    EventKind `json:"type"`
	Content string    `json:"content"`
}

// LogValue returns a slog.Value for the event. Report bodies are summarized by length.
func (e Event) LogValue() slog.Value {
	if e.Kind == EventReport {
		return slog.GroupValue(
			slog.String("kind", string(e.Kind)),
			slog.Int("length", len(e.Content)),
		)
	}
	return slog.GroupValue(
		slog.String("kind", string(e.Kind)),
		slog.String("content", e.Content),
	)
}

func newEvent(kind EventKind, content string) Event {
	return Event{Kind: kind, Content: content}
}

// EventHandler receives events in order as the control loop produces them.
// Returning an error tells the loop that the consumer is gone; the loop stops
// without emitting anything further.
type EventHandler func(ctx context.Context, ev Event) error

// DiscardEvents is an EventHandler that drops every event.
func DiscardEvents(ctx context.Context, ev Event) error {
	return nil
}
