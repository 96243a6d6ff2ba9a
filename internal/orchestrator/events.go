package orchestrator

import "github.com/rs/zerolog"

// Event is one orchestrator lifecycle event. Minimal and stable: name +
// model id and optional fields via key/values.
type Event struct {
	Name    string
	ModelID string
	Fields  map[string]any
}

// EventPublisher receives events from the orchestrator. Implementations
// should be lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// LogPublisher writes events through a zerolog logger.
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher builds a publisher logging at info level.
func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log.With().Str("component", "events").Logger()}
}

func (p *LogPublisher) Publish(e Event) {
	ev := p.log.Info().Str("event", e.Name)
	if e.ModelID != "" {
		ev = ev.Str("model_id", e.ModelID)
	}
	for k, v := range e.Fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("lifecycle event")
}
