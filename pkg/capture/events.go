package capture

import "time"

// Event is the structured per-tick status the engine emits instead of
// touching any display directly. A presentation layer (CLI bar, websocket
// hub, dashboard) consumes these.
type Event struct {
	Pose      Pose          `json:"pose"`
	State     string        `json:"state"`
	Motion    float64       `json:"motion"`
	Sharpness float64       `json:"sharpness"`
	Score     float64       `json:"score"`
	Progress  float64       `json:"progress"`
	Stable    bool          `json:"stable"`
	Remaining time.Duration `json:"remaining_ms"`
}

// Sink consumes capture events. Publish must not block: a slow sink
// stalls the polling loop.
type Sink interface {
	Publish(Event)
}

// NopSink discards all events.
type NopSink struct{}

// Publish implements Sink.
func (NopSink) Publish(Event) {}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Publish implements Sink.
func (f SinkFunc) Publish(e Event) { f(e) }

// MultiSink fans events out to several sinks in order.
type MultiSink []Sink

// Publish implements Sink.
func (m MultiSink) Publish(e Event) {
	for _, s := range m {
		s.Publish(e)
	}
}
