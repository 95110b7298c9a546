package balancer

import "log"

// EventType identifies a structured engine event.
type EventType string

const (
	EventGenerationStarted EventType = "GENERATION_STARTED"
	EventPoolTruncated     EventType = "POOL_TRUNCATED"
	EventCandidatesReady   EventType = "CANDIDATES_READY"
	EventSamplingExhausted EventType = "SAMPLING_EXHAUSTED"
	EventDiversityResult   EventType = "DIVERSITY_RESULT"
	EventFallback          EventType = "FALLBACK_UNFILTERED"
	EventConfigWarning     EventType = "CONFIG_WARNING"
)

// Event is a structured progress or diagnostic notification. Counters carries
// rejection counts keyed by reason where applicable.
type Event struct {
	Type     EventType      `json:"type"`
	Message  string         `json:"message,omitempty"`
	Counters map[string]int `json:"counters,omitempty"`
}

// Observer receives engine events. Implementations must be cheap; the engine
// publishes synchronously from the generation path.
type Observer interface {
	Publish(Event)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) Publish(Event) {}

// LogObserver writes events to the standard logger.
type LogObserver struct{}

func (LogObserver) Publish(e Event) {
	if len(e.Counters) > 0 {
		log.Printf("[balancer] %s %s %v", e.Type, e.Message, e.Counters)
		return
	}
	log.Printf("[balancer] %s %s", e.Type, e.Message)
}
