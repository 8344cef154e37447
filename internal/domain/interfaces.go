package domain

// EventPublisher is what stores use to emit domain events after a
// successful mutation. A nil-safe implementation lives in
// internal/events.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
