package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
	EventUserSignedUp     = "user_signed_up"
	EventUserLoggedIn     = "user_logged_in"
	EventUserLoggedOut    = "user_logged_out"
)

// BookingEventPayload is the booking snapshot handed to event consumers.
type BookingEventPayload struct {
	BookingID  string  `json:"booking_id"`
	UserID     string  `json:"user_id"`
	TrainID    string  `json:"train_id"`
	TrainName  string  `json:"train_name"`
	TrainClass string  `json:"train_class"`
	Date       string  `json:"date"`
	Seats      int     `json:"seats"`
	TotalPrice float64 `json:"total_price"`
	Status     string  `json:"status"`
}

// UserEventPayload accompanies identity events.
type UserEventPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Event is a lightweight domain event with a JSON payload.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Handler reacts to one event.
type Handler func(event *Event) error

// Bus is in-process pub/sub. Handlers run synchronously on the
// publishing goroutine; the caller decides the concurrency model.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for an event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish delivers the event to every subscriber of its type.
func (b *Bus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes it under eventType.
func (b *Bus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
