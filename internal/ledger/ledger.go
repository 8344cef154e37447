// Package ledger is the append-only booking store. Entries are
// created once, transition confirmed to cancelled at most once, and
// are never deleted. State persists to the bookings snapshot slot
// after every mutation.
package ledger

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trainswift/internal/domain"
	"trainswift/internal/events"
	"trainswift/internal/metrics"
	"trainswift/internal/models"
	"trainswift/internal/snapshot"
)

// Request carries the caller-supplied fields of a new booking. The
// ledger is a pure recorder: seat availability, price correctness, and
// passenger completeness are the caller's responsibility, and
// malformed input is recorded as-is rather than repaired.
type Request struct {
	UserID     string
	Train      models.Train
	TrainClass string
	Date       string
	Passengers []models.Passenger
	TotalPrice float64
}

type ledgerState struct {
	Version  int              `json:"version"`
	Bookings []models.Booking `json:"bookings"`
}

// Ledger owns the bookings table exclusively; callers only ever see
// copies.
type Ledger struct {
	mu        sync.Mutex
	bookings  []models.Booking
	snapshots snapshot.Repository
	bus       domain.EventPublisher
	logger    *zerolog.Logger
	now       func() time.Time
}

// New restores persisted bookings from the snapshot slot. A nil now
// uses the wall clock; tests inject their own.
func New(ctx context.Context, snapshots snapshot.Repository, bus domain.EventPublisher, now func() time.Time, logger *zerolog.Logger) *Ledger {
	if now == nil {
		now = time.Now
	}

	l := &Ledger{
		snapshots: snapshots,
		bus:       bus,
		logger:    logger,
		now:       now,
	}

	data, err := snapshots.Load(ctx, snapshot.SlotBookings)
	if err != nil {
		logger.Error().Err(err).Msg("load bookings snapshot failed, starting empty")
		return l
	}
	if data == nil {
		return l
	}

	var state ledgerState
	if err := json.Unmarshal(data, &state); err != nil || state.Version != snapshot.SchemaVersion {
		logger.Warn().Msg("bookings snapshot unreadable or from another schema version, starting empty")
		return l
	}

	l.bookings = state.Bookings
	return l
}

// Add synthesizes an id, stamps the creation time, appends the booking
// as confirmed, and returns a copy of the new record.
func (l *Ledger) Add(ctx context.Context, req Request) models.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()

	booking := models.Booking{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Train:       req.Train.Clone(),
		TrainClass:  req.TrainClass,
		Date:        req.Date,
		Passengers:  append([]models.Passenger(nil), req.Passengers...),
		TotalPrice:  req.TotalPrice,
		Status:      models.StatusConfirmed,
		BookingDate: l.now(),
	}

	l.bookings = append(l.bookings, booking)
	l.saveLocked(ctx)
	metrics.IncStoreOp("ledger", "add")
	l.publish(events.EventBookingCreated, booking)

	return booking.Clone()
}

// Cancel marks the booking cancelled. Unknown ids and already
// cancelled bookings are no-ops, so the call is idempotent.
func (l *Ledger) Cancel(ctx context.Context, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.bookings {
		if l.bookings[i].ID != id || l.bookings[i].Status == models.StatusCancelled {
			continue
		}

		l.bookings[i].Status = models.StatusCancelled
		l.saveLocked(ctx)
		metrics.IncStoreOp("ledger", "cancel")
		l.publish(events.EventBookingCancelled, l.bookings[i])
		return
	}
}

// ForUser returns copies of the user's bookings in insertion order.
// Callers partition into upcoming, past, and cancelled themselves via
// models.ClassifyTrip.
func (l *Ledger) ForUser(userID string) []models.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []models.Booking
	for _, b := range l.bookings {
		if b.UserID == userID {
			out = append(out, b.Clone())
		}
	}
	return out
}

// Find returns a copy of one booking by id.
func (l *Ledger) Find(id string) (models.Booking, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, b := range l.bookings {
		if b.ID == id {
			return b.Clone(), true
		}
	}
	return models.Booking{}, false
}

// Len reports the total number of ledger entries across all users.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bookings)
}

func (l *Ledger) publish(eventType string, b models.Booking) {
	if l.bus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  b.ID,
		UserID:     b.UserID,
		TrainID:    b.Train.ID,
		TrainName:  b.Train.Name,
		TrainClass: b.TrainClass,
		Date:       b.Date,
		Seats:      len(b.Passengers),
		TotalPrice: b.TotalPrice,
		Status:     b.Status,
	}
	if err := l.bus.PublishJSON(eventType, payload); err != nil {
		l.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", b.ID).Msg("publish event error")
	}
}

func (l *Ledger) saveLocked(ctx context.Context) {
	state := ledgerState{
		Version:  snapshot.SchemaVersion,
		Bookings: l.bookings,
	}
	data, err := json.Marshal(state)
	if err != nil {
		l.logger.Error().Err(err).Msg("marshal bookings state failed")
		return
	}
	if err := l.snapshots.Save(ctx, snapshot.SlotBookings, data); err != nil {
		l.logger.Error().Err(err).Msg("save bookings snapshot failed")
	}
}
