package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe(EventBookingCreated, func(e *Event) error {
		var payload BookingEventPayload
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return err
		}
		got = append(got, payload.BookingID)
		return nil
	})

	err := bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: "b1"})
	require.NoError(t, err)
	err = bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: "b2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"b1", "b2"}, got)
}

func TestBusIgnoresOtherEventTypes(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Subscribe(EventUserSignedUp, func(e *Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventBookingCancelled, BookingEventPayload{BookingID: "b1"}))
	assert.Zero(t, calls)
}

func TestBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewBus()

	called := false
	bus.Subscribe(EventUserLoggedIn, func(e *Event) error {
		return errors.New("handler failed")
	})
	bus.Subscribe(EventUserLoggedIn, func(e *Event) error {
		called = true
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventUserLoggedIn, UserEventPayload{UserID: "u1"}))
	assert.True(t, called)
}

func TestNilBusPublishIsNoop(t *testing.T) {
	var bus *Bus
	assert.NoError(t, bus.PublishJSON(EventUserLoggedOut, UserEventPayload{UserID: "u1"}))
}
