package models

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	IDTypePassport       = "passport"
	IDTypeDrivingLicense = "driving_license"
	IDTypeNationalID     = "national_id"
)

// TravelDateLayout is the wire form of a booking's travel date.
const TravelDateLayout = "2006-01-02"

// Passenger is booking-scoped data for one traveler on one seat.
type Passenger struct {
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	IDType   string `json:"id_type"`
	IDNumber string `json:"id_number"`
	Seat     int    `json:"seat"`
}

// Booking is one ledger entry. Train is a snapshot taken at booking
// time, not a live catalog reference.
type Booking struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Train       Train       `json:"train"`
	TrainClass  string      `json:"train_class"`
	Date        string      `json:"date"`
	Passengers  []Passenger `json:"passengers"`
	TotalPrice  float64     `json:"total_price"`
	Status      string      `json:"status"`
	BookingDate time.Time   `json:"booking_date"`
}

func (b Booking) Clone() Booking {
	out := b
	out.Train = b.Train.Clone()
	out.Passengers = append([]Passenger(nil), b.Passengers...)
	return out
}

// Trip is the read-time classification of a booking relative to a clock.
type Trip string

const (
	TripUpcoming  Trip = "upcoming"
	TripPast      Trip = "past"
	TripCancelled Trip = "cancelled"
)

// ClassifyTrip derives the trip bucket from the booking's status and
// travel date against the supplied clock. It is never stored; the
// caller passes an explicit now so the result stays deterministic.
// An unparseable travel date classifies as past.
func ClassifyTrip(b Booking, now time.Time) Trip {
	if b.Status == StatusCancelled {
		return TripCancelled
	}
	travel, err := time.ParseInLocation(TravelDateLayout, b.Date, now.Location())
	if err != nil {
		return TripPast
	}
	if travel.Before(now) {
		return TripPast
	}
	return TripUpcoming
}
