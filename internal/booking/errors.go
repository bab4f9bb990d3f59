package booking

import "errors"

var (
	// ErrNoReservations indicates the upstream payload carried no reservations
	ErrNoReservations = errors.New("no booking data found for this reservation number")

	// ErrNoBillableBookings indicates every transaction was cancelled or unpriced
	ErrNoBillableBookings = errors.New("no billable bookings found for this reservation number")

	// ErrInvalidDateRange indicates a stay shorter than one night or unusable dates
	ErrInvalidDateRange = errors.New("invalid stay date range")
)
