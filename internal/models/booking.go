package models

// Typed schema for the upstream booking payload. The upstream returns a
// loosely shaped JSON document; parsing it into these structs up front keeps
// the rest of the pipeline free of map lookups.

// BookingResponse is the top-level reservation lookup result
type BookingResponse struct {
	Reservations Reservations `json:"Reservations"`
}

// Reservations wraps the reservation list
type Reservations struct {
	Reservation []Reservation `json:"Reservation"`
}

// Reservation is one reservation with its booking transactions
type Reservation struct {
	BookedBy    string        `json:"BookedBy"`
	Email       string        `json:"Email"`
	BookingTran []BookingTran `json:"BookingTran"`
}

// BookingTran is one stay segment within a reservation
type BookingTran struct {
	Status       string       `json:"Status"`
	Start        string       `json:"Start"`
	End          string       `json:"End"`
	RoomTypeName string       `json:"RoomTypeName"`
	RoomName     string       `json:"RoomName"`
	PackageName  string       `json:"PackageName"`
	VoucherNo    string       `json:"VoucherNo"`
	RentPreTax   string       `json:"RentPreTax"`
	Salutation   string       `json:"Salutation"`
	FirstName    string       `json:"FirstName"`
	LastName     string       `json:"LastName"`
	Sharer       []Guest      `json:"Sharer"`
	RentalInfo   []RentalInfo `json:"RentalInfo"`
}

// Guest identifies one person on a booking transaction
type Guest struct {
	Salutation string `json:"Salutation"`
	FirstName  string `json:"FirstName"`
	LastName   string `json:"LastName"`
}

// RentalInfo carries per-stay rate details
type RentalInfo struct {
	RentPreTax string `json:"RentPreTax"`
}

// StatusCancelled is the upstream status excluded from invoicing.
// The match is case-sensitive, as delivered by the upstream.
const StatusCancelled = "Cancelled"
