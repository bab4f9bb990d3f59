package models

import "time"

// Invoice status labels. Display-only: the system never drives transitions.
const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusSent    = "sent"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// LineItem is one billable row on an invoice, derived from one booking
// transaction. Immutable after creation.
type LineItem struct {
	Description  string    `json:"description"`
	CheckIn      time.Time `json:"checkIn"`
	CheckOut     time.Time `json:"checkOut"`
	Nights       int       `json:"nights"`
	RatePerNight float64   `json:"ratePerNight"`
	Subtotal     float64   `json:"subtotal"`
	Tax          float64   `json:"vat"`
	Total        float64   `json:"total"`
}

// Invoice is a generated invoice record
type Invoice struct {
	ID                string     `json:"id"`
	InvoiceNumber     string     `json:"invoiceNumber"`
	ReservationNumber string     `json:"reservationNumber"`
	HotelID           string     `json:"hotelId"`
	CustomerName      string     `json:"customerName"`
	CustomerEmail     string     `json:"customerEmail"`
	Property          string     `json:"property"`
	Date              time.Time  `json:"date"`
	DueDate           time.Time  `json:"dueDate"`
	Items             []LineItem `json:"items"`
	Subtotal          float64    `json:"subtotal"`
	Tax               float64    `json:"tax"`
	Total             float64    `json:"total"`
	VATRate           float64    `json:"vatRate"`
	Notes             string     `json:"notes,omitempty"`
	Status            string     `json:"status"`
	PDFPath           string     `json:"-"`
	SentAt            *time.Time `json:"sentAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}
