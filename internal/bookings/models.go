package bookings

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	StatusPending             BookingStatus = "PENDING"
	StatusConfirmed           BookingStatus = "CONFIRMED"
	StatusCancelled           BookingStatus = "CANCELLED"
	StatusCancellationPending BookingStatus = "CANCELLATION_PENDING"
)

// Booking is the durable ledger entry for a committed reservation. HoldID is
// unique: one hold produces at most one booking, which makes commit retries
// idempotent.
type Booking struct {
	ID         uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	HoldID     uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null" json:"hold_id"`
	ShowtimeID uuid.UUID     `gorm:"type:uuid;index;not null" json:"showtime_id"`
	UserID     string        `gorm:"type:varchar(100);index;not null" json:"user_id"`
	Status     BookingStatus `gorm:"type:varchar(30);check:status IN ('PENDING', 'CONFIRMED', 'CANCELLED', 'CANCELLATION_PENDING');default:'PENDING'" json:"status"`

	CustomerName  string `gorm:"type:varchar(100);not null" json:"customer_name"`
	CustomerEmail string `gorm:"type:varchar(255);not null" json:"customer_email"`
	CustomerPhone string `gorm:"type:varchar(20);not null" json:"customer_phone"`

	TotalAmount  float64 `gorm:"not null" json:"total_amount"`
	TicketNumber string  `gorm:"type:varchar(20);uniqueIndex;not null" json:"ticket_number"`
	QRCode       string  `gorm:"type:text" json:"qr_code,omitempty"`

	PaymentOrderID string `gorm:"type:varchar(100)" json:"payment_order_id"`
	PaymentID      string `gorm:"type:varchar(100)" json:"payment_id"`

	RefundAmount            *float64   `json:"refund_amount,omitempty"`
	RefundDate              *time.Time `json:"refund_date,omitempty"`
	CancellationReason      *string    `gorm:"type:varchar(500)" json:"cancellation_reason,omitempty"`
	CancellationRequestedAt *time.Time `json:"cancellation_requested_at,omitempty"`

	SeatBookings []SeatBooking `gorm:"foreignKey:BookingID" json:"seat_bookings"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// SeatIDs returns the seat ids this booking occupies
func (b *Booking) SeatIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.SeatBookings))
	for i := range b.SeatBookings {
		ids = append(ids, b.SeatBookings[i].SeatID)
	}
	return ids
}

// SeatLabels returns the human-readable seat labels, e.g. ["A1", "A2"]
func (b *Booking) SeatLabels() []string {
	labels := make([]string, 0, len(b.SeatBookings))
	for i := range b.SeatBookings {
		labels = append(labels, b.SeatBookings[i].SeatLabel)
	}
	return labels
}

// SeatBooking records one seat occupied by a booking, with the price paid
type SeatBooking struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	SeatID    uuid.UUID `gorm:"type:uuid;index;not null" json:"seat_id"`
	SeatLabel string    `gorm:"type:varchar(10);not null" json:"seat_label"`
	SeatPrice float64   `gorm:"not null" json:"seat_price"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName sets the table name for SeatBooking
func (SeatBooking) TableName() string {
	return "seat_bookings"
}

// BookingResponse for API responses
type BookingResponse struct {
	ID                 string                `json:"id"`
	TicketNumber       string                `json:"ticket_number"`
	Status             string                `json:"status"`
	ShowtimeID         string                `json:"showtime_id"`
	CustomerName       string                `json:"customer_name"`
	CustomerEmail      string                `json:"customer_email"`
	Seats              []SeatBookingResponse `json:"seats"`
	TotalAmount        float64               `json:"total_amount"`
	QRCode             string                `json:"qr_code,omitempty"`
	RefundAmount       *float64              `json:"refund_amount,omitempty"`
	RefundDate         *time.Time            `json:"refund_date,omitempty"`
	CancellationReason *string               `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
}

type SeatBookingResponse struct {
	SeatID    string  `json:"seat_id"`
	SeatLabel string  `json:"seat_label"`
	SeatPrice float64 `json:"seat_price"`
}

// ToResponse converts a Booking to its API representation
func (b *Booking) ToResponse() BookingResponse {
	resp := BookingResponse{
		ID:                 b.ID.String(),
		TicketNumber:       b.TicketNumber,
		Status:             string(b.Status),
		ShowtimeID:         b.ShowtimeID.String(),
		CustomerName:       b.CustomerName,
		CustomerEmail:      b.CustomerEmail,
		Seats:              make([]SeatBookingResponse, 0, len(b.SeatBookings)),
		TotalAmount:        b.TotalAmount,
		QRCode:             b.QRCode,
		RefundAmount:       b.RefundAmount,
		RefundDate:         b.RefundDate,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
	}
	for i := range b.SeatBookings {
		resp.Seats = append(resp.Seats, SeatBookingResponse{
			SeatID:    b.SeatBookings[i].SeatID.String(),
			SeatLabel: b.SeatBookings[i].SeatLabel,
			SeatPrice: b.SeatBookings[i].SeatPrice,
		})
	}
	return resp
}
