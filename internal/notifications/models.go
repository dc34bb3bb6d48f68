package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies which booking event a message describes
type NotificationType string

const (
	TypeBookingConfirmed      NotificationType = "BOOKING_CONFIRMED"
	TypeBookingCancelled      NotificationType = "BOOKING_CANCELLED"
	TypeCancellationRequested NotificationType = "CANCELLATION_REQUESTED"
	TypeRefundIssued          NotificationType = "REFUND_ISSUED"
)

// Notification is the message published to Kafka for downstream delivery
// channels (email, SMS). The booking flow never waits on it.
type Notification struct {
	ID            string           `json:"id"`
	Type          NotificationType `json:"type"`
	BookingID     string           `json:"booking_id"`
	TicketNumber  string           `json:"ticket_number,omitempty"`
	CustomerName  string           `json:"customer_name"`
	CustomerEmail string           `json:"customer_email"`
	MovieTitle    string           `json:"movie_title,omitempty"`
	ShowtimeID    string           `json:"showtime_id,omitempty"`
	Seats         []string         `json:"seats,omitempty"`
	Amount        float64          `json:"amount,omitempty"`
	RefundAmount  float64          `json:"refund_amount,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// NewNotification creates a notification with identity and timestamp filled in
func NewNotification(nType NotificationType, bookingID string) *Notification {
	return &Notification{
		ID:        uuid.New().String(),
		Type:      nType,
		BookingID: bookingID,
		CreatedAt: time.Now(),
	}
}

// ToJSON serializes the notification for the wire
func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// GetPartitionKey routes all messages for one booking to the same partition
// so delivery order per booking is preserved.
func (n *Notification) GetPartitionKey() string {
	return n.BookingID
}
