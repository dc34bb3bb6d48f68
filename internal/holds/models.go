package holds

import (
	"time"

	"github.com/google/uuid"
)

// HoldStatus is the lifecycle state of a hold. A hold leaves ACTIVE exactly
// once: the status column is the serialization flag between the expiry sweep,
// an explicit release, and a booking commit.
type HoldStatus string

const (
	StatusActive   HoldStatus = "ACTIVE"
	StatusConsumed HoldStatus = "CONSUMED"
	StatusReleased HoldStatus = "RELEASED"
	StatusExpired  HoldStatus = "EXPIRED"
)

// Hold pins a set of seats for one session until ExpiresAt
type Hold struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShowtimeID uuid.UUID  `gorm:"type:uuid;index;not null" json:"showtime_id"`
	SessionID  string     `gorm:"type:varchar(100);index;not null" json:"session_id"`
	Status     HoldStatus `gorm:"type:varchar(20);check:status IN ('ACTIVE', 'CONSUMED', 'RELEASED', 'EXPIRED');default:'ACTIVE';index" json:"status"`
	ExpiresAt  time.Time  `gorm:"not null;index" json:"expires_at"`
	Seats      []HoldSeat `gorm:"foreignKey:HoldID" json:"seats"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName sets the table name for Hold
func (Hold) TableName() string {
	return "holds"
}

func (h *Hold) IsExpired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

// SeatIDs returns the seat ids pinned by this hold
func (h *Hold) SeatIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(h.Seats))
	for i := range h.Seats {
		ids = append(ids, h.Seats[i].SeatID)
	}
	return ids
}

// HoldSeat records one seat pinned by a hold, with the price captured at
// hold time so the booking total does not drift if pricing changes.
type HoldSeat struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	HoldID    uuid.UUID `gorm:"type:uuid;index;not null" json:"hold_id"`
	SeatID    uuid.UUID `gorm:"type:uuid;index;not null" json:"seat_id"`
	SeatLabel string    `gorm:"type:varchar(10);not null" json:"seat_label"`
	SeatPrice float64   `gorm:"not null" json:"seat_price"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName sets the table name for HoldSeat
func (HoldSeat) TableName() string {
	return "hold_seats"
}

// HoldResponse for API responses
type HoldResponse struct {
	ID         string             `json:"id"`
	ShowtimeID string             `json:"showtime_id"`
	SessionID  string             `json:"session_id"`
	Status     string             `json:"status"`
	ExpiresAt  time.Time          `json:"expires_at"`
	Seats      []HoldSeatResponse `json:"seats"`
	Total      float64            `json:"total_amount"`
}

type HoldSeatResponse struct {
	SeatID    string  `json:"seat_id"`
	SeatLabel string  `json:"seat_label"`
	SeatPrice float64 `json:"seat_price"`
}

// ToResponse converts a Hold to its API representation
func (h *Hold) ToResponse() HoldResponse {
	resp := HoldResponse{
		ID:         h.ID.String(),
		ShowtimeID: h.ShowtimeID.String(),
		SessionID:  h.SessionID,
		Status:     string(h.Status),
		ExpiresAt:  h.ExpiresAt,
		Seats:      make([]HoldSeatResponse, 0, len(h.Seats)),
	}
	for i := range h.Seats {
		resp.Seats = append(resp.Seats, HoldSeatResponse{
			SeatID:    h.Seats[i].SeatID.String(),
			SeatLabel: h.Seats[i].SeatLabel,
			SeatPrice: h.Seats[i].SeatPrice,
		})
		resp.Total += h.Seats[i].SeatPrice
	}
	return resp
}
