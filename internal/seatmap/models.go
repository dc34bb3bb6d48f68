package seatmap

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeatState is the authoritative state of a seat for its showtime
type SeatState string

const (
	StateAvailable SeatState = "AVAILABLE"
	StateHeld      SeatState = "HELD"
	StateBooked    SeatState = "BOOKED"
)

// SeatCategory determines the pricing tier of a seat
type SeatCategory string

const (
	CategoryRegular SeatCategory = "REGULAR"
	CategoryPremium SeatCategory = "PREMIUM"
	CategoryVIP     SeatCategory = "VIP"
)

// Seat defines the structure for individual seats, scoped to a showtime.
// State is owned by the store and mutated only through CompareAndSetStates.
type Seat struct {
	ID         uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShowtimeID uuid.UUID    `gorm:"type:uuid;index;not null;uniqueIndex:idx_showtime_seat" json:"showtime_id"`
	Row        string       `gorm:"not null;uniqueIndex:idx_showtime_seat" json:"row"`
	Number     int          `gorm:"not null;uniqueIndex:idx_showtime_seat" json:"number"`
	Category   SeatCategory `gorm:"type:varchar(20);check:category IN ('REGULAR', 'PREMIUM', 'VIP');default:'REGULAR'" json:"category"`
	Price      float64      `gorm:"not null" json:"price"`
	State      SeatState    `gorm:"type:varchar(20);check:state IN ('AVAILABLE', 'HELD', 'BOOKED');default:'AVAILABLE'" json:"state"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

// Label returns the human-readable seat label, e.g. "A12"
func (s *Seat) Label() string {
	return fmt.Sprintf("%s%d", s.Row, s.Number)
}

func (s *Seat) IsAvailable() bool {
	return s.State == StateAvailable
}

// ToResponse converts a Seat to its API representation
func (s *Seat) ToResponse() SeatResponse {
	return SeatResponse{
		ID:       s.ID.String(),
		Label:    s.Label(),
		Row:      s.Row,
		Number:   s.Number,
		Category: string(s.Category),
		Price:    s.Price,
		State:    string(s.State),
	}
}

// SeatResponse for API responses
type SeatResponse struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Row      string  `json:"row"`
	Number   int     `json:"number"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	State    string  `json:"state"`
}

// SeatMapResponse is the full seat map for rendering
type SeatMapResponse struct {
	ShowtimeID string         `json:"showtime_id"`
	Seats      []SeatResponse `json:"seats"`
	Total      int            `json:"total"`
	Available  int            `json:"available"`
}
