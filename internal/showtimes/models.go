package showtimes

import (
	"time"

	"github.com/google/uuid"
)

// Showtime is the minimal catalog record the booking core needs: seat-map
// initialization happens against it and the cancellation cutoff is measured
// from its start time. Full catalog management lives in the catalog services.
type Showtime struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MovieID     string    `gorm:"not null;index" json:"movie_id"`
	MovieTitle  string    `gorm:"not null" json:"movie_title"`
	TheaterID   string    `gorm:"not null;index" json:"theater_id"`
	TheaterName string    `json:"theater_name"`
	Screen      string    `gorm:"not null" json:"screen"`
	StartTime   time.Time `gorm:"not null;index" json:"start_time"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName sets the table name for Showtime
func (Showtime) TableName() string {
	return "showtimes"
}

// HasStarted reports whether the showtime has already begun
func (s *Showtime) HasStarted(now time.Time) bool {
	return !now.Before(s.StartTime)
}
