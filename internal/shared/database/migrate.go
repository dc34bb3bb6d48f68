package database

import (
	"revticket/internal/bookings"
	"revticket/internal/holds"
	"revticket/internal/seatmap"
	"revticket/internal/showtimes"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&showtimes.Showtime{},
		&seatmap.Seat{},
		&holds.Hold{},
		&holds.HoldSeat{},
		&bookings.Booking{},
		&bookings.SeatBooking{},
	)
}
