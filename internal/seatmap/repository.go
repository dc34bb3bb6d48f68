package seatmap

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Seat CRUD
	CreateSeats(ctx context.Context, seats []Seat) error
	GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error)
	GetSeatsByShowtimeID(ctx context.Context, showtimeID uuid.UUID) ([]Seat, error)
	GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error)
	CountSeatsByShowtimeID(ctx context.Context, showtimeID uuid.UUID) (int64, error)

	// State transitions
	UpdateStatesConditional(ctx context.Context, showtimeID uuid.UUID, seatIDs []uuid.UUID, expected, next SeatState) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// SEAT CRUD

func (r *repository) CreateSeats(ctx context.Context, seats []Seat) error {
	return r.db.WithContext(ctx).Create(&seats).Error
}

func (r *repository) GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error) {
	var seat Seat
	err := r.db.WithContext(ctx).First(&seat, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *repository) GetSeatsByShowtimeID(ctx context.Context, showtimeID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("showtime_id = ?", showtimeID).
		Order("row ASC, number ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("id IN ?", seatIDs).
		Order("row ASC, number ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) CountSeatsByShowtimeID(ctx context.Context, showtimeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Seat{}).
		Where("showtime_id = ?", showtimeID).
		Count(&count).Error
	return count, err
}

// STATE TRANSITIONS

// errCASConflict aborts the transaction when not every seat matched; it never
// escapes UpdateStatesConditional.
var errCASConflict = errors.New("seat state conflict")

// UpdateStatesConditional flips every seat in seatIDs from expected to next in
// one transaction. Returns (false, nil) with no mutation when any seat is not
// currently in expected.
func (r *repository) UpdateStatesConditional(ctx context.Context, showtimeID uuid.UUID, seatIDs []uuid.UUID, expected, next SeatState) (bool, error) {
	conflict := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Seat{}).
			Where("showtime_id = ? AND id IN ? AND state = ?", showtimeID, seatIDs, expected).
			Update("state", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(seatIDs)) {
			conflict = true
			return errCASConflict // roll back partial update
		}
		return nil
	})
	if conflict {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
