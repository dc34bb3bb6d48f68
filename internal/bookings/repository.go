package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Booking CRUD
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByHoldID(ctx context.Context, holdID uuid.UUID) (*Booking, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]Booking, error)

	// Status transitions
	UpdateStatusConditional(ctx context.Context, id uuid.UUID, expected, next BookingStatus) (bool, error)
	MarkCancellationPending(ctx context.Context, id uuid.UUID, reason string, requestedAt time.Time) (bool, error)
	MarkCancelled(ctx context.Context, id uuid.UUID, refundAmount float64, refundDate time.Time) (bool, error)

	// Admin views
	ListByStatus(ctx context.Context, status BookingStatus, limit, offset int) ([]Booking, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// BOOKING CRUD

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("SeatBookings").
		First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByHoldID(ctx context.Context, holdID uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("SeatBookings").
		First(&booking, "hold_id = ?", holdID).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Preload("SeatBookings").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bookings).Error
	return bookings, err
}

// STATUS TRANSITIONS

func (r *repository) UpdateStatusConditional(ctx context.Context, id uuid.UUID, expected, next BookingStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status = ?", id, expected).
		Update("status", next)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) MarkCancellationPending(ctx context.Context, id uuid.UUID, reason string, requestedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusConfirmed).
		Updates(map[string]interface{}{
			"status":                    StatusCancellationPending,
			"cancellation_reason":       reason,
			"cancellation_requested_at": requestedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) MarkCancelled(ctx context.Context, id uuid.UUID, refundAmount float64, refundDate time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status IN ?", id, []BookingStatus{StatusConfirmed, StatusCancellationPending}).
		Updates(map[string]interface{}{
			"status":        StatusCancelled,
			"refund_amount": refundAmount,
			"refund_date":   refundDate,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ADMIN VIEWS

func (r *repository) ListByStatus(ctx context.Context, status BookingStatus, limit, offset int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Preload("SeatBookings").
		Where("status = ?", status).
		Order("cancellation_requested_at ASC NULLS LAST, created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&bookings).Error
	return bookings, err
}
