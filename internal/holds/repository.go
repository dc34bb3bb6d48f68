package holds

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Hold CRUD
	CreateHold(ctx context.Context, hold *Hold) error
	GetHoldByID(ctx context.Context, id uuid.UUID) (*Hold, error)
	DeleteHold(ctx context.Context, id uuid.UUID) error

	// UpdateStatusConditional is the serialization point between the sweep,
	// release and commit: exactly one caller wins the transition out of ACTIVE.
	UpdateStatusConditional(ctx context.Context, id uuid.UUID, expected, next HoldStatus) (bool, error)

	// ListExpiredActive returns ACTIVE holds whose deadline has passed
	ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]Hold, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// HOLD CRUD

func (r *repository) CreateHold(ctx context.Context, hold *Hold) error {
	return r.db.WithContext(ctx).Create(hold).Error
}

func (r *repository) GetHoldByID(ctx context.Context, id uuid.UUID) (*Hold, error) {
	var hold Hold
	err := r.db.WithContext(ctx).
		Preload("Seats").
		First(&hold, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &hold, nil
}

func (r *repository) DeleteHold(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hold_id = ?", id).Delete(&HoldSeat{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Hold{}, "id = ?", id).Error
	})
}

// STATUS TRANSITIONS

func (r *repository) UpdateStatusConditional(ctx context.Context, id uuid.UUID, expected, next HoldStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Hold{}).
		Where("id = ? AND status = ?", id, expected).
		Update("status", next)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]Hold, error) {
	var holds []Hold
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("status = ? AND expires_at <= ?", StatusActive, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&holds).Error
	return holds, err
}
