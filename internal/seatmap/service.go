package seatmap

import (
	"context"
	"errors"
	"fmt"

	"revticket/internal/shared/config"
	"revticket/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrShowtimeNotFound = errors.New("showtime has no seat map")

// Store is the single owner of seat state. Every transition (hold, release,
// book, cancel) funnels through CompareAndSetStates under a per-showtime lock
// shard, so overlapping multi-seat transitions can never both succeed.
type Store interface {
	// Reads
	GetSeatMap(ctx context.Context, showtimeID uuid.UUID) (*SeatMapResponse, error)
	GetSeatStates(ctx context.Context, showtimeID uuid.UUID) (map[uuid.UUID]SeatState, error)
	GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error)

	// CompareAndSetStates atomically flips all seats in seatIDs from expected
	// to next. Returns false with no mutation if any seat is not in expected.
	CompareAndSetStates(ctx context.Context, showtimeID uuid.UUID, seatIDs []uuid.UUID, expected, next SeatState) (bool, error)

	// SeatsNotInState reports which of seatIDs are currently outside the given
	// state, for conflict responses after a failed compare-and-set.
	SeatsNotInState(ctx context.Context, seatIDs []uuid.UUID, state SeatState) ([]string, error)

	// InitializeShowtime creates the seat inventory for a showtime from a
	// screen layout. Idempotent: a showtime that already has seats is left
	// untouched.
	InitializeShowtime(ctx context.Context, showtimeID uuid.UUID, layout ScreenLayout) (int, error)

	// SetCacheService wires the optional Redis cache for seat map reads
	SetCacheService(cacheService cache.Service)
}

// ScreenLayout describes the physical seat arrangement of a screen. Rows are
// labelled A, B, C... in order; each row band carries its category and price.
type ScreenLayout struct {
	Rows []RowLayout `json:"rows" binding:"required,min=1,dive"`
}

// RowLayout is one band of identical rows
type RowLayout struct {
	Count    int          `json:"count" binding:"required,min=1,max=26"`
	SeatsPer int          `json:"seats_per_row" binding:"required,min=1,max=50"`
	Category SeatCategory `json:"category" binding:"required,oneof=REGULAR PREMIUM VIP"`
	Price    float64      `json:"price" binding:"required,gt=0"`
}

type store struct {
	repo         Repository
	locks        *lockRing
	config       *config.Config
	cacheService cache.Service
}

func NewStore(repo Repository, cfg *config.Config) Store {
	return &store{
		repo:   repo,
		locks:  newLockRing(defaultLockShards),
		config: cfg,
	}
}

// SetCacheService wires the optional Redis cache for seat map reads
func (s *store) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// READS

func (s *store) GetSeatMap(ctx context.Context, showtimeID uuid.UUID) (*SeatMapResponse, error) {
	cacheKey := cache.SeatMapKey(showtimeID.String())

	if s.cacheService != nil {
		var cached SeatMapResponse
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	seats, err := s.repo.GetSeatsByShowtimeID(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seat map: %w", err)
	}
	if len(seats) == 0 {
		return nil, ErrShowtimeNotFound
	}

	resp := &SeatMapResponse{
		ShowtimeID: showtimeID.String(),
		Seats:      make([]SeatResponse, 0, len(seats)),
		Total:      len(seats),
	}
	for i := range seats {
		resp.Seats = append(resp.Seats, seats[i].ToResponse())
		if seats[i].IsAvailable() {
			resp.Available++
		}
	}

	if s.cacheService != nil {
		_ = s.cacheService.Set(ctx, cacheKey, resp, s.config.Redis.SeatMapTTL)
	}

	return resp, nil
}

func (s *store) GetSeatStates(ctx context.Context, showtimeID uuid.UUID) (map[uuid.UUID]SeatState, error) {
	seats, err := s.repo.GetSeatsByShowtimeID(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seat states: %w", err)
	}

	states := make(map[uuid.UUID]SeatState, len(seats))
	for i := range seats {
		states[seats[i].ID] = seats[i].State
	}
	return states, nil
}

func (s *store) GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error) {
	return s.repo.GetSeatsByIDs(ctx, seatIDs)
}

// STATE TRANSITIONS

func (s *store) CompareAndSetStates(ctx context.Context, showtimeID uuid.UUID, seatIDs []uuid.UUID, expected, next SeatState) (bool, error) {
	if len(seatIDs) == 0 {
		return false, fmt.Errorf("no seats specified")
	}

	var ok bool
	err := s.locks.withLock(showtimeID, func() error {
		var casErr error
		ok, casErr = s.repo.UpdateStatesConditional(ctx, showtimeID, seatIDs, expected, next)
		return casErr
	})
	if err != nil {
		return false, fmt.Errorf("seat state transition failed: %w", err)
	}

	if ok {
		s.invalidateSeatMap(ctx, showtimeID)
	}
	return ok, nil
}

func (s *store) SeatsNotInState(ctx context.Context, seatIDs []uuid.UUID, state SeatState) ([]string, error) {
	seats, err := s.repo.GetSeatsByIDs(ctx, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}

	found := make(map[uuid.UUID]SeatState, len(seats))
	for i := range seats {
		found[seats[i].ID] = seats[i].State
	}

	var conflicting []string
	for _, id := range seatIDs {
		st, ok := found[id]
		if !ok || st != state {
			conflicting = append(conflicting, id.String())
		}
	}
	return conflicting, nil
}

// INITIALIZATION

func (s *store) InitializeShowtime(ctx context.Context, showtimeID uuid.UUID, layout ScreenLayout) (int, error) {
	existing, err := s.repo.CountSeatsByShowtimeID(ctx, showtimeID)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing seats: %w", err)
	}
	if existing > 0 {
		return int(existing), nil
	}

	var seats []Seat
	rowIdx := 0
	for _, band := range layout.Rows {
		for i := 0; i < band.Count; i++ {
			rowLabel := string(rune('A' + rowIdx))
			for num := 1; num <= band.SeatsPer; num++ {
				seats = append(seats, Seat{
					ShowtimeID: showtimeID,
					Row:        rowLabel,
					Number:     num,
					Category:   band.Category,
					Price:      band.Price,
					State:      StateAvailable,
				})
			}
			rowIdx++
		}
	}

	if len(seats) == 0 {
		return 0, fmt.Errorf("screen layout produced no seats")
	}

	if err := s.repo.CreateSeats(ctx, seats); err != nil {
		return 0, fmt.Errorf("failed to create seats: %w", err)
	}

	return len(seats), nil
}

func (s *store) invalidateSeatMap(ctx context.Context, showtimeID uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	_ = s.cacheService.Delete(ctx, cache.SeatMapKey(showtimeID.String()))
}

// IsNotFound reports whether err means the seat map does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShowtimeNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
