package holds

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"revticket/internal/seatmap"
	"revticket/internal/shared/config"
	"revticket/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrHoldNotFound        = errors.New("hold not found")
	ErrHoldExpired         = errors.New("hold has expired")
	ErrHoldAlreadyConsumed = errors.New("hold already consumed by a booking")
	ErrHoldReleased        = errors.New("hold has been released")
	ErrTooManySeats        = errors.New("too many seats requested")
)

// SeatsUnavailableError carries the seats that blocked a hold so the caller
// can tell the user exactly which picks to change.
type SeatsUnavailableError struct {
	SeatIDs []string
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.SeatIDs, ", "))
}

type Service interface {
	CreateHold(ctx context.Context, req CreateHoldRequest) (*HoldResponse, error)
	GetHold(ctx context.Context, holdID uuid.UUID) (*HoldResponse, error)
	ReleaseHold(ctx context.Context, holdID uuid.UUID, sessionID string) error

	// GetActiveHold returns the hold only while it is ACTIVE and unexpired;
	// used by the booking flow before verifying payment.
	GetActiveHold(ctx context.Context, holdID uuid.UUID) (*Hold, error)

	// ConsumeHold flips ACTIVE to CONSUMED. Returns false when the sweep or a
	// release won the race; the caller must then undo its own seat transition.
	ConsumeHold(ctx context.Context, holdID uuid.UUID) (bool, error)

	// SweepExpired releases seats of every ACTIVE hold past its deadline.
	// Returns how many holds were expired.
	SweepExpired(ctx context.Context) (int, error)
}

type CreateHoldRequest struct {
	ShowtimeID string   `json:"showtime_id" binding:"required,uuid"`
	SessionID  string   `json:"session_id" binding:"required,max=100"`
	SeatIDs    []string `json:"seat_ids" binding:"required,min=1,dive,uuid"`
}

type service struct {
	repo   Repository
	store  seatmap.Store
	config *config.Config
	logger *logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, store seatmap.Store, cfg *config.Config, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		store:  store,
		config: cfg,
		logger: log,
		now:    time.Now,
	}
}

func (s *service) CreateHold(ctx context.Context, req CreateHoldRequest) (*HoldResponse, error) {
	if len(req.SeatIDs) > s.config.Booking.MaxSeatsPerBooking {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManySeats, s.config.Booking.MaxSeatsPerBooking)
	}

	showtimeID, err := uuid.Parse(req.ShowtimeID)
	if err != nil {
		return nil, fmt.Errorf("invalid showtime id: %w", err)
	}

	seatIDs := make([]uuid.UUID, 0, len(req.SeatIDs))
	for _, raw := range req.SeatIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid seat id %q: %w", raw, err)
		}
		seatIDs = append(seatIDs, id)
	}

	// 1. Verify every seat exists and belongs to this showtime
	seats, err := s.store.GetSeatsByIDs(ctx, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}
	if len(seats) != len(seatIDs) {
		missing, _ := s.store.SeatsNotInState(ctx, seatIDs, seatmap.StateAvailable)
		return nil, &SeatsUnavailableError{SeatIDs: missing}
	}
	for i := range seats {
		if seats[i].ShowtimeID != showtimeID {
			return nil, fmt.Errorf("seat %s does not belong to showtime %s", seats[i].ID, showtimeID)
		}
	}

	// 2. Pin the seats, all or nothing
	ok, err := s.store.CompareAndSetStates(ctx, showtimeID, seatIDs, seatmap.StateAvailable, seatmap.StateHeld)
	if err != nil {
		return nil, err
	}
	if !ok {
		conflicting, cErr := s.store.SeatsNotInState(ctx, seatIDs, seatmap.StateAvailable)
		if cErr != nil {
			conflicting = req.SeatIDs
		}
		return nil, &SeatsUnavailableError{SeatIDs: conflicting}
	}

	// 3. Record the hold with its deadline
	hold := &Hold{
		ShowtimeID: showtimeID,
		SessionID:  req.SessionID,
		Status:     StatusActive,
		ExpiresAt:  s.now().Add(s.config.Booking.HoldTTL),
		Seats:      make([]HoldSeat, 0, len(seats)),
	}
	for i := range seats {
		hold.Seats = append(hold.Seats, HoldSeat{
			SeatID:    seats[i].ID,
			SeatLabel: seats[i].Label(),
			SeatPrice: seats[i].Price,
		})
	}

	if err := s.repo.CreateHold(ctx, hold); err != nil {
		// Insert failed after the seats were pinned: unpin them so they do
		// not leak until the sweep would have no hold to find.
		if _, undoErr := s.store.CompareAndSetStates(ctx, showtimeID, seatIDs, seatmap.StateHeld, seatmap.StateAvailable); undoErr != nil {
			s.logger.LogStateCorruption(ctx, "hold insert failed and seat release failed", map[string]interface{}{
				"showtime_id": showtimeID.String(),
				"error":       undoErr.Error(),
			})
		}
		return nil, fmt.Errorf("failed to create hold: %w", err)
	}

	s.logger.LogHoldCreated(ctx, hold.ID.String(), showtimeID.String(), req.SessionID, len(seatIDs))

	resp := hold.ToResponse()
	return &resp, nil
}

func (s *service) GetHold(ctx context.Context, holdID uuid.UUID) (*HoldResponse, error) {
	hold, err := s.repo.GetHoldByID(ctx, holdID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, fmt.Errorf("failed to load hold: %w", err)
	}
	resp := hold.ToResponse()
	return &resp, nil
}

func (s *service) ReleaseHold(ctx context.Context, holdID uuid.UUID, sessionID string) error {
	hold, err := s.repo.GetHoldByID(ctx, holdID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHoldNotFound
		}
		return fmt.Errorf("failed to load hold: %w", err)
	}
	if hold.SessionID != sessionID {
		return ErrHoldNotFound
	}

	won, err := s.repo.UpdateStatusConditional(ctx, holdID, StatusActive, StatusReleased)
	if err != nil {
		return fmt.Errorf("failed to release hold: %w", err)
	}
	if !won {
		return s.terminalStatusError(ctx, holdID)
	}

	s.freeSeats(ctx, hold)
	s.logger.LogHoldReleased(ctx, holdID.String(), "released by session")
	return nil
}

func (s *service) GetActiveHold(ctx context.Context, holdID uuid.UUID) (*Hold, error) {
	hold, err := s.repo.GetHoldByID(ctx, holdID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, fmt.Errorf("failed to load hold: %w", err)
	}

	switch hold.Status {
	case StatusActive:
		// A hold past its deadline is expired even if the sweep has not
		// flipped it yet; the clock decides, not the sweep.
		if hold.IsExpired(s.now()) {
			return nil, ErrHoldExpired
		}
		return hold, nil
	case StatusConsumed:
		return nil, ErrHoldAlreadyConsumed
	case StatusReleased:
		return nil, ErrHoldReleased
	default:
		return nil, ErrHoldExpired
	}
}

func (s *service) ConsumeHold(ctx context.Context, holdID uuid.UUID) (bool, error) {
	return s.repo.UpdateStatusConditional(ctx, holdID, StatusActive, StatusConsumed)
}

// SWEEP

func (s *service) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.repo.ListExpiredActive(ctx, s.now(), sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired holds: %w", err)
	}

	swept := 0
	for i := range expired {
		hold := &expired[i]

		// Win the status first; a commit that already consumed this hold
		// keeps its seats.
		won, err := s.repo.UpdateStatusConditional(ctx, hold.ID, StatusActive, StatusExpired)
		if err != nil {
			s.logger.ErrorWithContext(ctx, "failed to expire hold", err, map[string]interface{}{
				"hold_id": hold.ID.String(),
			})
			continue
		}
		if !won {
			continue
		}

		s.freeSeats(ctx, hold)
		swept++
	}

	return swept, nil
}

// freeSeats flips the hold's seats back to AVAILABLE. A false result is fine:
// it means another flow already moved them on.
func (s *service) freeSeats(ctx context.Context, hold *Hold) {
	seatIDs := hold.SeatIDs()
	if len(seatIDs) == 0 {
		return
	}
	if _, err := s.store.CompareAndSetStates(ctx, hold.ShowtimeID, seatIDs, seatmap.StateHeld, seatmap.StateAvailable); err != nil {
		s.logger.LogStateCorruption(ctx, "failed to free held seats", map[string]interface{}{
			"hold_id": hold.ID.String(),
			"error":   err.Error(),
		})
	}
}

// terminalStatusError maps a hold that already left ACTIVE to its sentinel
func (s *service) terminalStatusError(ctx context.Context, holdID uuid.UUID) error {
	hold, err := s.repo.GetHoldByID(ctx, holdID)
	if err != nil {
		return ErrHoldNotFound
	}
	switch hold.Status {
	case StatusConsumed:
		return ErrHoldAlreadyConsumed
	case StatusReleased:
		// Releasing twice is harmless
		return nil
	default:
		return ErrHoldExpired
	}
}

const sweepBatchSize = 500
