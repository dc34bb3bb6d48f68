package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"revticket/internal/holds"
	"revticket/internal/notifications"
	"revticket/internal/payments"
	"revticket/internal/seatmap"
	"revticket/internal/showtimes"
	"revticket/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrNotOwner        = errors.New("booking does not belong to user")
)

// Service coordinates the commit of a hold into a durable booking. Payment is
// verified before any seat leaves HELD, and the hold's status flip to
// CONSUMED is the commit point against the expiry sweep.
type Service interface {
	CommitBooking(ctx context.Context, userID string, req CommitBookingRequest) (*BookingResponse, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID, userID string) (*BookingResponse, error)
	GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]BookingResponse, error)

	// Cancellation hooks, called by the cancellation flow
	GetBookingRecord(ctx context.Context, bookingID uuid.UUID) (*Booking, error)
	MarkCancellationPending(ctx context.Context, bookingID uuid.UUID, reason string) (bool, error)
	FinalizeCancellation(ctx context.Context, booking *Booking, refundAmount float64) error
	ListByStatus(ctx context.Context, status BookingStatus, limit, offset int) ([]Booking, error)
}

type CommitBookingRequest struct {
	HoldID        string                `json:"hold_id" binding:"required,uuid"`
	CustomerName  string                `json:"customer_name" binding:"required,max=100"`
	CustomerEmail string                `json:"customer_email" binding:"required,email"`
	CustomerPhone string                `json:"customer_phone" binding:"required,max=20"`
	Payment       payments.Verification `json:"payment" binding:"required"`
}

type service struct {
	repo            Repository
	holdService     holds.Service
	store           seatmap.Store
	verifier        payments.Verifier
	showtimeService showtimes.Service
	dispatcher      *notifications.Dispatcher
	logger          *logger.Logger
	now             func() time.Time
}

func NewService(
	repo Repository,
	holdService holds.Service,
	store seatmap.Store,
	verifier payments.Verifier,
	showtimeService showtimes.Service,
	dispatcher *notifications.Dispatcher,
	log *logger.Logger,
) Service {
	return &service{
		repo:            repo,
		holdService:     holdService,
		store:           store,
		verifier:        verifier,
		showtimeService: showtimeService,
		dispatcher:      dispatcher,
		logger:          log,
		now:             time.Now,
	}
}

// CommitBooking turns an active hold into a confirmed booking
func (s *service) CommitBooking(ctx context.Context, userID string, req CommitBookingRequest) (*BookingResponse, error) {
	holdID, err := uuid.Parse(req.HoldID)
	if err != nil {
		return nil, fmt.Errorf("invalid hold id: %w", err)
	}

	// Step 1: Retry short-circuit. HoldID is unique on bookings, so a commit
	// that already succeeded returns the same booking instead of failing on
	// the consumed hold.
	if existing, err := s.repo.GetByHoldID(ctx, holdID); err == nil {
		resp := existing.ToResponse()
		return &resp, nil
	}

	// Step 2: The hold must still be ACTIVE and inside its deadline
	hold, err := s.holdService.GetActiveHold(ctx, holdID)
	if err != nil {
		return nil, err
	}

	// Step 3: Verify payment before touching any seat state
	if err := s.verifier.Verify(ctx, req.Payment); err != nil {
		s.logger.LogPaymentRejected(ctx, req.Payment.OrderID, err.Error())
		return nil, err
	}

	// Step 4: Flip the held seats to BOOKED
	seatIDs := hold.SeatIDs()
	ok, err := s.store.CompareAndSetStates(ctx, hold.ShowtimeID, seatIDs, seatmap.StateHeld, seatmap.StateBooked)
	if err != nil {
		return nil, fmt.Errorf("failed to book seats: %w", err)
	}
	if !ok {
		// The sweep released the seats between step 2 and now
		return nil, holds.ErrHoldExpired
	}

	// Step 5: Consume the hold. Losing this race means the sweep expired the
	// hold after step 2; undo the seat flip and report expiry.
	consumed, err := s.holdService.ConsumeHold(ctx, holdID)
	if err != nil {
		s.undoSeatBooking(ctx, hold.ShowtimeID, seatIDs)
		return nil, fmt.Errorf("failed to consume hold: %w", err)
	}
	if !consumed {
		s.undoSeatBooking(ctx, hold.ShowtimeID, seatIDs)
		return nil, holds.ErrHoldExpired
	}

	// Step 6: Write the ledger entry
	booking, err := s.buildBooking(userID, hold, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		// A concurrent retry may have inserted the row for this hold first
		if existing, getErr := s.repo.GetByHoldID(ctx, holdID); getErr == nil {
			resp := existing.ToResponse()
			return &resp, nil
		}
		s.logger.LogStateCorruption(ctx, "booking insert failed after hold consumed", map[string]interface{}{
			"hold_id": holdID.String(),
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.logger.LogBookingConfirmed(ctx, booking.ID.String(), booking.ShowtimeID.String(), userID)
	s.notifyConfirmed(ctx, booking)

	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) buildBooking(userID string, hold *holds.Hold, req CommitBookingRequest) (*Booking, error) {
	ticketNumber, err := generateTicketNumber()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ticket number: %w", err)
	}

	bookingID := uuid.New()
	qrCode, err := generateQRCode(ticketNumber, bookingID.String())
	if err != nil {
		// Tickets render without a QR code; do not block the commit
		qrCode = ""
	}

	booking := &Booking{
		ID:             bookingID,
		HoldID:         hold.ID,
		ShowtimeID:     hold.ShowtimeID,
		UserID:         userID,
		Status:         StatusConfirmed,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		TicketNumber:   ticketNumber,
		QRCode:         qrCode,
		PaymentOrderID: req.Payment.OrderID,
		PaymentID:      req.Payment.PaymentID,
		SeatBookings:   make([]SeatBooking, 0, len(hold.Seats)),
	}
	for i := range hold.Seats {
		booking.TotalAmount += hold.Seats[i].SeatPrice
		booking.SeatBookings = append(booking.SeatBookings, SeatBooking{
			SeatID:    hold.Seats[i].SeatID,
			SeatLabel: hold.Seats[i].SeatLabel,
			SeatPrice: hold.Seats[i].SeatPrice,
		})
	}
	return booking, nil
}

func (s *service) undoSeatBooking(ctx context.Context, showtimeID uuid.UUID, seatIDs []uuid.UUID) {
	if _, err := s.store.CompareAndSetStates(ctx, showtimeID, seatIDs, seatmap.StateBooked, seatmap.StateAvailable); err != nil {
		s.logger.LogStateCorruption(ctx, "failed to undo seat booking", map[string]interface{}{
			"showtime_id": showtimeID.String(),
			"error":       err.Error(),
		})
	}
}

// READS

func (s *service) GetBooking(ctx context.Context, bookingID uuid.UUID, userID string) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking.UserID != userID {
		return nil, ErrNotOwner
	}
	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]BookingResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	bookings, err := s.repo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	responses := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, bookings[i].ToResponse())
	}
	return responses, nil
}

// CANCELLATION HOOKS

func (s *service) GetBookingRecord(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return booking, nil
}

func (s *service) MarkCancellationPending(ctx context.Context, bookingID uuid.UUID, reason string) (bool, error) {
	return s.repo.MarkCancellationPending(ctx, bookingID, reason, s.now())
}

// FinalizeCancellation releases the booking's seats and records the refund.
// The status row guard makes a double cancel a no-op at the seat layer.
func (s *service) FinalizeCancellation(ctx context.Context, booking *Booking, refundAmount float64) error {
	cancelled, err := s.repo.MarkCancelled(ctx, booking.ID, refundAmount, s.now())
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if !cancelled {
		return fmt.Errorf("booking %s is not in a cancellable state", booking.ID)
	}

	seatIDs := booking.SeatIDs()
	ok, err := s.store.CompareAndSetStates(ctx, booking.ShowtimeID, seatIDs, seatmap.StateBooked, seatmap.StateAvailable)
	if err != nil {
		return fmt.Errorf("failed to release booked seats: %w", err)
	}
	if !ok {
		s.logger.LogStateCorruption(ctx, "cancelled booking seats were not in BOOKED", map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
	}

	s.logger.LogBookingCancelled(ctx, booking.ID.String(), refundAmount)
	return nil
}

func (s *service) ListByStatus(ctx context.Context, status BookingStatus, limit, offset int) ([]Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByStatus(ctx, status, limit, offset)
}

// NOTIFICATIONS

func (s *service) notifyConfirmed(ctx context.Context, booking *Booking) {
	n := notifications.NewNotification(notifications.TypeBookingConfirmed, booking.ID.String())
	n.TicketNumber = booking.TicketNumber
	n.CustomerName = booking.CustomerName
	n.CustomerEmail = booking.CustomerEmail
	n.ShowtimeID = booking.ShowtimeID.String()
	n.Seats = booking.SeatLabels()
	n.Amount = booking.TotalAmount

	if showtime, err := s.showtimeService.GetShowtime(ctx, booking.ShowtimeID); err == nil {
		n.MovieTitle = showtime.MovieTitle
	}

	s.dispatcher.Dispatch(n)
}
