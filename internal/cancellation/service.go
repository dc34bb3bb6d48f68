package cancellation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"revticket/internal/bookings"
	"revticket/internal/notifications"
	"revticket/internal/shared/config"
	"revticket/internal/showtimes"
	"revticket/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrWindowClosed     = errors.New("cancellation window has closed")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrAlreadyRequested = errors.New("cancellation already requested")
)

// Service handles the refund path: a booking can be cancelled only while the
// showtime is further away than the cutoff, and the refund is a fixed
// percentage of what was paid.
type Service interface {
	RequestCancellation(ctx context.Context, bookingID uuid.UUID, userID, reason string) (*bookings.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID uuid.UUID, userID string, isAdmin bool) (*bookings.BookingResponse, error)
	ListPendingRequests(ctx context.Context, limit, offset int) ([]bookings.BookingResponse, error)
}

type service struct {
	bookingService  bookings.Service
	showtimeService showtimes.Service
	config          *config.Config
	dispatcher      *notifications.Dispatcher
	logger          *logger.Logger
	now             func() time.Time
}

func NewService(
	bookingService bookings.Service,
	showtimeService showtimes.Service,
	cfg *config.Config,
	dispatcher *notifications.Dispatcher,
	log *logger.Logger,
) Service {
	return &service{
		bookingService:  bookingService,
		showtimeService: showtimeService,
		config:          cfg,
		dispatcher:      dispatcher,
		logger:          log,
		now:             time.Now,
	}
}

// RequestCancellation flags a booking for cancellation without releasing its
// seats yet; an admin (or a direct cancel) completes it.
func (s *service) RequestCancellation(ctx context.Context, bookingID uuid.UUID, userID, reason string) (*bookings.BookingResponse, error) {
	booking, err := s.loadOwnedBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case bookings.StatusCancelled:
		return nil, ErrAlreadyCancelled
	case bookings.StatusCancellationPending:
		return nil, ErrAlreadyRequested
	}

	if err := s.checkWindow(ctx, booking); err != nil {
		return nil, err
	}

	marked, err := s.bookingService.MarkCancellationPending(ctx, bookingID, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to request cancellation: %w", err)
	}
	if !marked {
		return nil, ErrAlreadyRequested
	}

	s.notify(notifications.TypeCancellationRequested, booking, 0)

	updated, err := s.bookingService.GetBookingRecord(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	resp := updated.ToResponse()
	return &resp, nil
}

// CancelBooking releases the booking's seats and records the refund. Admins
// may complete a pending request after the window; the window was already
// enforced when the request was made.
func (s *service) CancelBooking(ctx context.Context, bookingID uuid.UUID, userID string, isAdmin bool) (*bookings.BookingResponse, error) {
	var booking *bookings.Booking
	var err error

	if isAdmin {
		booking, err = s.bookingService.GetBookingRecord(ctx, bookingID)
	} else {
		booking, err = s.loadOwnedBooking(ctx, bookingID, userID)
	}
	if err != nil {
		return nil, err
	}

	if booking.Status == bookings.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	skipWindow := isAdmin && booking.Status == bookings.StatusCancellationPending
	if !skipWindow {
		if err := s.checkWindow(ctx, booking); err != nil {
			return nil, err
		}
	}

	refundAmount := booking.TotalAmount * s.config.Booking.RefundPercent / 100

	if err := s.bookingService.FinalizeCancellation(ctx, booking, refundAmount); err != nil {
		return nil, err
	}

	s.notify(notifications.TypeBookingCancelled, booking, refundAmount)

	updated, err := s.bookingService.GetBookingRecord(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	resp := updated.ToResponse()
	return &resp, nil
}

func (s *service) ListPendingRequests(ctx context.Context, limit, offset int) ([]bookings.BookingResponse, error) {
	pending, err := s.bookingService.ListByStatus(ctx, bookings.StatusCancellationPending, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list cancellation requests: %w", err)
	}

	responses := make([]bookings.BookingResponse, 0, len(pending))
	for i := range pending {
		responses = append(responses, pending[i].ToResponse())
	}
	return responses, nil
}

func (s *service) loadOwnedBooking(ctx context.Context, bookingID uuid.UUID, userID string) (*bookings.Booking, error) {
	booking, err := s.bookingService.GetBookingRecord(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, bookings.ErrNotOwner
	}
	return booking, nil
}

// checkWindow rejects cancellation when the showtime starts within the cutoff
func (s *service) checkWindow(ctx context.Context, booking *bookings.Booking) error {
	showtime, err := s.showtimeService.GetShowtime(ctx, booking.ShowtimeID)
	if err != nil {
		return fmt.Errorf("failed to load showtime: %w", err)
	}

	cutoff := showtime.StartTime.Add(-s.config.Booking.CancellationCutoff)
	if !s.now().Before(cutoff) {
		return ErrWindowClosed
	}
	return nil
}

func (s *service) notify(nType notifications.NotificationType, booking *bookings.Booking, refundAmount float64) {
	n := notifications.NewNotification(nType, booking.ID.String())
	n.TicketNumber = booking.TicketNumber
	n.CustomerName = booking.CustomerName
	n.CustomerEmail = booking.CustomerEmail
	n.ShowtimeID = booking.ShowtimeID.String()
	n.Seats = booking.SeatLabels()
	n.RefundAmount = refundAmount
	s.dispatcher.Dispatch(n)
}
