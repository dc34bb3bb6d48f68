package cancellation

import (
	"context"
	"testing"
	"time"

	"revticket/internal/bookings"
	"revticket/internal/shared/config"
	"revticket/internal/showtimes"
	"revticket/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBookingService struct {
	getBookingRecordFunc        func(ctx context.Context, bookingID uuid.UUID) (*bookings.Booking, error)
	markCancellationPendingFunc func(ctx context.Context, bookingID uuid.UUID, reason string) (bool, error)
	finalizeCancellationFunc    func(ctx context.Context, booking *bookings.Booking, refundAmount float64) error
	listByStatusFunc            func(ctx context.Context, status bookings.BookingStatus, limit, offset int) ([]bookings.Booking, error)
}

func (m *mockBookingService) CommitBooking(_ context.Context, _ string, _ bookings.CommitBookingRequest) (*bookings.BookingResponse, error) {
	panic("not used")
}

func (m *mockBookingService) GetBooking(_ context.Context, _ uuid.UUID, _ string) (*bookings.BookingResponse, error) {
	panic("not used")
}

func (m *mockBookingService) GetUserBookings(_ context.Context, _ string, _, _ int) ([]bookings.BookingResponse, error) {
	panic("not used")
}

func (m *mockBookingService) GetBookingRecord(ctx context.Context, bookingID uuid.UUID) (*bookings.Booking, error) {
	return m.getBookingRecordFunc(ctx, bookingID)
}

func (m *mockBookingService) MarkCancellationPending(ctx context.Context, bookingID uuid.UUID, reason string) (bool, error) {
	return m.markCancellationPendingFunc(ctx, bookingID, reason)
}

func (m *mockBookingService) FinalizeCancellation(ctx context.Context, booking *bookings.Booking, refundAmount float64) error {
	return m.finalizeCancellationFunc(ctx, booking, refundAmount)
}

func (m *mockBookingService) ListByStatus(ctx context.Context, status bookings.BookingStatus, limit, offset int) ([]bookings.Booking, error) {
	return m.listByStatusFunc(ctx, status, limit, offset)
}

type mockShowtimeService struct {
	getShowtimeFunc func(ctx context.Context, id uuid.UUID) (*showtimes.Showtime, error)
}

func (m *mockShowtimeService) CreateShowtime(_ context.Context, _ showtimes.CreateShowtimeRequest) (*showtimes.CreateShowtimeResponse, error) {
	panic("not used")
}

func (m *mockShowtimeService) GetShowtime(ctx context.Context, id uuid.UUID) (*showtimes.Showtime, error) {
	return m.getShowtimeFunc(ctx, id)
}

func (m *mockShowtimeService) ListUpcoming(_ context.Context, _ int) ([]showtimes.Showtime, error) {
	panic("not used")
}

func testConfig() *config.Config {
	return &config.Config{
		Booking: config.BookingConfig{
			CancellationCutoff: 2 * time.Hour,
			RefundPercent:      90,
		},
	}
}

type fixture struct {
	bookingSvc  *mockBookingService
	showtimeSvc *mockShowtimeService
	booking     *bookings.Booking
	showtime    *showtimes.Showtime
	now         time.Time
}

func newFixture(startsIn time.Duration) *fixture {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	showtimeID := uuid.New()

	f := &fixture{
		now: now,
		booking: &bookings.Booking{
			ID:            uuid.New(),
			ShowtimeID:    showtimeID,
			UserID:        "user-1",
			Status:        bookings.StatusConfirmed,
			TotalAmount:   500,
			CustomerName:  "Asha Rao",
			CustomerEmail: "asha@example.com",
		},
		showtime: &showtimes.Showtime{
			ID:        showtimeID,
			StartTime: now.Add(startsIn),
		},
	}

	f.bookingSvc = &mockBookingService{
		getBookingRecordFunc: func(_ context.Context, _ uuid.UUID) (*bookings.Booking, error) {
			return f.booking, nil
		},
		markCancellationPendingFunc: func(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
			return true, nil
		},
		finalizeCancellationFunc: func(_ context.Context, _ *bookings.Booking, _ float64) error {
			return nil
		},
	}
	f.showtimeSvc = &mockShowtimeService{
		getShowtimeFunc: func(_ context.Context, _ uuid.UUID) (*showtimes.Showtime, error) {
			return f.showtime, nil
		},
	}

	return f
}

func (f *fixture) service() Service {
	svc := NewService(f.bookingSvc, f.showtimeSvc, testConfig(), nil, logger.GetDefault()).(*service)
	svc.now = func() time.Time { return f.now }
	return svc
}

func TestCancelBooking(t *testing.T) {
	t.Run("refunds ninety percent outside the cutoff", func(t *testing.T) {
		f := newFixture(3 * time.Hour)
		var refund float64
		f.bookingSvc.finalizeCancellationFunc = func(_ context.Context, booking *bookings.Booking, refundAmount float64) error {
			assert.Equal(t, f.booking.ID, booking.ID)
			refund = refundAmount
			return nil
		}

		_, err := f.service().CancelBooking(context.Background(), f.booking.ID, "user-1", false)

		require.NoError(t, err)
		assert.Equal(t, 450.0, refund)
	})

	t.Run("inside the cutoff is refused", func(t *testing.T) {
		f := newFixture(time.Hour)
		f.bookingSvc.finalizeCancellationFunc = func(_ context.Context, _ *bookings.Booking, _ float64) error {
			t.Fatal("must not cancel inside the cutoff")
			return nil
		}

		_, err := f.service().CancelBooking(context.Background(), f.booking.ID, "user-1", false)

		assert.ErrorIs(t, err, ErrWindowClosed)
	})

	t.Run("exactly at the cutoff is refused", func(t *testing.T) {
		f := newFixture(2 * time.Hour)

		_, err := f.service().CancelBooking(context.Background(), f.booking.ID, "user-1", false)

		assert.ErrorIs(t, err, ErrWindowClosed)
	})

	t.Run("already cancelled", func(t *testing.T) {
		f := newFixture(3 * time.Hour)
		f.booking.Status = bookings.StatusCancelled

		_, err := f.service().CancelBooking(context.Background(), f.booking.ID, "user-1", false)

		assert.ErrorIs(t, err, ErrAlreadyCancelled)
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newFixture(3 * time.Hour)

		_, err := f.service().CancelBooking(context.Background(), f.booking.ID, "user-2", false)

		assert.ErrorIs(t, err, bookings.ErrNotOwner)
	})

	t.Run("admin completes a pending request after the window", func(t *testing.T) {
		f := newFixture(time.Hour)
		f.booking.Status = bookings.StatusCancellationPending
		var finalized bool
		f.bookingSvc.finalizeCancellationFunc = func(_ context.Context, _ *bookings.Booking, _ float64) error {
			finalized = true
			return nil
		}

		_, err := f.service().CancelBooking(context.Background(), f.booking.ID, "admin-1", true)

		require.NoError(t, err)
		assert.True(t, finalized, "the window was already enforced at request time")
	})
}

func TestRequestCancellation(t *testing.T) {
	t.Run("flags the booking with the reason", func(t *testing.T) {
		f := newFixture(3 * time.Hour)
		var gotReason string
		f.bookingSvc.markCancellationPendingFunc = func(_ context.Context, _ uuid.UUID, reason string) (bool, error) {
			gotReason = reason
			return true, nil
		}

		_, err := f.service().RequestCancellation(context.Background(), f.booking.ID, "user-1", "change of plans")

		require.NoError(t, err)
		assert.Equal(t, "change of plans", gotReason)
	})

	t.Run("inside the cutoff is refused", func(t *testing.T) {
		f := newFixture(90 * time.Minute)

		_, err := f.service().RequestCancellation(context.Background(), f.booking.ID, "user-1", "too late")

		assert.ErrorIs(t, err, ErrWindowClosed)
	})

	t.Run("requesting twice", func(t *testing.T) {
		f := newFixture(3 * time.Hour)
		f.booking.Status = bookings.StatusCancellationPending

		_, err := f.service().RequestCancellation(context.Background(), f.booking.ID, "user-1", "again")

		assert.ErrorIs(t, err, ErrAlreadyRequested)
	})
}
