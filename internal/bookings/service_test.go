package bookings

import (
	"context"
	"strings"
	"testing"
	"time"

	"revticket/internal/holds"
	"revticket/internal/payments"
	"revticket/internal/seatmap"
	"revticket/internal/showtimes"
	"revticket/pkg/cache"
	"revticket/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockRepository struct {
	createFunc                  func(ctx context.Context, booking *Booking) error
	getByIDFunc                 func(ctx context.Context, id uuid.UUID) (*Booking, error)
	getByHoldIDFunc             func(ctx context.Context, holdID uuid.UUID) (*Booking, error)
	getByUserIDFunc             func(ctx context.Context, userID string, limit, offset int) ([]Booking, error)
	updateStatusConditionalFunc func(ctx context.Context, id uuid.UUID, expected, next BookingStatus) (bool, error)
	markCancellationPendingFunc func(ctx context.Context, id uuid.UUID, reason string, requestedAt time.Time) (bool, error)
	markCancelledFunc           func(ctx context.Context, id uuid.UUID, refundAmount float64, refundDate time.Time) (bool, error)
	listByStatusFunc            func(ctx context.Context, status BookingStatus, limit, offset int) ([]Booking, error)
}

func (m *mockRepository) Create(ctx context.Context, booking *Booking) error {
	return m.createFunc(ctx, booking)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockRepository) GetByHoldID(ctx context.Context, holdID uuid.UUID) (*Booking, error) {
	return m.getByHoldIDFunc(ctx, holdID)
}

func (m *mockRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]Booking, error) {
	return m.getByUserIDFunc(ctx, userID, limit, offset)
}

func (m *mockRepository) UpdateStatusConditional(ctx context.Context, id uuid.UUID, expected, next BookingStatus) (bool, error) {
	return m.updateStatusConditionalFunc(ctx, id, expected, next)
}

func (m *mockRepository) MarkCancellationPending(ctx context.Context, id uuid.UUID, reason string, requestedAt time.Time) (bool, error) {
	return m.markCancellationPendingFunc(ctx, id, reason, requestedAt)
}

func (m *mockRepository) MarkCancelled(ctx context.Context, id uuid.UUID, refundAmount float64, refundDate time.Time) (bool, error) {
	return m.markCancelledFunc(ctx, id, refundAmount, refundDate)
}

func (m *mockRepository) ListByStatus(ctx context.Context, status BookingStatus, limit, offset int) ([]Booking, error) {
	return m.listByStatusFunc(ctx, status, limit, offset)
}

type mockHoldService struct {
	getActiveHoldFunc func(ctx context.Context, holdID uuid.UUID) (*holds.Hold, error)
	consumeHoldFunc   func(ctx context.Context, holdID uuid.UUID) (bool, error)
}

func (m *mockHoldService) CreateHold(_ context.Context, _ holds.CreateHoldRequest) (*holds.HoldResponse, error) {
	panic("not used")
}

func (m *mockHoldService) GetHold(_ context.Context, _ uuid.UUID) (*holds.HoldResponse, error) {
	panic("not used")
}

func (m *mockHoldService) ReleaseHold(_ context.Context, _ uuid.UUID, _ string) error {
	panic("not used")
}

func (m *mockHoldService) GetActiveHold(ctx context.Context, holdID uuid.UUID) (*holds.Hold, error) {
	return m.getActiveHoldFunc(ctx, holdID)
}

func (m *mockHoldService) ConsumeHold(ctx context.Context, holdID uuid.UUID) (bool, error) {
	return m.consumeHoldFunc(ctx, holdID)
}

func (m *mockHoldService) SweepExpired(_ context.Context) (int, error) {
	panic("not used")
}

type mockStore struct {
	compareAndSetStatesFunc func(ctx context.Context, showtimeID uuid.UUID, seatIDs []uuid.UUID, expected, next seatmap.SeatState) (bool, error)
}

func (m *mockStore) GetSeatMap(_ context.Context, _ uuid.UUID) (*seatmap.SeatMapResponse, error) {
	panic("not used")
}

func (m *mockStore) GetSeatStates(_ context.Context, _ uuid.UUID) (map[uuid.UUID]seatmap.SeatState, error) {
	panic("not used")
}

func (m *mockStore) GetSeatsByIDs(_ context.Context, _ []uuid.UUID) ([]seatmap.Seat, error) {
	panic("not used")
}

func (m *mockStore) CompareAndSetStates(ctx context.Context, showtimeID uuid.UUID, seatIDs []uuid.UUID, expected, next seatmap.SeatState) (bool, error) {
	return m.compareAndSetStatesFunc(ctx, showtimeID, seatIDs, expected, next)
}

func (m *mockStore) SeatsNotInState(_ context.Context, _ []uuid.UUID, _ seatmap.SeatState) ([]string, error) {
	panic("not used")
}

func (m *mockStore) InitializeShowtime(_ context.Context, _ uuid.UUID, _ seatmap.ScreenLayout) (int, error) {
	panic("not used")
}

func (m *mockStore) SetCacheService(_ cache.Service) {}

type mockVerifier struct {
	verifyFunc func(ctx context.Context, v payments.Verification) error
}

func (m *mockVerifier) Verify(ctx context.Context, v payments.Verification) error {
	return m.verifyFunc(ctx, v)
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

type commitFixture struct {
	repo         *mockRepository
	holdService  *mockHoldService
	store        *mockStore
	verifier     *mockVerifier
	showtimeSvc  *mockShowtimeService
	hold         *holds.Hold
	seatIDs      []uuid.UUID
	showtimeID   uuid.UUID
	seatFlips    []string
	createdBookings []*Booking
}

func newCommitFixture() *commitFixture {
	showtimeID := uuid.New()
	seatIDs := []uuid.UUID{uuid.New(), uuid.New()}

	f := &commitFixture{
		showtimeID: showtimeID,
		seatIDs:    seatIDs,
		hold: &holds.Hold{
			ID:         uuid.New(),
			ShowtimeID: showtimeID,
			SessionID:  "session-1",
			Status:     holds.StatusActive,
			ExpiresAt:  time.Now().Add(5 * time.Minute),
			Seats: []holds.HoldSeat{
				{SeatID: seatIDs[0], SeatLabel: "A1", SeatPrice: 150},
				{SeatID: seatIDs[1], SeatLabel: "A2", SeatPrice: 150},
			},
		},
	}

	f.repo = &mockRepository{
		getByHoldIDFunc: func(_ context.Context, _ uuid.UUID) (*Booking, error) {
			return nil, gorm.ErrRecordNotFound
		},
		createFunc: func(_ context.Context, booking *Booking) error {
			f.createdBookings = append(f.createdBookings, booking)
			return nil
		},
	}
	f.holdService = &mockHoldService{
		getActiveHoldFunc: func(_ context.Context, _ uuid.UUID) (*holds.Hold, error) {
			return f.hold, nil
		},
		consumeHoldFunc: func(_ context.Context, _ uuid.UUID) (bool, error) {
			return true, nil
		},
	}
	f.store = &mockStore{
		compareAndSetStatesFunc: func(_ context.Context, _ uuid.UUID, _ []uuid.UUID, expected, next seatmap.SeatState) (bool, error) {
			f.seatFlips = append(f.seatFlips, string(expected)+"->"+string(next))
			return true, nil
		},
	}
	f.verifier = &mockVerifier{
		verifyFunc: func(_ context.Context, _ payments.Verification) error {
			return nil
		},
	}
	f.showtimeSvc = &mockShowtimeService{
		getShowtimeFunc: func(_ context.Context, _ uuid.UUID) (*showtimes.Showtime, error) {
			return &showtimes.Showtime{ID: showtimeID, MovieTitle: "Interstellar"}, nil
		},
	}

	return f
}

func (f *commitFixture) service() Service {
	return NewService(f.repo, f.holdService, f.store, f.verifier, f.showtimeSvc, nil, logger.GetDefault())
}

func commitRequest(holdID uuid.UUID) CommitBookingRequest {
	return CommitBookingRequest{
		HoldID:        holdID.String(),
		CustomerName:  "Asha Rao",
		CustomerEmail: "asha@example.com",
		CustomerPhone: "9876543210",
		Payment: payments.Verification{
			OrderID:   "order_123",
			PaymentID: "pay_456",
			Signature: "sig",
		},
	}
}

func TestCommitBooking(t *testing.T) {
	t.Run("confirms the booking", func(t *testing.T) {
		f := newCommitFixture()
		svc := f.service()

		resp, err := svc.CommitBooking(context.Background(), "user-1", commitRequest(f.hold.ID))

		require.NoError(t, err)
		require.Len(t, f.createdBookings, 1)
		created := f.createdBookings[0]

		assert.Equal(t, StatusConfirmed, created.Status)
		assert.Equal(t, f.hold.ID, created.HoldID)
		assert.Equal(t, "user-1", created.UserID)
		assert.Equal(t, 300.0, created.TotalAmount)
		assert.Len(t, created.SeatBookings, 2)
		assert.True(t, strings.HasPrefix(created.TicketNumber, "TKT"))
		assert.Len(t, created.TicketNumber, 11)
		assert.NotEmpty(t, created.QRCode)
		assert.Equal(t, "order_123", created.PaymentOrderID)

		assert.Equal(t, []string{"HELD->BOOKED"}, f.seatFlips)
		assert.Equal(t, string(StatusConfirmed), resp.Status)
	})

	t.Run("retry returns the existing booking", func(t *testing.T) {
		f := newCommitFixture()
		existing := &Booking{ID: uuid.New(), HoldID: f.hold.ID, Status: StatusConfirmed, TicketNumber: "TKT11111111"}
		f.repo.getByHoldIDFunc = func(_ context.Context, _ uuid.UUID) (*Booking, error) {
			return existing, nil
		}
		f.verifier.verifyFunc = func(_ context.Context, _ payments.Verification) error {
			t.Fatal("retry must not re-verify payment")
			return nil
		}

		resp, err := f.service().CommitBooking(context.Background(), "user-1", commitRequest(f.hold.ID))

		require.NoError(t, err)
		assert.Equal(t, existing.TicketNumber, resp.TicketNumber)
		assert.Empty(t, f.seatFlips)
	})

	t.Run("expired hold", func(t *testing.T) {
		f := newCommitFixture()
		f.holdService.getActiveHoldFunc = func(_ context.Context, _ uuid.UUID) (*holds.Hold, error) {
			return nil, holds.ErrHoldExpired
		}

		_, err := f.service().CommitBooking(context.Background(), "user-1", commitRequest(f.hold.ID))

		assert.ErrorIs(t, err, holds.ErrHoldExpired)
		assert.Empty(t, f.seatFlips, "no seat must move for an expired hold")
	})

	t.Run("rejected payment leaves the hold intact", func(t *testing.T) {
		f := newCommitFixture()
		f.verifier.verifyFunc = func(_ context.Context, _ payments.Verification) error {
			return payments.ErrInvalidSignature
		}

		_, err := f.service().CommitBooking(context.Background(), "user-1", commitRequest(f.hold.ID))

		assert.ErrorIs(t, err, payments.ErrInvalidSignature)
		assert.Empty(t, f.seatFlips)
		assert.Empty(t, f.createdBookings)
	})

	t.Run("sweep released the seats first", func(t *testing.T) {
		f := newCommitFixture()
		f.store.compareAndSetStatesFunc = func(_ context.Context, _ uuid.UUID, _ []uuid.UUID, _, _ seatmap.SeatState) (bool, error) {
			return false, nil
		}

		_, err := f.service().CommitBooking(context.Background(), "user-1", commitRequest(f.hold.ID))

		assert.ErrorIs(t, err, holds.ErrHoldExpired)
		assert.Empty(t, f.createdBookings)
	})

	t.Run("losing the consume race undoes the seat flip", func(t *testing.T) {
		f := newCommitFixture()
		f.holdService.consumeHoldFunc = func(_ context.Context, _ uuid.UUID) (bool, error) {
			return false, nil
		}

		_, err := f.service().CommitBooking(context.Background(), "user-1", commitRequest(f.hold.ID))

		assert.ErrorIs(t, err, holds.ErrHoldExpired)
		assert.Equal(t, []string{"HELD->BOOKED", "BOOKED->AVAILABLE"}, f.seatFlips)
		assert.Empty(t, f.createdBookings)
	})
}

func TestFinalizeCancellation(t *testing.T) {
	booking := &Booking{
		ID:         uuid.New(),
		ShowtimeID: uuid.New(),
		Status:     StatusConfirmed,
		SeatBookings: []SeatBooking{
			{SeatID: uuid.New(), SeatLabel: "A1", SeatPrice: 200},
		},
	}

	t.Run("releases seats and records refund", func(t *testing.T) {
		f := newCommitFixture()
		var recordedRefund float64
		f.repo.markCancelledFunc = func(_ context.Context, id uuid.UUID, refundAmount float64, _ time.Time) (bool, error) {
			assert.Equal(t, booking.ID, id)
			recordedRefund = refundAmount
			return true, nil
		}

		err := f.service().FinalizeCancellation(context.Background(), booking, 180)

		require.NoError(t, err)
		assert.Equal(t, 180.0, recordedRefund)
		assert.Equal(t, []string{"BOOKED->AVAILABLE"}, f.seatFlips)
	})

	t.Run("double cancel is rejected", func(t *testing.T) {
		f := newCommitFixture()
		f.repo.markCancelledFunc = func(_ context.Context, _ uuid.UUID, _ float64, _ time.Time) (bool, error) {
			return false, nil
		}

		err := f.service().FinalizeCancellation(context.Background(), booking, 180)

		assert.Error(t, err)
		assert.Empty(t, f.seatFlips, "seats stay BOOKED when the status guard loses")
	})
}

func TestGetBooking(t *testing.T) {
	booking := &Booking{ID: uuid.New(), UserID: "user-1", Status: StatusConfirmed}

	tests := []struct {
		name    string
		userID  string
		repoErr error
		wantErr error
	}{
		{name: "owner can read", userID: "user-1"},
		{name: "other users cannot", userID: "user-2", wantErr: ErrNotOwner},
		{name: "missing booking", userID: "user-1", repoErr: gorm.ErrRecordNotFound, wantErr: ErrBookingNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCommitFixture()
			f.repo.getByIDFunc = func(_ context.Context, _ uuid.UUID) (*Booking, error) {
				if tt.repoErr != nil {
					return nil, tt.repoErr
				}
				return booking, nil
			}

			resp, err := f.service().GetBooking(context.Background(), booking.ID, tt.userID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, booking.ID.String(), resp.ID)
		})
	}
}
