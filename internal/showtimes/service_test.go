package showtimes

import (
	"context"
	"testing"
	"time"

	"revticket/internal/seatmap"
	"revticket/pkg/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockRepository struct {
	createFunc       func(ctx context.Context, showtime *Showtime) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*Showtime, error)
	listUpcomingFunc func(ctx context.Context, limit int) ([]Showtime, error)
}

func (m *mockRepository) Create(ctx context.Context, showtime *Showtime) error {
	return m.createFunc(ctx, showtime)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Showtime, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockRepository) ListUpcoming(ctx context.Context, limit int) ([]Showtime, error) {
	return m.listUpcomingFunc(ctx, limit)
}

type mockStore struct {
	initializeShowtimeFunc func(ctx context.Context, showtimeID uuid.UUID, layout seatmap.ScreenLayout) (int, error)
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

func (m *mockStore) CompareAndSetStates(_ context.Context, _ uuid.UUID, _ []uuid.UUID, _, _ seatmap.SeatState) (bool, error) {
	panic("not used")
}

func (m *mockStore) SeatsNotInState(_ context.Context, _ []uuid.UUID, _ seatmap.SeatState) ([]string, error) {
	panic("not used")
}

func (m *mockStore) InitializeShowtime(ctx context.Context, showtimeID uuid.UUID, layout seatmap.ScreenLayout) (int, error) {
	return m.initializeShowtimeFunc(ctx, showtimeID, layout)
}

func (m *mockStore) SetCacheService(_ cache.Service) {}

func validRequest() CreateShowtimeRequest {
	return CreateShowtimeRequest{
		MovieID:    "movie-1",
		MovieTitle: "Interstellar",
		TheaterID:  "theater-1",
		Screen:     "Screen 2",
		StartTime:  time.Now().Add(48 * time.Hour),
		Layout: seatmap.ScreenLayout{Rows: []seatmap.RowLayout{
			{Count: 2, SeatsPer: 10, Category: seatmap.CategoryRegular, Price: 150},
		}},
	}
}

func TestCreateShowtime(t *testing.T) {
	t.Run("persists and builds the seat map", func(t *testing.T) {
		var initialized bool
		repo := &mockRepository{
			createFunc: func(_ context.Context, showtime *Showtime) error {
				showtime.ID = uuid.New()
				return nil
			},
		}
		store := &mockStore{
			initializeShowtimeFunc: func(_ context.Context, showtimeID uuid.UUID, layout seatmap.ScreenLayout) (int, error) {
				initialized = true
				assert.NotEqual(t, uuid.Nil, showtimeID)
				return 20, nil
			},
		}

		svc := NewService(repo, store)
		resp, err := svc.CreateShowtime(context.Background(), validRequest())

		require.NoError(t, err)
		assert.True(t, initialized)
		assert.Equal(t, 20, resp.SeatCount)
		assert.Equal(t, "Interstellar", resp.Showtime.MovieTitle)
	})

	t.Run("rejects a start time in the past", func(t *testing.T) {
		svc := NewService(&mockRepository{}, &mockStore{})

		req := validRequest()
		req.StartTime = time.Now().Add(-time.Hour)

		_, err := svc.CreateShowtime(context.Background(), req)

		assert.Error(t, err)
	})
}

func TestGetShowtime(t *testing.T) {
	repo := &mockRepository{
		getByIDFunc: func(_ context.Context, _ uuid.UUID) (*Showtime, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	svc := NewService(repo, &mockStore{})

	_, err := svc.GetShowtime(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrShowtimeNotFound)
}
