package showtimes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"revticket/internal/seatmap"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrShowtimeNotFound = errors.New("showtime not found")

// Service is the catalog collaborator consumed by the booking core. Creating
// a showtime also initializes its seat inventory from the screen layout.
type Service interface {
	CreateShowtime(ctx context.Context, req CreateShowtimeRequest) (*CreateShowtimeResponse, error)
	GetShowtime(ctx context.Context, id uuid.UUID) (*Showtime, error)
	ListUpcoming(ctx context.Context, limit int) ([]Showtime, error)
}

// CreateShowtimeRequest registers a showtime and its screen layout
type CreateShowtimeRequest struct {
	MovieID     string               `json:"movie_id" binding:"required"`
	MovieTitle  string               `json:"movie_title" binding:"required"`
	TheaterID   string               `json:"theater_id" binding:"required"`
	TheaterName string               `json:"theater_name"`
	Screen      string               `json:"screen" binding:"required"`
	StartTime   time.Time            `json:"start_time" binding:"required"`
	Layout      seatmap.ScreenLayout `json:"layout" binding:"required"`
}

type CreateShowtimeResponse struct {
	Showtime  *Showtime `json:"showtime"`
	SeatCount int       `json:"seat_count"`
}

type service struct {
	repo  Repository
	store seatmap.Store
}

func NewService(repo Repository, store seatmap.Store) Service {
	return &service{
		repo:  repo,
		store: store,
	}
}

func (s *service) CreateShowtime(ctx context.Context, req CreateShowtimeRequest) (*CreateShowtimeResponse, error) {
	if req.StartTime.Before(time.Now()) {
		return nil, fmt.Errorf("showtime start must be in the future")
	}

	showtime := &Showtime{
		MovieID:     req.MovieID,
		MovieTitle:  req.MovieTitle,
		TheaterID:   req.TheaterID,
		TheaterName: req.TheaterName,
		Screen:      req.Screen,
		StartTime:   req.StartTime,
	}

	if err := s.repo.Create(ctx, showtime); err != nil {
		return nil, fmt.Errorf("failed to create showtime: %w", err)
	}

	seatCount, err := s.store.InitializeShowtime(ctx, showtime.ID, req.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize seat map: %w", err)
	}

	return &CreateShowtimeResponse{
		Showtime:  showtime,
		SeatCount: seatCount,
	}, nil
}

func (s *service) GetShowtime(ctx context.Context, id uuid.UUID) (*Showtime, error) {
	showtime, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShowtimeNotFound
		}
		return nil, fmt.Errorf("failed to get showtime: %w", err)
	}
	return showtime, nil
}

func (s *service) ListUpcoming(ctx context.Context, limit int) ([]Showtime, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListUpcoming(ctx, limit)
}
