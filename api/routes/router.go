// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"revticket/internal/bookings"
	"revticket/internal/cancellation"
	"revticket/internal/holds"
	"revticket/internal/notifications"
	"revticket/internal/payments"
	"revticket/internal/seatmap"
	"revticket/internal/shared/config"
	"revticket/internal/shared/database"
	"revticket/internal/showtimes"
	"revticket/pkg/cache"
	"revticket/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config       *config.Config
	db           *database.DB
	logger       *logger.Logger
	cacheService cache.Service
	dispatcher   *notifications.Dispatcher

	// Shared services, wired once and injected across features
	seatStore       seatmap.Store
	holdService     holds.Service
	showtimeService showtimes.Service
	bookingService  bookings.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, log *logger.Logger, cacheService cache.Service, dispatcher *notifications.Dispatcher) *Router {
	return &Router{
		config:       cfg,
		db:           db,
		logger:       log,
		cacheService: cacheService,
		dispatcher:   dispatcher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Seat map store first: every other feature goes through it
		r.setupSeatMapRoutes(api)

		r.setupShowtimeRoutes(api)
		r.setupHoldRoutes(api)
		r.setupBookingRoutes(api)
		r.setupCancellationRoutes(api)
	}
}

// HoldService exposes the hold service for the background sweeper
func (r *Router) HoldService() holds.Service {
	return r.holdService
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "revticket-booking",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "revticket-booking",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupSeatMapRoutes configures seat map routes and builds the shared store
func (r *Router) setupSeatMapRoutes(rg *gin.RouterGroup) {
	seatRepo := seatmap.NewRepository(r.db.GetPostgreSQL())
	r.seatStore = seatmap.NewStore(seatRepo, r.config)
	if r.cacheService != nil {
		r.seatStore.SetCacheService(r.cacheService)
	}

	seatController := seatmap.NewController(r.seatStore)
	seatmap.SetupSeatRoutes(rg, seatController)
}

// setupShowtimeRoutes configures showtime management routes
func (r *Router) setupShowtimeRoutes(rg *gin.RouterGroup) {
	showtimeRepo := showtimes.NewRepository(r.db.GetPostgreSQL())
	r.showtimeService = showtimes.NewService(showtimeRepo, r.seatStore)

	showtimeController := showtimes.NewController(r.showtimeService)
	showtimes.SetupShowtimeRoutes(rg, showtimeController, r.config)
}

// setupHoldRoutes configures seat hold routes
func (r *Router) setupHoldRoutes(rg *gin.RouterGroup) {
	holdRepo := holds.NewRepository(r.db.GetPostgreSQL())
	r.holdService = holds.NewService(holdRepo, r.seatStore, r.config, r.logger)

	holdController := holds.NewController(r.holdService)
	holds.SetupHoldRoutes(rg, holdController)
}

// setupBookingRoutes configures booking commit and lookup routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	verifier := payments.NewRazorpayVerifier(r.config)

	r.bookingService = bookings.NewService(
		bookingRepo,
		r.holdService,
		r.seatStore,
		verifier,
		r.showtimeService,
		r.dispatcher,
		r.logger,
	)

	bookingController := bookings.NewController(r.bookingService)
	bookings.SetupBookingRoutes(rg, bookingController, r.config)
}

// setupCancellationRoutes configures cancellation and refund routes
func (r *Router) setupCancellationRoutes(rg *gin.RouterGroup) {
	cancellationService := cancellation.NewService(
		r.bookingService,
		r.showtimeService,
		r.config,
		r.dispatcher,
		r.logger,
	)

	cancellationController := cancellation.NewController(cancellationService)
	cancellation.SetupCancellationRoutes(rg, cancellationController, r.config)
}
