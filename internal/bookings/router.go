package bookings

import (
	"revticket/internal/shared/config"
	"revticket/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth(cfg))
	{
		bookings.POST("/commit", controller.CommitBooking)
		bookings.GET("", controller.GetUserBookings)
		bookings.GET("/:bookingId", controller.GetBooking)
	}
}
