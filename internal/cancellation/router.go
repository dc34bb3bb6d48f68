package cancellation

import (
	"revticket/internal/shared/config"
	"revticket/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCancellationRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	authed := rg.Group("/bookings")
	authed.Use(middleware.JWTAuth(cfg))
	{
		authed.POST("/:bookingId/cancellation-request", controller.RequestCancellation)
		authed.POST("/:bookingId/cancel", controller.CancelBooking)
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
	{
		admin.GET("/cancellation-requests", controller.ListPendingRequests)
	}
}
