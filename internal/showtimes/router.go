package showtimes

import (
	"revticket/internal/shared/config"
	"revticket/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupShowtimeRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	showtimes := rg.Group("/showtimes")
	{
		showtimes.GET("", controller.ListUpcoming)
		showtimes.GET("/:id", controller.GetShowtime)

		admin := showtimes.Group("")
		admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
		{
			admin.POST("", controller.CreateShowtime)
		}
	}
}
