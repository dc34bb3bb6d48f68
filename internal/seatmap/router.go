package seatmap

import (
	"github.com/gin-gonic/gin"
)

func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller) {
	// Public seat map, the UI polls this while the user picks seats
	seats := rg.Group("/seats")
	{
		seats.GET("/showtime/:showtimeId", controller.GetSeatMap) // GET /api/v1/seats/showtime/:showtimeId
	}
}
