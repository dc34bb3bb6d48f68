package seatmap

import (
	"net/http"

	"revticket/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	store Store
}

func NewController(store Store) *Controller {
	return &Controller{store: store}
}

// GetSeatMap returns the full seat map for a showtime
func (c *Controller) GetSeatMap(ctx *gin.Context) {
	showtimeID, err := uuid.Parse(ctx.Param("showtimeId"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid showtime ID", nil, err.Error())
		return
	}

	seatMap, err := c.store.GetSeatMap(ctx.Request.Context(), showtimeID)
	if err != nil {
		if IsNotFound(err) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Showtime not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get seat map", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat map retrieved successfully", seatMap, nil)
}
