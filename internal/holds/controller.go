package holds

import (
	"errors"
	"net/http"

	"revticket/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateHold pins seats for a session until the hold deadline
func (c *Controller) CreateHold(ctx *gin.Context) {
	var req CreateHoldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	hold, err := c.service.CreateHold(ctx.Request.Context(), req)
	if err != nil {
		var unavailable *SeatsUnavailableError
		switch {
		case errors.As(err, &unavailable):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Some seats are no longer available", gin.H{
				"unavailable_seats": unavailable.SeatIDs,
			}, err.Error())
		case errors.Is(err, ErrTooManySeats):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Too many seats requested", nil, err.Error())
		default:
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to create hold", nil, err.Error())
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Seats held successfully", hold, nil)
}

// GetHold returns a hold with its seats and deadline
func (c *Controller) GetHold(ctx *gin.Context) {
	holdID, err := uuid.Parse(ctx.Param("holdId"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid hold ID", nil, err.Error())
		return
	}

	hold, err := c.service.GetHold(ctx.Request.Context(), holdID)
	if err != nil {
		if errors.Is(err, ErrHoldNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Hold not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get hold", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hold retrieved successfully", hold, nil)
}

// ReleaseHold frees a hold's seats before the deadline
func (c *Controller) ReleaseHold(ctx *gin.Context) {
	holdID, err := uuid.Parse(ctx.Param("holdId"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid hold ID", nil, err.Error())
		return
	}

	sessionID := ctx.GetHeader("X-Session-ID")
	if sessionID == "" {
		sessionID = ctx.Query("session_id")
	}
	if sessionID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Session ID is required", nil, nil)
		return
	}

	if err := c.service.ReleaseHold(ctx.Request.Context(), holdID, sessionID); err != nil {
		switch {
		case errors.Is(err, ErrHoldNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Hold not found", nil, err.Error())
		case errors.Is(err, ErrHoldAlreadyConsumed):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Hold already consumed by a booking", nil, err.Error())
		case errors.Is(err, ErrHoldExpired):
			response.RespondJSON(ctx, "error", http.StatusGone, "Hold has expired", nil, err.Error())
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to release hold", nil, err.Error())
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hold released successfully", nil, nil)
}
