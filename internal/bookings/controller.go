package bookings

import (
	"errors"
	"net/http"
	"strconv"

	"revticket/internal/holds"
	"revticket/internal/payments"
	"revticket/internal/shared/middleware"
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

// CommitBooking converts an active hold into a confirmed booking
func (c *Controller) CommitBooking(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	var req CommitBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	booking, err := c.service.CommitBooking(ctx.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, holds.ErrHoldNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Hold not found", nil, err.Error())
		case errors.Is(err, holds.ErrHoldExpired), errors.Is(err, holds.ErrHoldReleased):
			response.RespondJSON(ctx, "error", http.StatusGone, "Hold is no longer valid", nil, err.Error())
		case errors.Is(err, holds.ErrHoldAlreadyConsumed):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Hold already consumed by a booking", nil, err.Error())
		case errors.Is(err, payments.ErrInvalidSignature):
			response.RespondJSON(ctx, "error", http.StatusPaymentRequired, "Payment verification failed", nil, err.Error())
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to commit booking", nil, err.Error())
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking confirmed successfully", booking, nil)
}

// GetBooking returns one of the caller's bookings
func (c *Controller) GetBooking(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("bookingId"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking not found", nil, err.Error())
		case errors.Is(err, ErrNotOwner):
			response.RespondJSON(ctx, "error", http.StatusForbidden, "Booking does not belong to user", nil, err.Error())
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get booking", nil, err.Error())
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

// GetUserBookings returns the caller's bookings, newest first
func (c *Controller) GetUserBookings(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	bookings, err := c.service.GetUserBookings(ctx.Request.Context(), userID, limit, offset)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get bookings", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	}, nil)
}
