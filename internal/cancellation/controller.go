package cancellation

import (
	"errors"
	"net/http"
	"strconv"

	"revticket/internal/bookings"
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

type cancellationRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// RequestCancellation flags the caller's booking for cancellation
func (c *Controller) RequestCancellation(ctx *gin.Context) {
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

	var req cancellationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	booking, err := c.service.RequestCancellation(ctx.Request.Context(), bookingID, userID, req.Reason)
	if err != nil {
		c.respondCancellationError(ctx, err, "Failed to request cancellation")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Cancellation requested successfully", booking, nil)
}

// CancelBooking cancels a booking and issues the refund
func (c *Controller) CancelBooking(ctx *gin.Context) {
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

	role, _ := ctx.Get("user_role")
	isAdmin := role == "ADMIN"

	booking, err := c.service.CancelBooking(ctx.Request.Context(), bookingID, userID, isAdmin)
	if err != nil {
		c.respondCancellationError(ctx, err, "Failed to cancel booking")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking cancelled successfully", booking, nil)
}

// ListPendingRequests returns bookings awaiting cancellation approval
func (c *Controller) ListPendingRequests(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	requests, err := c.service.ListPendingRequests(ctx.Request.Context(), limit, offset)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list cancellation requests", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Cancellation requests retrieved successfully", gin.H{
		"requests": requests,
		"count":    len(requests),
	}, nil)
}

func (c *Controller) respondCancellationError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking not found", nil, err.Error())
	case errors.Is(err, bookings.ErrNotOwner):
		response.RespondJSON(ctx, "error", http.StatusForbidden, "Booking does not belong to user", nil, err.Error())
	case errors.Is(err, ErrWindowClosed):
		response.RespondJSON(ctx, "error", http.StatusForbidden, "Cancellation window has closed", nil, err.Error())
	case errors.Is(err, ErrAlreadyCancelled), errors.Is(err, ErrAlreadyRequested):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Booking cannot be cancelled again", nil, err.Error())
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, fallback, nil, err.Error())
	}
}
