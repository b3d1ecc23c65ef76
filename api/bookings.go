package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/service/escrow"
	"github.com/gin-gonic/gin"
)

const IdempotencyHeader = "Idempotency-Key"

type BookingHandler struct {
	service escrow.EscrowUseCase
}

type createBookingRequest struct {
	FlightNumber string `json:"flight_number" binding:"required"`
	SeatCategory string `json:"seat_category"`
	AmountCents  int64  `json:"amount_cents"`
}

// bookingRefRequest selects a booking; without an id the caller's latest booking is used.
type bookingRefRequest struct {
	BookingID int64 `json:"booking_id"`
}

func NewBookingHandler(service escrow.EscrowUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.POST("/cancel", h.cancel)
	router.POST("/claim", h.claim)
}

// create godoc
// @Summary Book a seat and pay the fare into escrow
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-Account-ID header string true "Caller account"
// @Param Idempotency-Key header string false "Deduplicates retried requests"
// @Param request body createBookingRequest true "Booking"
// @Success 201 {object} confirmationResponse
// @Failure 400 {object} errorResponse
// @Failure 402 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /bookings [post]
func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	confirmation, err := h.service.InitiateBooking(c.Request.Context(), escrow.InitiateBookingInput{
		Caller:         callerFrom(c),
		FlightNumber:   req.FlightNumber,
		SeatCategory:   req.SeatCategory,
		AmountCents:    req.AmountCents,
		IdempotencyKey: c.GetHeader(IdempotencyHeader),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, confirmationResponse{
		Message: confirmation.Message,
		Booking: toBookingResponse(&confirmation.Booking),
	})
}

// list godoc
// @Summary The caller's bookings
// @Tags bookings
// @Produce json
// @Param X-Account-ID header string true "Caller account"
// @Success 200 {array} bookingResponse
// @Router /bookings [get]
func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.CustomerBookings(c.Request.Context(), callerFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// cancel godoc
// @Summary Cancel a booking with the time-based penalty
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-Account-ID header string true "Caller account"
// @Param request body bookingRefRequest false "Booking"
// @Success 200 {object} bookingResponse
// @Failure 409 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Router /bookings/cancel [post]
func (h *BookingHandler) cancel(c *gin.Context) {
	h.settle(c, h.service.CancelBooking)
}

// claim godoc
// @Summary Claim a refund based on the flight's reported status
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-Account-ID header string true "Caller account"
// @Param request body bookingRefRequest false "Booking"
// @Success 200 {object} bookingResponse
// @Failure 409 {object} errorResponse
// @Router /bookings/claim [post]
func (h *BookingHandler) claim(c *gin.Context) {
	h.settle(c, h.service.ClaimRefund)
}

func (h *BookingHandler) settle(c *gin.Context, op func(ctx context.Context, caller domain.AccountID, bookingID int64) (*domain.Booking, error)) {
	var req bookingRefRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	booking, err := op(c.Request.Context(), callerFrom(c), req.BookingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booking))
}
