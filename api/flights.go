package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/service/escrow"
	"github.com/Domenick1991/flightescrow/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	flights flights.FlightUseCase
	escrow  escrow.EscrowUseCase
}

type createFlightRequest struct {
	Number        string `json:"number" binding:"required"`
	DepartureTime string `json:"departure_time" binding:"required"`
	FareCents     int64  `json:"fare_cents" binding:"required"`
}

type updateStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	DelayHours int    `json:"delay_hours"`
}

func NewFlightHandler(flightService flights.FlightUseCase, escrowService escrow.EscrowUseCase) *FlightHandler {
	return &FlightHandler{flights: flightService, escrow: escrowService}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.GET("/:number", h.get)
	router.POST("/:number/cancel", h.cancel)
	router.PUT("/:number/status", h.updateStatus)
}

// list godoc
// @Summary List flights
// @Tags flights
// @Produce json
// @Success 200 {array} flightResponse
// @Router /flights [get]
func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.flights.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]flightResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toFlightResponse(&list[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// get godoc
// @Summary Flight data
// @Tags flights
// @Produce json
// @Param number path string true "Flight number"
// @Success 200 {object} flightResponse
// @Failure 404 {object} errorResponse
// @Router /flights/{number} [get]
func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.escrow.GetFlightData(c.Request.Context(), c.Param("number"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

// create godoc
// @Summary Add a flight (airline only)
// @Tags flights
// @Accept json
// @Produce json
// @Param X-Account-ID header string true "Caller account"
// @Param request body createFlightRequest true "Flight"
// @Success 201 {object} flightResponse
// @Failure 400 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Router /flights [post]
func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	departure, err := time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		badRequest(c, err)
		return
	}

	flight, err := h.flights.CreateFlight(c.Request.Context(), flights.CreateFlightInput{
		Caller:        callerFrom(c),
		Number:        req.Number,
		DepartureTime: departure,
		FareCents:     req.FareCents,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(flight))
}

// cancel godoc
// @Summary Cancel a flight and refund its bookings (airline only)
// @Tags flights
// @Produce json
// @Param X-Account-ID header string true "Caller account"
// @Param number path string true "Flight number"
// @Success 200 {object} sweepResponse
// @Failure 403 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Router /flights/{number}/cancel [post]
func (h *FlightHandler) cancel(c *gin.Context) {
	result, err := h.escrow.CancelFlight(c.Request.Context(), callerFrom(c), c.Param("number"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSweepResponse(result))
}

// updateStatus godoc
// @Summary Report flight status (airline only)
// @Tags flights
// @Accept json
// @Produce json
// @Param X-Account-ID header string true "Caller account"
// @Param number path string true "Flight number"
// @Param request body updateStatusRequest true "Status"
// @Success 200 {object} sweepResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Router /flights/{number}/status [put]
func (h *FlightHandler) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.escrow.UpdateFlightStatus(c.Request.Context(), escrow.UpdateFlightStatusInput{
		Caller:       callerFrom(c),
		FlightNumber: c.Param("number"),
		Status:       domain.FlightStatus(req.Status),
		DelayHours:   req.DelayHours,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSweepResponse(result))
}
