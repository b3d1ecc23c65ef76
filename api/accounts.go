package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/service/escrow"
	"github.com/gin-gonic/gin"
)

// CallerHeader carries the already-authenticated account of the caller.
const CallerHeader = "X-Account-ID"

func callerFrom(c *gin.Context) domain.AccountID {
	return domain.AccountID(strings.TrimSpace(c.GetHeader(CallerHeader)))
}

type AccountHandler struct {
	service escrow.EscrowUseCase
}

func NewAccountHandler(service escrow.EscrowUseCase) *AccountHandler {
	return &AccountHandler{service: service}
}

func (h *AccountHandler) Register(router *gin.RouterGroup) {
	router.GET("/customers/:account/booking", h.customerBooking)
	router.GET("/accounts/me/balance", h.balance)
}

// customerBooking godoc
// @Summary A customer's latest booking (airline only)
// @Tags accounts
// @Produce json
// @Param X-Account-ID header string true "Caller account"
// @Param account path string true "Customer account"
// @Success 200 {object} bookingResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /customers/{account}/booking [get]
func (h *AccountHandler) customerBooking(c *gin.Context) {
	booking, err := h.service.GetBookingData(c.Request.Context(), callerFrom(c), domain.AccountID(c.Param("account")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

// balance godoc
// @Summary The caller's ledger balance
// @Tags accounts
// @Produce json
// @Param X-Account-ID header string true "Caller account"
// @Success 200 {object} balanceResponse
// @Failure 403 {object} errorResponse
// @Router /accounts/me/balance [get]
func (h *AccountHandler) balance(c *gin.Context) {
	caller := callerFrom(c)
	balance, err := h.service.Balance(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, balanceResponse{Account: string(caller), BalanceCents: balance})
}
