package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/service/escrow"
	"github.com/Domenick1991/flightescrow/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var departure = time.Date(2026, time.April, 2, 7, 45, 0, 0, time.UTC)

func TestFlightHandler_list(t *testing.T) {
	mockFlights := &MockFlightUseCase{}
	handler := NewFlightHandler(mockFlights, &MockEscrowUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights", nil)

	list := []domain.Flight{
		{Number: "SU100", DepartureTime: departure, FareCents: 5000, Status: domain.FlightStatusOnTime},
	}

	mockFlights.On("List", c.Request.Context()).Return(list, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []flightResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, "SU100", response[0].Number)
	assert.Equal(t, "2026-04-02T07:45:00Z", response[0].DepartureTime)
	assert.False(t, response[0].StatusReported)

	mockFlights.AssertExpectations(t)
}

func TestFlightHandler_get(t *testing.T) {
	mockEscrow := &MockEscrowUseCase{}
	handler := NewFlightHandler(&MockFlightUseCase{}, mockEscrow)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "number", Value: "SU100"}}
	c.Request = httptest.NewRequest("GET", "/flights/SU100", nil)

	reported := domain.FlightStatusDelayed
	flight := &domain.Flight{
		Number:         "SU100",
		DepartureTime:  departure,
		FareCents:      5000,
		Status:         domain.FlightStatusDelayed,
		Delay:          3 * time.Hour,
		ReportedStatus: &reported,
	}
	mockEscrow.On("GetFlightData", c.Request.Context(), "SU100").Return(flight, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response flightResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "DELAYED", response.Status)
	assert.Equal(t, float64(3), response.DelayHours)
	assert.Equal(t, "2026-04-02T10:45:00Z", response.ActualDeparture)
	assert.True(t, response.StatusReported)

	mockEscrow.AssertExpectations(t)
}

func TestFlightHandler_get_NotFound(t *testing.T) {
	mockEscrow := &MockEscrowUseCase{}
	handler := NewFlightHandler(&MockFlightUseCase{}, mockEscrow)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "number", Value: "XX1"}}
	c.Request = httptest.NewRequest("GET", "/flights/XX1", nil)

	mockEscrow.On("GetFlightData", c.Request.Context(), "XX1").Return(nil, fmt.Errorf("%w: flight %q", domain.ErrNotFound, "XX1"))

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockEscrow.AssertExpectations(t)
}

func TestFlightHandler_create(t *testing.T) {
	mockFlights := &MockFlightUseCase{}
	handler := NewFlightHandler(mockFlights, &MockEscrowUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(createFlightRequest{Number: "SU300", DepartureTime: "2026-04-02T07:45:00Z", FareCents: 12000})
	c.Request = httptest.NewRequest("POST", "/flights", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set(CallerHeader, "airline")

	input := flights.CreateFlightInput{Caller: "airline", Number: "SU300", DepartureTime: departure, FareCents: 12000}
	mockFlights.On("CreateFlight", c.Request.Context(), input).Return(&domain.Flight{
		Number: "SU300", DepartureTime: departure, FareCents: 12000, Status: domain.FlightStatusOnTime,
	}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockFlights.AssertExpectations(t)
}

func TestFlightHandler_create_BadDeparture(t *testing.T) {
	handler := NewFlightHandler(&MockFlightUseCase{}, &MockEscrowUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/flights", bytes.NewBufferString(`{"number":"SU1","departure_time":"tomorrow","fare_cents":1}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlightHandler_cancel(t *testing.T) {
	mockEscrow := &MockEscrowUseCase{}
	handler := NewFlightHandler(&MockFlightUseCase{}, mockEscrow)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "number", Value: "SU100"}}
	c.Request = httptest.NewRequest("POST", "/flights/SU100/cancel", nil)
	c.Request.Header.Set(CallerHeader, "airline")

	result := &escrow.SweepResult{
		Flight:  domain.Flight{Number: "SU100", DepartureTime: departure, Status: domain.FlightStatusCancelled},
		Payouts: []escrow.Payout{{BookingID: 1, Customer: "alice", AmountCents: 5000, Reason: "flight cancelled refund"}},
	}
	mockEscrow.On("CancelFlight", c.Request.Context(), domain.AccountID("airline"), "SU100").Return(result, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response sweepResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "CANCELLED", response.Flight.Status)
	require.Len(t, response.Payouts, 1)
	assert.Equal(t, int64(5000), response.Payouts[0].AmountCents)

	mockEscrow.AssertExpectations(t)
}

func TestFlightHandler_updateStatus_Timing(t *testing.T) {
	mockEscrow := &MockEscrowUseCase{}
	handler := NewFlightHandler(&MockFlightUseCase{}, mockEscrow)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "number", Value: "SU100"}}
	c.Request = httptest.NewRequest("PUT", "/flights/SU100/status", bytes.NewBufferString(`{"status":"DELAYED","delay_hours":3}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set(CallerHeader, "airline")

	input := escrow.UpdateFlightStatusInput{Caller: "airline", FlightNumber: "SU100", Status: domain.FlightStatusDelayed, DelayHours: 3}
	mockEscrow.On("UpdateFlightStatus", c.Request.Context(), input).Return(nil, fmt.Errorf("%w: status updates opens later", domain.ErrTiming))

	handler.updateStatus(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockEscrow.AssertExpectations(t)
}
