package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/Domenick1991/autorental/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Create(ctx context.Context, actor domain.Actor, input booking.CreateBookingInput) (*booking.CreateResult, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.CreateResult), args.Error(1)
}

func (m *MockBookingUseCase) GetByID(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) MyBookings(ctx context.Context, actor domain.Actor) ([]domain.Booking, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Cancel(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) AuditTrail(ctx context.Context, actor domain.Actor, id int64) ([]domain.BookingAudit, error) {
	args := m.Called(ctx, actor, id)
	return args.Get(0).([]domain.BookingAudit), args.Error(1)
}

func (m *MockBookingUseCase) ExpirePendingBookings(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func testContext(t *testing.T, method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	c.Request = httptest.NewRequest(method, target, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func authedContext(t *testing.T, method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	c, w := testContext(t, method, target, body)
	c.Set(actorKey, domain.Actor{ID: 42, Email: "kunde@example.com", Role: domain.RoleCustomer})
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

var (
	apiStart = time.Date(2030, time.June, 4, 10, 0, 0, 0, time.UTC)
	apiEnd   = apiStart.Add(72 * time.Hour)
)

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:            101,
		Code:          "BKG-AAAA1111",
		CustomerID:    42,
		CarID:         7,
		BranchID:      3,
		Category:      domain.CategoryCompact,
		StartTime:     apiStart,
		EndTime:       apiEnd,
		Status:        domain.BookingStatusConfirmed,
		PaymentMode:   domain.PaymentModePayAtDesk,
		PaymentStatus: domain.PaymentStatusPending,
		TotalPrice:    300,
	}
}

func TestBookingHandler_CreateConfirmed(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedContext(t, http.MethodPost, "/api/v1/bookings", gin.H{
		"car_id":       7,
		"start_time":   apiStart.Format(time.RFC3339),
		"end_time":     apiEnd.Format(time.RFC3339),
		"payment_mode": "PAY_AT_DESK",
	})

	mockService.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(in booking.CreateBookingInput) bool {
		return in.CarID == 7 && in.StartTime.Equal(apiStart) && in.PaymentMode == domain.PaymentModePayAtDesk
	})).Return(&booking.CreateResult{Booking: sampleBooking()}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp createBookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CONFIRMED", resp.Status)
	assert.Equal(t, "BKG-AAAA1111", resp.Booking.Code)
	assert.Nil(t, resp.Waitlist)
}

func TestBookingHandler_CreateWaitlisted(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedContext(t, http.MethodPost, "/api/v1/bookings", gin.H{
		"car_id":         7,
		"start_time":     apiStart.Format(time.RFC3339),
		"end_time":       apiEnd.Format(time.RFC3339),
		"payment_mode":   "ONLINE",
		"allow_waitlist": true,
	})

	entry := &domain.WaitlistEntry{ID: 55, BranchID: 3, Category: domain.CategoryCompact, StartTime: apiStart, EndTime: apiEnd, Status: domain.WaitlistStatusPending}
	mockService.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(&booking.CreateResult{Waitlist: entry}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	var resp createBookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "WAITLISTED", resp.Status)
	assert.Nil(t, resp.Booking)
	assert.Equal(t, int64(55), resp.Waitlist.ID)
}

func TestBookingHandler_CreateConflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedContext(t, http.MethodPost, "/api/v1/bookings", gin.H{
		"car_id":       7,
		"start_time":   apiStart.Format(time.RFC3339),
		"end_time":     apiEnd.Format(time.RFC3339),
		"payment_mode": "ONLINE",
	})

	mockService.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.E(domain.CodeConflict, "car is not available for the requested window"))

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, domain.CodeConflict, resp.Error.Code)
	assert.Equal(t, "car is not available for the requested window", resp.Error.Message)
}

func TestBookingHandler_CreateBadTimestamp(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	c, w := authedContext(t, http.MethodPost, "/api/v1/bookings", gin.H{
		"car_id":       7,
		"start_time":   "tomorrow",
		"end_time":     apiEnd.Format(time.RFC3339),
		"payment_mode": "ONLINE",
	})

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.CodeValidation, decodeError(t, w).Error.Code)
}

func TestBookingHandler_CreateWithoutActor(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	c, w := testContext(t, http.MethodPost, "/api/v1/bookings", gin.H{})

	handler.create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingHandler_GetForbidden(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedContext(t, http.MethodGet, "/api/v1/bookings/101", nil)
	c.Params = gin.Params{{Key: "id", Value: "101"}}

	mockService.On("GetByID", mock.Anything, mock.Anything, int64(101)).
		Return(nil, domain.E(domain.CodeForbidden, "booking belongs to another customer"))

	handler.get(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, domain.CodeForbidden, decodeError(t, w).Error.Code)
}

func TestBookingHandler_CancelClosedBooking(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedContext(t, http.MethodDelete, "/api/v1/bookings/101", nil)
	c.Params = gin.Params{{Key: "id", Value: "101"}}

	mockService.On("Cancel", mock.Anything, mock.Anything, int64(101)).
		Return(nil, domain.E(domain.CodeBusinessRule, "booking is already closed"))

	handler.cancel(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, domain.CodeBusinessRule, decodeError(t, w).Error.Code)
}

func TestBookingHandler_Cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedContext(t, http.MethodDelete, "/api/v1/bookings/101", nil)
	c.Params = gin.Params{{Key: "id", Value: "101"}}

	cancelled := sampleBooking()
	cancelled.Status = domain.BookingStatusCancelled
	cancelled.CancellationFee = 90
	cancelled.RefundAmount = 210
	mockService.On("Cancel", mock.Anything, mock.Anything, int64(101)).Return(cancelled, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CANCELLED", resp.Status)
	assert.Equal(t, 90.0, resp.CancellationFee)
	assert.Equal(t, 210.0, resp.RefundAmount)
}

func TestBookingHandler_BadID(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	c, w := authedContext(t, http.MethodGet, "/api/v1/bookings/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_Audit(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedContext(t, http.MethodGet, "/api/v1/bookings/101/audit", nil)
	c.Params = gin.Params{{Key: "id", Value: "101"}}

	mockService.On("AuditTrail", mock.Anything, mock.Anything, int64(101)).Return([]domain.BookingAudit{
		{EventType: "BOOKING_CREATED", Actor: "kunde@example.com"},
		{EventType: "PAYMENT_ATTEMPT", Actor: "kunde@example.com"},
	}, nil)

	handler.audit(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []auditResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
	assert.Equal(t, "BOOKING_CREATED", resp[0].EventType)
}
