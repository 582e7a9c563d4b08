package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/Domenick1991/autorental/internal/service/payment"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPaymentUseCase struct {
	mock.Mock
}

func (m *MockPaymentUseCase) Retry(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockPaymentUseCase) HandleWebhook(ctx context.Context, input payment.WebhookInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockPaymentUseCase) History(ctx context.Context, actor domain.Actor, bookingID int64) ([]domain.PaymentTransaction, error) {
	args := m.Called(ctx, actor, bookingID)
	return args.Get(0).([]domain.PaymentTransaction), args.Error(1)
}

func TestPaymentHandler_Retry(t *testing.T) {
	mockService := &MockPaymentUseCase{}
	handler := NewPaymentHandler(mockService)

	c, w := authedContext(t, http.MethodPost, "/api/v1/payments/101/retry", nil)
	c.Params = gin.Params{{Key: "bookingId", Value: "101"}}

	confirmed := sampleBooking()
	confirmed.PaymentStatus = domain.PaymentStatusSuccess
	mockService.On("Retry", mock.Anything, mock.Anything, int64(101)).Return(confirmed, nil)

	handler.retry(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CONFIRMED", resp.Status)
	assert.Equal(t, "SUCCESS", resp.PaymentStatus)
}

func TestPaymentHandler_RetryConfirmedBooking(t *testing.T) {
	mockService := &MockPaymentUseCase{}
	handler := NewPaymentHandler(mockService)

	c, w := authedContext(t, http.MethodPost, "/api/v1/payments/101/retry", nil)
	c.Params = gin.Params{{Key: "bookingId", Value: "101"}}

	mockService.On("Retry", mock.Anything, mock.Anything, int64(101)).
		Return(nil, domain.E(domain.CodeBusinessRule, "booking is already confirmed"))

	handler.retry(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, domain.CodeBusinessRule, decodeError(t, w).Error.Code)
}

func TestPaymentHandler_Webhook(t *testing.T) {
	mockService := &MockPaymentUseCase{}
	handler := NewPaymentHandler(mockService)

	c, w := testContext(t, http.MethodPost, "/api/v1/payments/webhook", gin.H{
		"booking_id":         101,
		"status":             "SUCCESS",
		"provider_reference": "prov-1",
	})

	confirmed := sampleBooking()
	mockService.On("HandleWebhook", mock.Anything, payment.WebhookInput{
		BookingID:         101,
		Status:            domain.PaymentStatusSuccess,
		ProviderReference: "prov-1",
	}).Return(confirmed, nil)

	handler.webhook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CONFIRMED", resp["status"])
}

func TestPaymentHandler_WebhookUnknownStatus(t *testing.T) {
	mockService := &MockPaymentUseCase{}
	handler := NewPaymentHandler(mockService)

	c, w := testContext(t, http.MethodPost, "/api/v1/payments/webhook", gin.H{
		"booking_id": 101,
		"status":     "MAYBE",
	})

	mockService.On("HandleWebhook", mock.Anything, mock.Anything).
		Return(nil, domain.E(domain.CodeValidation, "status must be SUCCESS, PENDING or FAILED"))

	handler.webhook(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.CodeValidation, decodeError(t, w).Error.Code)
}

func TestPaymentHandler_History(t *testing.T) {
	mockService := &MockPaymentUseCase{}
	handler := NewPaymentHandler(mockService)

	c, w := authedContext(t, http.MethodGet, "/api/v1/payments/101/history", nil)
	c.Params = gin.Params{{Key: "bookingId", Value: "101"}}

	mockService.On("History", mock.Anything, mock.Anything, int64(101)).Return([]domain.PaymentTransaction{
		{ID: 2, Amount: 250, Status: domain.PaymentStatusSuccess, ProviderReference: "ref-2"},
		{ID: 1, Amount: 250, Status: domain.PaymentStatusFailed, ProviderReference: "ref-1"},
	}, nil)

	handler.history(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []paymentTransactionResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
	assert.Equal(t, int64(2), resp[0].ID)
}
