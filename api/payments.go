package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/Domenick1991/autorental/internal/service/payment"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service payment.PaymentUseCase
}

func NewPaymentHandler(service payment.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/:bookingId/retry", h.retry)
	router.GET("/:bookingId/history", h.history)
}

// RegisterWebhook mounts the processor callback outside the authenticated
// group: the processor is not a user and carries no bearer token.
func (h *PaymentHandler) RegisterWebhook(router *gin.RouterGroup) {
	router.POST("/webhook", h.webhook)
}

func (h *PaymentHandler) retry(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		writeErrorCode(c, domain.CodeUnauthorized, "authentication required")
		return
	}
	id, err := parseID(c.Param("bookingId"))
	if err != nil {
		writeError(c, err)
		return
	}

	b, err := h.service.Retry(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

type webhookRequest struct {
	BookingID         int64  `json:"booking_id"`
	Status            string `json:"status"`
	ProviderReference string `json:"provider_reference"`
}

func (h *PaymentHandler) webhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, domain.CodeValidation, "invalid request body")
		return
	}

	b, err := h.service.HandleWebhook(c.Request.Context(), payment.WebhookInput{
		BookingID:         req.BookingID,
		Status:            domain.PaymentStatus(req.Status),
		ProviderReference: req.ProviderReference,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking_id": b.ID, "status": string(b.Status)})
}

type paymentTransactionResponse struct {
	ID                int64   `json:"id"`
	Amount            float64 `json:"amount"`
	Status            string  `json:"status"`
	ProviderReference string  `json:"provider_reference"`
	CreatedAt         string  `json:"created_at"`
}

func (h *PaymentHandler) history(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		writeErrorCode(c, domain.CodeUnauthorized, "authentication required")
		return
	}
	id, err := parseID(c.Param("bookingId"))
	if err != nil {
		writeError(c, err)
		return
	}

	transactions, err := h.service.History(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]paymentTransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, paymentTransactionResponse{
			ID:                t.ID,
			Amount:            t.Amount,
			Status:            string(t.Status),
			ProviderReference: t.ProviderReference,
			CreatedAt:         t.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}
