package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/Domenick1991/autorental/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/my", h.my)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.cancel)
	router.GET("/:id/audit", h.audit)
}

type createBookingRequest struct {
	CarID             int64  `json:"car_id"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	PaymentMode       string `json:"payment_mode"`
	InsuranceSelected bool   `json:"insurance_selected"`
	CouponCode        string `json:"coupon_code"`
	AllowWaitlist     bool   `json:"allow_waitlist"`
}

type bookingResponse struct {
	ID               int64   `json:"id"`
	Code             string  `json:"code"`
	CarID            int64   `json:"car_id"`
	BranchID         int64   `json:"branch_id"`
	Category         string  `json:"category"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	Status           string  `json:"status"`
	PaymentMode      string  `json:"payment_mode"`
	PaymentStatus    string  `json:"payment_status"`
	BaseAmount       float64 `json:"base_amount"`
	WeekendSurcharge float64 `json:"weekend_surcharge"`
	DurationDiscount float64 `json:"duration_discount"`
	DynamicSurcharge float64 `json:"dynamic_surcharge"`
	InsuranceFee     float64 `json:"insurance_fee"`
	CouponDiscount   float64 `json:"coupon_discount"`
	TotalPrice       float64 `json:"total_price"`
	CancellationFee  float64 `json:"cancellation_fee"`
	RefundAmount     float64 `json:"refund_amount"`
	CreatedAt        string  `json:"created_at"`
}

type waitlistResponse struct {
	ID        int64  `json:"id"`
	BranchID  int64  `json:"branch_id"`
	Category  string `json:"category"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

type createBookingResponse struct {
	Status   string            `json:"status"`
	Booking  *bookingResponse  `json:"booking,omitempty"`
	Waitlist *waitlistResponse `json:"waitlist,omitempty"`
}

func toBookingResponse(b *domain.Booking) *bookingResponse {
	return &bookingResponse{
		ID:               b.ID,
		Code:             b.Code,
		CarID:            b.CarID,
		BranchID:         b.BranchID,
		Category:         string(b.Category),
		StartTime:        b.StartTime.Format(time.RFC3339),
		EndTime:          b.EndTime.Format(time.RFC3339),
		Status:           string(b.Status),
		PaymentMode:      string(b.PaymentMode),
		PaymentStatus:    string(b.PaymentStatus),
		BaseAmount:       b.BaseAmount,
		WeekendSurcharge: b.WeekendSurcharge,
		DurationDiscount: b.DurationDiscount,
		DynamicSurcharge: b.DynamicSurcharge,
		InsuranceFee:     b.InsuranceFee,
		CouponDiscount:   b.CouponDiscount,
		TotalPrice:       b.TotalPrice,
		CancellationFee:  b.CancellationFee,
		RefundAmount:     b.RefundAmount,
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
	}
}

func (h *BookingHandler) create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		writeErrorCode(c, domain.CodeUnauthorized, "authentication required")
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, domain.CodeValidation, "invalid request body")
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeErrorCode(c, domain.CodeValidation, "start_time must be RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		writeErrorCode(c, domain.CodeValidation, "end_time must be RFC3339")
		return
	}

	result, err := h.service.Create(c.Request.Context(), actor, booking.CreateBookingInput{
		CarID:             req.CarID,
		StartTime:         start,
		EndTime:           end,
		PaymentMode:       domain.PaymentMode(req.PaymentMode),
		InsuranceSelected: req.InsuranceSelected,
		CouponCode:        req.CouponCode,
		AllowWaitlist:     req.AllowWaitlist,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	if result.Waitlist != nil {
		c.JSON(http.StatusAccepted, createBookingResponse{
			Status: string(domain.BookingStatusWaitlisted),
			Waitlist: &waitlistResponse{
				ID:        result.Waitlist.ID,
				BranchID:  result.Waitlist.BranchID,
				Category:  string(result.Waitlist.Category),
				StartTime: result.Waitlist.StartTime.Format(time.RFC3339),
				EndTime:   result.Waitlist.EndTime.Format(time.RFC3339),
				Status:    string(result.Waitlist.Status),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, createBookingResponse{
		Status:  string(result.Booking.Status),
		Booking: toBookingResponse(result.Booking),
	})
}

func (h *BookingHandler) get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		writeErrorCode(c, domain.CodeUnauthorized, "authentication required")
		return
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) my(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		writeErrorCode(c, domain.CodeUnauthorized, "authentication required")
		return
	}

	bookings, err := h.service.MyBookings(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]*bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		writeErrorCode(c, domain.CodeUnauthorized, "authentication required")
		return
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

type auditResponse struct {
	EventType string `json:"event_type"`
	Actor     string `json:"actor"`
	Details   string `json:"details"`
	CreatedAt string `json:"created_at"`
}

func (h *BookingHandler) audit(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		writeErrorCode(c, domain.CodeUnauthorized, "authentication required")
		return
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	entries, err := h.service.AuditTrail(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]auditResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditResponse{
			EventType: e.EventType,
			Actor:     e.Actor,
			Details:   e.Details,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.E(domain.CodeValidation, "id must be a positive integer")
	}
	return id, nil
}
