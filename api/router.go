package api

import (
	"net/http"

	"github.com/Domenick1991/autorental/internal/service/admin"
	"github.com/Domenick1991/autorental/internal/service/booking"
	"github.com/Domenick1991/autorental/internal/service/fleet"
	"github.com/Domenick1991/autorental/internal/service/payment"
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Bookings  booking.BookingUseCase
	Payments  payment.PaymentUseCase
	Fleet     fleet.AvailabilityUseCase
	Reports   admin.ReportUseCase
	JWTSecret string
}

// NewRouter assembles the HTTP surface. Everything under /api/v1 requires a
// bearer token except the payment webhook.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	paymentHandler := NewPaymentHandler(deps.Payments)
	paymentHandler.RegisterWebhook(v1.Group("/payments"))

	authed := v1.Group("", AuthRequired(deps.JWTSecret))
	NewBookingHandler(deps.Bookings).Register(authed.Group("/bookings"))
	paymentHandler.Register(authed.Group("/payments"))
	NewFleetHandler(deps.Fleet).Register(authed.Group("/fleet"))
	NewAdminHandler(deps.Reports).Register(authed.Group("/admin", ElevatedOnly()))

	return router
}
