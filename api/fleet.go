package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/Domenick1991/autorental/internal/service/fleet"
	"github.com/gin-gonic/gin"
)

type FleetHandler struct {
	service fleet.AvailabilityUseCase
}

func NewFleetHandler(service fleet.AvailabilityUseCase) *FleetHandler {
	return &FleetHandler{service: service}
}

func (h *FleetHandler) Register(router *gin.RouterGroup) {
	router.GET("/availability", h.availability)
}

type availableCarResponse struct {
	CarID         int64   `json:"car_id"`
	LicensePlate  string  `json:"license_plate"`
	Brand         string  `json:"brand"`
	Model         string  `json:"model"`
	Category      string  `json:"category"`
	BaseDailyRate float64 `json:"base_daily_rate"`
	RentalDays    int     `json:"rental_days"`
	DynamicFactor float64 `json:"dynamic_factor"`
	TotalPrice    float64 `json:"total_price"`
}

func (h *FleetHandler) availability(c *gin.Context) {
	branchID, err := parseID(c.Query("branch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	start, err := time.Parse(time.RFC3339, c.Query("start_time"))
	if err != nil {
		writeErrorCode(c, domain.CodeValidation, "start_time must be RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end_time"))
	if err != nil {
		writeErrorCode(c, domain.CodeValidation, "end_time must be RFC3339")
		return
	}

	cars, err := h.service.Search(c.Request.Context(), fleet.SearchInput{
		BranchID:  branchID,
		Category:  domain.CarCategory(c.Query("category")),
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]availableCarResponse, 0, len(cars))
	for _, ac := range cars {
		out = append(out, availableCarResponse{
			CarID:         ac.Car.ID,
			LicensePlate:  ac.Car.LicensePlate,
			Brand:         ac.Car.Brand,
			Model:         ac.Car.Model,
			Category:      string(ac.Car.Category),
			BaseDailyRate: ac.Car.BaseDailyRate,
			RentalDays:    ac.Quote.RentalDays,
			DynamicFactor: ac.Quote.DynamicFactor,
			TotalPrice:    ac.Quote.Total,
		})
	}
	c.JSON(http.StatusOK, out)
}
