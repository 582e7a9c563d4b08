package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/Domenick1991/autorental/internal/service/admin"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	service admin.ReportUseCase
}

func NewAdminHandler(service admin.ReportUseCase) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.GET("/reports/top-cars", h.topCars)
	router.GET("/reports/utilization", h.utilization)
}

type topCarResponse struct {
	CarID        int64  `json:"car_id"`
	LicensePlate string `json:"license_plate"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	RentalCount  int64  `json:"rental_count"`
}

func (h *AdminHandler) topCars(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeErrorCode(c, domain.CodeValidation, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	cars, err := h.service.TopRentedCars(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]topCarResponse, 0, len(cars))
	for _, car := range cars {
		out = append(out, topCarResponse{
			CarID:        car.CarID,
			LicensePlate: car.LicensePlate,
			Brand:        car.Brand,
			Model:        car.Model,
			RentalCount:  car.RentalCount,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) utilization(c *gin.Context) {
	branchID, err := parseID(c.Query("branch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		writeErrorCode(c, domain.CodeValidation, "from must be RFC3339")
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		writeErrorCode(c, domain.CodeValidation, "to must be RFC3339")
		return
	}

	report, err := h.service.Utilization(c.Request.Context(), branchID, from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
