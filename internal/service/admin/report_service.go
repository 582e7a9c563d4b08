package admin

import (
	"context"
	"time"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/Domenick1991/autorental/internal/pricing"
	"github.com/Domenick1991/autorental/internal/repository"
)

type ReportUseCase interface {
	TopRentedCars(ctx context.Context, limit int) ([]repository.TopRentedCar, error)
	Utilization(ctx context.Context, branchID int64, from, to time.Time) (*UtilizationReport, error)
}

type UtilizationReport struct {
	BranchID       int64     `json:"branch_id"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	CarCount       int64     `json:"car_count"`
	BookedHours    float64   `json:"booked_hours"`
	UtilizationPct float64   `json:"utilization_pct"`
}

type ReportService struct {
	bookings repository.BookingRepository
	cars     repository.CarRepository
}

func NewReportService(bookings repository.BookingRepository, cars repository.CarRepository) *ReportService {
	return &ReportService{bookings: bookings, cars: cars}
}

const defaultTopLimit = 10

func (s *ReportService) TopRentedCars(ctx context.Context, limit int) ([]repository.TopRentedCar, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	return s.bookings.TopRentedCars(ctx, limit)
}

// Utilization reports how much of the branch fleet's capacity the confirmed
// bookings consumed over the range. Booking hours outside the range are
// clipped, so a long rental only counts its in-range part.
func (s *ReportService) Utilization(ctx context.Context, branchID int64, from, to time.Time) (*UtilizationReport, error) {
	if !to.After(from) {
		return nil, domain.E(domain.CodeValidation, "range end must be after range start")
	}

	carCount, err := s.cars.CountByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.ListConfirmedForBranchRange(ctx, branchID, from, to)
	if err != nil {
		return nil, err
	}

	var bookedHours float64
	for _, b := range bookings {
		start := b.StartTime
		if start.Before(from) {
			start = from
		}
		end := b.EndTime
		if end.After(to) {
			end = to
		}
		if end.After(start) {
			bookedHours += end.Sub(start).Hours()
		}
	}

	rangeHours := to.Sub(from).Hours()
	if rangeHours < 1 {
		rangeHours = 1
	}
	capacity := rangeHours * float64(carCount)

	pct := 0.0
	if capacity > 0 {
		pct = bookedHours / capacity * 100
	}

	return &UtilizationReport{
		BranchID:       branchID,
		From:           from,
		To:             to,
		CarCount:       carCount,
		BookedHours:    pricing.Round2(bookedHours),
		UtilizationPct: pricing.Round2(pct),
	}, nil
}

var _ ReportUseCase = (*ReportService)(nil)
