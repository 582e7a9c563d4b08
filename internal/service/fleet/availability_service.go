package fleet

import (
	"context"
	"time"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/Domenick1991/autorental/internal/pricing"
	"github.com/Domenick1991/autorental/internal/repository"
)

type AvailabilityUseCase interface {
	Search(ctx context.Context, input SearchInput) ([]AvailableCar, error)
}

type SearchInput struct {
	BranchID  int64
	Category  domain.CarCategory
	StartTime time.Time
	EndTime   time.Time
}

// AvailableCar pairs a free car with the price its window would cost right
// now. Insurance and coupons are not applied here; they are choices made at
// booking time.
type AvailableCar struct {
	Car   domain.Car    `json:"car"`
	Quote pricing.Quote `json:"quote"`
}

type AvailabilityService struct {
	db          repository.DB
	cars        repository.CarRepository
	bookings    repository.BookingRepository
	maintenance repository.MaintenanceRepository
	pricer      *pricing.Engine
}

func NewAvailabilityService(
	db repository.DB,
	cars repository.CarRepository,
	bookings repository.BookingRepository,
	maintenance repository.MaintenanceRepository,
	pricer *pricing.Engine,
) *AvailabilityService {
	return &AvailabilityService{
		db:          db,
		cars:        cars,
		bookings:    bookings,
		maintenance: maintenance,
		pricer:      pricer,
	}
}

// Search lists the operational cars of a branch that are free for the window,
// each with an indicative quote. A read-only scan, so no locks are taken; the
// booking path re-checks under the row lock anyway.
func (s *AvailabilityService) Search(ctx context.Context, input SearchInput) ([]AvailableCar, error) {
	if !input.EndTime.After(input.StartTime) {
		return nil, domain.E(domain.CodeValidation, "end time must be after start time")
	}
	if input.BranchID <= 0 {
		return nil, domain.E(domain.CodeValidation, "branch id is required")
	}

	cars, err := s.cars.ListOperational(ctx, input.BranchID, input.Category)
	if err != nil {
		return nil, err
	}

	counts := map[domain.CarCategory]int64{}
	for _, c := range cars {
		counts[c.Category]++
	}

	out := []AvailableCar{}
	for _, car := range cars {
		blocked, err := s.maintenance.HasOverlapping(ctx, s.db, car.ID, input.StartTime, input.EndTime)
		if err != nil {
			return nil, err
		}
		if blocked {
			continue
		}
		conflict, err := s.bookings.HasConflict(ctx, s.db, car.ID, input.StartTime, input.EndTime)
		if err != nil {
			return nil, err
		}
		if conflict {
			continue
		}

		quote := s.pricer.Quote(car.BaseDailyRate, input.StartTime, input.EndTime, false, "", counts[car.Category])
		out = append(out, AvailableCar{Car: car, Quote: quote})
	}
	return out, nil
}

var _ AvailabilityUseCase = (*AvailabilityService)(nil)
