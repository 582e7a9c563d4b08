package admin

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/Domenick1991/autorental/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Insert(ctx context.Context, q repository.DBTX, b *domain.Booking) error {
	args := m.Called(ctx, q, b)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByIDForUpdate(ctx context.Context, q repository.DBTX, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) HasConflict(ctx context.Context, q repository.DBTX, carID int64, start, end time.Time) (bool, error) {
	args := m.Called(ctx, q, carID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) UpdatePaymentState(ctx context.Context, q repository.DBTX, b *domain.Booking) error {
	args := m.Called(ctx, q, b)
	return args.Error(0)
}

func (m *MockBookingRepository) MarkCancelled(ctx context.Context, q repository.DBTX, b *domain.Booking) error {
	args := m.Called(ctx, q, b)
	return args.Error(0)
}

func (m *MockBookingRepository) ExpirePendingBefore(ctx context.Context, q repository.DBTX, cutoff time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, q, cutoff)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) TopRentedCars(ctx context.Context, limit int) ([]repository.TopRentedCar, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]repository.TopRentedCar), args.Error(1)
}

func (m *MockBookingRepository) ListConfirmedForBranchRange(ctx context.Context, branchID int64, from, to time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, branchID, from, to)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockCarRepository struct {
	mock.Mock
}

func (m *MockCarRepository) GetByID(ctx context.Context, id int64) (*domain.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarRepository) GetForUpdate(ctx context.Context, q repository.DBTX, id int64) (*domain.Car, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarRepository) CountAvailableInCategory(ctx context.Context, branchID int64, category domain.CarCategory) (int64, error) {
	args := m.Called(ctx, branchID, category)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCarRepository) ListOperational(ctx context.Context, branchID int64, category domain.CarCategory) ([]domain.Car, error) {
	args := m.Called(ctx, branchID, category)
	return args.Get(0).([]domain.Car), args.Error(1)
}

func (m *MockCarRepository) CountByBranch(ctx context.Context, branchID int64) (int64, error) {
	args := m.Called(ctx, branchID)
	return args.Get(0).(int64), args.Error(1)
}

func TestTopRentedCars_DefaultLimit(t *testing.T) {
	bookings := &MockBookingRepository{}
	cars := &MockCarRepository{}
	svc := NewReportService(bookings, cars)

	expected := []repository.TopRentedCar{{CarID: 7, RentalCount: 12}}
	bookings.On("TopRentedCars", mock.Anything, 10).Return(expected, nil)

	got, err := svc.TopRentedCars(context.Background(), 0)

	assert.NoError(t, err)
	assert.Equal(t, expected, got)
}

func TestUtilization_ClipsBookingsToRange(t *testing.T) {
	bookings := &MockBookingRepository{}
	cars := &MockCarRepository{}
	svc := NewReportService(bookings, cars)

	from := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(240 * time.Hour) // 10 days

	cars.On("CountByBranch", mock.Anything, int64(3)).Return(int64(2), nil)
	bookings.On("ListConfirmedForBranchRange", mock.Anything, int64(3), from, to).Return([]domain.Booking{
		// fully inside: 48h
		{StartTime: from.Add(24 * time.Hour), EndTime: from.Add(72 * time.Hour)},
		// starts before the range: only 24h count
		{StartTime: from.Add(-24 * time.Hour), EndTime: from.Add(24 * time.Hour)},
	}, nil)

	report, err := svc.Utilization(context.Background(), 3, from, to)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), report.CarCount)
	assert.Equal(t, 72.0, report.BookedHours)
	// 72h booked of 480h capacity
	assert.Equal(t, 15.0, report.UtilizationPct)
}

func TestUtilization_EmptyBranch(t *testing.T) {
	bookings := &MockBookingRepository{}
	cars := &MockCarRepository{}
	svc := NewReportService(bookings, cars)

	from := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	cars.On("CountByBranch", mock.Anything, int64(4)).Return(int64(0), nil)
	bookings.On("ListConfirmedForBranchRange", mock.Anything, int64(4), from, to).Return([]domain.Booking{}, nil)

	report, err := svc.Utilization(context.Background(), 4, from, to)

	assert.NoError(t, err)
	assert.Equal(t, 0.0, report.UtilizationPct)
}

func TestUtilization_InvalidRange(t *testing.T) {
	svc := NewReportService(&MockBookingRepository{}, &MockCarRepository{})

	ts := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Utilization(context.Background(), 3, ts, ts)

	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}
