package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/Domenick1991/autorental/internal/kafka"
	"github.com/Domenick1991/autorental/internal/paymentcore"
	"github.com/Domenick1991/autorental/internal/pricing"
	"github.com/Domenick1991/autorental/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	eventBookingCreated   = "BOOKING_CREATED"
	eventPaymentAttempt   = "PAYMENT_ATTEMPT"
	eventBookingCancelled = "BOOKING_CANCELLED"
	eventBookingExpired   = "BOOKING_EXPIRED"

	schedulerActor = "scheduler"

	// Cancelling less than 24 whole hours before pickup costs 30% of the
	// total. At exactly 24 hours the cancellation is still free.
	lateCancelWindowHours = 24
	lateCancelFeeRate     = 0.30
)

type BookingUseCase interface {
	Create(ctx context.Context, actor domain.Actor, input CreateBookingInput) (*CreateResult, error)
	GetByID(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error)
	MyBookings(ctx context.Context, actor domain.Actor) ([]domain.Booking, error)
	Cancel(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error)
	AuditTrail(ctx context.Context, actor domain.Actor, id int64) ([]domain.BookingAudit, error)
	ExpirePendingBookings(ctx context.Context) (int, error)
}

type Cache interface {
	AcquireCarHold(ctx context.Context, carID int64, ttl time.Duration) (bool, error)
	ReleaseCarHold(ctx context.Context, carID int64) error
	GetCategoryAvailability(ctx context.Context, branchID int64, category domain.CarCategory) (int64, bool, error)
	SetCategoryAvailability(ctx context.Context, branchID int64, category domain.CarCategory, count int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// InitialCharger runs the first charge attempt inside the creation
// transaction. The payment service implements it.
type InitialCharger interface {
	ProcessInitialPayment(ctx context.Context, q repository.DBTX, b *domain.Booking) (*paymentcore.Result, error)
}

type CreateBookingInput struct {
	CarID             int64              `json:"car_id"`
	StartTime         time.Time          `json:"start_time"`
	EndTime           time.Time          `json:"end_time"`
	PaymentMode       domain.PaymentMode `json:"payment_mode"`
	InsuranceSelected bool               `json:"insurance_selected"`
	CouponCode        string             `json:"coupon_code"`
	AllowWaitlist     bool               `json:"allow_waitlist"`
}

// CreateResult carries exactly one of the two creation outcomes: a booking
// row, or a waitlist entry when the car was taken and the caller opted in.
type CreateResult struct {
	Booking  *domain.Booking
	Waitlist *domain.WaitlistEntry
}

type BookingService struct {
	db                 repository.DB
	bookings           repository.BookingRepository
	cars               repository.CarRepository
	waitlist           repository.WaitlistRepository
	audits             repository.AuditRepository
	maintenance        repository.MaintenanceRepository
	pricer             *pricing.Engine
	charger            InitialCharger
	cache              Cache
	producer           Producer
	notificationsTopic string
	holdTTL            time.Duration
	expirationTTL      time.Duration
	logger             *zap.Logger
	now                func() time.Time
}

func NewBookingService(
	db repository.DB,
	bookings repository.BookingRepository,
	cars repository.CarRepository,
	waitlist repository.WaitlistRepository,
	audits repository.AuditRepository,
	maintenance repository.MaintenanceRepository,
	pricer *pricing.Engine,
	charger InitialCharger,
	cache Cache,
	producer Producer,
	notificationsTopic string,
	holdTTL, expirationTTL time.Duration,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		db:                 db,
		bookings:           bookings,
		cars:               cars,
		waitlist:           waitlist,
		audits:             audits,
		maintenance:        maintenance,
		pricer:             pricer,
		charger:            charger,
		cache:              cache,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		holdTTL:            holdTTL,
		expirationTTL:      expirationTTL,
		logger:             logger,
		now:                time.Now,
	}
}

// Create books a car for the window, or waitlists the request when the car is
// unavailable and the caller allows it. The car row is locked for the whole
// critical section, so with two racing requests exactly one gets the booking.
func (s *BookingService) Create(ctx context.Context, actor domain.Actor, input CreateBookingInput) (*CreateResult, error) {
	if !input.EndTime.After(input.StartTime) {
		return nil, domain.E(domain.CodeValidation, "end time must be after start time")
	}
	if input.StartTime.Before(s.now()) {
		return nil, domain.E(domain.CodeValidation, "start time must not be in the past")
	}
	switch input.PaymentMode {
	case domain.PaymentModeOnline, domain.PaymentModePayAtDesk:
	default:
		return nil, domain.E(domain.CodeValidation, "payment mode must be ONLINE or PAY_AT_DESK")
	}

	held := false
	if s.cache != nil {
		ok, err := s.cache.AcquireCarHold(ctx, input.CarID, s.holdTTL)
		if err != nil {
			s.logger.Warn("car hold unavailable, relying on row lock", zap.Int64("car_id", input.CarID), zap.Error(err))
		} else if !ok {
			return nil, domain.E(domain.CodeConflict, "car is being booked by another customer")
		} else {
			held = true
		}
	}
	if held {
		defer func() {
			if err := s.cache.ReleaseCarHold(ctx, input.CarID); err != nil {
				s.logger.Warn("car hold release failed", zap.Int64("car_id", input.CarID), zap.Error(err))
			}
		}()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	car, err := s.cars.GetForUpdate(ctx, tx, input.CarID)
	if err != nil {
		return nil, err
	}

	available := car.Operational()
	if available {
		blocked, err := s.maintenance.HasOverlapping(ctx, tx, car.ID, input.StartTime, input.EndTime)
		if err != nil {
			return nil, err
		}
		available = !blocked
	}
	if available {
		conflict, err := s.bookings.HasConflict(ctx, tx, car.ID, input.StartTime, input.EndTime)
		if err != nil {
			return nil, err
		}
		available = !conflict
	}

	if !available {
		if !input.AllowWaitlist {
			return nil, domain.E(domain.CodeConflict, "car is not available for the requested window")
		}
		entry, err := s.joinWaitlist(ctx, actor, car, input)
		if err != nil {
			return nil, err
		}
		return &CreateResult{Waitlist: entry}, nil
	}

	availableInCategory, err := s.categoryAvailability(ctx, car.BranchID, car.Category)
	if err != nil {
		return nil, err
	}

	quote := s.pricer.Quote(car.BaseDailyRate, input.StartTime, input.EndTime, input.InsuranceSelected, input.CouponCode, availableInCategory)

	booking := &domain.Booking{
		Code:              newBookingCode(),
		CustomerID:        actor.ID,
		CustomerEmail:     actor.Email,
		CarID:             car.ID,
		BranchID:          car.BranchID,
		Category:          car.Category,
		StartTime:         input.StartTime,
		EndTime:           input.EndTime,
		PaymentMode:       input.PaymentMode,
		PaymentStatus:     domain.PaymentStatusPending,
		InsuranceSelected: input.InsuranceSelected,
		CouponCode:        strings.ToUpper(input.CouponCode),
		BaseAmount:        quote.BaseAmount,
		WeekendSurcharge:  quote.WeekendSurcharge,
		DurationDiscount:  quote.DurationDiscount,
		DynamicSurcharge:  quote.DynamicSurcharge,
		InsuranceFee:      quote.InsuranceFee,
		CouponDiscount:    quote.CouponDiscount,
		TotalPrice:        quote.Total,
	}
	if input.PaymentMode == domain.PaymentModePayAtDesk {
		booking.Status = domain.BookingStatusConfirmed
	} else {
		booking.Status = domain.BookingStatusPendingPayment
	}

	if err := s.bookings.Insert(ctx, tx, booking); err != nil {
		return nil, err
	}

	createdAudit := &domain.BookingAudit{
		BookingID: booking.ID,
		EventType: eventBookingCreated,
		Actor:     actor.Email,
		Details:   fmt.Sprintf("booking %s created for car %d, total %.2f", booking.Code, car.ID, booking.TotalPrice),
	}
	if err := s.audits.Insert(ctx, tx, createdAudit); err != nil {
		return nil, err
	}

	if input.PaymentMode == domain.PaymentModeOnline {
		result, err := s.charger.ProcessInitialPayment(ctx, tx, booking)
		if err != nil {
			return nil, err
		}
		booking.ApplyPaymentOutcome(result.Status)

		attemptAudit := &domain.BookingAudit{
			BookingID: booking.ID,
			EventType: eventPaymentAttempt,
			Actor:     actor.Email,
			Details:   fmt.Sprintf("initial charge %s, reference %s", result.Status, result.ProviderReference),
		}
		if err := s.audits.Insert(ctx, tx, attemptAudit); err != nil {
			return nil, err
		}
		if err := s.bookings.UpdatePaymentState(ctx, tx, booking); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if booking.Status == domain.BookingStatusConfirmed {
		s.notify(ctx, booking.CustomerEmail, "Booking confirmed", fmt.Sprintf("Booking %s is confirmed from %s to %s.",
			booking.Code, booking.StartTime.Format(time.RFC3339), booking.EndTime.Format(time.RFC3339)), booking.Code)
	}
	return &CreateResult{Booking: booking}, nil
}

// joinWaitlist records the unmet demand. Entries are keyed by branch and
// category rather than the exact car, so any matching cancellation can serve
// them. The insert runs outside the creation transaction: the entry must
// survive even though no booking was made.
func (s *BookingService) joinWaitlist(ctx context.Context, actor domain.Actor, car *domain.Car, input CreateBookingInput) (*domain.WaitlistEntry, error) {
	entry := &domain.WaitlistEntry{
		CustomerID:    actor.ID,
		CustomerEmail: actor.Email,
		BranchID:      car.BranchID,
		Category:      car.Category,
		StartTime:     input.StartTime,
		EndTime:       input.EndTime,
		Status:        domain.WaitlistStatusPending,
	}
	if err := s.waitlist.Insert(ctx, entry); err != nil {
		return nil, err
	}
	s.notify(ctx, actor.Email, "Waitlist activated",
		fmt.Sprintf("No %s car was free for your dates. You are on the waitlist and will be notified when one opens up.", car.Category), "")
	return entry, nil
}

func (s *BookingService) GetByID(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(booking) {
		return nil, domain.E(domain.CodeForbidden, "booking belongs to another customer")
	}
	return booking, nil
}

func (s *BookingService) MyBookings(ctx context.Context, actor domain.Actor) ([]domain.Booking, error) {
	return s.bookings.ListByCustomer(ctx, actor.ID)
}

// Cancel closes the booking, computes the fee and refund, and hands the freed
// window to the oldest matching waitlist entry within the same transaction.
func (s *BookingService) Cancel(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	booking, err := s.bookings.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(booking) {
		return nil, domain.E(domain.CodeForbidden, "booking belongs to another customer")
	}
	if booking.Status == domain.BookingStatusCancelled || booking.Status == domain.BookingStatusExpired {
		return nil, domain.E(domain.CodeBusinessRule, "booking is already closed")
	}

	now := s.now()
	fee := 0.0
	if hoursUntil(now, booking.StartTime) < lateCancelWindowHours {
		fee = pricing.Round2(booking.TotalPrice * lateCancelFeeRate)
	}
	refund := booking.TotalPrice - fee
	if refund < 0 {
		refund = 0
	}

	booking.Status = domain.BookingStatusCancelled
	booking.CancelledAt = &now
	booking.CancellationFee = fee
	booking.RefundAmount = pricing.Round2(refund)

	if err := s.bookings.MarkCancelled(ctx, tx, booking); err != nil {
		return nil, err
	}

	audit := &domain.BookingAudit{
		BookingID: booking.ID,
		EventType: eventBookingCancelled,
		Actor:     actor.Email,
		Details:   fmt.Sprintf("cancelled with fee %.2f, refund %.2f", booking.CancellationFee, booking.RefundAmount),
	}
	if err := s.audits.Insert(ctx, tx, audit); err != nil {
		return nil, err
	}

	promoted, err := s.promoteWaitlist(ctx, tx, booking)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if promoted != nil {
		s.notify(ctx, promoted.CustomerEmail, "Car available from waitlist",
			fmt.Sprintf("A %s car at your branch opened up for your requested dates. Book now before it is taken.", promoted.Category), "")
	}
	s.notify(ctx, booking.CustomerEmail, "Booking cancelled",
		fmt.Sprintf("Booking %s was cancelled. Fee %.2f, refund %.2f.", booking.Code, booking.CancellationFee, booking.RefundAmount), booking.Code)

	return booking, nil
}

// promoteWaitlist fulfills the FIFO head of the entries whose window overlaps
// the freed one. Promotion is a notification, not an automatic booking: the
// customer still has to book, and pays the price of that later moment.
func (s *BookingService) promoteWaitlist(ctx context.Context, tx repository.DBTX, b *domain.Booking) (*domain.WaitlistEntry, error) {
	entry, err := s.waitlist.OldestPendingOverlapping(ctx, tx, b.BranchID, b.Category, b.StartTime, b.EndTime)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	if err := s.waitlist.MarkFulfilled(ctx, tx, entry.ID); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *BookingService) AuditTrail(ctx context.Context, actor domain.Actor, id int64) ([]domain.BookingAudit, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(booking) {
		return nil, domain.E(domain.CodeForbidden, "booking belongs to another customer")
	}
	return s.audits.ListByBooking(ctx, id)
}

// ExpirePendingBookings times out online bookings whose payment never arrived.
// The sweep is idempotent: a booking flips to EXPIRED once and later sweeps no
// longer match it.
func (s *BookingService) ExpirePendingBookings(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.expirationTTL)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	expired, err := s.bookings.ExpirePendingBefore(ctx, tx, cutoff)
	if err != nil {
		return 0, err
	}
	for i := range expired {
		audit := &domain.BookingAudit{
			BookingID: expired[i].ID,
			EventType: eventBookingExpired,
			Actor:     schedulerActor,
			Details:   fmt.Sprintf("payment window elapsed for booking %s", expired[i].Code),
		}
		if err := s.audits.Insert(ctx, tx, audit); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	for i := range expired {
		s.notify(ctx, expired[i].CustomerEmail, "Booking expired",
			fmt.Sprintf("Booking %s expired because payment was not completed in time.", expired[i].Code), expired[i].Code)
	}
	return len(expired), nil
}

func (s *BookingService) categoryAvailability(ctx context.Context, branchID int64, category domain.CarCategory) (int64, error) {
	if s.cache != nil {
		count, hit, err := s.cache.GetCategoryAvailability(ctx, branchID, category)
		if err != nil {
			s.logger.Warn("availability cache read failed", zap.Int64("branch_id", branchID), zap.Error(err))
		} else if hit {
			return count, nil
		}
	}

	count, err := s.cars.CountAvailableInCategory(ctx, branchID, category)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.SetCategoryAvailability(ctx, branchID, category, count); err != nil {
			s.logger.Warn("availability cache write failed", zap.Int64("branch_id", branchID), zap.Error(err))
		}
	}
	return count, nil
}

func (s *BookingService) notify(ctx context.Context, to, subject, body, bookingCode string) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	key := bookingCode
	if key == "" {
		key = to
	}
	event := kafka.NotificationEvent{
		To:          to,
		Subject:     subject,
		Body:        body,
		BookingCode: bookingCode,
		At:          time.Now(),
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
		s.logger.Warn("notification publish failed", zap.String("to", to), zap.Error(err))
	}
}

// hoursUntil truncates to whole hours, matching the fee rule: 23h59m before
// pickup is 23 hours, which is inside the late window.
func hoursUntil(now, start time.Time) int64 {
	return int64(start.Sub(now) / time.Hour)
}

func newBookingCode() string {
	return "BKG-" + strings.ToUpper(uuid.NewString()[:8])
}

var _ BookingUseCase = (*BookingService)(nil)
