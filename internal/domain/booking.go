package domain

import "time"

type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "PENDING_PAYMENT"
	BookingStatusPaymentFailed  BookingStatus = "PAYMENT_FAILED"
	BookingStatusConfirmed      BookingStatus = "CONFIRMED"
	BookingStatusCancelled      BookingStatus = "CANCELLED"
	BookingStatusExpired        BookingStatus = "EXPIRED"

	// BookingStatusWaitlisted is never persisted: a request that cannot get a
	// car becomes a WaitlistEntry, not a booking row. The value only appears
	// in creation responses.
	BookingStatusWaitlisted BookingStatus = "WAITLISTED"
)

type PaymentMode string

const (
	PaymentModeOnline    PaymentMode = "ONLINE"
	PaymentModePayAtDesk PaymentMode = "PAY_AT_DESK"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

type Booking struct {
	ID            int64
	Code          string
	CustomerID    int64
	CustomerEmail string
	CarID         int64
	// BranchID is copied from the car at creation time so the booking keeps
	// its branch even if the car later moves.
	BranchID  int64
	Category  CarCategory
	StartTime time.Time
	EndTime   time.Time

	Status        BookingStatus
	PaymentMode   PaymentMode
	PaymentStatus PaymentStatus

	InsuranceSelected bool
	CouponCode        string

	BaseAmount       float64
	WeekendSurcharge float64
	DurationDiscount float64
	DynamicSurcharge float64
	InsuranceFee     float64
	CouponDiscount   float64
	TotalPrice       float64

	CancelledAt     *time.Time
	CancellationFee float64
	RefundAmount    float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplyPaymentOutcome translates a processor result into booking state. The
// same rule is applied by the creation, retry and webhook paths.
func (b *Booking) ApplyPaymentOutcome(status PaymentStatus) {
	b.PaymentStatus = status
	switch status {
	case PaymentStatusSuccess:
		b.Status = BookingStatusConfirmed
	case PaymentStatusFailed:
		b.Status = BookingStatusPaymentFailed
	default:
		b.Status = BookingStatusPendingPayment
	}
}

type WaitlistStatus string

const (
	WaitlistStatusPending   WaitlistStatus = "PENDING"
	WaitlistStatusFulfilled WaitlistStatus = "FULFILLED"
)

type WaitlistEntry struct {
	ID            int64
	CustomerID    int64
	CustomerEmail string
	BranchID      int64
	Category      CarCategory
	StartTime     time.Time
	EndTime       time.Time
	Status        WaitlistStatus
	CreatedAt     time.Time
}

type BookingAudit struct {
	ID        int64
	BookingID int64
	EventType string
	Actor     string
	Details   string
	CreatedAt time.Time
}

type PaymentTransaction struct {
	ID                int64
	BookingID         int64
	Amount            float64
	Status            PaymentStatus
	ProviderReference string
	CreatedAt         time.Time
}
