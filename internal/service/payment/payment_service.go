package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/Domenick1991/autorental/internal/kafka"
	"github.com/Domenick1991/autorental/internal/paymentcore"
	"github.com/Domenick1991/autorental/internal/repository"
	"go.uber.org/zap"
)

const (
	eventPaymentRetry   = "PAYMENT_RETRY"
	eventPaymentWebhook = "PAYMENT_WEBHOOK"

	webhookActor = "webhook"
)

type PaymentUseCase interface {
	Retry(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.Booking, error)
	HandleWebhook(ctx context.Context, input WebhookInput) (*domain.Booking, error)
	History(ctx context.Context, actor domain.Actor, bookingID int64) ([]domain.PaymentTransaction, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type WebhookInput struct {
	BookingID         int64                `json:"booking_id"`
	Status            domain.PaymentStatus `json:"status"`
	ProviderReference string               `json:"provider_reference"`
}

type PaymentService struct {
	db                 repository.DB
	bookings           repository.BookingRepository
	payments           repository.PaymentRepository
	audits             repository.AuditRepository
	core               paymentcore.Client
	producer           Producer
	notificationsTopic string
	currency           string
	logger             *zap.Logger
}

func NewPaymentService(
	db repository.DB,
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	audits repository.AuditRepository,
	core paymentcore.Client,
	producer Producer,
	notificationsTopic string,
	currency string,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		db:                 db,
		bookings:           bookings,
		payments:           payments,
		audits:             audits,
		core:               core,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		currency:           currency,
		logger:             logger,
	}
}

// ProcessInitialPayment charges the full booking total and records the attempt
// inside the caller's transaction. It is invoked by booking creation while the
// car row lock is still held, so a failed charge never loses the car.
func (s *PaymentService) ProcessInitialPayment(ctx context.Context, q repository.DBTX, b *domain.Booking) (*paymentcore.Result, error) {
	result, err := s.core.Charge(ctx, paymentcore.ChargeRequest{
		BookingID:   b.ID,
		BookingCode: b.Code,
		Amount:      b.TotalPrice,
		Currency:    s.currency,
		AttemptType: paymentcore.AttemptInitial,
	})
	if err != nil {
		return nil, err
	}

	tx := &domain.PaymentTransaction{
		BookingID:         b.ID,
		Amount:            b.TotalPrice,
		Status:            result.Status,
		ProviderReference: result.ProviderReference,
	}
	if err := s.payments.Insert(ctx, q, tx); err != nil {
		return nil, err
	}
	return result, nil
}

// Retry re-runs the charge for a booking whose payment did not go through.
// Confirmed, cancelled and expired bookings cannot be retried.
func (s *PaymentService) Retry(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.Booking, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	booking, err := s.bookings.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(booking) {
		return nil, domain.E(domain.CodeForbidden, "booking belongs to another customer")
	}
	switch booking.Status {
	case domain.BookingStatusConfirmed:
		return nil, domain.E(domain.CodeBusinessRule, "booking is already confirmed")
	case domain.BookingStatusCancelled, domain.BookingStatusExpired:
		return nil, domain.E(domain.CodeBusinessRule, "booking is closed")
	}

	result, err := s.core.Charge(ctx, paymentcore.ChargeRequest{
		BookingID:   booking.ID,
		BookingCode: booking.Code,
		Amount:      booking.TotalPrice,
		Currency:    s.currency,
		AttemptType: paymentcore.AttemptRetry,
	})
	if err != nil {
		return nil, err
	}

	paymentTx := &domain.PaymentTransaction{
		BookingID:         booking.ID,
		Amount:            booking.TotalPrice,
		Status:            result.Status,
		ProviderReference: result.ProviderReference,
	}
	if err := s.payments.Insert(ctx, tx, paymentTx); err != nil {
		return nil, err
	}

	booking.ApplyPaymentOutcome(result.Status)
	if err := s.bookings.UpdatePaymentState(ctx, tx, booking); err != nil {
		return nil, err
	}

	audit := &domain.BookingAudit{
		BookingID: booking.ID,
		EventType: eventPaymentRetry,
		Actor:     actor.Email,
		Details:   fmt.Sprintf("retry charge %s, reference %s", result.Status, result.ProviderReference),
	}
	if err := s.audits.Insert(ctx, tx, audit); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if booking.Status == domain.BookingStatusConfirmed {
		s.notify(ctx, booking, "Booking confirmed", fmt.Sprintf("Payment for booking %s went through. Your car is reserved.", booking.Code))
	}
	return booking, nil
}

// HandleWebhook applies an asynchronous processor decision. The processor is
// the source of truth for the payment, so the reported outcome is applied to
// the booking regardless of its current payment state.
func (s *PaymentService) HandleWebhook(ctx context.Context, input WebhookInput) (*domain.Booking, error) {
	switch input.Status {
	case domain.PaymentStatusSuccess, domain.PaymentStatusPending, domain.PaymentStatusFailed:
	default:
		return nil, domain.E(domain.CodeValidation, "status must be SUCCESS, PENDING or FAILED")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	booking, err := s.bookings.GetByIDForUpdate(ctx, tx, input.BookingID)
	if err != nil {
		return nil, err
	}

	paymentTx := &domain.PaymentTransaction{
		BookingID:         booking.ID,
		Amount:            booking.TotalPrice,
		Status:            input.Status,
		ProviderReference: input.ProviderReference,
	}
	if err := s.payments.Insert(ctx, tx, paymentTx); err != nil {
		return nil, err
	}

	booking.ApplyPaymentOutcome(input.Status)
	if err := s.bookings.UpdatePaymentState(ctx, tx, booking); err != nil {
		return nil, err
	}

	audit := &domain.BookingAudit{
		BookingID: booking.ID,
		EventType: eventPaymentWebhook,
		Actor:     webhookActor,
		Details:   fmt.Sprintf("webhook reported %s, reference %s", input.Status, input.ProviderReference),
	}
	if err := s.audits.Insert(ctx, tx, audit); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if booking.Status == domain.BookingStatusConfirmed {
		s.notify(ctx, booking, "Booking confirmed", fmt.Sprintf("Payment for booking %s was confirmed. Your car is reserved.", booking.Code))
	}
	return booking, nil
}

func (s *PaymentService) History(ctx context.Context, actor domain.Actor, bookingID int64) ([]domain.PaymentTransaction, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(booking) {
		return nil, domain.E(domain.CodeForbidden, "booking belongs to another customer")
	}
	return s.payments.ListByBooking(ctx, bookingID)
}

func (s *PaymentService) notify(ctx context.Context, b *domain.Booking, subject, body string) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	event := kafka.NotificationEvent{
		To:          b.CustomerEmail,
		Subject:     subject,
		Body:        body,
		BookingCode: b.Code,
		At:          time.Now(),
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, b.Code, event); err != nil {
		s.logger.Warn("notification publish failed", zap.String("booking", b.Code), zap.Error(err))
	}
}

var _ PaymentUseCase = (*PaymentService)(nil)
