package repository

import (
	"context"

	"github.com/Domenick1991/autorental/internal/domain"
)

// PaymentRepository stores one row per charge attempt; retries and webhook
// corrections add rows, they never rewrite earlier attempts.
type PaymentRepository interface {
	Insert(ctx context.Context, q DBTX, t *domain.PaymentTransaction) error
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.PaymentTransaction, error)
}

type PGPaymentRepository struct {
	db DB
}

func NewPaymentRepository(db DB) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

func (r *PGPaymentRepository) Insert(ctx context.Context, q DBTX, t *domain.PaymentTransaction) error {
	return q.QueryRow(ctx, `INSERT INTO payment_transactions (booking_id, amount, status, provider_reference)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		t.BookingID, t.Amount, t.Status, t.ProviderReference).
		Scan(&t.ID, &t.CreatedAt)
}

func (r *PGPaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.PaymentTransaction, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, amount, status, provider_reference, created_at
		FROM payment_transactions WHERE booking_id=$1 ORDER BY created_at DESC, id DESC`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PaymentTransaction
	for rows.Next() {
		var t domain.PaymentTransaction
		if err := rows.Scan(&t.ID, &t.BookingID, &t.Amount, &t.Status, &t.ProviderReference, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
