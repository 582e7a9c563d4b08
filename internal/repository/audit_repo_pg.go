package repository

import (
	"context"

	"github.com/Domenick1991/autorental/internal/domain"
)

// AuditRepository is a write-only sink for state-change events plus an ordered
// per-booking read. Entries are never updated or deleted.
type AuditRepository interface {
	Insert(ctx context.Context, q DBTX, a *domain.BookingAudit) error
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.BookingAudit, error)
}

type PGAuditRepository struct {
	db DB
}

func NewAuditRepository(db DB) AuditRepository {
	return &PGAuditRepository{db: db}
}

func (r *PGAuditRepository) Insert(ctx context.Context, q DBTX, a *domain.BookingAudit) error {
	return q.QueryRow(ctx, `INSERT INTO booking_audits (booking_id, event_type, actor, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		a.BookingID, a.EventType, a.Actor, a.Details).
		Scan(&a.ID, &a.CreatedAt)
}

func (r *PGAuditRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.BookingAudit, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, event_type, actor, details, created_at
		FROM booking_audits WHERE booking_id=$1 ORDER BY created_at ASC, id ASC`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BookingAudit
	for rows.Next() {
		var a domain.BookingAudit
		if err := rows.Scan(&a.ID, &a.BookingID, &a.EventType, &a.Actor, &a.Details, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ AuditRepository = (*PGAuditRepository)(nil)
