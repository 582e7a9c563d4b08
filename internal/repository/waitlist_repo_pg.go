package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/jackc/pgx/v5"
)

type WaitlistRepository interface {
	Insert(ctx context.Context, e *domain.WaitlistEntry) error
	// OldestPendingOverlapping returns the FIFO head of the pending entries
	// matching branch, category and an overlapping window, locked for the
	// caller's transaction. Returns nil when nothing matches.
	OldestPendingOverlapping(ctx context.Context, q DBTX, branchID int64, category domain.CarCategory, start, end time.Time) (*domain.WaitlistEntry, error)
	MarkFulfilled(ctx context.Context, q DBTX, id int64) error
}

type PGWaitlistRepository struct {
	db DB
}

func NewWaitlistRepository(db DB) WaitlistRepository {
	return &PGWaitlistRepository{db: db}
}

const waitlistColumns = `id, customer_id, customer_email, branch_id, category, start_time, end_time, status, created_at`

func (r *PGWaitlistRepository) Insert(ctx context.Context, e *domain.WaitlistEntry) error {
	return r.db.QueryRow(ctx, `INSERT INTO waitlist_entries (customer_id, customer_email, branch_id, category, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		e.CustomerID, e.CustomerEmail, e.BranchID, e.Category, e.StartTime, e.EndTime, e.Status).
		Scan(&e.ID, &e.CreatedAt)
}

func (r *PGWaitlistRepository) OldestPendingOverlapping(ctx context.Context, q DBTX, branchID int64, category domain.CarCategory, start, end time.Time) (*domain.WaitlistEntry, error) {
	row := q.QueryRow(ctx, `SELECT `+waitlistColumns+` FROM waitlist_entries
		WHERE branch_id=$1 AND category=$2 AND status=$3 AND start_time < $4 AND end_time > $5
		ORDER BY created_at ASC, id ASC
		LIMIT 1
		FOR UPDATE`,
		branchID, category, domain.WaitlistStatusPending, end, start)

	var e domain.WaitlistEntry
	err := row.Scan(&e.ID, &e.CustomerID, &e.CustomerEmail, &e.BranchID, &e.Category, &e.StartTime, &e.EndTime, &e.Status, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PGWaitlistRepository) MarkFulfilled(ctx context.Context, q DBTX, id int64) error {
	_, err := q.Exec(ctx, `UPDATE waitlist_entries SET status=$1 WHERE id=$2`, domain.WaitlistStatusFulfilled, id)
	return err
}

var _ WaitlistRepository = (*PGWaitlistRepository)(nil)
