package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/jackc/pgx/v5"
)

type CarRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Car, error)
	// GetForUpdate takes the exclusive row lock that serializes concurrent
	// creation attempts on the same car.
	GetForUpdate(ctx context.Context, q DBTX, id int64) (*domain.Car, error)
	CountAvailableInCategory(ctx context.Context, branchID int64, category domain.CarCategory) (int64, error)
	ListOperational(ctx context.Context, branchID int64, category domain.CarCategory) ([]domain.Car, error)
	CountByBranch(ctx context.Context, branchID int64) (int64, error)
}

type PGCarRepository struct {
	db DB
}

func NewCarRepository(db DB) CarRepository {
	return &PGCarRepository{db: db}
}

const carColumns = `id, license_plate, brand, model, category, branch_id, status, base_daily_rate, created_at, updated_at`

func scanCar(row pgx.Row) (*domain.Car, error) {
	var c domain.Car
	err := row.Scan(&c.ID, &c.LicensePlate, &c.Brand, &c.Model, &c.Category, &c.BranchID, &c.Status, &c.BaseDailyRate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PGCarRepository) GetByID(ctx context.Context, id int64) (*domain.Car, error) {
	c, err := scanCar(r.db.QueryRow(ctx, `SELECT `+carColumns+` FROM cars WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.E(domain.CodeNotFound, "car not found")
	}
	return c, err
}

func (r *PGCarRepository) GetForUpdate(ctx context.Context, q DBTX, id int64) (*domain.Car, error) {
	c, err := scanCar(q.QueryRow(ctx, `SELECT `+carColumns+` FROM cars WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.E(domain.CodeNotFound, "car not found")
	}
	return c, err
}

func (r *PGCarRepository) CountAvailableInCategory(ctx context.Context, branchID int64, category domain.CarCategory) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cars WHERE branch_id=$1 AND category=$2 AND status=$3`,
		branchID, category, domain.CarStatusAvailable).Scan(&count)
	return count, err
}

func (r *PGCarRepository) ListOperational(ctx context.Context, branchID int64, category domain.CarCategory) ([]domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE branch_id=$1 AND status=$2`
	args := []any{branchID, domain.CarStatusAvailable}
	if category != "" {
		query += ` AND category=$3`
		args = append(args, category)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Car
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *PGCarRepository) CountByBranch(ctx context.Context, branchID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cars WHERE branch_id=$1`, branchID).Scan(&count)
	return count, err
}

var _ CarRepository = (*PGCarRepository)(nil)
