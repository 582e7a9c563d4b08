package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/autorental/internal/domain"
)

// MaintenanceRepository is the availability oracle over maintenance records.
// Record CRUD belongs to the fleet-operations service; this side only asks
// whether a window is blocked.
type MaintenanceRepository interface {
	HasOverlapping(ctx context.Context, q DBTX, carID int64, start, end time.Time) (bool, error)
}

type PGMaintenanceRepository struct {
	db DB
}

func NewMaintenanceRepository(db DB) MaintenanceRepository {
	return &PGMaintenanceRepository{db: db}
}

func (r *PGMaintenanceRepository) HasOverlapping(ctx context.Context, q DBTX, carID int64, start, end time.Time) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM maintenance_records
			WHERE car_id=$1 AND status = ANY($2) AND start_time < $3 AND end_time > $4
		)`,
		carID,
		[]string{string(domain.MaintenanceStatusScheduled), string(domain.MaintenanceStatusInProgress)},
		end, start).
		Scan(&exists)
	return exists, err
}

var _ MaintenanceRepository = (*PGMaintenanceRepository)(nil)
