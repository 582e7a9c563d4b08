package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/jackc/pgx/v5"
)

type TopRentedCar struct {
	CarID        int64
	LicensePlate string
	Brand        string
	Model        string
	RentalCount  int64
}

type BookingRepository interface {
	Insert(ctx context.Context, q DBTX, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByIDForUpdate(ctx context.Context, q DBTX, id int64) (*domain.Booking, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error)
	HasConflict(ctx context.Context, q DBTX, carID int64, start, end time.Time) (bool, error)
	UpdatePaymentState(ctx context.Context, q DBTX, b *domain.Booking) error
	MarkCancelled(ctx context.Context, q DBTX, b *domain.Booking) error
	ExpirePendingBefore(ctx context.Context, q DBTX, cutoff time.Time) ([]domain.Booking, error)
	TopRentedCars(ctx context.Context, limit int) ([]TopRentedCar, error)
	ListConfirmedForBranchRange(ctx context.Context, branchID int64, from, to time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, code, customer_id, customer_email, car_id, branch_id, category,
	start_time, end_time, status, payment_mode, payment_status, insurance_selected, coupon_code,
	base_amount, weekend_surcharge, duration_discount, dynamic_surcharge, insurance_fee,
	coupon_discount, total_price, cancelled_at, cancellation_fee, refund_amount, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.Code, &b.CustomerID, &b.CustomerEmail, &b.CarID, &b.BranchID, &b.Category,
		&b.StartTime, &b.EndTime, &b.Status, &b.PaymentMode, &b.PaymentStatus, &b.InsuranceSelected, &b.CouponCode,
		&b.BaseAmount, &b.WeekendSurcharge, &b.DurationDiscount, &b.DynamicSurcharge, &b.InsuranceFee,
		&b.CouponDiscount, &b.TotalPrice, &b.CancelledAt, &b.CancellationFee, &b.RefundAmount, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Insert(ctx context.Context, q DBTX, b *domain.Booking) error {
	return q.QueryRow(ctx, `INSERT INTO bookings (code, customer_id, customer_email, car_id, branch_id, category,
			start_time, end_time, status, payment_mode, payment_status, insurance_selected, coupon_code,
			base_amount, weekend_surcharge, duration_discount, dynamic_surcharge, insurance_fee,
			coupon_discount, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, created_at, updated_at`,
		b.Code, b.CustomerID, b.CustomerEmail, b.CarID, b.BranchID, b.Category,
		b.StartTime, b.EndTime, b.Status, b.PaymentMode, b.PaymentStatus, b.InsuranceSelected, b.CouponCode,
		b.BaseAmount, b.WeekendSurcharge, b.DurationDiscount, b.DynamicSurcharge, b.InsuranceFee,
		b.CouponDiscount, b.TotalPrice).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, r.db, id, false)
}

func (r *PGBookingRepository) GetByIDForUpdate(ctx context.Context, q DBTX, id int64) (*domain.Booking, error) {
	return r.get(ctx, q, id, true)
}

func (r *PGBookingRepository) get(ctx context.Context, q DBTX, id int64, forUpdate bool) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id=$1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	b, err := scanBooking(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.E(domain.CodeNotFound, "booking not found")
	}
	return b, err
}

func (r *PGBookingRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE customer_id=$1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// HasConflict answers the overlap half of the conflict oracle: does any
// CONFIRMED or PENDING_PAYMENT booking on the car intersect the half-open
// window? Touching endpoints do not conflict.
func (r *PGBookingRepository) HasConflict(ctx context.Context, q DBTX, carID int64, start, end time.Time) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE car_id=$1 AND status = ANY($2) AND start_time < $3 AND end_time > $4
		)`,
		carID,
		[]string{string(domain.BookingStatusConfirmed), string(domain.BookingStatusPendingPayment)},
		end, start).
		Scan(&exists)
	return exists, err
}

func (r *PGBookingRepository) UpdatePaymentState(ctx context.Context, q DBTX, b *domain.Booking) error {
	_, err := q.Exec(ctx, `UPDATE bookings SET status=$1, payment_status=$2, updated_at=now() WHERE id=$3`,
		b.Status, b.PaymentStatus, b.ID)
	return err
}

func (r *PGBookingRepository) MarkCancelled(ctx context.Context, q DBTX, b *domain.Booking) error {
	_, err := q.Exec(ctx, `UPDATE bookings
		SET status=$1, cancelled_at=$2, cancellation_fee=$3, refund_amount=$4, updated_at=now()
		WHERE id=$5`,
		b.Status, b.CancelledAt, b.CancellationFee, b.RefundAmount, b.ID)
	return err
}

func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, q DBTX, cutoff time.Time) ([]domain.Booking, error) {
	rows, err := q.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE status=$2 AND created_at < $3
		RETURNING `+bookingColumns,
		domain.BookingStatusExpired, domain.BookingStatusPendingPayment, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *PGBookingRepository) TopRentedCars(ctx context.Context, limit int) ([]TopRentedCar, error) {
	rows, err := r.db.Query(ctx, `SELECT c.id, c.license_plate, c.brand, c.model, COUNT(*) AS rentals
		FROM bookings b
		JOIN cars c ON c.id = b.car_id
		WHERE b.status = $1
		GROUP BY c.id, c.license_plate, c.brand, c.model
		ORDER BY rentals DESC, c.id
		LIMIT $2`,
		domain.BookingStatusConfirmed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopRentedCar
	for rows.Next() {
		var t TopRentedCar
		if err := rows.Scan(&t.CarID, &t.LicensePlate, &t.Brand, &t.Model, &t.RentalCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PGBookingRepository) ListConfirmedForBranchRange(ctx context.Context, branchID int64, from, to time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE branch_id=$1 AND status=$2 AND start_time < $3 AND end_time > $4`,
		branchID, domain.BookingStatusConfirmed, to, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
