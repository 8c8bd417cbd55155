package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/bookit/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingRepository is the append-only booking ledger.
type BookingRepository interface {
	// Append fails with domain.ErrSlotUnavailable when the slot is no longer
	// booked or another booking already references it.
	Append(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListBySlot(ctx context.Context, experienceID, slotID string) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, experience_id, slot_id, customer_name, customer_email, COALESCE(promo_code, ''), final_price, status, created_at`

func (r *PGBookingRepository) Append(ctx context.Context, booking *domain.Booking) error {
	var promo *string
	if booking.PromoCode != "" {
		promo = &booking.PromoCode
	}
	res, err := r.db.Exec(ctx, `INSERT INTO bookings (id, experience_id, slot_id, customer_name, customer_email, promo_code, final_price, status, created_at)
		SELECT $1::uuid, $2::uuid, $3::uuid, $4::text, $5::text, $6::text, $7::float8, $8::text, $9::timestamptz
		WHERE EXISTS (SELECT 1 FROM slots WHERE experience_id = $2::uuid AND id = $3::uuid AND is_booked)`,
		booking.ID, booking.ExperienceID, booking.SlotID, booking.CustomerName, booking.CustomerEmail, promo, booking.FinalPrice, string(booking.Status), booking.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "bookings_slot_key") {
			return domain.ErrSlotUnavailable
		}
		return fmt.Errorf("append booking: %w", err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrSlotUnavailable
	}
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r *PGBookingRepository) ListBySlot(ctx context.Context, experienceID, slotID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE experience_id=$1 AND slot_id=$2 ORDER BY created_at`, experienceID, slotID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.ExperienceID, &b.SlotID, &b.CustomerName, &b.CustomerEmail, &b.PromoCode, &b.FinalPrice, &b.Status, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

var _ BookingRepository = (*PGBookingRepository)(nil)
