package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/bookit/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExperienceRepository interface {
	// List returns experiences without their slots.
	List(ctx context.Context) ([]domain.Experience, error)
	GetByID(ctx context.Context, id string) (*domain.Experience, error)
	// ReserveSlot flips an unbooked slot to booked in one atomic step, or returns
	// domain.ErrSlotUnavailable when no unbooked slot matched.
	ReserveSlot(ctx context.Context, experienceID, slotID string) error
	ListOrphanedSlots(ctx context.Context, bookedBefore time.Time) ([]domain.OrphanedSlot, error)
	ReleaseOrphanedSlot(ctx context.Context, experienceID, slotID string) (bool, error)
	Create(ctx context.Context, experience *domain.Experience) error
	Reset(ctx context.Context) error
}

type PGExperienceRepository struct {
	db *pgxpool.Pool
}

func NewExperienceRepository(db *pgxpool.Pool) ExperienceRepository {
	return &PGExperienceRepository{db: db}
}

func (r *PGExperienceRepository) List(ctx context.Context) ([]domain.Experience, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, description, location, price, image_url, created_at FROM experiences ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list experiences: %w", err)
	}
	defer rows.Close()

	experiences := make([]domain.Experience, 0)
	for rows.Next() {
		var e domain.Experience
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.Price, &e.ImageURL, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan experience: %w", err)
		}
		experiences = append(experiences, e)
	}
	return experiences, rows.Err()
}

func (r *PGExperienceRepository) GetByID(ctx context.Context, id string) (*domain.Experience, error) {
	var e domain.Experience
	err := r.db.QueryRow(ctx, `SELECT id, title, description, location, price, image_url, created_at FROM experiences WHERE id=$1`, id).
		Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.Price, &e.ImageURL, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExperienceNotFound
		}
		return nil, fmt.Errorf("get experience: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT id, start_time, end_time, is_booked, booked_at FROM slots WHERE experience_id=$1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	e.Slots = make([]domain.Slot, 0)
	for rows.Next() {
		var s domain.Slot
		if err := rows.Scan(&s.ID, &s.StartTime, &s.EndTime, &s.IsBooked, &s.BookedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		e.Slots = append(e.Slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return &e, nil
}

func (r *PGExperienceRepository) ReserveSlot(ctx context.Context, experienceID, slotID string) error {
	// Match and flip happen in one statement; concurrent callers serialize on the row lock.
	res, err := r.db.Exec(ctx, `UPDATE slots SET is_booked = true, booked_at = now() WHERE experience_id=$1 AND id=$2 AND is_booked = false`, experienceID, slotID)
	if err != nil {
		return fmt.Errorf("reserve slot: %w", err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrSlotUnavailable
	}
	return nil
}

func (r *PGExperienceRepository) ListOrphanedSlots(ctx context.Context, bookedBefore time.Time) ([]domain.OrphanedSlot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.experience_id, s.id, s.booked_at
		FROM slots s
		WHERE s.is_booked AND s.booked_at IS NOT NULL AND s.booked_at <= $1
		AND NOT EXISTS (
			SELECT 1 FROM bookings b WHERE b.experience_id = s.experience_id AND b.slot_id = s.id
		)
		ORDER BY s.booked_at`, bookedBefore)
	if err != nil {
		return nil, fmt.Errorf("list orphaned slots: %w", err)
	}
	defer rows.Close()

	var orphans []domain.OrphanedSlot
	for rows.Next() {
		var o domain.OrphanedSlot
		if err := rows.Scan(&o.ExperienceID, &o.SlotID, &o.BookedAt); err != nil {
			return nil, fmt.Errorf("scan orphaned slot: %w", err)
		}
		orphans = append(orphans, o)
	}
	return orphans, rows.Err()
}

func (r *PGExperienceRepository) ReleaseOrphanedSlot(ctx context.Context, experienceID, slotID string) (bool, error) {
	res, err := r.db.Exec(ctx, `
		UPDATE slots s SET is_booked = false, booked_at = NULL
		WHERE s.experience_id=$1 AND s.id=$2 AND s.is_booked AND s.booked_at IS NOT NULL
		AND NOT EXISTS (
			SELECT 1 FROM bookings b WHERE b.experience_id = s.experience_id AND b.slot_id = s.id
		)`, experienceID, slotID)
	if err != nil {
		return false, fmt.Errorf("release orphaned slot: %w", err)
	}
	return res.RowsAffected() == 1, nil
}

func (r *PGExperienceRepository) Create(ctx context.Context, experience *domain.Experience) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO experiences (id, title, description, location, price, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`, experience.ID, experience.Title, experience.Description, experience.Location, experience.Price, experience.ImageURL).
		Scan(&experience.CreatedAt); err != nil {
		if isUniqueViolation(err, "experiences_pkey") {
			return fmt.Errorf("create experience %s: %w", experience.ID, domain.ErrExperienceExists)
		}
		return fmt.Errorf("insert experience: %w", err)
	}

	batch := &pgx.Batch{}
	for i, s := range experience.Slots {
		batch.Queue(`INSERT INTO slots (experience_id, id, position, start_time, end_time, is_booked) VALUES ($1, $2, $3, $4, $5, $6)`,
			experience.ID, s.ID, i, s.StartTime, s.EndTime, s.IsBooked)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert slots: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *PGExperienceRepository) Reset(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `TRUNCATE bookings, slots, experiences`); err != nil {
		return fmt.Errorf("reset catalog: %w", err)
	}
	return nil
}

var _ ExperienceRepository = (*PGExperienceRepository)(nil)
