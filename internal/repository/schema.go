package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Slots live in their own table keyed by (experience_id, id), so a conditional
// UPDATE on one slot row is the unit of atomic mutation.
const schema = `
CREATE TABLE IF NOT EXISTS experiences (
	id          UUID PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	price       DOUBLE PRECISION NOT NULL CHECK (price >= 0),
	image_url   TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS slots (
	experience_id UUID NOT NULL REFERENCES experiences (id) ON DELETE CASCADE,
	id            UUID NOT NULL,
	position      INT NOT NULL,
	start_time    TIMESTAMPTZ NOT NULL,
	end_time      TIMESTAMPTZ NOT NULL,
	is_booked     BOOLEAN NOT NULL DEFAULT false,
	booked_at     TIMESTAMPTZ,
	PRIMARY KEY (experience_id, id),
	CHECK (start_time < end_time)
);

CREATE TABLE IF NOT EXISTS bookings (
	id             UUID PRIMARY KEY,
	experience_id  UUID NOT NULL,
	slot_id        UUID NOT NULL,
	customer_name  TEXT NOT NULL,
	customer_email TEXT NOT NULL,
	promo_code     TEXT,
	final_price    DOUBLE PRECISION NOT NULL,
	status         TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);

-- at most one ledger entry per slot
CREATE UNIQUE INDEX IF NOT EXISTS bookings_slot_key ON bookings (experience_id, slot_id);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
