package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createOperatorsTable,
		createTouristsTable,
		createActivitiesTable,
		createOccurrencesTable,
		createBookingsTable,
		createBookingIndexes,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createOperatorsTable = `
CREATE TABLE IF NOT EXISTS operators (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    commission_bp BIGINT NOT NULL DEFAULT 1100,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (commission_bp >= 0 AND commission_bp <= 10000)
);`

const createTouristsTable = `
CREATE TABLE IF NOT EXISTS tourists (
    id SERIAL PRIMARY KEY,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    phone VARCHAR(50),
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createActivitiesTable = `
CREATE TABLE IF NOT EXISTS activities (
    id SERIAL PRIMARY KEY,
    operator_id INTEGER NOT NULL REFERENCES operators(id),
    title VARCHAR(500) NOT NULL,
    description TEXT,
    location VARCHAR(255) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

// occurrences.operator_id is nullable: standalone listings carry their own,
// template-generated instances inherit the activity's. Reads always resolve
// it through COALESCE so callers never see the split.
const createOccurrencesTable = `
CREATE TABLE IF NOT EXISTS occurrences (
    id SERIAL PRIMARY KEY,
    activity_id INTEGER NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
    operator_id INTEGER REFERENCES operators(id),
    starts_at TIMESTAMP NOT NULL,
    booking_deadline TIMESTAMP NOT NULL,
    available_spots INTEGER NOT NULL DEFAULT 0,
    price_per_adult BIGINT NOT NULL,
    price_per_child BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (available_spots >= 0),
    CHECK (price_per_adult >= 0 AND price_per_child >= 0)
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id SERIAL PRIMARY KEY,
    reference VARCHAR(64) UNIQUE NOT NULL,
    occurrence_id INTEGER NOT NULL REFERENCES occurrences(id),
    operator_id INTEGER NOT NULL REFERENCES operators(id),
    tourist_id INTEGER NOT NULL REFERENCES tourists(id),
    adult_count INTEGER NOT NULL,
    child_count INTEGER NOT NULL DEFAULT 0,
    price_per_adult BIGINT NOT NULL,
    price_per_child BIGINT NOT NULL,
    total_amount BIGINT NOT NULL,
    commission_bp BIGINT NOT NULL,
    operator_amount BIGINT NOT NULL,
    platform_fee BIGINT NOT NULL,
    payment_ref VARCHAR(255),
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    payment_status VARCHAR(20) NOT NULL DEFAULT 'NONE',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    confirmed_at TIMESTAMP,
    declined_at TIMESTAMP,
    captured_at TIMESTAMP,
    cancelled_at TIMESTAMP,
    completed_at TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (adult_count >= 1 AND child_count >= 0),
    CHECK (operator_amount + platform_fee = total_amount),
    CHECK (status IN ('PENDING', 'CONFIRMED', 'DECLINED', 'COMPLETED', 'CANCELLED')),
    CHECK (payment_status IN ('NONE', 'AUTHORIZED', 'CAPTURED', 'REFUNDED'))
);`

const createBookingIndexes = `
CREATE INDEX IF NOT EXISTS bookings_tourist_idx ON bookings (tourist_id, created_at DESC);
CREATE INDEX IF NOT EXISTS bookings_payment_ref_idx ON bookings (payment_ref);
CREATE INDEX IF NOT EXISTS bookings_status_idx ON bookings (status, payment_status);
CREATE INDEX IF NOT EXISTS occurrences_starts_at_idx ON occurrences (starts_at);`
