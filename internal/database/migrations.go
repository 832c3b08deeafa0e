package database

import (
	"context"
	"fmt"
	"log/slog"
)

var migrations = []string{
	createUsersTable,
	createServicesTable,
	createServicesIndexes,
	createBookingsTable,
	createBookingsIndexes,
	createBookingAuditTable,
	createTripPlansTable,
	createBlogPostsTable,
	createNewsletterTable,
	createContactMessagesTable,
	createAnalyticsEventsTable,
}

func (db *DB) RunMigrations(ctx context.Context) error {
	slog.Info("Running database migrations...")

	for i, migration := range migrations {
		slog.Debug("Running migration", "step", i+1)
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully", "count", len(migrations))
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    email VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(100) NOT NULL,
    role VARCHAR(10) NOT NULL DEFAULT 'user',
    phone VARCHAR(30) NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (role IN ('user', 'staff', 'admin'))
);`

const createServicesTable = `
CREATE TABLE IF NOT EXISTS services (
    id UUID PRIMARY KEY,
    kind VARCHAR(20) NOT NULL,
    name VARCHAR(200) NOT NULL,
    slug VARCHAR(100) NOT NULL,
    summary VARCHAR(500) NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    city VARCHAR(100) NOT NULL DEFAULT '',
    country VARCHAR(100) NOT NULL DEFAULT '',
    price NUMERIC(12,2) NOT NULL,
    price_unit VARCHAR(10) NOT NULL,
    currency CHAR(3) NOT NULL DEFAULT 'USD',
    languages TEXT[] NOT NULL DEFAULT '{}',
    capacity INTEGER NOT NULL DEFAULT 0,
    rating NUMERIC(2,1) NOT NULL DEFAULT 0,
    images TEXT[] NOT NULL DEFAULT '{}',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    UNIQUE (kind, slug),
    CHECK (kind IN ('destination', 'accommodation', 'guide', 'translator', 'package')),
    CHECK (price_unit IN ('day', 'night', 'person')),
    CHECK (price >= 0),
    CHECK (rating >= 0 AND rating <= 5)
);`

const createServicesIndexes = `
CREATE INDEX IF NOT EXISTS services_kind_active_idx ON services (kind, is_active);
CREATE INDEX IF NOT EXISTS services_city_idx ON services (LOWER(city));`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY,
    reference VARCHAR(20) NOT NULL,
    user_id UUID NOT NULL REFERENCES users(id),
    service_id UUID NOT NULL REFERENCES services(id),
    service_type VARCHAR(20) NOT NULL,
    service_name VARCHAR(200) NOT NULL,
    start_date DATE NOT NULL,
    end_date DATE,
    duration_days INTEGER NOT NULL,
    travelers INTEGER NOT NULL DEFAULT 1,
    units INTEGER NOT NULL,
    price_unit VARCHAR(10) NOT NULL,
    unit_price NUMERIC(12,2) NOT NULL,
    total_amount NUMERIC(12,2) NOT NULL,
    currency CHAR(3) NOT NULL DEFAULT 'USD',
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    payment_status VARCHAR(20) NOT NULL DEFAULT 'unpaid',
    notes TEXT NOT NULL DEFAULT '',
    contact_email VARCHAR(255) NOT NULL DEFAULT '',
    archived_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CONSTRAINT bookings_reference_key UNIQUE (reference),
    CHECK (total_amount >= 0),
    CHECK (unit_price >= 0),
    CHECK (end_date IS NULL OR end_date > start_date),
    CHECK (duration_days >= 1),
    CHECK (units >= 1),
    CHECK (travelers >= 1),
    CHECK (status IN ('pending', 'confirmed', 'completed', 'cancelled')),
    CHECK (payment_status IN ('unpaid', 'pending', 'paid', 'refunded'))
);`

const createBookingsIndexes = `
CREATE INDEX IF NOT EXISTS bookings_user_idx ON bookings (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS bookings_status_idx ON bookings (status, start_date);`

const createBookingAuditTable = `
CREATE TABLE IF NOT EXISTS booking_audit (
    id UUID PRIMARY KEY,
    booking_id UUID NOT NULL REFERENCES bookings(id),
    actor_id UUID,
    action VARCHAR(20) NOT NULL,
    from_value VARCHAR(20) NOT NULL DEFAULT '',
    to_value VARCHAR(20) NOT NULL DEFAULT '',
    old_total NUMERIC(12,2),
    new_total NUMERIC(12,2),
    reason VARCHAR(500) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (action IN ('status', 'payment_status', 'recalculate', 'archive'))
);
CREATE INDEX IF NOT EXISTS booking_audit_booking_idx ON booking_audit (booking_id, created_at);`

const createTripPlansTable = `
CREATE TABLE IF NOT EXISTS trip_plans (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id),
    title VARCHAR(200) NOT NULL,
    destination VARCHAR(200) NOT NULL,
    start_date DATE,
    end_date DATE,
    adults INTEGER NOT NULL DEFAULT 1,
    children INTEGER NOT NULL DEFAULT 0,
    budget VARCHAR(20) NOT NULL DEFAULT 'standard',
    interests TEXT[] NOT NULL DEFAULT '{}',
    notes TEXT NOT NULL DEFAULT '',
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    handler_id UUID REFERENCES users(id),
    quote_amount NUMERIC(12,2),
    quote_currency CHAR(3) NOT NULL DEFAULT 'USD',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (end_date IS NULL OR start_date IS NULL OR end_date > start_date),
    CHECK (adults >= 1),
    CHECK (children >= 0),
    CHECK (quote_amount IS NULL OR quote_amount >= 0),
    CHECK (status IN ('pending', 'reviewing', 'quoted', 'confirmed', 'archived', 'cancelled'))
);`

const createBlogPostsTable = `
CREATE TABLE IF NOT EXISTS blog_posts (
    id UUID PRIMARY KEY,
    title VARCHAR(200) NOT NULL,
    slug VARCHAR(100) NOT NULL UNIQUE,
    excerpt VARCHAR(500) NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    tags TEXT[] NOT NULL DEFAULT '{}',
    cover_image VARCHAR(500) NOT NULL DEFAULT '',
    author_id UUID NOT NULL REFERENCES users(id),
    status VARCHAR(20) NOT NULL DEFAULT 'draft',
    published_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (status IN ('draft', 'published'))
);`

const createNewsletterTable = `
CREATE TABLE IF NOT EXISTS newsletter_subscribers (
    id UUID PRIMARY KEY,
    email VARCHAR(255) NOT NULL UNIQUE,
    name VARCHAR(100) NOT NULL DEFAULT '',
    status VARCHAR(20) NOT NULL DEFAULT 'subscribed',
    token VARCHAR(64) NOT NULL,
    subscribed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    unsubscribed_at TIMESTAMPTZ,

    CHECK (status IN ('subscribed', 'unsubscribed'))
);`

const createContactMessagesTable = `
CREATE TABLE IF NOT EXISTS contact_messages (
    id UUID PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    email VARCHAR(255) NOT NULL,
    subject VARCHAR(200) NOT NULL,
    message TEXT NOT NULL,
    handled BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createAnalyticsEventsTable = `
CREATE TABLE IF NOT EXISTS analytics_events (
    id UUID PRIMARY KEY,
    session_id VARCHAR(100) NOT NULL,
    path VARCHAR(500) NOT NULL,
    type VARCHAR(20) NOT NULL,
    user_id UUID,
    referrer VARCHAR(500) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (type IN ('page_view', 'search', 'booking_started'))
);
CREATE INDEX IF NOT EXISTS analytics_events_created_idx ON analytics_events (created_at, type);`
