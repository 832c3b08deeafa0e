package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gotrip/internal/database"
	"gotrip/internal/models"

	"github.com/google/uuid"
)

const bookingReferenceConstraint = "bookings_reference_key"

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, reference, user_id, service_id, service_type, service_name, start_date, end_date,
	duration_days, travelers, units, price_unit, unit_price, total_amount, currency, status,
	payment_status, notes, contact_email, archived_at, created_at, updated_at`

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.UserID,
		&b.ServiceID,
		&b.ServiceType,
		&b.ServiceName,
		&b.StartDate,
		&b.EndDate,
		&b.DurationDays,
		&b.Travelers,
		&b.Units,
		&b.PriceUnit,
		&b.UnitPrice,
		&b.TotalAmount,
		&b.Currency,
		&b.Status,
		&b.PaymentStatus,
		&b.Notes,
		&b.ContactEmail,
		&b.ArchivedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	query := `
		INSERT INTO bookings (id, reference, user_id, service_id, service_type, service_name,
		                      start_date, end_date, duration_days, travelers, units, price_unit,
		                      unit_price, total_amount, currency, status, payment_status, notes,
		                      contact_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		b.ID,
		b.Reference,
		b.UserID,
		b.ServiceID,
		b.ServiceType,
		b.ServiceName,
		b.StartDate,
		b.EndDate,
		b.DurationDays,
		b.Travelers,
		b.Units,
		b.PriceUnit,
		b.UnitPrice,
		b.TotalAmount,
		b.Currency,
		b.Status,
		b.PaymentStatus,
		b.Notes,
		b.ContactEmail,
	).Scan(&b.CreatedAt, &b.UpdatedAt)

	if constraint, ok := database.UniqueViolation(err); ok {
		if constraint == bookingReferenceConstraint {
			return ErrDuplicateReference
		}
		return fmt.Errorf("%w: %s", ErrDuplicate, constraint)
	}
	return err
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.db.QueryRowContext(ctx, query, id))
}

func (r *BookingRepository) GetByReference(ctx context.Context, ref string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = $1`
	return scanBooking(r.db.QueryRowContext(ctx, query, strings.ToUpper(ref)))
}

func (r *BookingRepository) List(ctx context.Context, f models.BookingFilter) ([]models.Booking, int, error) {
	var c conditions
	if !f.IncludeArchived {
		c.add("archived_at IS NULL")
	}
	if f.Status != "" {
		c.add("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		c.add("payment_status = ?", f.PaymentStatus)
	}
	if f.ServiceType != "" {
		c.add("service_type = ?", f.ServiceType)
	}
	if f.From != nil {
		c.add("start_date >= ?", *f.From)
	}
	if f.To != nil {
		c.add("start_date <= ?", *f.To)
	}
	if f.UserID != nil {
		c.add("user_id = ?", *f.UserID)
	}
	if f.Reference != "" {
		c.add("reference LIKE ?", likePattern(f.Reference))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := c.page(f.Limit, f.Offset())
	query := `SELECT ` + bookingColumns + ` FROM bookings` + c.where() + ` ORDER BY created_at DESC, id` + limit

	bookings, err := r.query(ctx, query, args...)
	return bookings, total, err
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND archived_at IS NULL
		ORDER BY created_at DESC`
	return r.query(ctx, query, userID)
}

func (r *BookingRepository) DueForCompletion(ctx context.Context, day models.Date, limit int) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND archived_at IS NULL
		  AND COALESCE(end_date, start_date + duration_days) < $2
		ORDER BY start_date
		LIMIT $3`
	return r.query(ctx, query, models.BookingConfirmed, day, limit)
}

func (r *BookingRepository) query(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, b *models.Booking, from models.BookingStatus, audit *models.BookingAudit) error {
	return r.conditionalUpdate(ctx, b, audit, `
		UPDATE bookings SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3 AND archived_at IS NULL
		RETURNING updated_at`,
		b.Status, b.ID, from)
}

func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, b *models.Booking, from models.PaymentStatus, audit *models.BookingAudit) error {
	return r.conditionalUpdate(ctx, b, audit, `
		UPDATE bookings SET payment_status = $1, updated_at = NOW()
		WHERE id = $2 AND payment_status = $3 AND archived_at IS NULL
		RETURNING updated_at`,
		b.PaymentStatus, b.ID, from)
}

func (r *BookingRepository) UpdatePricing(ctx context.Context, b *models.Booking, oldTotal float64, audit *models.BookingAudit) error {
	return r.conditionalUpdate(ctx, b, audit, `
		UPDATE bookings SET unit_price = $1, total_amount = $2, updated_at = NOW()
		WHERE id = $3 AND total_amount = $4 AND archived_at IS NULL
		RETURNING updated_at`,
		b.UnitPrice, b.TotalAmount, b.ID, oldTotal)
}

func (r *BookingRepository) Archive(ctx context.Context, b *models.Booking, audit *models.BookingAudit) error {
	return r.conditionalUpdate(ctx, b, audit, `
		UPDATE bookings SET archived_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND archived_at IS NULL
		RETURNING updated_at`,
		b.ID)
}

// conditionalUpdate runs a guarded UPDATE and the audit insert in one transaction.
func (r *BookingRepository) conditionalUpdate(ctx context.Context, b *models.Booking, audit *models.BookingAudit, query string, args ...any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, query, args...).Scan(&b.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrStaleState
	}
	if err != nil {
		return err
	}

	if audit.Action == models.AuditArchive {
		now := b.UpdatedAt
		b.ArchivedAt = &now
	}

	if err := insertAudit(ctx, tx, audit); err != nil {
		return err
	}

	return tx.Commit()
}

func insertAudit(ctx context.Context, tx *sql.Tx, a *models.BookingAudit) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	var actor any
	if a.ActorID != uuid.Nil {
		actor = a.ActorID
	}
	query := `
		INSERT INTO booking_audit (id, booking_id, actor_id, action, from_value, to_value,
		                           old_total, new_total, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	err := tx.QueryRowContext(ctx, query,
		a.ID, a.BookingID, actor, a.Action, a.FromValue, a.ToValue, a.OldTotal, a.NewTotal, a.Reason,
	).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

func (r *BookingRepository) ListAudit(ctx context.Context, bookingID uuid.UUID) ([]models.BookingAudit, error) {
	query := `
		SELECT id, booking_id, COALESCE(actor_id, '00000000-0000-0000-0000-000000000000'), action,
		       from_value, to_value, old_total, new_total, reason, created_at
		FROM booking_audit
		WHERE booking_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.BookingAudit{}
	for rows.Next() {
		var a models.BookingAudit
		if err := rows.Scan(
			&a.ID,
			&a.BookingID,
			&a.ActorID,
			&a.Action,
			&a.FromValue,
			&a.ToValue,
			&a.OldTotal,
			&a.NewTotal,
			&a.Reason,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}
