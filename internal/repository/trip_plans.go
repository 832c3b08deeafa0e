package repository

import (
	"context"
	"database/sql"

	"gotrip/internal/database"
	"gotrip/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type TripPlanRepository struct {
	db *database.DB
}

func NewTripPlanRepository(db *database.DB) *TripPlanRepository {
	return &TripPlanRepository{db: db}
}

const tripPlanColumns = `id, user_id, title, destination, start_date, end_date, adults, children, budget,
	interests, notes, status, handler_id, quote_amount, quote_currency, created_at, updated_at`

func scanTripPlan(row rowScanner) (*models.TripPlan, error) {
	p := &models.TripPlan{}
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Title,
		&p.Destination,
		&p.StartDate,
		&p.EndDate,
		&p.Adults,
		&p.Children,
		&p.Budget,
		pq.Array(&p.Interests),
		&p.Notes,
		&p.Status,
		&p.HandlerID,
		&p.QuoteAmount,
		&p.QuoteCurrency,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *TripPlanRepository) Create(ctx context.Context, p *models.TripPlan) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `
		INSERT INTO trip_plans (id, user_id, title, destination, start_date, end_date, adults,
		                        children, budget, interests, notes, status, quote_currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.Title, p.Destination, p.StartDate, p.EndDate, p.Adults,
		p.Children, p.Budget, pq.Array(nonNil(p.Interests)), p.Notes, p.Status, p.QuoteCurrency,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *TripPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TripPlan, error) {
	query := `SELECT ` + tripPlanColumns + ` FROM trip_plans WHERE id = $1`
	return scanTripPlan(r.db.QueryRowContext(ctx, query, id))
}

func (r *TripPlanRepository) List(ctx context.Context, q models.TripPlanListQuery) ([]models.TripPlan, int, error) {
	var c conditions
	if q.Status != "" {
		c.add("status = ?", q.Status)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trip_plans`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := c.page(q.Limit, q.Offset())
	plans, err := r.query(ctx,
		`SELECT `+tripPlanColumns+` FROM trip_plans`+c.where()+` ORDER BY created_at DESC, id`+limit, args...)
	return plans, total, err
}

func (r *TripPlanRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TripPlan, error) {
	return r.query(ctx,
		`SELECT `+tripPlanColumns+` FROM trip_plans WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *TripPlanRepository) query(ctx context.Context, query string, args ...any) ([]models.TripPlan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []models.TripPlan{}
	for rows.Next() {
		p, err := scanTripPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (r *TripPlanRepository) Update(ctx context.Context, p *models.TripPlan, expected models.TripPlanStatus) error {
	query := `
		UPDATE trip_plans
		SET status = $1, handler_id = $2, quote_amount = $3, quote_currency = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.Status, p.HandlerID, p.QuoteAmount, p.QuoteCurrency, p.ID, expected,
	).Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrStaleState
	}
	return err
}
