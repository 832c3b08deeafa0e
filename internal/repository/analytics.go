package repository

import (
	"context"
	"fmt"
	"time"

	"gotrip/internal/database"
	"gotrip/internal/models"

	"github.com/google/uuid"
)

// MonthlyRevenueWindow is the number of calendar months in the dashboard revenue series.
const MonthlyRevenueWindow = 6

const topServicesLimit = 5

// revenue counts paid bookings that were not cancelled
const revenueFilter = `archived_at IS NULL AND payment_status = 'paid' AND status <> 'cancelled'`

type AnalyticsRepository struct {
	db *database.DB
}

func NewAnalyticsRepository(db *database.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) Record(ctx context.Context, e *models.AnalyticsEvent) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO analytics_events (id, session_id, path, type, user_id, referrer)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		e.ID, e.SessionID, e.Path, e.Type, e.UserID, e.Referrer,
	).Scan(&e.CreatedAt)
}

func (r *AnalyticsRepository) Dashboard(ctx context.Context, now time.Time) (*models.Dashboard, error) {
	d := &models.Dashboard{}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM bookings WHERE archived_at IS NULL),
			(SELECT COUNT(*) FROM services WHERE is_active),
			(SELECT COUNT(*) FROM trip_plans),
			(SELECT COALESCE(SUM(total_amount), 0) FROM bookings WHERE `+revenueFilter+`)`,
	).Scan(&d.Totals.Users, &d.Totals.Bookings, &d.Totals.ActiveServices, &d.Totals.TripPlans, &d.Revenue)
	if err != nil {
		return nil, fmt.Errorf("failed to load totals: %w", err)
	}

	if d.BookingsByStatus, err = r.countBy(ctx,
		`SELECT status, COUNT(*) FROM bookings WHERE archived_at IS NULL GROUP BY status`); err != nil {
		return nil, err
	}
	if d.BookingsByServiceType, err = r.countBy(ctx,
		`SELECT service_type, COUNT(*) FROM bookings WHERE archived_at IS NULL GROUP BY service_type`); err != nil {
		return nil, err
	}
	if d.TripPlansByStatus, err = r.countBy(ctx,
		`SELECT status, COUNT(*) FROM trip_plans GROUP BY status`); err != nil {
		return nil, err
	}
	if d.MonthlyRevenue, err = r.monthlyRevenue(ctx, now); err != nil {
		return nil, err
	}
	if d.TopServices, err = r.topServices(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

func (r *AnalyticsRepository) countBy(ctx context.Context, query string, args ...any) (map[string]int, error) {
	rows, err := r.db.QueryWithRetry(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// monthlyRevenue returns one entry per month of the window, oldest first,
// including months without revenue.
func (r *AnalyticsRepository) monthlyRevenue(ctx context.Context, now time.Time) ([]models.MonthlyRevenue, error) {
	months := RevenueMonths(now, MonthlyRevenueWindow)
	start, err := time.Parse("2006-01", months[0])
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryWithRetry(ctx, `
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM'), COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM bookings
		WHERE `+revenueFilter+` AND created_at >= $1
		GROUP BY 1`, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byMonth := map[string]models.MonthlyRevenue{}
	for rows.Next() {
		var m models.MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.Revenue, &m.Count); err != nil {
			return nil, err
		}
		byMonth[m.Month] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	series := make([]models.MonthlyRevenue, 0, len(months))
	for _, month := range months {
		m := byMonth[month]
		m.Month = month
		series = append(series, m)
	}
	return series, nil
}

func (r *AnalyticsRepository) topServices(ctx context.Context) ([]models.TopService, error) {
	rows, err := r.db.QueryWithRetry(ctx, `
		SELECT service_id, MAX(service_name), MAX(service_type), COUNT(*),
		       COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid' AND status <> 'cancelled'), 0)
		FROM bookings
		WHERE archived_at IS NULL
		GROUP BY service_id
		ORDER BY COUNT(*) DESC, 5 DESC
		LIMIT $1`, topServicesLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := []models.TopService{}
	for rows.Next() {
		var s models.TopService
		if err := rows.Scan(&s.ServiceID, &s.ServiceName, &s.ServiceType, &s.Bookings, &s.Revenue); err != nil {
			return nil, err
		}
		top = append(top, s)
	}
	return top, rows.Err()
}

func (r *AnalyticsRepository) CountBookingsSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE created_at >= $1`, since).Scan(&n)
	return n, err
}

func (r *AnalyticsRepository) CountEventsSince(ctx context.Context, eventType models.AnalyticsEventType, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM analytics_events WHERE type = $1 AND created_at >= $2`, eventType, since,
	).Scan(&n)
	return n, err
}

// RevenueMonths lists the n calendar months ending with the month of now, as YYYY-MM.
func RevenueMonths(now time.Time, n int) []string {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := make([]string, n)
	for i := 0; i < n; i++ {
		months[i] = first.AddDate(0, i-n+1, 0).Format("2006-01")
	}
	return months
}
