package repository

import (
	"context"
	"database/sql"

	"gotrip/internal/database"
	"gotrip/internal/models"

	"github.com/google/uuid"
)

type NewsletterRepository struct {
	db *database.DB
}

func NewNewsletterRepository(db *database.DB) *NewsletterRepository {
	return &NewsletterRepository{db: db}
}

const subscriberColumns = `id, email, name, status, token, subscribed_at, unsubscribed_at`

func scanSubscriber(row rowScanner) (*models.NewsletterSubscriber, error) {
	s := &models.NewsletterSubscriber{}
	err := row.Scan(&s.ID, &s.Email, &s.Name, &s.Status, &s.Token, &s.SubscribedAt, &s.UnsubscribedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *NewsletterRepository) Create(ctx context.Context, s *models.NewsletterSubscriber) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO newsletter_subscribers (id, email, name, status, token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING subscribed_at`,
		s.ID, s.Email, s.Name, s.Status, s.Token,
	).Scan(&s.SubscribedAt)
	return mapUnique(err)
}

func (r *NewsletterRepository) Update(ctx context.Context, s *models.NewsletterSubscriber) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE newsletter_subscribers
		SET name = $1, status = $2, token = $3, subscribed_at = $4, unsubscribed_at = $5
		WHERE id = $6`,
		s.Name, s.Status, s.Token, s.SubscribedAt, s.UnsubscribedAt, s.ID)
	return expectOne(res, err, ErrNotFound)
}

func (r *NewsletterRepository) GetByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	return scanSubscriber(r.db.QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM newsletter_subscribers WHERE LOWER(email) = LOWER($1)`, email))
}

func (r *NewsletterRepository) List(ctx context.Context, q models.PageQuery) ([]models.NewsletterSubscriber, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM newsletter_subscribers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+subscriberColumns+`
		FROM newsletter_subscribers
		ORDER BY subscribed_at DESC, id
		LIMIT $1 OFFSET $2`, q.Limit, q.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	subs := []models.NewsletterSubscriber{}
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, *s)
	}
	return subs, total, rows.Err()
}
