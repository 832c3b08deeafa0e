package repository

import (
	"context"
	"database/sql"

	"gotrip/internal/database"
	"gotrip/internal/models"

	"github.com/google/uuid"
)

type ContactRepository struct {
	db *database.DB
}

func NewContactRepository(db *database.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactColumns = `id, name, email, subject, message, handled, created_at`

func scanContact(row rowScanner) (*models.ContactMessage, error) {
	m := &models.ContactMessage{}
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Handled, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *ContactRepository) Create(ctx context.Context, m *models.ContactMessage) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO contact_messages (id, name, email, subject, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		m.ID, m.Name, m.Email, m.Subject, m.Message,
	).Scan(&m.CreatedAt)
}

func (r *ContactRepository) List(ctx context.Context, q models.ContactListQuery) ([]models.ContactMessage, int, error) {
	var c conditions
	if q.Handled != nil {
		c.add("handled = ?", *q.Handled)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := c.page(q.Limit, q.Offset())
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contact_messages`+c.where()+` ORDER BY created_at DESC, id`+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	messages := []models.ContactMessage{}
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, *m)
	}
	return messages, total, rows.Err()
}

func (r *ContactRepository) MarkHandled(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	return scanContact(r.db.QueryRowContext(ctx,
		`UPDATE contact_messages SET handled = TRUE WHERE id = $1 RETURNING `+contactColumns, id))
}
