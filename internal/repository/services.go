package repository

import (
	"context"
	"database/sql"
	"fmt"

	"gotrip/internal/database"
	"gotrip/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ServiceRepository struct {
	db *database.DB
}

func NewServiceRepository(db *database.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

const serviceColumns = `id, kind, name, slug, summary, description, city, country, price, price_unit,
	currency, languages, capacity, rating, images, is_active, created_at, updated_at`

var serviceSortColumns = map[string]string{
	"price":     "price",
	"rating":    "rating",
	"name":      "name",
	"createdAt": "created_at",
}

func scanService(row rowScanner) (*models.Service, error) {
	s := &models.Service{}
	err := row.Scan(
		&s.ID,
		&s.Kind,
		&s.Name,
		&s.Slug,
		&s.Summary,
		&s.Description,
		&s.City,
		&s.Country,
		&s.Price,
		&s.PriceUnit,
		&s.Currency,
		pq.Array(&s.Languages),
		&s.Capacity,
		&s.Rating,
		pq.Array(&s.Images),
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *ServiceRepository) Create(ctx context.Context, s *models.Service) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	query := `
		INSERT INTO services (id, kind, name, slug, summary, description, city, country, price,
		                      price_unit, currency, languages, capacity, rating, images, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.Kind, s.Name, s.Slug, s.Summary, s.Description, s.City, s.Country, s.Price,
		s.PriceUnit, s.Currency, pq.Array(nonNil(s.Languages)), s.Capacity, s.Rating,
		pq.Array(nonNil(s.Images)), s.IsActive,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	return mapUnique(err)
}

func (r *ServiceRepository) Update(ctx context.Context, s *models.Service) error {
	query := `
		UPDATE services
		SET name = $1, slug = $2, summary = $3, description = $4, city = $5, country = $6,
		    price = $7, price_unit = $8, currency = $9, languages = $10, capacity = $11,
		    rating = $12, images = $13, updated_at = NOW()
		WHERE id = $14 AND is_active
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		s.Name, s.Slug, s.Summary, s.Description, s.City, s.Country,
		s.Price, s.PriceUnit, s.Currency, pq.Array(nonNil(s.Languages)), s.Capacity,
		s.Rating, pq.Array(nonNil(s.Images)), s.ID,
	).Scan(&s.UpdatedAt)

	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return mapUnique(err)
}

func (r *ServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`
	return scanService(r.db.QueryRowContext(ctx, query, id))
}

func (r *ServiceRepository) GetBySlug(ctx context.Context, kind models.ServiceKind, slug string) (*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE kind = $1 AND slug = $2`
	return scanService(r.db.QueryRowContext(ctx, query, kind, slug))
}

func (r *ServiceRepository) SlugExists(ctx context.Context, kind models.ServiceKind, slug string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM services WHERE kind = $1 AND slug = $2 AND id <> $3)`,
		kind, slug, exclude,
	).Scan(&exists)
	return exists, err
}

func (r *ServiceRepository) List(ctx context.Context, q models.ServiceListQuery) ([]models.Service, int, error) {
	var c conditions
	c.add("is_active")
	if q.Kind != "" {
		c.add("kind = ?", q.Kind)
	}
	if q.IDs != nil {
		c.add("id = ANY(?::uuid[])", pq.Array(q.IDs))
	} else if q.Search != "" {
		c.add("(name ILIKE ? OR summary ILIKE ? OR city ILIKE ?)",
			likePattern(q.Search), likePattern(q.Search), likePattern(q.Search))
	}
	if q.City != "" {
		c.add("LOWER(city) = LOWER(?)", q.City)
	}
	if q.Country != "" {
		c.add("LOWER(country) = LOWER(?)", q.Country)
	}
	if q.Language != "" {
		c.add("? = ANY(languages)", q.Language)
	}
	if q.MinPrice != nil {
		c.add("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		c.add("price <= ?", *q.MaxPrice)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM services`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortColumn, ok := serviceSortColumns[q.Sort]
	if !ok {
		sortColumn = "created_at"
	}
	order := "DESC"
	if q.Order == "asc" {
		order = "ASC"
	}

	limit, args := c.page(q.Limit, q.Offset())
	query := fmt.Sprintf(`SELECT %s FROM services%s ORDER BY %s %s, id%s`,
		serviceColumns, c.where(), sortColumn, order, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	services := []models.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, 0, err
		}
		services = append(services, *s)
	}

	return services, total, rows.Err()
}

func (r *ServiceRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE services SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`, id)
	return expectOne(res, err, ErrNotFound)
}
