package repository

import (
	"context"
	"database/sql"

	"gotrip/internal/database"
	"gotrip/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BlogRepository struct {
	db *database.DB
}

func NewBlogRepository(db *database.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

const blogColumns = `id, title, slug, excerpt, content, tags, cover_image, author_id, status,
	published_at, created_at, updated_at`

func scanBlogPost(row rowScanner) (*models.BlogPost, error) {
	p := &models.BlogPost{}
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Excerpt,
		&p.Content,
		pq.Array(&p.Tags),
		&p.CoverImage,
		&p.AuthorID,
		&p.Status,
		&p.PublishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *BlogRepository) Create(ctx context.Context, p *models.BlogPost) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `
		INSERT INTO blog_posts (id, title, slug, excerpt, content, tags, cover_image, author_id,
		                        status, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Content, pq.Array(nonNil(p.Tags)), p.CoverImage,
		p.AuthorID, p.Status, p.PublishedAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	return mapUnique(err)
}

func (r *BlogRepository) Update(ctx context.Context, p *models.BlogPost) error {
	query := `
		UPDATE blog_posts
		SET title = $1, slug = $2, excerpt = $3, content = $4, tags = $5, cover_image = $6,
		    status = $7, published_at = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.Title, p.Slug, p.Excerpt, p.Content, pq.Array(nonNil(p.Tags)), p.CoverImage,
		p.Status, p.PublishedAt, p.ID,
	).Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return mapUnique(err)
}

func (r *BlogRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	return scanBlogPost(r.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blog_posts WHERE id = $1`, id))
}

func (r *BlogRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	return scanBlogPost(r.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blog_posts WHERE slug = $1`, slug))
}

func (r *BlogRepository) SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM blog_posts WHERE slug = $1 AND id <> $2)`, slug, exclude,
	).Scan(&exists)
	return exists, err
}

func (r *BlogRepository) List(ctx context.Context, q models.BlogListQuery) ([]models.BlogPost, int, error) {
	var c conditions
	if !q.IncludeDrafts {
		c.add("status = ?", models.BlogPublished)
	}
	if q.Tag != "" {
		c.add("? = ANY(tags)", q.Tag)
	}
	if q.Search != "" {
		c.add("(title ILIKE ? OR excerpt ILIKE ?)", likePattern(q.Search), likePattern(q.Search))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := c.page(q.Limit, q.Offset())
	query := `SELECT ` + blogColumns + ` FROM blog_posts` + c.where() +
		` ORDER BY COALESCE(published_at, created_at) DESC, id` + limit

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts := []models.BlogPost{}
	for rows.Next() {
		p, err := scanBlogPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, *p)
	}
	return posts, total, rows.Err()
}
