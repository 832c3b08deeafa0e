package service

import (
	"context"
	"strings"
	"time"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/logger"
	"gotrip/internal/models"
	"gotrip/internal/repository"
	"gotrip/internal/slug"
	"gotrip/internal/validation"

	"github.com/google/uuid"
)

type BlogService struct {
	posts repository.BlogStore
	now   func() time.Time
}

func NewBlogService(posts repository.BlogStore, now func() time.Time) *BlogService {
	return &BlogService{posts: posts, now: now}
}

// List returns published posts, newest first.
func (s *BlogService) List(ctx context.Context, q models.BlogListQuery) (*models.Page[models.BlogPost], error) {
	q.Normalize()
	q.IncludeDrafts = false

	items, total, err := s.posts.List(ctx, q)
	if err != nil {
		return nil, storeErr(ctx, "list blog posts", err)
	}
	page := models.NewPage(items, total, q.PageQuery)
	return &page, nil
}

func (s *BlogService) GetBySlug(ctx context.Context, postSlug string) (*models.BlogPost, error) {
	post, err := s.posts.GetBySlug(ctx, strings.ToLower(postSlug))
	if err != nil {
		return nil, storeErr(ctx, "get blog post", err)
	}
	if post == nil || post.Status != models.BlogPublished {
		return nil, apperrors.NotFound("Blog post not found")
	}
	return post, nil
}

func (s *BlogService) Create(ctx context.Context, actor models.Actor, req *models.BlogPostRequest) (*models.BlogPost, error) {
	if err := validation.BlogPost(req); err != nil {
		return nil, err
	}

	post := &models.BlogPost{ID: uuid.New(), AuthorID: actor.ID}
	s.apply(post, req)

	var err error
	post.Slug, err = s.uniqueSlug(ctx, post)
	if err != nil {
		return nil, err
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, storeErr(ctx, "create blog post", err)
	}

	logger.WithContext(ctx).Info("Blog post created", "post_id", post.ID, "slug", post.Slug, "status", post.Status)
	return post, nil
}

func (s *BlogService) Update(ctx context.Context, id uuid.UUID, req *models.BlogPostRequest) (*models.BlogPost, error) {
	if err := validation.BlogPost(req); err != nil {
		return nil, err
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	renamed := strings.TrimSpace(req.Title) != post.Title
	s.apply(post, req)
	if renamed {
		if post.Slug, err = s.uniqueSlug(ctx, post); err != nil {
			return nil, err
		}
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, storeErr(ctx, "update blog post", err)
	}
	return post, nil
}

// Delete unpublishes the post. The row is kept so its slug stays reserved.
func (s *BlogService) Delete(ctx context.Context, id uuid.UUID) error {
	post, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	post.Status = models.BlogDraft
	post.PublishedAt = nil
	if err := s.posts.Update(ctx, post); err != nil {
		return storeErr(ctx, "unpublish blog post", err)
	}
	logger.WithContext(ctx).Info("Blog post unpublished", "post_id", post.ID)
	return nil
}

func (s *BlogService) load(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "get blog post", err)
	}
	if post == nil {
		return nil, apperrors.NotFound("Blog post not found")
	}
	return post, nil
}

func (s *BlogService) apply(post *models.BlogPost, req *models.BlogPostRequest) {
	post.Title = strings.TrimSpace(req.Title)
	post.Excerpt = req.Excerpt
	post.Content = req.Content
	post.Tags = req.Tags
	if post.Tags == nil {
		post.Tags = []string{}
	}
	post.CoverImage = req.CoverImage

	status := req.Status
	if status == "" {
		status = models.BlogDraft
	}
	if status == models.BlogPublished && post.PublishedAt == nil {
		at := s.now().UTC()
		post.PublishedAt = &at
	}
	if status == models.BlogDraft {
		post.PublishedAt = nil
	}
	post.Status = status
}

func (s *BlogService) uniqueSlug(ctx context.Context, post *models.BlogPost) (string, error) {
	out, err := slug.Unique(ctx, post.Title, func(ctx context.Context, candidate string) (bool, error) {
		return s.posts.SlugExists(ctx, candidate, post.ID)
	})
	if err != nil {
		return "", storeErr(ctx, "generate slug", err)
	}
	return out, nil
}
