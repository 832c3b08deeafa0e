package service

import (
	"context"
	"errors"
	"io"
	"strings"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/logger"
	"gotrip/internal/models"
	"gotrip/internal/repository"
	"gotrip/internal/slug"
	"gotrip/internal/storage"
	"gotrip/internal/validation"

	"github.com/google/uuid"
)

// cachedPages is how many leading pages of an unfiltered listing are cached.
const cachedPages = 3

type CatalogService struct {
	services repository.ServiceStore
	cache    CatalogCache
	index    CatalogIndex
	images   ImageStore
}

func NewCatalogService(services repository.ServiceStore, cache CatalogCache, index CatalogIndex, images ImageStore) *CatalogService {
	return &CatalogService{services: services, cache: cache, index: index, images: images}
}

func (s *CatalogService) List(ctx context.Context, kind models.ServiceKind, q models.ServiceListQuery) (*models.Page[models.Service], error) {
	if err := validation.ServiceQuery(&q); err != nil {
		return nil, err
	}
	q.Normalize()
	q.Kind = kind
	q.IDs = nil

	cacheable := s.cache != nil && q.Unfiltered() && q.Page <= cachedPages
	if cacheable {
		if page, ok := s.cache.GetServicePage(ctx, q); ok {
			return page, nil
		}
	}

	if q.Search != "" && s.index != nil {
		ids, err := s.index.SearchIDs(ctx, kind, q.Search)
		if err != nil {
			logger.WithContext(ctx).Warn("Catalog search index unavailable, falling back to database search",
				"kind", kind, "error", err)
		} else {
			q.IDs = ids
			if q.IDs == nil {
				q.IDs = []uuid.UUID{}
			}
		}
	}

	items, total, err := s.services.List(ctx, q)
	if err != nil {
		return nil, storeErr(ctx, "list services", err)
	}

	page := models.NewPage(items, total, q.PageQuery)
	if cacheable {
		s.cache.SetServicePage(ctx, q, page)
	}
	return &page, nil
}

// Get resolves an item by id or slug. Inactive items are not found.
func (s *CatalogService) Get(ctx context.Context, kind models.ServiceKind, idOrSlug string) (*models.Service, error) {
	var (
		svc *models.Service
		err error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		svc, err = s.services.GetByID(ctx, id)
	} else {
		svc, err = s.services.GetBySlug(ctx, kind, strings.ToLower(idOrSlug))
	}
	if err != nil {
		return nil, storeErr(ctx, "get service", err)
	}
	if svc == nil || svc.Kind != kind || !svc.IsActive {
		return nil, apperrors.NotFound(kindLabel(kind) + " not found")
	}
	return svc, nil
}

func (s *CatalogService) Create(ctx context.Context, kind models.ServiceKind, req *models.ServiceRequest) (*models.Service, error) {
	if err := validation.Service(req); err != nil {
		return nil, err
	}

	svc := &models.Service{ID: uuid.New(), Kind: kind, IsActive: true}
	apply(svc, req)

	var err error
	svc.Slug, err = slug.Unique(ctx, svc.Name, func(ctx context.Context, candidate string) (bool, error) {
		return s.services.SlugExists(ctx, kind, candidate, svc.ID)
	})
	if err != nil {
		return nil, storeErr(ctx, "generate slug", err)
	}

	if err := s.services.Create(ctx, svc); err != nil {
		return nil, storeErr(ctx, "create service", err)
	}

	s.afterWrite(ctx, svc)
	logger.WithContext(ctx).Info("Catalog item created", "kind", kind, "service_id", svc.ID, "slug", svc.Slug)
	return svc, nil
}

func (s *CatalogService) Update(ctx context.Context, kind models.ServiceKind, id uuid.UUID, req *models.ServiceRequest) (*models.Service, error) {
	if err := validation.Service(req); err != nil {
		return nil, err
	}

	svc, err := s.Get(ctx, kind, id.String())
	if err != nil {
		return nil, err
	}

	renamed := strings.TrimSpace(req.Name) != svc.Name
	apply(svc, req)
	if renamed {
		svc.Slug, err = slug.Unique(ctx, svc.Name, func(ctx context.Context, candidate string) (bool, error) {
			return s.services.SlugExists(ctx, kind, candidate, svc.ID)
		})
		if err != nil {
			return nil, storeErr(ctx, "generate slug", err)
		}
	}

	if err := s.services.Update(ctx, svc); err != nil {
		return nil, storeErr(ctx, "update service", err)
	}

	s.afterWrite(ctx, svc)
	return svc, nil
}

// Delete deactivates the item; bookings keep referencing it.
func (s *CatalogService) Delete(ctx context.Context, kind models.ServiceKind, id uuid.UUID) error {
	svc, err := s.Get(ctx, kind, id.String())
	if err != nil {
		return err
	}

	if err := s.services.Deactivate(ctx, svc.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound(kindLabel(kind) + " not found")
		}
		return storeErr(ctx, "deactivate service", err)
	}

	svc.IsActive = false
	s.afterWrite(ctx, svc)
	logger.WithContext(ctx).Info("Catalog item deactivated", "kind", kind, "service_id", svc.ID)
	return nil
}

func (s *CatalogService) Upload(ctx context.Context, folder string, r io.Reader) (*models.UploadResponse, error) {
	if s.images == nil {
		return nil, apperrors.Dependency("image storage is not configured", nil)
	}

	url, err := s.images.SaveImage(ctx, folder, r)
	switch {
	case errors.Is(err, storage.ErrInvalidFolder):
		return nil, apperrors.Validation(apperrors.Field("folder", "must be one of: "+strings.Join(storage.Folders, ", ")))
	case errors.Is(err, storage.ErrTooLarge):
		return nil, apperrors.Validation(apperrors.Field("file", "must be at most 5MB"))
	case errors.Is(err, storage.ErrUnsupportedType):
		return nil, apperrors.Validation(apperrors.Field("file", "must be a JPEG, PNG, GIF or WebP image"))
	case err != nil:
		return nil, apperrors.Dependency("failed to store image", err)
	}
	return &models.UploadResponse{URL: url}, nil
}

// afterWrite keeps the search index and list cache in line with storage.
// Both are best effort.
func (s *CatalogService) afterWrite(ctx context.Context, svc *models.Service) {
	log := logger.WithContext(ctx)
	if s.index != nil {
		var err error
		if svc.IsActive {
			err = s.index.IndexService(ctx, svc)
		} else {
			err = s.index.DeleteService(ctx, svc.ID)
		}
		if err != nil {
			log.Warn("Failed to sync catalog item to search index", "service_id", svc.ID, "error", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.InvalidateKind(ctx, svc.Kind); err != nil {
			log.Warn("Failed to invalidate catalog cache", "kind", svc.Kind, "error", err)
		}
	}
}

func apply(svc *models.Service, req *models.ServiceRequest) {
	svc.Name = strings.TrimSpace(req.Name)
	svc.Summary = req.Summary
	svc.Description = req.Description
	svc.City = strings.TrimSpace(req.City)
	svc.Country = strings.TrimSpace(req.Country)
	if req.Price != nil {
		svc.Price = *req.Price
	}
	svc.PriceUnit = req.PriceUnit
	if svc.PriceUnit == "" {
		svc.PriceUnit = models.DefaultPriceUnit(svc.Kind)
	}
	svc.Currency = strings.ToUpper(req.Currency)
	if svc.Currency == "" {
		svc.Currency = models.DefaultCurrency
	}
	svc.Languages = req.Languages
	svc.Capacity = req.Capacity
	svc.Rating = req.Rating
	svc.Images = req.Images
}

func kindLabel(kind models.ServiceKind) string {
	if kind == "" {
		return "Service"
	}
	return strings.ToUpper(string(kind[:1])) + string(kind[1:])
}
