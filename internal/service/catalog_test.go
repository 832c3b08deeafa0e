package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/models"
	"gotrip/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	pages       map[string]models.Page[models.Service]
	invalidated []models.ServiceKind
}

func (c *fakeCache) key(q models.ServiceListQuery) string {
	return string(q.Kind) + q.Sort + q.Order + string(rune('0'+q.Page))
}

func (c *fakeCache) GetServicePage(_ context.Context, q models.ServiceListQuery) (*models.Page[models.Service], bool) {
	p, ok := c.pages[c.key(q)]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (c *fakeCache) SetServicePage(_ context.Context, q models.ServiceListQuery, page models.Page[models.Service]) {
	if c.pages == nil {
		c.pages = map[string]models.Page[models.Service]{}
	}
	c.pages[c.key(q)] = page
}

func (c *fakeCache) InvalidateKind(_ context.Context, kind models.ServiceKind) error {
	c.invalidated = append(c.invalidated, kind)
	for k := range c.pages {
		delete(c.pages, k)
	}
	return nil
}

type fakeIndex struct {
	indexed map[uuid.UUID]bool
	hits    []uuid.UUID
	err     error
}

func (i *fakeIndex) IndexService(_ context.Context, s *models.Service) error {
	if i.indexed == nil {
		i.indexed = map[uuid.UUID]bool{}
	}
	i.indexed[s.ID] = true
	return nil
}

func (i *fakeIndex) DeleteService(_ context.Context, id uuid.UUID) error {
	delete(i.indexed, id)
	return nil
}

func (i *fakeIndex) SearchIDs(context.Context, models.ServiceKind, string) ([]uuid.UUID, error) {
	return i.hits, i.err
}

func serviceRequest(name string, price float64) *models.ServiceRequest {
	return &models.ServiceRequest{Name: name, City: "Almaty", Country: "Kazakhstan", Price: &price}
}

func TestCatalogCreateAssignsUniqueSlugs(t *testing.T) {
	index := &fakeIndex{}
	cache := &fakeCache{}
	f := newFixture(t, func(d *Deps) { d.Index = index; d.Cache = cache })
	ctx := context.Background()

	first, err := f.svc.Catalog.Create(ctx, models.KindGuide, serviceRequest("Almaty City Walk", 40))
	require.NoError(t, err)
	second, err := f.svc.Catalog.Create(ctx, models.KindGuide, serviceRequest("Almaty City Walk", 45))
	require.NoError(t, err)
	other, err := f.svc.Catalog.Create(ctx, models.KindTranslator, serviceRequest("Almaty City Walk", 45))
	require.NoError(t, err)

	assert.Equal(t, "almaty-city-walk", first.Slug)
	assert.Equal(t, "almaty-city-walk-2", second.Slug)
	assert.Equal(t, "almaty-city-walk", other.Slug, "slugs are unique per kind")

	assert.Equal(t, models.PerDay, first.PriceUnit)
	assert.Equal(t, models.DefaultCurrency, first.Currency)
	assert.True(t, index.indexed[first.ID])
	assert.Contains(t, cache.invalidated, models.KindGuide)
}

func TestCatalogGetByIDOrSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc, err := f.svc.Catalog.Create(ctx, models.KindDestination, serviceRequest("Charyn Canyon", 30))
	require.NoError(t, err)

	byID, err := f.svc.Catalog.Get(ctx, models.KindDestination, svc.ID.String())
	require.NoError(t, err)
	bySlug, err := f.svc.Catalog.Get(ctx, models.KindDestination, "charyn-canyon")
	require.NoError(t, err)
	assert.Equal(t, byID.ID, bySlug.ID)

	_, err = f.svc.Catalog.Get(ctx, models.KindGuide, svc.ID.String())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "wrong kind")
}

func TestCatalogDeleteDeactivates(t *testing.T) {
	index := &fakeIndex{}
	f := newFixture(t, func(d *Deps) { d.Index = index })
	ctx := context.Background()
	svc, err := f.svc.Catalog.Create(ctx, models.KindAccommodation, serviceRequest("Steppe Lodge", 120))
	require.NoError(t, err)

	require.NoError(t, f.svc.Catalog.Delete(ctx, models.KindAccommodation, svc.ID))

	_, err = f.svc.Catalog.Get(ctx, models.KindAccommodation, svc.ID.String())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.False(t, index.indexed[svc.ID])

	page, err := f.svc.Catalog.List(ctx, models.KindAccommodation, models.ServiceListQuery{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	assert.True(t, apperrors.Is(f.svc.Catalog.Delete(ctx, models.KindAccommodation, svc.ID), apperrors.KindNotFound))
}

func TestCatalogListUsesCacheForUnfilteredPages(t *testing.T) {
	cache := &fakeCache{}
	f := newFixture(t, func(d *Deps) { d.Cache = cache })
	ctx := context.Background()
	f.addService(t, models.KindGuide, 50, models.PerDay)

	page, err := f.svc.Catalog.List(ctx, models.KindGuide, models.ServiceListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Len(t, cache.pages, 1)

	// a write through the store alone is invisible until invalidation
	f.addService(t, models.KindGuide, 60, models.PerDay)
	page, err = f.svc.Catalog.List(ctx, models.KindGuide, models.ServiceListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	// filtered listings bypass the cache
	page, err = f.svc.Catalog.List(ctx, models.KindGuide, models.ServiceListQuery{City: "almaty"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	_, err = f.svc.Catalog.Create(ctx, models.KindGuide, serviceRequest("Third", 70))
	require.NoError(t, err)
	page, err = f.svc.Catalog.List(ctx, models.KindGuide, models.ServiceListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}

func TestCatalogListSearch(t *testing.T) {
	index := &fakeIndex{}
	f := newFixture(t, func(d *Deps) { d.Index = index })
	ctx := context.Background()
	a := f.addService(t, models.KindGuide, 50, models.PerDay)
	f.addService(t, models.KindGuide, 60, models.PerDay)

	index.hits = []uuid.UUID{a.ID}
	page, err := f.svc.Catalog.List(ctx, models.KindGuide, models.ServiceListQuery{Search: "whatever"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, a.ID, page.Items[0].ID)

	index.hits = nil
	page, err = f.svc.Catalog.List(ctx, models.KindGuide, models.ServiceListQuery{Search: "nothing"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	// index down: database search over name
	index.err = errors.New("connection refused")
	page, err = f.svc.Catalog.List(ctx, models.KindGuide, models.ServiceListQuery{Search: a.Name})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestCatalogListRejectsInvertedPriceRange(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Catalog.List(context.Background(), models.KindGuide,
		models.ServiceListQuery{MinPrice: floatPtr(100), MaxPrice: floatPtr(10)})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

type fakeImages struct{ err error }

func (i fakeImages) SaveImage(_ context.Context, folder string, r io.Reader) (string, error) {
	if i.err != nil {
		return "", i.err
	}
	_, _ = io.ReadAll(r)
	return "https://cdn.test/" + folder + "/x.png", nil
}

func TestCatalogUpload(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Catalog.Upload(context.Background(), "services", bytes.NewReader(nil))
	assert.True(t, apperrors.Is(err, apperrors.KindDependency))

	f = newFixture(t, func(d *Deps) { d.Images = fakeImages{} })
	got, err := f.svc.Catalog.Upload(context.Background(), "services", bytes.NewReader([]byte("png")))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/services/x.png", got.URL)

	f = newFixture(t, func(d *Deps) { d.Images = fakeImages{err: storage.ErrUnsupportedType} })
	_, err = f.svc.Catalog.Upload(context.Background(), "services", bytes.NewReader([]byte("text")))
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}
