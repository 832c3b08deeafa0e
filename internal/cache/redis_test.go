package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gotrip/internal/models"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guideQuery() models.ServiceListQuery {
	q := models.ServiceListQuery{Kind: models.KindGuide}
	q.Normalize()
	return q
}

func TestGetServicePageHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewWithClient(db, time.Minute)

	page := models.Page[models.Service]{Items: []models.Service{{Name: "Aida"}}, Total: 1, Page: 1, Limit: 20}
	data, _ := json.Marshal(page)
	mock.ExpectHGet("catalog:guide", "p1:l20::").SetVal(string(data))

	got, ok := c.GetServicePage(context.Background(), guideQuery())
	require.True(t, ok)
	assert.Equal(t, "Aida", got.Items[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetServicePageMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewWithClient(db, time.Minute)

	mock.ExpectHGet("catalog:guide", "p1:l20::").RedisNil()
	_, ok := c.GetServicePage(context.Background(), guideQuery())
	assert.False(t, ok)

	mock.ExpectHGet("catalog:guide", "p1:l20::").SetErr(errors.New("connection refused"))
	_, ok = c.GetServicePage(context.Background(), guideQuery())
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetServicePageSetsTTL(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewWithClient(db, 2*time.Minute)

	page := models.Page[models.Service]{Items: []models.Service{}, Page: 1, Limit: 20}
	data, _ := json.Marshal(page)
	mock.ExpectHSet("catalog:guide", "p1:l20::", data).SetVal(1)
	mock.ExpectExpire("catalog:guide", 2*time.Minute).SetVal(true)

	c.SetServicePage(context.Background(), guideQuery(), page)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateKind(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewWithClient(db, time.Minute)

	mock.ExpectDel("catalog:accommodation").SetVal(1)
	require.NoError(t, c.InvalidateKind(context.Background(), models.KindAccommodation))

	mock.ExpectDel("catalog:accommodation").SetErr(errors.New("down"))
	assert.Error(t, c.InvalidateKind(context.Background(), models.KindAccommodation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionTracking(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewWithClient(db, time.Minute)
	now := time.Unix(1_750_000_000, 0)

	mock.ExpectZAdd(sessionsKey, redis.Z{Score: float64(now.Unix()), Member: "s-1"}).SetVal(1)
	mock.ExpectZRemRangeByScore(sessionsKey, "-inf", "(1749996400").SetVal(0)
	require.NoError(t, c.TouchSession(context.Background(), "s-1", now))

	mock.ExpectZCount(sessionsKey, "1749999700", "+inf").SetVal(3)
	n, err := c.ActiveSessions(context.Background(), now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}
