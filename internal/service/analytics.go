package service

import (
	"context"
	"strings"
	"time"

	"gotrip/internal/logger"
	"gotrip/internal/models"
	"gotrip/internal/repository"
	"gotrip/internal/validation"

	"github.com/google/uuid"
)

const (
	ActiveSessionWindow = 5 * time.Minute
	pageViewWindow      = time.Hour
)

type AnalyticsService struct {
	events   repository.AnalyticsStore
	sessions SessionTracker
	now      func() time.Time
}

func NewAnalyticsService(events repository.AnalyticsStore, sessions SessionTracker, now func() time.Time) *AnalyticsService {
	return &AnalyticsService{events: events, sessions: sessions, now: now}
}

// Track stores a visitor event. userID is nil for anonymous visitors.
func (s *AnalyticsService) Track(ctx context.Context, userID *uuid.UUID, req *models.TrackEventRequest) error {
	if err := validation.TrackEvent(req); err != nil {
		return err
	}

	event := &models.AnalyticsEvent{
		SessionID: strings.TrimSpace(req.SessionID),
		Path:      req.Path,
		Type:      req.Type,
		UserID:    userID,
		Referrer:  req.Referrer,
	}
	if err := s.events.Record(ctx, event); err != nil {
		return storeErr(ctx, "record analytics event", err)
	}

	if s.sessions != nil {
		if err := s.sessions.TouchSession(ctx, event.SessionID, s.now()); err != nil {
			logger.WithContext(ctx).Warn("Failed to track active session", "error", err)
		}
	}
	return nil
}

func (s *AnalyticsService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	d, err := s.events.Dashboard(ctx, s.now().UTC())
	if err != nil {
		return nil, storeErr(ctx, "build dashboard", err)
	}
	return d, nil
}

// Realtime reports live activity. Active sessions read as zero when Redis is off.
func (s *AnalyticsService) Realtime(ctx context.Context) (*models.Realtime, error) {
	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	out := &models.Realtime{GeneratedAt: now}

	if s.sessions != nil {
		active, err := s.sessions.ActiveSessions(ctx, now.Add(-ActiveSessionWindow))
		if err != nil {
			logger.WithContext(ctx).Warn("Failed to count active sessions", "error", err)
		}
		out.ActiveSessions = active
	}

	var err error
	if out.BookingsToday, err = s.events.CountBookingsSince(ctx, midnight); err != nil {
		return nil, storeErr(ctx, "count bookings", err)
	}
	if out.PageViewsLastHour, err = s.events.CountEventsSince(ctx, models.EventPageView, now.Add(-pageViewWindow)); err != nil {
		return nil, storeErr(ctx, "count page views", err)
	}
	return out, nil
}
