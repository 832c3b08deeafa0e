package service

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/logger"
	"gotrip/internal/models"
	"gotrip/internal/repository"

	"github.com/google/uuid"
)

type NewsletterService struct {
	subscribers repository.NewsletterStore
	notifier    Notifier
	now         func() time.Time
}

func NewNewsletterService(subscribers repository.NewsletterStore, notifier Notifier, now func() time.Time) *NewsletterService {
	return &NewsletterService{subscribers: subscribers, notifier: notifier, now: now}
}

// Subscribe is idempotent. A known active address is returned unchanged; an
// unsubscribed one is subscribed again and welcomed again.
func (s *NewsletterService) Subscribe(ctx context.Context, req *models.SubscribeRequest) (*models.NewsletterSubscriber, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	sub, err := s.subscribers.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(ctx, "get subscriber", err)
	}

	switch {
	case sub != nil && sub.Status == models.Subscribed:
		return sub, nil

	case sub != nil:
		sub.Status = models.Subscribed
		sub.SubscribedAt = s.now().UTC()
		sub.UnsubscribedAt = nil
		sub.Token = uuid.NewString()
		if req.Name != "" {
			sub.Name = req.Name
		}
		if err := s.subscribers.Update(ctx, sub); err != nil {
			return nil, storeErr(ctx, "resubscribe", err)
		}

	default:
		sub = &models.NewsletterSubscriber{
			Email:  email,
			Name:   strings.TrimSpace(req.Name),
			Status: models.Subscribed,
			Token:  uuid.NewString(),
		}
		if err := s.subscribers.Create(ctx, sub); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				// lost a race with an identical request
				existing, getErr := s.subscribers.GetByEmail(ctx, email)
				if getErr == nil && existing != nil {
					return existing, nil
				}
			}
			return nil, storeErr(ctx, "subscribe", err)
		}
	}

	logger.WithContext(ctx).Info("Newsletter subscription", "subscriber_id", sub.ID)
	s.notifier.Notify(models.Notification{
		Subject:       models.EventNewsletterWelcome,
		To:            []string{sub.Email},
		RecipientName: sub.Name,
	})
	return sub, nil
}

func (s *NewsletterService) Unsubscribe(ctx context.Context, req *models.UnsubscribeRequest) error {
	sub, err := s.subscribers.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return storeErr(ctx, "get subscriber", err)
	}
	if sub == nil {
		return apperrors.NotFound("Subscriber not found")
	}
	if sub.Status == models.Unsubscribed {
		return nil
	}

	at := s.now().UTC()
	sub.Status = models.Unsubscribed
	sub.UnsubscribedAt = &at
	if err := s.subscribers.Update(ctx, sub); err != nil {
		return storeErr(ctx, "unsubscribe", err)
	}
	logger.WithContext(ctx).Info("Newsletter unsubscription", "subscriber_id", sub.ID)
	return nil
}

func (s *NewsletterService) List(ctx context.Context, q models.PageQuery) (*models.Page[models.NewsletterSubscriber], error) {
	q.Normalize()
	items, total, err := s.subscribers.List(ctx, q)
	if err != nil {
		return nil, storeErr(ctx, "list subscribers", err)
	}
	page := models.NewPage(items, total, q)
	return &page, nil
}

type ContactService struct {
	messages repository.ContactStore
	notifier Notifier
}

func NewContactService(messages repository.ContactStore, notifier Notifier) *ContactService {
	return &ContactService{messages: messages, notifier: notifier}
}

func (s *ContactService) Submit(ctx context.Context, req *models.ContactRequest) (*models.ContactMessage, error) {
	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: req.Message,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, storeErr(ctx, "store contact message", err)
	}

	logger.WithContext(ctx).Info("Contact message received", "message_id", msg.ID)
	s.notifier.Notify(models.Notification{
		Subject: models.EventContactReceived,
		Contact: msg,
	})
	return msg, nil
}

func (s *ContactService) List(ctx context.Context, q models.ContactListQuery) (*models.Page[models.ContactMessage], error) {
	q.Normalize()
	items, total, err := s.messages.List(ctx, q)
	if err != nil {
		return nil, storeErr(ctx, "list contact messages", err)
	}
	page := models.NewPage(items, total, q.PageQuery)
	return &page, nil
}

func (s *ContactService) MarkHandled(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	msg, err := s.messages.MarkHandled(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "mark contact message handled", err)
	}
	if msg == nil {
		return nil, apperrors.NotFound("Contact message not found")
	}
	return msg, nil
}
