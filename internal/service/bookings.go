package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/lifecycle"
	"gotrip/internal/logger"
	"gotrip/internal/metrics"
	"gotrip/internal/models"
	"gotrip/internal/pricing"
	"gotrip/internal/reference"
	"gotrip/internal/repository"
	"gotrip/internal/validation"

	"github.com/google/uuid"
)

type BookingService struct {
	bookings  repository.BookingStore
	services  repository.ServiceStore
	users     repository.UserStore
	refs      *reference.Generator
	notifier  Notifier
	publisher EventPublisher
	now       func() time.Time
}

func NewBookingService(bookings repository.BookingStore, services repository.ServiceStore, users repository.UserStore,
	refs *reference.Generator, notifier Notifier, publisher EventPublisher, now func() time.Time) *BookingService {
	return &BookingService{
		bookings:  bookings,
		services:  services,
		users:     users,
		refs:      refs,
		notifier:  notifier,
		publisher: publisher,
		now:       now,
	}
}

func (s *BookingService) Create(ctx context.Context, actor models.Actor, req *models.CreateBookingRequest) (*models.Booking, error) {
	if err := validation.CreateBooking(req); err != nil {
		return nil, err
	}

	ownerID := actor.ID
	if req.UserID != "" {
		if !actor.IsStaff() {
			return nil, apperrors.Forbidden("Only staff can book on behalf of another user")
		}
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			return nil, apperrors.Validation(apperrors.Field("userId", "must be a valid id"))
		}
		owner, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, storeErr(ctx, "get user", err)
		}
		if owner == nil {
			return nil, apperrors.NotFound("User not found")
		}
		ownerID = owner.ID
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, apperrors.Validation(apperrors.Field("serviceId", "must be a valid id"))
	}
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, storeErr(ctx, "get service", err)
	}
	if svc == nil || !svc.IsActive {
		return nil, apperrors.NotFound("Service not found")
	}

	durationDays := 1
	switch {
	case req.DurationDays != nil:
		durationDays = *req.DurationDays
	case req.EndDate != nil:
		durationDays = req.StartDate.DaysUntil(*req.EndDate)
	}
	travelers := 1
	if req.Travelers != nil {
		travelers = *req.Travelers
	}

	units := pricing.Units(svc.PriceUnit, durationDays, travelers)
	total, err := pricing.Total(svc.Price, units)
	if err != nil {
		if errors.Is(err, pricing.ErrAmountTooLarge) {
			field := "durationDays"
			if svc.PriceUnit == models.PerPerson {
				field = "travelers"
			}
			return nil, apperrors.Validation(apperrors.Field(field, "booking total must not exceed 9999999999.99"))
		}
		return nil, apperrors.Validation(apperrors.Field("serviceId", "service has an invalid price"))
	}

	booking := &models.Booking{
		ID:            uuid.New(),
		UserID:        ownerID,
		ServiceID:     svc.ID,
		ServiceType:   svc.Kind,
		ServiceName:   svc.Name,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		DurationDays:  durationDays,
		Travelers:     travelers,
		Units:         units,
		PriceUnit:     svc.PriceUnit,
		UnitPrice:     svc.Price,
		TotalAmount:   total,
		Currency:      svc.Currency,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentUnpaid,
		Notes:         req.Notes,
		ContactEmail:  req.ContactEmail,
	}

	_, err = s.refs.Issue(ctx, func(ctx context.Context, ref string) error {
		booking.Reference = ref
		return s.bookings.Create(ctx, booking)
	})
	if err != nil {
		if errors.Is(err, reference.ErrExhausted) {
			logger.WithContext(ctx).Error("Booking reference space exhausted", "error", err)
			return nil, apperrors.Dependency("failed to issue booking reference", err)
		}
		return nil, storeErr(ctx, "create booking", err)
	}

	metrics.BookingCreated(string(booking.ServiceType))
	logger.WithContext(ctx).Info("Booking created",
		"booking_id", booking.ID,
		"reference", booking.Reference,
		"service_id", booking.ServiceID,
		"total_amount", booking.TotalAmount)

	s.notifyBooking(ctx, booking, models.EventBookingCreated, "")
	return booking, nil
}

// List returns bookings for staff dashboards.
func (s *BookingService) List(ctx context.Context, actor models.Actor, q *models.BookingListQuery) (*models.Page[models.Booking], error) {
	if !actor.IsStaff() {
		return nil, apperrors.Forbidden("Only staff can list all bookings")
	}
	filter, err := validation.BookingQuery(q)
	if err != nil {
		return nil, err
	}

	items, total, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, storeErr(ctx, "list bookings", err)
	}
	page := models.NewPage(items, total, filter.PageQuery)
	return &page, nil
}

func (s *BookingService) ListMine(ctx context.Context, actor models.Actor) ([]models.Booking, error) {
	items, err := s.bookings.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(ctx, "list bookings", err)
	}
	if items == nil {
		items = []models.Booking{}
	}
	return items, nil
}

func (s *BookingService) Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "get booking", err)
	}
	return s.visible(actor, b)
}

func (s *BookingService) GetByReference(ctx context.Context, actor models.Actor, ref string) (*models.Booking, error) {
	if !reference.Valid(ref) {
		return nil, apperrors.NotFound("Booking not found")
	}
	b, err := s.bookings.GetByReference(ctx, ref)
	if err != nil {
		return nil, storeErr(ctx, "get booking", err)
	}
	return s.visible(actor, b)
}

func (s *BookingService) visible(actor models.Actor, b *models.Booking) (*models.Booking, error) {
	if b == nil || b.ArchivedAt != nil {
		return nil, apperrors.NotFound("Booking not found")
	}
	if !lifecycle.CanView(actor, b.UserID) {
		return nil, apperrors.Forbidden("You can only view your own bookings")
	}
	return b, nil
}

// UpdateStatus drives the booking state machine. The write is conditional on
// the status read here, so a concurrent change surfaces as a conflict.
func (s *BookingService) UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, req *models.UpdateBookingStatusRequest) (*models.Booking, error) {
	if err := validation.BookingStatus(req); err != nil {
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "get booking", err)
	}
	if b == nil || b.ArchivedAt != nil {
		return nil, apperrors.NotFound("Booking not found")
	}
	if err := lifecycle.AuthorizeBookingTransition(actor, b.UserID, req.Status); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, b, req.Status, req.Reason)
}

func (s *BookingService) transition(ctx context.Context, actor models.Actor, b *models.Booking, to models.BookingStatus, reason string) (*models.Booking, error) {
	from := b.Status
	if err := lifecycle.BookingTransition(from, to); err != nil {
		return nil, err
	}

	next := *b
	next.Status = to
	audit := &models.BookingAudit{
		BookingID: b.ID,
		ActorID:   actor.ID,
		Action:    models.AuditStatus,
		FromValue: string(from),
		ToValue:   string(to),
		Reason:    reason,
	}
	if err := s.bookings.UpdateStatus(ctx, &next, from, audit); err != nil {
		return nil, storeErr(ctx, "update booking status", err)
	}

	metrics.BookingTransition(string(from), string(to))
	logger.WithContext(ctx).Info("Booking status changed",
		"booking_id", next.ID,
		"reference", next.Reference,
		"from", from,
		"to", to,
		"actor_id", actor.ID)

	if subject := models.BookingStatusSubject(to); subject != "" {
		s.notifyBooking(ctx, &next, subject, reason)
	}
	if lifecycle.NeedsRefund(to, next.PaymentStatus) {
		s.requestRefund(ctx, actor, &next, reason)
	}
	return &next, nil
}

func (s *BookingService) UpdatePaymentStatus(ctx context.Context, actor models.Actor, id uuid.UUID, req *models.UpdatePaymentStatusRequest) (*models.Booking, error) {
	if !actor.IsStaff() {
		return nil, apperrors.Forbidden("Only staff can change payment status")
	}
	if err := validation.PaymentStatus(req); err != nil {
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "get booking", err)
	}
	if b == nil || b.ArchivedAt != nil {
		return nil, apperrors.NotFound("Booking not found")
	}
	return s.paymentTransition(ctx, actor, b, req.PaymentStatus, "")
}

func (s *BookingService) paymentTransition(ctx context.Context, actor models.Actor, b *models.Booking, to models.PaymentStatus, reason string) (*models.Booking, error) {
	from := b.PaymentStatus
	if err := lifecycle.PaymentTransition(from, to); err != nil {
		return nil, err
	}

	next := *b
	next.PaymentStatus = to
	audit := &models.BookingAudit{
		BookingID: b.ID,
		ActorID:   actor.ID,
		Action:    models.AuditPaymentStatus,
		FromValue: string(from),
		ToValue:   string(to),
		Reason:    reason,
	}
	if err := s.bookings.UpdatePaymentStatus(ctx, &next, from, audit); err != nil {
		return nil, storeErr(ctx, "update payment status", err)
	}

	logger.WithContext(ctx).Info("Booking payment status changed",
		"booking_id", next.ID, "from", from, "to", to, "actor_id", actor.ID)
	return &next, nil
}

// MarkRefunded records a completed refund. Repeated calls for an already
// refunded booking are no-ops so message redelivery is harmless.
func (s *BookingService) MarkRefunded(ctx context.Context, bookingID uuid.UUID, reason string) (*models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeErr(ctx, "get booking", err)
	}
	if b == nil {
		return nil, apperrors.NotFound("Booking not found")
	}
	if b.PaymentStatus == models.PaymentRefunded {
		return b, nil
	}
	return s.paymentTransition(ctx, models.SystemActor, b, models.PaymentRefunded, reason)
}

// Recalculate reprices a booking with an explicit or the live service price.
func (s *BookingService) Recalculate(ctx context.Context, actor models.Actor, id uuid.UUID, req *models.RecalculateBookingRequest) (*models.Booking, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.Forbidden("Only admins can recalculate bookings")
	}

	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "get booking", err)
	}
	if b == nil || b.ArchivedAt != nil {
		return nil, apperrors.NotFound("Booking not found")
	}
	if lifecycle.IsTerminalBooking(b.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot recalculate a %s booking", b.Status))
	}

	unitPrice := b.UnitPrice
	if req.UnitPrice != nil {
		unitPrice = *req.UnitPrice
	} else {
		svc, err := s.services.GetByID(ctx, b.ServiceID)
		if err != nil {
			return nil, storeErr(ctx, "get service", err)
		}
		if svc == nil {
			return nil, apperrors.NotFound("Service not found")
		}
		unitPrice = svc.Price
	}

	units := pricing.Units(b.PriceUnit, b.DurationDays, b.Travelers)
	total, err := pricing.Total(unitPrice, units)
	if err != nil {
		return nil, apperrors.Validation(apperrors.Field("unitPrice", err.Error()))
	}

	oldTotal := b.TotalAmount
	next := *b
	next.UnitPrice = unitPrice
	next.Units = units
	next.TotalAmount = total
	audit := &models.BookingAudit{
		BookingID: b.ID,
		ActorID:   actor.ID,
		Action:    models.AuditRecalculate,
		OldTotal:  &oldTotal,
		NewTotal:  &total,
		Reason:    req.Reason,
	}
	if err := s.bookings.UpdatePricing(ctx, &next, oldTotal, audit); err != nil {
		return nil, storeErr(ctx, "recalculate booking", err)
	}

	logger.WithContext(ctx).Info("Booking recalculated",
		"booking_id", next.ID, "old_total", oldTotal, "new_total", total, "actor_id", actor.ID)
	return &next, nil
}

// Archive hides a booking. Its reference stays reserved.
func (s *BookingService) Archive(ctx context.Context, actor models.Actor, id uuid.UUID, reason string) error {
	if !actor.IsStaff() {
		return apperrors.Forbidden("Only staff can delete bookings")
	}

	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return storeErr(ctx, "get booking", err)
	}
	if b == nil || b.ArchivedAt != nil {
		return apperrors.NotFound("Booking not found")
	}

	audit := &models.BookingAudit{
		BookingID: b.ID,
		ActorID:   actor.ID,
		Action:    models.AuditArchive,
		Reason:    reason,
	}
	if err := s.bookings.Archive(ctx, b, audit); err != nil {
		return storeErr(ctx, "archive booking", err)
	}

	logger.WithContext(ctx).Info("Booking archived", "booking_id", b.ID, "reference", b.Reference, "actor_id", actor.ID)
	return nil
}

func (s *BookingService) Audit(ctx context.Context, actor models.Actor, id uuid.UUID) ([]models.BookingAudit, error) {
	if !actor.IsStaff() {
		return nil, apperrors.Forbidden("Only staff can read the audit trail")
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "get booking", err)
	}
	if b == nil {
		return nil, apperrors.NotFound("Booking not found")
	}

	entries, err := s.bookings.ListAudit(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "list audit", err)
	}
	if entries == nil {
		entries = []models.BookingAudit{}
	}
	return entries, nil
}

// CompleteDue moves confirmed bookings whose stay ended before today to
// completed. Bookings changed concurrently are skipped.
func (s *BookingService) CompleteDue(ctx context.Context, batch int) (int, error) {
	now := s.now().UTC()
	today := models.NewDate(now.Year(), now.Month(), now.Day())

	due, err := s.bookings.DueForCompletion(ctx, today, batch)
	if err != nil {
		return 0, storeErr(ctx, "list bookings due for completion", err)
	}

	completed := 0
	for i := range due {
		if err := ctx.Err(); err != nil {
			return completed, err
		}
		_, err := s.transition(ctx, models.SystemActor, &due[i], models.BookingCompleted, "stay ended")
		if err != nil {
			if apperrors.Is(err, apperrors.KindConflict) {
				continue
			}
			return completed, err
		}
		completed++
	}
	return completed, nil
}

func (s *BookingService) requestRefund(ctx context.Context, actor models.Actor, b *models.Booking, reason string) {
	log := logger.WithContext(ctx)
	if s.publisher == nil {
		log.Warn("Refund workflow unavailable, refund must be handled manually",
			"booking_id", b.ID, "reference", b.Reference)
		return
	}

	event := models.RefundRequestedEvent{
		BookingID:   b.ID,
		Reference:   b.Reference,
		Amount:      b.TotalAmount,
		Currency:    b.Currency,
		RequestedBy: actor.ID,
		Reason:      reason,
		Timestamp:   s.now().UTC(),
	}
	if err := s.publisher.Publish(models.EventBookingRefundRequested, event); err != nil {
		log.Error("Failed to publish refund request",
			"error", err,
			"booking_id", b.ID,
			"event_type", models.EventBookingRefundRequested)
	}
}

func (s *BookingService) notifyBooking(ctx context.Context, b *models.Booking, subject, reason string) {
	n := models.Notification{
		Subject:   subject,
		Booking:   models.NewBookingNotice(b, reason),
		Timestamp: s.now().UTC(),
	}

	user, err := s.users.GetByID(ctx, b.UserID)
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to load booking owner for notification", "booking_id", b.ID, "error", err)
	}
	if user != nil {
		n.RecipientName = user.Name
		n.To = []string{user.Email}
	}
	if b.ContactEmail != "" {
		n.To = []string{b.ContactEmail}
	}
	if len(n.To) == 0 {
		return
	}

	s.notifier.Notify(n)
}
