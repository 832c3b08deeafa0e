package service

import (
	"context"
	"strings"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/lifecycle"
	"gotrip/internal/logger"
	"gotrip/internal/models"
	"gotrip/internal/pricing"
	"gotrip/internal/repository"
	"gotrip/internal/validation"

	"github.com/google/uuid"
)

type TripPlanService struct {
	plans    repository.TripPlanStore
	users    repository.UserStore
	notifier Notifier
}

func NewTripPlanService(plans repository.TripPlanStore, users repository.UserStore, notifier Notifier) *TripPlanService {
	return &TripPlanService{plans: plans, users: users, notifier: notifier}
}

func (s *TripPlanService) Create(ctx context.Context, actor models.Actor, req *models.CreateTripPlanRequest) (*models.TripPlan, error) {
	if err := validation.TripPlan(req); err != nil {
		return nil, err
	}

	plan := &models.TripPlan{
		ID:          uuid.New(),
		UserID:      actor.ID,
		Title:       strings.TrimSpace(req.Title),
		Destination: strings.TrimSpace(req.Destination),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Adults:      1,
		Children:    req.Children,
		Budget:      req.Budget,
		Interests:   req.Interests,
		Notes:       req.Notes,
		Status:      models.TripPlanPending,
	}
	if req.Adults != nil {
		plan.Adults = *req.Adults
	}
	if plan.Budget == "" {
		plan.Budget = models.BudgetStandard
	}
	if plan.Interests == nil {
		plan.Interests = []string{}
	}

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, storeErr(ctx, "create trip plan", err)
	}

	logger.WithContext(ctx).Info("Trip plan submitted", "plan_id", plan.ID, "user_id", actor.ID)

	// addressed to the staff inbox
	s.notifier.Notify(models.Notification{
		Subject:  models.EventTripPlanReceived,
		TripPlan: models.NewTripPlanNotice(plan),
	})
	return plan, nil
}

func (s *TripPlanService) ListMine(ctx context.Context, actor models.Actor) ([]models.TripPlan, error) {
	plans, err := s.plans.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(ctx, "list trip plans", err)
	}
	if plans == nil {
		plans = []models.TripPlan{}
	}
	return plans, nil
}

func (s *TripPlanService) List(ctx context.Context, actor models.Actor, q *models.TripPlanListQuery) (*models.Page[models.TripPlan], error) {
	if !actor.IsStaff() {
		return nil, apperrors.Forbidden("Only staff can list all trip plans")
	}
	if err := validation.TripPlanQuery(q); err != nil {
		return nil, err
	}
	q.Normalize()

	items, total, err := s.plans.List(ctx, *q)
	if err != nil {
		return nil, storeErr(ctx, "list trip plans", err)
	}
	page := models.NewPage(items, total, q.PageQuery)
	return &page, nil
}

func (s *TripPlanService) Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.TripPlan, error) {
	plan, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanView(actor, plan.UserID) {
		return nil, apperrors.Forbidden("You can only view your own trip plans")
	}
	return plan, nil
}

func (s *TripPlanService) UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, req *models.UpdateTripPlanStatusRequest) (*models.TripPlan, error) {
	if err := validation.TripPlanStatus(req); err != nil {
		return nil, err
	}
	plan, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.AuthorizeTripPlanTransition(actor, plan.UserID, req.Status); err != nil {
		return nil, err
	}
	if req.Status == models.TripPlanQuoted {
		return nil, apperrors.Conflict("Use the quote endpoint to quote a trip plan")
	}
	if err := lifecycle.TripPlanTransition(plan.Status, req.Status); err != nil {
		return nil, err
	}

	expected := plan.Status
	plan.Status = req.Status
	return s.save(ctx, actor, plan, expected)
}

func (s *TripPlanService) Assign(ctx context.Context, actor models.Actor, id uuid.UUID, req *models.AssignTripPlanRequest) (*models.TripPlan, error) {
	if !actor.IsStaff() {
		return nil, apperrors.Forbidden("Only staff can assign trip plans")
	}
	handlerID, err := uuid.Parse(req.HandlerID)
	if err != nil {
		return nil, apperrors.Validation(apperrors.Field("handlerId", "must be a valid id"))
	}

	handler, err := s.users.GetByID(ctx, handlerID)
	if err != nil {
		return nil, storeErr(ctx, "get user", err)
	}
	if handler == nil || !handler.IsActive || !handler.Role.IsStaff() {
		return nil, apperrors.Validation(apperrors.Field("handlerId", "must reference an active staff member"))
	}

	plan, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if lifecycle.IsTerminalTripPlan(plan.Status) {
		return nil, apperrors.Conflict("Cannot assign a " + string(plan.Status) + " trip plan")
	}

	plan.HandlerID = &handler.ID
	if err := s.plans.Update(ctx, plan, plan.Status); err != nil {
		return nil, storeErr(ctx, "assign trip plan", err)
	}
	logger.WithContext(ctx).Info("Trip plan assigned", "plan_id", plan.ID, "handler_id", handler.ID)
	return plan, nil
}

// Quote prices a plan under review and moves it to quoted.
func (s *TripPlanService) Quote(ctx context.Context, actor models.Actor, id uuid.UUID, req *models.QuoteTripPlanRequest) (*models.TripPlan, error) {
	if !actor.IsStaff() {
		return nil, apperrors.Forbidden("Only staff can quote trip plans")
	}
	if req.Amount == nil {
		return nil, apperrors.Validation(apperrors.Field("amount", "is required"))
	}
	amount, err := pricing.Round(*req.Amount)
	if err != nil {
		return nil, apperrors.Validation(apperrors.Field("amount", err.Error()))
	}

	plan, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.Status != models.TripPlanReviewing {
		return nil, apperrors.Conflict("Only trip plans under review can be quoted, current status is " + string(plan.Status))
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = models.DefaultCurrency
	}
	plan.QuoteAmount = &amount
	plan.QuoteCurrency = currency
	plan.Status = models.TripPlanQuoted
	return s.save(ctx, actor, plan, models.TripPlanReviewing)
}

func (s *TripPlanService) load(ctx context.Context, id uuid.UUID) (*models.TripPlan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, "get trip plan", err)
	}
	if plan == nil {
		return nil, apperrors.NotFound("Trip plan not found")
	}
	return plan, nil
}

func (s *TripPlanService) save(ctx context.Context, actor models.Actor, plan *models.TripPlan, expected models.TripPlanStatus) (*models.TripPlan, error) {
	if err := s.plans.Update(ctx, plan, expected); err != nil {
		return nil, storeErr(ctx, "update trip plan", err)
	}

	logger.WithContext(ctx).Info("Trip plan status changed",
		"plan_id", plan.ID, "from", expected, "to", plan.Status, "actor_id", actor.ID)

	n := models.Notification{
		Subject:  models.EventTripPlanUpdated,
		TripPlan: models.NewTripPlanNotice(plan),
	}
	owner, err := s.users.GetByID(ctx, plan.UserID)
	if err != nil || owner == nil {
		logger.WithContext(ctx).Warn("Trip plan owner not found for notification", "plan_id", plan.ID, "error", err)
		return plan, nil
	}
	n.To = []string{owner.Email}
	n.RecipientName = owner.Name
	s.notifier.Notify(n)
	return plan, nil
}
