package validation

import (
	"fmt"
	"strings"

	"gotrip/internal/models"
	"gotrip/internal/pricing"

	"github.com/google/uuid"
)

// MaxStayDays bounds the length of a single booking.
const MaxStayDays = 365

func CreateBooking(req *models.CreateBookingRequest) error {
	v := New()

	v.Check(!req.StartDate.IsZero(), "startDate", "is required")
	if req.EndDate != nil && !req.StartDate.IsZero() {
		if !req.EndDate.After(req.StartDate.Time) {
			v.Add("endDate", "must be after startDate")
		} else {
			days := req.StartDate.DaysUntil(*req.EndDate)
			v.Check(days <= MaxStayDays, "endDate", fmt.Sprintf("stay must not exceed %d days", MaxStayDays))
			if req.DurationDays != nil && *req.DurationDays != days {
				v.Add("durationDays", fmt.Sprintf("must equal the number of days between startDate and endDate (%d)", days))
			}
		}
	}

	return v.Err()
}

func Service(req *models.ServiceRequest) error {
	v := New()

	v.Check(strings.TrimSpace(req.Name) != "", "name", "is required")
	if req.Price != nil {
		if _, err := pricing.Round(*req.Price); err != nil {
			v.Add("price", err.Error())
		}
	}
	if req.PriceUnit != "" {
		v.Check(req.PriceUnit.Valid(), "priceUnit", "must be one of: day, night, person")
	}
	for _, lang := range req.Languages {
		if strings.TrimSpace(lang) == "" {
			v.Add("languages", "must not contain empty values")
			break
		}
	}

	return v.Err()
}

func ServiceQuery(q *models.ServiceListQuery) error {
	v := New()

	if q.MinPrice != nil && q.MaxPrice != nil {
		v.Check(*q.MinPrice <= *q.MaxPrice, "minPrice", "must be less than or equal to maxPrice")
	}

	return v.Err()
}

// BookingQuery validates staff listing parameters and resolves them into a filter.
func BookingQuery(q *models.BookingListQuery) (models.BookingFilter, error) {
	v := New()
	q.Normalize()
	filter := models.BookingFilter{
		PageQuery:       q.PageQuery,
		Reference:       strings.ToUpper(strings.TrimSpace(q.Reference)),
		IncludeArchived: q.IncludeArchived,
	}

	if q.Status != "" {
		status := models.BookingStatus(q.Status)
		v.Check(status.Valid(), "status", "must be one of: pending, confirmed, completed, cancelled")
		filter.Status = status
	}
	if q.PaymentStatus != "" {
		ps := models.PaymentStatus(q.PaymentStatus)
		v.Check(ps.Valid(), "paymentStatus", "must be one of: unpaid, pending, paid, refunded")
		filter.PaymentStatus = ps
	}
	if q.ServiceType != "" {
		kind := models.ServiceKind(q.ServiceType)
		v.Check(kind.Valid(), "serviceType", "must be one of: destination, accommodation, guide, translator, package")
		filter.ServiceType = kind
	}
	if q.From != "" {
		if d, err := models.ParseDate(q.From); err != nil {
			v.Add("from", "must be a date in YYYY-MM-DD format")
		} else {
			filter.From = &d
		}
	}
	if q.To != "" {
		if d, err := models.ParseDate(q.To); err != nil {
			v.Add("to", "must be a date in YYYY-MM-DD format")
		} else {
			filter.To = &d
		}
	}
	if filter.From != nil && filter.To != nil {
		v.Check(!filter.From.After(filter.To.Time), "from", "must be on or before to")
	}
	if q.UserID != "" {
		if id, err := uuid.Parse(q.UserID); err == nil {
			filter.UserID = &id
		} else {
			v.Add("userId", "must be a valid id")
		}
	}

	return filter, v.Err()
}

func BookingStatus(req *models.UpdateBookingStatusRequest) error {
	v := New()
	v.Check(req.Status.Valid(), "status", "must be one of: pending, confirmed, completed, cancelled")
	return v.Err()
}

func PaymentStatus(req *models.UpdatePaymentStatusRequest) error {
	v := New()
	v.Check(req.PaymentStatus.Valid(), "paymentStatus", "must be one of: unpaid, pending, paid, refunded")
	return v.Err()
}

func TripPlan(req *models.CreateTripPlanRequest) error {
	v := New()

	if req.StartDate != nil && req.EndDate != nil {
		v.Check(req.EndDate.After(req.StartDate.Time), "endDate", "must be after startDate")
	}
	if req.EndDate != nil && req.StartDate == nil {
		v.Add("startDate", "is required when endDate is set")
	}
	if req.Budget != "" {
		v.Check(req.Budget.Valid(), "budget", "must be one of: budget, standard, premium, luxury")
	}
	for _, interest := range req.Interests {
		if len(interest) > 50 {
			v.Add("interests", "entries must be at most 50 characters")
			break
		}
	}

	return v.Err()
}

func TripPlanStatus(req *models.UpdateTripPlanStatusRequest) error {
	v := New()
	v.Check(req.Status.Valid(), "status", "must be one of: pending, reviewing, quoted, confirmed, archived, cancelled")
	return v.Err()
}

func TripPlanQuery(q *models.TripPlanListQuery) error {
	v := New()
	if q.Status != "" {
		v.Check(models.TripPlanStatus(q.Status).Valid(), "status", "must be one of: pending, reviewing, quoted, confirmed, archived, cancelled")
	}
	return v.Err()
}

func BlogPost(req *models.BlogPostRequest) error {
	v := New()
	v.Check(strings.TrimSpace(req.Content) != "", "content", "is required")
	if req.Status != "" {
		v.Check(req.Status.Valid(), "status", "must be one of: draft, published")
	}
	return v.Err()
}

func TrackEvent(req *models.TrackEventRequest) error {
	v := New()
	v.Check(req.Type.Valid(), "type", "must be one of: page_view, search, booking_started")
	v.Check(strings.HasPrefix(req.Path, "/"), "path", "must start with /")
	return v.Err()
}

func Role(req *models.UpdateRoleRequest) error {
	v := New()
	v.Check(req.Role.Valid(), "role", "must be one of: user, staff, admin")
	return v.Err()
}
