package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role of an authenticated user
type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role may manage entities on behalf of others.
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// Actor is the identity on whose behalf an operation runs
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// SystemActor performs background transitions such as completion and refunds.
var SystemActor = Actor{ID: uuid.Nil, Role: RoleAdmin}

func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

func (a Actor) Owns(ownerID uuid.UUID) bool {
	return a.ID != uuid.Nil && a.ID == ownerID
}

// ServiceKind tags a bookable catalog item
type ServiceKind string

const (
	KindDestination   ServiceKind = "destination"
	KindAccommodation ServiceKind = "accommodation"
	KindGuide         ServiceKind = "guide"
	KindTranslator    ServiceKind = "translator"
	KindPackage       ServiceKind = "package"
)

var ServiceKinds = []ServiceKind{KindDestination, KindAccommodation, KindGuide, KindTranslator, KindPackage}

func (k ServiceKind) Valid() bool {
	for _, kind := range ServiceKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// PriceUnit is the billing unit of a catalog item
type PriceUnit string

const (
	PerDay    PriceUnit = "day"
	PerNight  PriceUnit = "night"
	PerPerson PriceUnit = "person"
)

func (u PriceUnit) Valid() bool {
	return u == PerDay || u == PerNight || u == PerPerson
}

// DefaultPriceUnit returns the billing unit used when a catalog item is created without one.
func DefaultPriceUnit(kind ServiceKind) PriceUnit {
	switch kind {
	case KindAccommodation:
		return PerNight
	case KindPackage:
		return PerPerson
	default:
		return PerDay
	}
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentUnpaid, PaymentPending, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

type TripPlanStatus string

const (
	TripPlanPending   TripPlanStatus = "pending"
	TripPlanReviewing TripPlanStatus = "reviewing"
	TripPlanQuoted    TripPlanStatus = "quoted"
	TripPlanConfirmed TripPlanStatus = "confirmed"
	TripPlanArchived  TripPlanStatus = "archived"
	TripPlanCancelled TripPlanStatus = "cancelled"
)

func (s TripPlanStatus) Valid() bool {
	switch s {
	case TripPlanPending, TripPlanReviewing, TripPlanQuoted, TripPlanConfirmed, TripPlanArchived, TripPlanCancelled:
		return true
	}
	return false
}

type BudgetTier string

const (
	BudgetEconomy  BudgetTier = "budget"
	BudgetStandard BudgetTier = "standard"
	BudgetPremium  BudgetTier = "premium"
	BudgetLuxury   BudgetTier = "luxury"
)

func (b BudgetTier) Valid() bool {
	switch b {
	case BudgetEconomy, BudgetStandard, BudgetPremium, BudgetLuxury:
		return true
	}
	return false
}

type BlogStatus string

const (
	BlogDraft     BlogStatus = "draft"
	BlogPublished BlogStatus = "published"
)

func (s BlogStatus) Valid() bool {
	return s == BlogDraft || s == BlogPublished
}

type SubscriptionStatus string

const (
	Subscribed   SubscriptionStatus = "subscribed"
	Unsubscribed SubscriptionStatus = "unsubscribed"
)

type AnalyticsEventType string

const (
	EventPageView       AnalyticsEventType = "page_view"
	EventSearch         AnalyticsEventType = "search"
	EventBookingStarted AnalyticsEventType = "booking_started"
)

func (t AnalyticsEventType) Valid() bool {
	return t == EventPageView || t == EventSearch || t == EventBookingStarted
}

// AuditAction names the kind of change recorded in the booking audit trail
type AuditAction string

const (
	AuditStatus        AuditAction = "status"
	AuditPaymentStatus AuditAction = "payment_status"
	AuditRecalculate   AuditAction = "recalculate"
	AuditArchive       AuditAction = "archive"
)

const DateLayout = "2006-01-02"

// Date is a calendar day without time of day. It accepts both "2006-01-02" and RFC3339 input.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a day in DateLayout or RFC3339 form and truncates it to midnight UTC.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	t = t.UTC()
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// DaysUntil returns the number of whole days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time).Hours() / 24)
}

func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	if str == "" || str == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(str)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		v = v.UTC()
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}
