package models

import (
	"time"

	apperrors "gotrip/internal/errors"

	"github.com/google/uuid"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	DefaultCurrency  = "USD"
)

// Envelope is the single response shape of every endpoint.
type Envelope struct {
	Success bool                   `json:"success"`
	Data    any                    `json:"data,omitempty"`
	Message string                 `json:"message,omitempty"`
	Errors  []apperrors.FieldError `json:"errors,omitempty"`
}

func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

func OKMessage(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// PageQuery holds the paging parameters shared by list endpoints
type PageQuery struct {
	Page  int `form:"page" binding:"omitempty,gte=1"`
	Limit int `form:"limit" binding:"omitempty,gte=1,lte=100"`
}

// Normalize fills defaults for absent paging parameters.
func (q *PageQuery) Normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
}

func (q PageQuery) Offset() int {
	if q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func NewPage[T any](items []T, total int, q PageQuery) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: q.Page, Limit: q.Limit}
}

// Auth

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Phone    string `json:"phone" binding:"omitempty,max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required"`
}

// Catalog

type ServiceRequest struct {
	Name        string    `json:"name" binding:"required,min=2,max=200"`
	Summary     string    `json:"summary" binding:"max=500"`
	Description string    `json:"description" binding:"max=5000"`
	City        string    `json:"city" binding:"max=100"`
	Country     string    `json:"country" binding:"max=100"`
	Price       *float64  `json:"price" binding:"required,gte=0,lte=9999999999.99"`
	PriceUnit   PriceUnit `json:"priceUnit"`
	Currency    string    `json:"currency" binding:"omitempty,len=3"`
	Languages   []string  `json:"languages" binding:"max=20"`
	Capacity    int       `json:"capacity" binding:"gte=0"`
	Rating      float64   `json:"rating" binding:"gte=0,lte=5"`
	Images      []string  `json:"images" binding:"max=20"`
}

type ServiceListQuery struct {
	PageQuery
	Search   string   `form:"search" binding:"max=200"`
	City     string   `form:"city"`
	Country  string   `form:"country"`
	Language string   `form:"language"`
	MinPrice *float64 `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice *float64 `form:"maxPrice" binding:"omitempty,gte=0"`
	Sort     string   `form:"sort" binding:"omitempty,oneof=price rating name createdAt"`
	Order    string   `form:"order" binding:"omitempty,oneof=asc desc"`

	Kind ServiceKind `form:"-"`
	// IDs restricts the listing to search hits when set.
	IDs []uuid.UUID `form:"-"`
}

// Unfiltered reports whether the query carries no filters beyond paging and sort.
func (q ServiceListQuery) Unfiltered() bool {
	return q.Search == "" && q.City == "" && q.Country == "" && q.Language == "" &&
		q.MinPrice == nil && q.MaxPrice == nil && q.IDs == nil
}

type UploadResponse struct {
	URL string `json:"url"`
}

// Bookings

type CreateBookingRequest struct {
	ServiceID    string `json:"serviceId" binding:"required,uuid"`
	StartDate    Date   `json:"startDate"`
	EndDate      *Date  `json:"endDate"`
	DurationDays *int   `json:"durationDays" binding:"omitempty,gte=1,lte=365"`
	Travelers    *int   `json:"travelers" binding:"omitempty,gte=1,lte=50"`
	Notes        string `json:"notes" binding:"max=1000"`
	ContactEmail string `json:"contactEmail" binding:"omitempty,email"`
	UserID       string `json:"userId" binding:"omitempty,uuid"`
}

type BookingListQuery struct {
	PageQuery
	Status          string `form:"status"`
	PaymentStatus   string `form:"paymentStatus"`
	ServiceType     string `form:"serviceType"`
	From            string `form:"from"`
	To              string `form:"to"`
	UserID          string `form:"userId" binding:"omitempty,uuid"`
	Reference       string `form:"search" binding:"max=20"`
	IncludeArchived bool   `form:"includeArchived"`
}

// BookingFilter is the parsed form of BookingListQuery handed to storage.
type BookingFilter struct {
	PageQuery
	Status          BookingStatus
	PaymentStatus   PaymentStatus
	ServiceType     ServiceKind
	From            *Date
	To              *Date
	UserID          *uuid.UUID
	Reference       string
	IncludeArchived bool
}

type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required"`
	Reason string        `json:"reason" binding:"max=500"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus PaymentStatus `json:"paymentStatus" binding:"required"`
}

type RecalculateBookingRequest struct {
	UnitPrice *float64 `json:"unitPrice" binding:"omitempty,gte=0,lte=9999999999.99"`
	Reason    string   `json:"reason" binding:"required,max=500"`
}

// Trip plans

type CreateTripPlanRequest struct {
	Title       string     `json:"title" binding:"required,min=3,max=200"`
	Destination string     `json:"destination" binding:"required,max=200"`
	StartDate   *Date      `json:"startDate"`
	EndDate     *Date      `json:"endDate"`
	Adults      *int       `json:"adults" binding:"omitempty,gte=1,lte=50"`
	Children    int        `json:"children" binding:"gte=0,lte=50"`
	Budget      BudgetTier `json:"budget"`
	Interests   []string   `json:"interests" binding:"max=20"`
	Notes       string     `json:"notes" binding:"max=2000"`
}

type TripPlanListQuery struct {
	PageQuery
	Status string `form:"status"`
}

type UpdateTripPlanStatusRequest struct {
	Status TripPlanStatus `json:"status" binding:"required"`
}

type AssignTripPlanRequest struct {
	HandlerID string `json:"handlerId" binding:"required,uuid"`
}

type QuoteTripPlanRequest struct {
	Amount   *float64 `json:"amount" binding:"required,gte=0,lte=9999999999.99"`
	Currency string   `json:"currency" binding:"omitempty,len=3"`
}

// Blog

type BlogPostRequest struct {
	Title      string     `json:"title" binding:"required,min=3,max=200"`
	Excerpt    string     `json:"excerpt" binding:"max=500"`
	Content    string     `json:"content" binding:"required"`
	Tags       []string   `json:"tags" binding:"max=20"`
	CoverImage string     `json:"coverImage" binding:"omitempty,url"`
	Status     BlogStatus `json:"status"`
}

type BlogListQuery struct {
	PageQuery
	Tag    string `form:"tag"`
	Search string `form:"search" binding:"max=200"`

	IncludeDrafts bool `form:"-"`
}

// Newsletter and contact

type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Name  string `json:"name" binding:"max=100"`
}

type UnsubscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}

type ContactListQuery struct {
	PageQuery
	Handled *bool `form:"handled"`
}

// Analytics

type TrackEventRequest struct {
	SessionID string             `json:"sessionId" binding:"required,max=100"`
	Path      string             `json:"path" binding:"required,max=500"`
	Type      AnalyticsEventType `json:"type" binding:"required"`
	Referrer  string             `json:"referrer" binding:"max=500"`
}

type DashboardTotals struct {
	Users          int `json:"users"`
	Bookings       int `json:"bookings"`
	ActiveServices int `json:"activeServices"`
	TripPlans      int `json:"tripPlans"`
}

type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Count   int     `json:"count"`
}

type TopService struct {
	ServiceID   uuid.UUID   `json:"serviceId"`
	ServiceName string      `json:"serviceName"`
	ServiceType ServiceKind `json:"serviceType"`
	Bookings    int         `json:"bookings"`
	Revenue     float64     `json:"revenue"`
}

type Dashboard struct {
	Totals                DashboardTotals  `json:"totals"`
	BookingsByStatus      map[string]int   `json:"bookingsByStatus"`
	Revenue               float64          `json:"revenue"`
	BookingsByServiceType map[string]int   `json:"bookingsByServiceType"`
	MonthlyRevenue        []MonthlyRevenue `json:"monthlyRevenue"`
	TopServices           []TopService     `json:"topServices"`
	TripPlansByStatus     map[string]int   `json:"tripPlansByStatus"`
}

type Realtime struct {
	ActiveSessions    int64     `json:"activeSessions"`
	BookingsToday     int       `json:"bookingsToday"`
	PageViewsLastHour int       `json:"pageViewsLastHour"`
	GeneratedAt       time.Time `json:"generatedAt"`
}
