package api

import (
	"gotrip/internal/handlers"
	"gotrip/internal/middleware"
	"gotrip/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the /api surface on r.
func RegisterRoutes(r *gin.Engine, h *handlers.Handlers, authn middleware.Authenticator) {
	requireAuth := middleware.Auth(authn)
	staff := middleware.RequireStaff()
	admin := middleware.RequireRole(models.RoleAdmin)

	r.NoRoute(handlers.NoRoute)

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/me", requireAuth, h.Me)
		}

		api.PATCH("/users/:id/role", requireAuth, admin, h.UpdateUserRole)

		// Catalog endpoints, one group per kind: /api/destinations, /api/guides, ...
		for _, kind := range models.ServiceKinds {
			group := api.Group("/" + string(kind) + "s")
			group.GET("", h.ListServices(kind))
			group.GET("/:idOrSlug", h.GetService(kind))
			group.POST("", requireAuth, staff, h.CreateService(kind))
			group.PUT("/:idOrSlug", requireAuth, staff, h.UpdateService(kind))
			group.DELETE("/:idOrSlug", requireAuth, staff, h.DeleteService(kind))
		}

		api.POST("/uploads", requireAuth, staff, h.Upload)

		bookings := api.Group("/bookings", requireAuth)
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", staff, h.ListBookings)
			bookings.GET("/mine", h.ListMyBookings)
			bookings.GET("/reference/:reference", h.GetBookingByReference)
			bookings.GET("/:id", h.GetBooking)
			bookings.GET("/:id/audit", staff, h.BookingAudit)
			bookings.PATCH("/:id/status", h.UpdateBookingStatus)
			bookings.PATCH("/:id/payment-status", staff, h.UpdateBookingPaymentStatus)
			bookings.POST("/:id/recalculate", admin, h.RecalculateBooking)
			bookings.DELETE("/:id", staff, h.ArchiveBooking)
		}

		tripPlans := api.Group("/trip-plans", requireAuth)
		{
			tripPlans.POST("", h.CreateTripPlan)
			tripPlans.GET("", staff, h.ListTripPlans)
			tripPlans.GET("/mine", h.ListMyTripPlans)
			tripPlans.GET("/:id", h.GetTripPlan)
			tripPlans.PATCH("/:id/status", h.UpdateTripPlanStatus)
			tripPlans.PATCH("/:id/assign", staff, h.AssignTripPlan)
			tripPlans.PATCH("/:id/quote", staff, h.QuoteTripPlan)
		}

		blog := api.Group("/blog")
		{
			blog.GET("", h.ListBlogPosts)
			blog.GET("/:slug", h.GetBlogPost)
			blog.POST("", requireAuth, staff, h.CreateBlogPost)
			blog.PUT("/:slug", requireAuth, staff, h.UpdateBlogPost)
			blog.DELETE("/:slug", requireAuth, staff, h.DeleteBlogPost)
		}

		newsletter := api.Group("/newsletter")
		{
			newsletter.POST("/subscribe", h.Subscribe)
			newsletter.POST("/unsubscribe", h.Unsubscribe)
			newsletter.GET("/subscribers", requireAuth, staff, h.ListSubscribers)
		}

		contact := api.Group("/contact")
		{
			contact.POST("", h.SubmitContact)
			contact.GET("", requireAuth, staff, h.ListContactMessages)
			contact.PATCH("/:id/handled", requireAuth, staff, h.MarkContactHandled)
		}

		analytics := api.Group("/analytics")
		{
			analytics.POST("/track", middleware.OptionalAuth(authn), h.TrackEvent)
			analytics.GET("/dashboard", requireAuth, staff, h.Dashboard)
			analytics.GET("/realtime", requireAuth, staff, h.Realtime)
		}
	}
}
