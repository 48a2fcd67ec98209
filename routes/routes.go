package routes

import (
	"net/http"
	"time"

	"smartparking/config"
	"smartparking/handlers"
	"smartparking/middleware"
	"smartparking/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAuthRoutes registers the public sign-up and sign-in endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.Auth.RegisterHandler)
		api.POST("/login", hb.Auth.LoginHandler)
	}
}

// RegisterUserRoutes registers endpoints on the signed-in user's profile.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/me", hb.Auth.MeHandler)
		api.PUT("/fcm-token", hb.Auth.UpdateFCMTokenHandler)
	}
}

// RegisterSpotRoutes registers spot lookup and availability endpoints.
func RegisterSpotRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/spots")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("", hb.Spots.ListSpotsHandler)
		api.POST("/sweep", hb.Spots.TriggerSweepHandler)
		api.GET("/:id", hb.Spots.GetSpotHandler)
		api.GET("/:id/availability", hb.Spots.AvailabilityHandler)
		api.GET("/:id/next-available", hb.Spots.NextAvailableHandler)
	}
}

// RegisterReservationRoutes registers the user side of the reservation lifecycle.
func RegisterReservationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reservations")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("", hb.Reservation.CreateReservationHandler)
		api.GET("/mine", hb.Reservation.MyReservationsHandler)
		api.GET("/:id", hb.Reservation.GetReservationHandler)
		api.POST("/:id/cancel", hb.Reservation.CancelReservationHandler)
		api.POST("/:id/check-in", hb.Reservation.CheckInHandler)
		api.POST("/:id/check-out", hb.Reservation.CheckOutHandler)
	}
}

// RegisterPaymentRoutes registers payment endpoints. The webhook is
// authenticated by its Stripe signature, not a bearer token.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("/webhook", hb.Payment.WebhookHandler)
		api.POST("/intent", middleware.JWTAuthMiddleware(hb.UserRepo), hb.Payment.CreateIntentHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthMiddleware(hb.UserRepo), middleware.AdminOnly())

		adminGroup.GET("/zones", hb.Admin.ListZonesHandler)
		adminGroup.POST("/zones", hb.Admin.CreateZoneHandler)
		adminGroup.PUT("/zones/:id", hb.Admin.UpdateZoneHandler)
		adminGroup.DELETE("/zones/:id", hb.Admin.DeleteZoneHandler)

		adminGroup.POST("/spots", hb.Admin.CreateSpotHandler)
		adminGroup.PUT("/spots/:id", hb.Admin.UpdateSpotHandler)
		adminGroup.DELETE("/spots/:id", hb.Admin.DeleteSpotHandler)
		adminGroup.PUT("/spots/:id/status", hb.Admin.SetSpotStatusHandler)

		adminGroup.GET("/reservations", hb.Admin.ListReservationsHandler)
		adminGroup.GET("/reservations/pending", hb.Admin.PendingReservationsHandler)
		adminGroup.POST("/reservations/:id/approve", hb.Admin.ApproveReservationHandler)
		adminGroup.POST("/reservations/:id/reject", hb.Admin.RejectReservationHandler)

		adminGroup.GET("/analytics", hb.Admin.AnalyticsHandler)
		adminGroup.POST("/sweep", hb.Admin.RunSweepHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.CheckedAt.IsZero() && !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "message": "Hi, I'm SmartParking"})
	})
}

// RegisterMetricsRoute exposes the Prometheus registry.
func RegisterMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	RegisterHealthRoute(r)
	if config.AppConfig.MetricsEnabled {
		RegisterMetricsRoute(r)
	}
	RegisterAuthRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterSpotRoutes(r, hb)
	RegisterReservationRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
