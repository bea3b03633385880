package server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/roomly/roomly-backend/internal/http/handlers"
	"github.com/roomly/roomly-backend/internal/middleware"
	"github.com/roomly/roomly-backend/internal/platform/envutil"
	"github.com/roomly/roomly-backend/internal/platform/logger"
	"github.com/roomly/roomly-backend/internal/services"
)

type Handlers struct {
	Auth           *handlers.AuthHandler
	Room           *handlers.RoomHandler
	Booking        *handlers.BookingHandler
	Recommendation *handlers.RecommendationHandler
}

// NewRouter wires all routes. Auth endpoints and health are public;
// everything else requires a valid access token.
func NewRouter(log *logger.Logger, auth services.AuthService, h Handlers) *gin.Engine {
	if envutil.Str("GIN_MODE", "") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     splitCSV(envutil.Str("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", handlers.Health())

	api := r.Group("/api")

	public := api.Group("/auth")
	{
		public.POST("/register", h.Auth.Register)
		public.POST("/login", h.Auth.Login)
		public.POST("/refresh", h.Auth.Refresh)
		public.POST("/logout", h.Auth.Logout)
	}

	protected := api.Group("")
	protected.Use(middleware.Auth(log, auth))
	{
		protected.POST("/rooms", h.Room.Create)
		protected.GET("/rooms", h.Room.List)
		protected.GET("/rooms/:id", h.Room.Get)

		protected.POST("/bookings", h.Booking.Create)
		protected.GET("/bookings", h.Booking.List)
		protected.GET("/bookings/:id", h.Booking.Get)
		protected.DELETE("/bookings/:id", h.Booking.Cancel)

		protected.POST("/recommendations", h.Recommendation.Recommend)
	}

	return r
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
