package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campus-union/voicebox/internal/auth"
	"github.com/campus-union/voicebox/internal/config"
	"github.com/campus-union/voicebox/internal/mail"
	"github.com/campus-union/voicebox/internal/ratelimit"
	"github.com/campus-union/voicebox/internal/render"
	"github.com/campus-union/voicebox/internal/store"
)

// Deps bundles everything the router needs.
type Deps struct {
	DB        *gorm.DB
	Config    *config.Config
	Messages  *store.MessageStore
	Analytics *store.AnalyticsStore
	Guard     *auth.Guard
	Notifier  *mail.Notifier
	Renderer  *render.CardRenderer

	SubmitLimiter ratelimit.Limiter
	LoginLimiter  ratelimit.Limiter
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(deps Deps) *gin.Engine {
	if !deps.Config.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(RequestLogger())
	engine.Use(Recovery(deps.Config.Development()))

	messages := NewMessageHandler(deps.Messages, deps.Analytics, deps.Notifier, deps.Renderer)
	authHandler := NewAuthHandler(deps.Guard, deps.Analytics, deps.Config.JWTSecret, deps.Config.JWTExpiry)
	analytics := NewAnalyticsHandler(deps.Analytics)
	health := NewHealthHandler(deps.DB)

	adminOnly := AdminAuth(deps.Config.JWTSecret)

	api := engine.Group("/api")
	{
		msg := api.Group("/messages")
		msg.POST("/submit",
			RateLimit(deps.SubmitLimiter, "Too many messages submitted, please wait a moment"),
			messages.Submit)
		msg.GET("", adminOnly, messages.List)
		// Static route first so it is not captured by :id.
		msg.GET("/stats", adminOnly, messages.Stats)
		msg.GET("/:id", adminOnly, messages.Get)
		msg.PATCH("/:id", adminOnly, messages.Review)
		msg.DELETE("/:id", adminOnly, messages.Delete)
		msg.GET("/:id/download", adminOnly, messages.Download)

		authGroup := api.Group("/auth")
		authGroup.POST("/login",
			RateLimit(deps.LoginLimiter, "Too many login attempts, please wait a moment"),
			authHandler.Login)
		authGroup.GET("/verify", adminOnly, authHandler.Verify)

		track := api.Group("/analytics")
		track.POST("/track/page-view", analytics.TrackPageView)
		track.POST("/track/visitor", analytics.TrackVisitor)
		track.GET("", adminOnly, analytics.Query)
	}

	engine.GET("/health", health.Health)

	engine.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Route not found")
	})

	return engine
}
