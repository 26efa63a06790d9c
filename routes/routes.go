package routes

import (
	"net/http"
	"time"

	"moveline/handlers"
	"moveline/middleware"
	"moveline/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options are the route-level settings taken from configuration.
type Options struct {
	TwilioAuthToken   string
	BaseURL           string
	MaxRequestsPerMin int
}

// RegisterVoiceRoutes registers the Twilio voice webhooks.
func RegisterVoiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	voice := r.Group("/voice")
	{
		voice.Use(middleware.TwilioSignatureMiddleware(opts.TwilioAuthToken, opts.BaseURL))
		voice.POST("/inbound", hb.VoiceInboundHandler)
		voice.POST("/process", hb.VoiceProcessHandler)
		voice.POST("/outbound", hb.VoiceOutboundHandler)
		voice.POST("/status", hb.VoiceStatusHandler)
	}
}

// RegisterSMSRoutes registers the Twilio messaging webhook.
func RegisterSMSRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	sms := r.Group("/sms")
	{
		sms.Use(middleware.TwilioSignatureMiddleware(opts.TwilioAuthToken, opts.BaseURL))
		sms.POST("/incoming", hb.SMSIncomingHandler)
	}
}

// RegisterAPIRoutes registers the integration endpoints used by web forms.
func RegisterAPIRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	api := r.Group("/api")
	{
		api.Use(middleware.RateLimitMiddleware(opts.MaxRequestsPerMin))
		api.Use(middleware.JWTAuthMiddleware(utils.RoleIntegration))
		api.POST("/outbound/lead", hb.CreateLeadCallHandler)
		api.GET("/quote", hb.GetQuoteHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.RateLimitMiddleware(opts.MaxRequestsPerMin))
		adminGroup.Use(middleware.JWTAuthAdminMiddleware())
		adminGroup.GET("/sessions", hb.AdminHandler.GetSessionsHandler)
		adminGroup.GET("/sessions/:id", hb.AdminHandler.GetSessionHandler)
		adminGroup.GET("/outbound/usage", hb.AdminHandler.GetOutboundUsageHandler)
	}
}

// RegisterHealthRoute registers the health-check and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "dependencies": utils.GetHealthStatus()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterVoiceRoutes(r, hb, opts)
	RegisterSMSRoutes(r, hb, opts)
	RegisterAPIRoutes(r, hb, opts)
	RegisterAdminRoutes(r, hb, opts)
	RegisterHealthRoute(r)
}
