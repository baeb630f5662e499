package api

import (
	"whatsapp-autoreply/internal/activity"
	"whatsapp-autoreply/internal/automation"
	"whatsapp-autoreply/internal/config"
	"whatsapp-autoreply/internal/generation"
	"whatsapp-autoreply/internal/messaging"
	"whatsapp-autoreply/internal/webhook"
	"whatsapp-autoreply/internal/ws"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the router wires into handlers. Generator and
// Sender are nil when their credentials are missing.
type Deps struct {
	Generator *generation.Generator
	Sender    messaging.Sender
	Activity  *activity.Feed
	Hub       *ws.Hub
}

func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	generateHandler := NewGenerateHandler(cfg, deps.Generator, deps.Activity)
	sendHandler := NewSendHandler(cfg, deps.Sender, deps.Activity)
	activityHandler := NewActivityHandler(cfg, deps.Activity, deps.Hub)
	webhookHandler := webhook.NewHandler(automation.NewEngine(cfg.AutomationFlows), deps.Activity)

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/generate", generateHandler.Generate)
		apiGroup.POST("/send", sendHandler.SendMessage)

		// Webhook Routes
		apiGroup.POST("/webhook", webhookHandler.HandleMessage)
		apiGroup.GET("/webhook", webhookHandler.ListAutomations)

		// Activity Routes
		apiGroup.GET("/activity", activityHandler.GetActivity)
		apiGroup.DELETE("/activity", activityHandler.ClearActivity)
		apiGroup.GET("/activity/ws", activityHandler.StreamActivity)
		apiGroup.GET("/health", activityHandler.Health)
	}

	return r
}
