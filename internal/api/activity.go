package api

import (
	"net/http"
	"whatsapp-autoreply/internal/activity"
	"whatsapp-autoreply/internal/config"
	"whatsapp-autoreply/internal/ws"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	Config *config.Config
	Feed   *activity.Feed
	Hub    *ws.Hub
}

func NewActivityHandler(cfg *config.Config, feed *activity.Feed, hub *ws.Hub) *ActivityHandler {
	return &ActivityHandler{Config: cfg, Feed: feed, Hub: hub}
}

func (h *ActivityHandler) GetActivity(c *gin.Context) {
	c.JSON(http.StatusOK, h.Feed.Entries())
}

func (h *ActivityHandler) ClearActivity(c *gin.Context) {
	h.Feed.Clear()
	c.JSON(http.StatusOK, h.Feed.Entries())
}

func (h *ActivityHandler) StreamActivity(c *gin.Context) {
	h.Hub.ServeWs(c.Writer, c.Request)
}

// Health reports which upstream providers have credentials
func (h *ActivityHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"openai":             h.Config.GenerationError() == nil,
		"messaging":          h.Config.MessagingError() == nil,
		"messaging_provider": providerName(h.Config),
	})
}
