package api

import (
	"errors"
	"log"
	"net/http"
	"whatsapp-autoreply/internal/activity"
	"whatsapp-autoreply/internal/config"
	"whatsapp-autoreply/internal/messaging"
	"whatsapp-autoreply/pkg/models"

	"github.com/gin-gonic/gin"
)

type SendHandler struct {
	Config   *config.Config
	Sender   messaging.Sender
	Activity *activity.Feed
}

func NewSendHandler(cfg *config.Config, sender messaging.Sender, feed *activity.Feed) *SendHandler {
	return &SendHandler{Config: cfg, Sender: sender, Activity: feed}
}

// SendMessage dispatches a one-off test message
func (h *SendHandler) SendMessage(c *gin.Context) {
	if err := h.Config.MessagingError(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.Sender == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Messaging client failed to initialize."})
		return
	}

	var req models.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": messaging.ErrMissingFields.Error()})
		return
	}

	sid, err := h.Sender.Send(c.Request.Context(), req.To, req.Message)
	if err != nil {
		if errors.Is(err, messaging.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[SEND_ERROR] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send WhatsApp message via " + providerName(h.Config) + "."})
		return
	}

	if h.Activity != nil {
		h.Activity.Append(activity.TypeSend, "Test message dispatched to "+req.To+".")
	}
	c.JSON(http.StatusOK, models.SendResponse{SID: sid})
}

func providerName(cfg *config.Config) string {
	if cfg.MessagingProvider == config.ProviderCloudAPI {
		return "WhatsApp Cloud API"
	}
	return "Twilio"
}
