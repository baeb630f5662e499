package webhook

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"whatsapp-autoreply/internal/activity"
	"whatsapp-autoreply/internal/automation"
	"whatsapp-autoreply/pkg/models"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	AutomationEngine *automation.Engine
	Activity         *activity.Feed
}

func NewHandler(automationEngine *automation.Engine, feed *activity.Feed) *Handler {
	return &Handler{
		AutomationEngine: automationEngine,
		Activity:         feed,
	}
}

// HandleMessage answers a Twilio inbound message webhook. It always responds
// 200 with a TwiML envelope.
func (h *Handler) HandleMessage(c *gin.Context) {
	// Twilio posts form-encoded, but the body is parsed whatever the content type
	raw, err := c.GetRawData()
	if err != nil {
		log.Printf("Error reading webhook body: %v", err)
	}
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		log.Printf("Error parsing webhook body: %v", err)
	}
	message := models.InboundMessageFromValues(values)

	result := h.AutomationEngine.ProcessIncomingMessage(message.From, message.Body)
	if result.Matched() {
		log.Printf("Automation '%s' matched for message from %s", result.Flow.Name, message.From)
	} else {
		log.Printf("No automation matched for message from %s", message.From)
	}

	if h.Activity != nil {
		h.Activity.Append(activity.TypeWebhook, describe(message.From, result))
	}

	c.Data(http.StatusOK, "application/xml", automation.BuildTwiML(result.Message))
}

// ListAutomations returns the automation list the webhook matches against
func (h *Handler) ListAutomations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"automations": h.AutomationEngine.Flows()})
}

func describe(from string, result automation.Result) string {
	if !result.Matched() {
		return fmt.Sprintf("Inbound message from %s fell back to the default reply.", from)
	}
	name := result.Flow.Name
	if name == "" {
		name = result.Flow.TriggerPhrase
	}
	return fmt.Sprintf("Inbound message from %s matched %q.", from, name)
}
