package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"whatsapp-autoreply/internal/activity"
	"whatsapp-autoreply/internal/config"
	"whatsapp-autoreply/internal/generation"
	"whatsapp-autoreply/pkg/models"

	"github.com/gin-gonic/gin"
)

type GenerateHandler struct {
	Config    *config.Config
	Generator *generation.Generator
	Activity  *activity.Feed
}

func NewGenerateHandler(cfg *config.Config, generator *generation.Generator, feed *activity.Feed) *GenerateHandler {
	return &GenerateHandler{Config: cfg, Generator: generator, Activity: feed}
}

// Generate produces an AI reply for an automation definition
func (h *GenerateHandler) Generate(c *gin.Context) {
	if err := h.Config.GenerationError(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.Generator == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "OpenAI client could not be initialized."})
		return
	}

	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": generation.ErrMissingFields.Error()})
		return
	}

	message, err := h.Generator.Generate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, generation.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[AI_GENERATE_ERROR] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to contact OpenAI. Review logs for more details."})
		return
	}

	if h.Activity != nil {
		h.Activity.Append(activity.TypeGeneration, fmt.Sprintf("Generated reply for %q.", req.Name))
	}
	c.JSON(http.StatusOK, models.GenerateResponse{Message: message})
}
