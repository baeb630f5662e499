package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"whatsapp-autoreply/internal/llm"
	"whatsapp-autoreply/pkg/models"
)

const (
	DefaultModel       = "gpt-4.1-mini"
	defaultTemperature = 0.7
	defaultMaxTokens   = 500
	noContextMarker    = "None provided"

	// FallbackReply is returned when the model answers with no text
	FallbackReply = "Hi there! I'd love to help, but I could not generate a response. Please try again."
)

var ErrMissingFields = errors.New("Missing required fields for AI generation.")

const systemPrompt = `You are an expert WhatsApp automation copywriter.
Generate a single WhatsApp message that feels human, handles objections, and aligns with the business goal.
Constraints:
- Use natural language with sentence case.
- Keep to 120-180 words.
- End with a clear call-to-action.
- If context includes links, incorporate them once.
- Ask at most two questions in one message.`

type Generator struct {
	client llm.Client
	model  string
}

func NewGenerator(client llm.Client, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}
}

// Normalize fills the tone and context defaults
func Normalize(req models.GenerateRequest) models.GenerateRequest {
	if req.AITone == "" {
		req.AITone = models.DefaultTone
	}
	if req.Context == "" {
		req.Context = noContextMarker
	}
	return req
}

// UserPrompt renders the per-automation prompt. req should already be normalized.
func UserPrompt(req models.GenerateRequest) string {
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "Automation Name: %s\n", req.Name)
	fmt.Fprintf(&b, "Trigger Phrase: %s\n", req.TriggerPhrase)
	fmt.Fprintf(&b, "Desired Tone: %s\n", req.AITone)
	fmt.Fprintf(&b, "Goal: %s\n", req.Goal)
	fmt.Fprintf(&b, "Knowledge Base / Context: %s\n", req.Context)
	b.WriteString("\nCraft the WhatsApp reply in Markdown bullet-friendly format where appropriate.\n")
	return b.String()
}

// Generate produces one reply for the automation described by req. Nothing is
// sent upstream when a required field is empty.
func (g *Generator) Generate(ctx context.Context, req models.GenerateRequest) (string, error) {
	if req.Missing() {
		return "", ErrMissingFields
	}
	req = Normalize(req)

	res, err := g.client.Chat(ctx, llm.Request{
		Model: g.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: UserPrompt(req)},
		},
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate reply for %q: %w", req.Name, err)
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		return FallbackReply, nil
	}
	return text, nil
}
