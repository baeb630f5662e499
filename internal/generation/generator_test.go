package generation

import (
	"context"
	"errors"
	"testing"

	"whatsapp-autoreply/internal/llm"
	"whatsapp-autoreply/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	calls int
	last  llm.Request
	text  string
	err   error
}

func (f *fakeLLM) Chat(_ context.Context, req llm.Request) (llm.Result, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return llm.Result{}, f.err
	}
	return llm.Result{Text: f.text}, nil
}

func validRequest() models.GenerateRequest {
	return models.GenerateRequest{
		Name:          "Lead capture",
		TriggerPhrase: "pricing",
		AITone:        models.ToneProfessional,
		Goal:          "Book a demo",
		Context:       "Starter $29",
	}
}

func TestGenerator_Generate(t *testing.T) {
	fake := &fakeLLM{text: "  Thanks for asking about pricing!  \n"}
	gen := NewGenerator(fake, "")

	msg, err := gen.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "Thanks for asking about pricing!", msg)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, DefaultModel, fake.last.Model)
	assert.InDelta(t, 0.7, fake.last.Temperature, 0.0001)
	assert.Equal(t, 500, fake.last.MaxTokens)
	require.Len(t, fake.last.Messages, 2)
	assert.Equal(t, llm.RoleSystem, fake.last.Messages[0].Role)
	assert.Contains(t, fake.last.Messages[0].Content, "120-180 words")
	assert.Contains(t, fake.last.Messages[1].Content, "Desired Tone: professional")
	assert.Contains(t, fake.last.Messages[1].Content, "Knowledge Base / Context: Starter $29")
}

func TestGenerator_Generate_Defaults(t *testing.T) {
	fake := &fakeLLM{text: "ok"}
	gen := NewGenerator(fake, "gpt-custom")

	req := validRequest()
	req.AITone = ""
	req.Context = ""
	_, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "gpt-custom", fake.last.Model)
	assert.Contains(t, fake.last.Messages[1].Content, "Desired Tone: friendly")
	assert.Contains(t, fake.last.Messages[1].Content, "Knowledge Base / Context: None provided")
}

func TestGenerator_Generate_MissingFieldsSkipsUpstream(t *testing.T) {
	for _, mutate := range []func(*models.GenerateRequest){
		func(r *models.GenerateRequest) { r.Name = "" },
		func(r *models.GenerateRequest) { r.TriggerPhrase = "" },
		func(r *models.GenerateRequest) { r.Goal = "" },
	} {
		fake := &fakeLLM{text: "unused"}
		req := validRequest()
		mutate(&req)

		_, err := NewGenerator(fake, "").Generate(context.Background(), req)
		assert.ErrorIs(t, err, ErrMissingFields)
		assert.Zero(t, fake.calls)
	}
}

func TestGenerator_Generate_EmptyAnswerUsesFallback(t *testing.T) {
	msg, err := NewGenerator(&fakeLLM{text: "   "}, "").Generate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, msg)
}

func TestGenerator_Generate_UpstreamError(t *testing.T) {
	upstream := errors.New("rate limited")
	_, err := NewGenerator(&fakeLLM{err: upstream}, "").Generate(context.Background(), validRequest())
	assert.ErrorIs(t, err, upstream)
}
