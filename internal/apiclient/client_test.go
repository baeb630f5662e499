package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"whatsapp-autoreply/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var req models.GenerateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pricing", req.TriggerPhrase)
		_ = json.NewEncoder(w).Encode(models.GenerateResponse{Message: "Plans start at $29"})
	}))
	defer srv.Close()

	msg, err := New(srv.URL+"/").Generate(context.Background(), models.GenerateRequest{
		Name: "Pricing", TriggerPhrase: "pricing", Goal: "sell",
	})
	require.NoError(t, err)
	assert.Equal(t, "Plans start at $29", msg)
}

func TestClient_SendErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to send WhatsApp message via Twilio."}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Send(context.Background(), "+1", "hi")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Failed to send WhatsApp message via Twilio.", apiErr.Error())
}

func TestClient_ErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Send(context.Background(), "+1", "hi")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Empty(t, apiErr.Message)
	assert.Equal(t, "server returned 502", apiErr.Error())
}

func TestClient_WebhookAutomations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"automations":[{"id":"1","triggerPhrase":"price"}]}`))
	}))
	defer srv.Close()

	flows, err := New(srv.URL).WebhookAutomations(context.Background())
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, "price", flows[0].TriggerPhrase)
}
