package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"whatsapp-autoreply/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req models.GenerateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Reply for " + req.TriggerPhrase})
	})
	mux.HandleFunc("/api/send", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"sid": "SM42"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_CreateEditSendExport(t *testing.T) {
	srv := fakeServer(t)
	dsn := filepath.Join(t.TempDir(), "flows.db")
	global := []string{"--server", srv.URL, "--store", "sqlite", "--dsn", dsn}

	out, err := run(t, append([]string{"create", "--name", "Pricing", "--trigger", "pricing", "--goal", "Sell"}, global...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "[ready]")
	assert.Contains(t, out, "Reply for pricing")
	id := strings.Fields(out)[0]

	out, err = run(t, append([]string{"list"}, global...)...)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "1 ready, 0 draft")

	_, err = run(t, append([]string{"send", id}, global...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Add a WhatsApp number before sending.")

	_, err = run(t, append([]string{"edit", id, "--test-phone", "+15551234567"}, global...)...)
	require.NoError(t, err)

	out, err = run(t, append([]string{"send", id}, global...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "sid SM42")

	out, err = run(t, append([]string{"export"}, global...)...)
	require.NoError(t, err)
	var exported []models.AutomationFlow
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "pricing", exported[0].TriggerPhrase)
}

func TestCLI_RejectsUnknownTone(t *testing.T) {
	srv := fakeServer(t)

	_, err := run(t, "create", "--name", "x", "--trigger", "y", "--goal", "z", "--tone", "sarcastic",
		"--server", srv.URL, "--store", "memory")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tone")
}
