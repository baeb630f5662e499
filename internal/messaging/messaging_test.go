package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"whatsapp-autoreply/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "whatsapp:+14155551234", NormalizeAddress("+14155551234"))
	assert.Equal(t, "whatsapp:+14155551234", NormalizeAddress("whatsapp:+14155551234"))
	// only the exact lowercase scheme counts as prefixed
	assert.Equal(t, "whatsapp:WhatsApp:+1", NormalizeAddress("WhatsApp:+1"))
}

type fakeCreator struct {
	params *twilioApi.CreateMessageParams
	sid    string
	err    error
}

func (f *fakeCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := f.sid
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioSender_Send(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		to       string
		wantFrom string
		wantTo   string
	}{
		{
			name:     "bare numbers get prefixed",
			from:     "+14155238886",
			to:       "+15551234567",
			wantFrom: "whatsapp:+14155238886",
			wantTo:   "whatsapp:+15551234567",
		},
		{
			name:     "prefixed numbers pass through",
			from:     "whatsapp:+14155238886",
			to:       "whatsapp:+15551234567",
			wantFrom: "whatsapp:+14155238886",
			wantTo:   "whatsapp:+15551234567",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCreator{sid: "SM123"}
			sender := &TwilioSender{api: fake, from: tt.from}

			sid, err := sender.Send(context.Background(), tt.to, "hello")
			require.NoError(t, err)

			assert.Equal(t, "SM123", sid)
			require.NotNil(t, fake.params)
			assert.Equal(t, tt.wantFrom, *fake.params.From)
			assert.Equal(t, tt.wantTo, *fake.params.To)
			assert.Equal(t, "hello", *fake.params.Body)
		})
	}
}

func TestTwilioSender_SendErrors(t *testing.T) {
	fake := &fakeCreator{err: errors.New("authenticate")}
	sender := &TwilioSender{api: fake, from: "+1"}

	_, err := sender.Send(context.Background(), "", "hello")
	assert.ErrorIs(t, err, ErrMissingFields)
	assert.Nil(t, fake.params)

	_, err = sender.Send(context.Background(), "+2", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authenticate")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fake.params = nil
	_, err = sender.Send(ctx, "+2", "hello")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, fake.params)
}

func TestCloudAPIClient_Send(t *testing.T) {
	var got GenericMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/PHONE_ID/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"messaging_product":"whatsapp","messages":[{"id":"wamid.ABC"}]}`))
	}))
	defer srv.Close()

	client := NewCloudAPIClient("token", "PHONE_ID")
	client.BaseURL = srv.URL

	id, err := client.Send(context.Background(), "whatsapp:+15551234567", "hello")
	require.NoError(t, err)

	assert.Equal(t, "wamid.ABC", id)
	assert.Equal(t, "15551234567", got.To)
	assert.Equal(t, "text", got.Type)
	require.NotNil(t, got.Text)
	assert.Equal(t, "hello", got.Text.Body)
}

func TestCloudAPIClient_SendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
	}))
	defer srv.Close()

	client := NewCloudAPIClient("bad", "PHONE_ID")
	client.BaseURL = srv.URL

	_, err := client.Send(context.Background(), "+15551234567", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNewSender(t *testing.T) {
	_, err := NewSender(&config.Config{MessagingProvider: config.ProviderTwilio})
	require.Error(t, err)

	sender, err := NewSender(&config.Config{
		MessagingProvider:  config.ProviderTwilio,
		TwilioAccountSID:   "AC123",
		TwilioAuthToken:    "token",
		TwilioWhatsAppFrom: "+14155238886",
	})
	require.NoError(t, err)
	assert.IsType(t, &TwilioSender{}, sender)

	sender, err = NewSender(&config.Config{
		MessagingProvider: config.ProviderCloudAPI,
		WhatsAppToken:     "token",
		PhoneNumberID:     "PHONE_ID",
	})
	require.NoError(t, err)
	assert.IsType(t, &CloudAPIClient{}, sender)
}
