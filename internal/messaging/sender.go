package messaging

import (
	"context"
	"errors"
	"strings"

	"whatsapp-autoreply/internal/config"
)

// AddressPrefix marks an address on Twilio's WhatsApp channel
const AddressPrefix = "whatsapp:"

var ErrMissingFields = errors.New("Missing destination number or message body.")

// Sender dispatches one text message and returns the provider's message id
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// NormalizeAddress prefixes addr with "whatsapp:" unless it already is
func NormalizeAddress(addr string) string {
	if strings.HasPrefix(addr, AddressPrefix) {
		return addr
	}
	return AddressPrefix + addr
}

// NewSender builds the sender selected by cfg.MessagingProvider. It returns the
// configuration error when credentials are missing.
func NewSender(cfg *config.Config) (Sender, error) {
	if err := cfg.MessagingError(); err != nil {
		return nil, err
	}
	if cfg.MessagingProvider == config.ProviderCloudAPI {
		return NewCloudAPIClient(cfg.WhatsAppToken, cfg.PhoneNumberID), nil
	}
	return NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom), nil
}
