package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// messageCreator is the slice of the Twilio REST API the sender uses
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioSender struct {
	api  messageCreator
	from string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{api: client.Api, from: from}
}

// Send posts body to the WhatsApp address to. Both the sender and the
// destination are normalized to the whatsapp: scheme.
func (s *TwilioSender) Send(ctx context.Context, to, body string) (string, error) {
	if to == "" || body == "" {
		return "", ErrMissingFields
	}
	// the Twilio SDK takes no context, so only check before dispatching
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(NormalizeAddress(s.from))
	params.SetTo(NormalizeAddress(to))
	params.SetBody(body)

	msg, err := s.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio create message: %w", err)
	}
	if msg == nil || msg.Sid == nil {
		return "", errors.New("twilio create message: response has no sid")
	}
	return *msg.Sid, nil
}
