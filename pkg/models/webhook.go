package models

import "net/url"

// InboundMessage holds the fields of a Twilio messaging webhook we care about.
// Twilio posts them form-encoded.
type InboundMessage struct {
	MessageSID  string `form:"MessageSid"`
	AccountSID  string `form:"AccountSid"`
	From        string `form:"From"`
	To          string `form:"To"`
	Body        string `form:"Body"`
	ProfileName string `form:"ProfileName"`
	WaID        string `form:"WaId"`
	NumMedia    string `form:"NumMedia"`
}

// UnknownSender is used when the webhook carries no From field
const UnknownSender = "unknown"

// InboundMessageFromValues reads a webhook body that has already been parsed
// into url.Values. Missing Body becomes "" and missing From becomes "unknown".
func InboundMessageFromValues(values url.Values) InboundMessage {
	msg := InboundMessage{
		MessageSID:  values.Get("MessageSid"),
		AccountSID:  values.Get("AccountSid"),
		From:        values.Get("From"),
		To:          values.Get("To"),
		Body:        values.Get("Body"),
		ProfileName: values.Get("ProfileName"),
		WaID:        values.Get("WaId"),
		NumMedia:    values.Get("NumMedia"),
	}
	if !values.Has("From") {
		msg.From = UnknownSender
	}
	return msg
}
