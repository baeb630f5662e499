package automation

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// FallbackMessage is sent when no automation matches
func FallbackMessage(from string) string {
	return fmt.Sprintf("Thanks for reaching out! A specialist will respond shortly. (No automation matched for %s).", from)
}

// BuildTwiML wraps message into the TwiML envelope Twilio expects as a
// synchronous webhook reply. Reserved XML characters in message are escaped.
func BuildTwiML(message string) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<Response>\n  <Message>")
	// writes to a bytes.Buffer cannot fail
	_ = xml.EscapeText(&buf, []byte(message))
	buf.WriteString("</Message>\n</Response>")
	return buf.Bytes()
}
