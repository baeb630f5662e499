package automation

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
	"whatsapp-autoreply/pkg/models"
)

// Engine answers inbound messages from the automation list configured for the
// webhook. The list is re-read from its raw JSON on every call and never
// mutated.
type Engine struct {
	rawFlows string
}

func NewEngine(rawFlows string) *Engine {
	return &Engine{rawFlows: rawFlows}
}

// Result is the outcome of processing one inbound message
type Result struct {
	Flow    *models.AutomationFlow
	Message string
}

// Matched reports whether an automation answered the message
func (r Result) Matched() bool {
	return r.Flow != nil
}

// configuredFlow keeps track of whether messagePreview was present in the
// configured JSON. A missing or null preview answers with the fallback text.
type configuredFlow struct {
	models.AutomationFlow
	Preview *string `json:"messagePreview"`
}

// Flows returns the currently configured automation list
func (e *Engine) Flows() []models.AutomationFlow {
	return LoadFlows(e.rawFlows)
}

// ProcessIncomingMessage picks the reply for an inbound message: the preview of
// the first matching automation, or the fallback text naming the sender when
// nothing matches or the match has no preview.
func (e *Engine) ProcessIncomingMessage(from, body string) Result {
	configured := loadConfigured(e.rawFlows)
	flows := plainFlows(configured)
	i := matchIndex(body, flows)
	if i < 0 {
		return Result{Message: FallbackMessage(from)}
	}
	if configured[i].Preview == nil {
		return Result{Flow: &flows[i], Message: FallbackMessage(from)}
	}
	return Result{Flow: &flows[i], Message: *configured[i].Preview}
}

// LoadFlows parses a JSON array of automation flows. An empty input, a
// malformed document, a non-array value or an array holding anything other
// than objects all yield an empty list.
func LoadFlows(raw string) []models.AutomationFlow {
	return plainFlows(loadConfigured(raw))
}

func loadConfigured(raw string) []configuredFlow {
	if strings.TrimSpace(raw) == "" {
		return []configuredFlow{}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		log.Printf("[AUTOMATION_FLOWS_PARSE_ERROR] %v", err)
		return []configuredFlow{}
	}

	flows := make([]configuredFlow, 0, len(elems))
	for i, elem := range elems {
		trimmed := bytes.TrimSpace(elem)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			log.Printf("[AUTOMATION_FLOWS_PARSE_ERROR] entry %d is not an object: %s", i, trimmed)
			return []configuredFlow{}
		}
		var f configuredFlow
		if err := json.Unmarshal(trimmed, &f); err != nil {
			log.Printf("[AUTOMATION_FLOWS_PARSE_ERROR] entry %d: %v", i, err)
			return []configuredFlow{}
		}
		flows = append(flows, f)
	}
	return flows
}

func plainFlows(configured []configuredFlow) []models.AutomationFlow {
	flows := make([]models.AutomationFlow, len(configured))
	for i, c := range configured {
		flows[i] = c.AutomationFlow
		if c.Preview != nil {
			flows[i].MessagePreview = *c.Preview
		}
	}
	return flows
}

// MatchTrigger returns the first flow, in list order, whose trigger phrase is a
// case-insensitive substring of text. An empty trigger phrase matches any text.
func MatchTrigger(text string, flows []models.AutomationFlow) *models.AutomationFlow {
	if i := matchIndex(text, flows); i >= 0 {
		return &flows[i]
	}
	return nil
}

func matchIndex(text string, flows []models.AutomationFlow) int {
	text = strings.ToLower(text)
	for i := range flows {
		if strings.Contains(text, strings.ToLower(flows[i].TriggerPhrase)) {
			return i
		}
	}
	return -1
}
