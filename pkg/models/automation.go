package models

import (
	"errors"
	"fmt"
	"time"
)

// Tone is the voice the language model is asked to write in
type Tone string

const (
	ToneFriendly     Tone = "friendly"
	ToneProfessional Tone = "professional"
	ToneConcise      Tone = "concise"
	ToneEmpathetic   Tone = "empathetic"
)

// DefaultTone is used when a generation request leaves the tone empty
const DefaultTone = ToneFriendly

// Tones lists every supported tone in display order
var Tones = []Tone{ToneFriendly, ToneProfessional, ToneConcise, ToneEmpathetic}

// Valid reports whether t is one of the supported tones
func (t Tone) Valid() bool {
	for _, known := range Tones {
		if t == known {
			return true
		}
	}
	return false
}

// FlowStatus is the lifecycle state of an automation flow
type FlowStatus string

const (
	StatusDraft   FlowStatus = "draft"
	StatusReady   FlowStatus = "ready"
	StatusSending FlowStatus = "sending"
	StatusError   FlowStatus = "error"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// transitions lists the allowed targets per source status. Moving to draft is
// always allowed (regeneration start) and is handled separately.
var transitions = map[FlowStatus][]FlowStatus{
	StatusDraft:   {StatusReady, StatusError},
	StatusReady:   {StatusSending, StatusError},
	StatusSending: {StatusReady, StatusError},
	StatusError:   {StatusSending},
}

// CanTransition reports whether a flow in status s may move to status to
func (s FlowStatus) CanTransition(to FlowStatus) bool {
	if to == StatusDraft || s == to {
		return true
	}
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// AutomationFlow is a trigger -> reply rule together with the metadata used to
// generate the reply. The JSON layout is shared by the local store, the
// AUTOMATION_FLOWS variable and the webhook inspection endpoint.
type AutomationFlow struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	TriggerPhrase   string     `json:"triggerPhrase"`
	AITone          Tone       `json:"aiTone"`
	Goal            string     `json:"goal"`
	Context         string     `json:"context,omitempty"`
	MessagePreview  string     `json:"messagePreview"`
	Status          FlowStatus `json:"status"`
	Error           string     `json:"error,omitempty"`
	TestPhone       string     `json:"testPhone,omitempty"`
	LastGeneratedAt time.Time  `json:"lastGeneratedAt,omitzero"`
}

// SetStatus moves the flow to status to, or returns ErrInvalidTransition
func (f *AutomationFlow) SetStatus(to FlowStatus) error {
	if !f.Status.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.Status, to)
	}
	f.Status = to
	return nil
}

// GenerateRequest is the body accepted by the generation endpoint
type GenerateRequest struct {
	Name          string `json:"name" binding:"required"`
	TriggerPhrase string `json:"triggerPhrase" binding:"required"`
	AITone        Tone   `json:"aiTone"`
	Goal          string `json:"goal" binding:"required"`
	Context       string `json:"context"`
}

// Missing reports whether a required generation field is empty
func (r GenerateRequest) Missing() bool {
	return r.Name == "" || r.TriggerPhrase == "" || r.Goal == ""
}

type GenerateResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SendRequest is the body accepted by the send endpoint
type SendRequest struct {
	To      string `json:"to" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type SendResponse struct {
	SID   string `json:"sid,omitempty"`
	Error string `json:"error,omitempty"`
}
