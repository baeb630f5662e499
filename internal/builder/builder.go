package builder

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"whatsapp-autoreply/internal/apiclient"
	"whatsapp-autoreply/internal/store"
	"whatsapp-autoreply/pkg/models"

	"github.com/google/uuid"
)

var (
	ErrMissingFields = errors.New("name, trigger phrase and goal are required")
	ErrNoTestPhone   = errors.New("Add a WhatsApp number before sending.")
)

const (
	msgGenerateFailed   = "Failed to generate AI response"
	msgRegenerateFailed = "Failed to regenerate message"
	msgDispatchFailed   = "Failed to dispatch WhatsApp message"
)

// Backend is the server API the builder drives
type Backend interface {
	Generate(ctx context.Context, req models.GenerateRequest) (string, error)
	Send(ctx context.Context, to, message string) (string, error)
}

// Builder implements the user actions on automation flows. Failures of one
// flow are recorded on that flow only.
type Builder struct {
	store   *store.Store
	backend Backend
	now     func() time.Time
	newID   func() string
}

func New(s *store.Store, backend Backend) *Builder {
	return &Builder{
		store:   s,
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Patch holds the editable fields of a flow. Nil fields are left unchanged.
type Patch struct {
	Name           *string
	TriggerPhrase  *string
	AITone         *models.Tone
	Goal           *string
	Context        *string
	MessagePreview *string
	TestPhone      *string
}

// Generate creates a new ready flow from input. Nothing is stored on failure.
func (b *Builder) Generate(ctx context.Context, input models.GenerateRequest) (models.AutomationFlow, error) {
	if input.Missing() {
		return models.AutomationFlow{}, ErrMissingFields
	}
	if input.AITone == "" {
		input.AITone = models.DefaultTone
	}

	message, err := b.backend.Generate(ctx, input)
	if err != nil {
		log.Printf("Generate %q failed: %v", input.Name, err)
		return models.AutomationFlow{}, errors.New(msgGenerateFailed)
	}

	flow := models.AutomationFlow{
		ID:              b.newID(),
		Name:            input.Name,
		TriggerPhrase:   input.TriggerPhrase,
		AITone:          input.AITone,
		Goal:            input.Goal,
		Context:         input.Context,
		MessagePreview:  message,
		Status:          models.StatusReady,
		LastGeneratedAt: b.now(),
	}
	if err := b.store.Prepend(ctx, flow); err != nil {
		return models.AutomationFlow{}, err
	}
	return flow, nil
}

// Regenerate replaces the preview of an existing flow. The flow goes back to
// draft while the request runs and ends ready or error.
func (b *Builder) Regenerate(ctx context.Context, id string) (models.AutomationFlow, error) {
	flow, err := b.store.Update(ctx, id, func(f *models.AutomationFlow) error {
		if err := f.SetStatus(models.StatusDraft); err != nil {
			return err
		}
		f.Error = ""
		f.MessagePreview = ""
		return nil
	})
	if err != nil {
		return models.AutomationFlow{}, err
	}

	message, genErr := b.backend.Generate(ctx, models.GenerateRequest{
		Name:          flow.Name,
		TriggerPhrase: flow.TriggerPhrase,
		AITone:        flow.AITone,
		Goal:          flow.Goal,
		Context:       flow.Context,
	})
	if genErr != nil {
		log.Printf("Regenerate %s failed: %v", id, genErr)
		flow, err = b.fail(ctx, id, msgRegenerateFailed)
		if err != nil {
			return flow, err
		}
		return flow, errors.New(msgRegenerateFailed)
	}

	return b.store.Update(ctx, id, func(f *models.AutomationFlow) error {
		if err := f.SetStatus(models.StatusReady); err != nil {
			return err
		}
		f.MessagePreview = message
		f.LastGeneratedAt = b.now()
		return nil
	})
}

// Edit applies patch to a flow without touching its status
func (b *Builder) Edit(ctx context.Context, id string, patch Patch) (models.AutomationFlow, error) {
	return b.store.Update(ctx, id, func(f *models.AutomationFlow) error {
		if patch.Name != nil {
			f.Name = *patch.Name
		}
		if patch.TriggerPhrase != nil {
			f.TriggerPhrase = *patch.TriggerPhrase
		}
		if patch.AITone != nil {
			f.AITone = *patch.AITone
		}
		if patch.Goal != nil {
			f.Goal = *patch.Goal
		}
		if patch.Context != nil {
			f.Context = *patch.Context
		}
		if patch.MessagePreview != nil {
			f.MessagePreview = *patch.MessagePreview
		}
		if patch.TestPhone != nil {
			f.TestPhone = *patch.TestPhone
		}
		return nil
	})
}

// SendTest sends the flow's preview to its test phone. The returned flow
// reflects the final state; err is non-nil when the send did not happen.
func (b *Builder) SendTest(ctx context.Context, id string) (models.AutomationFlow, string, error) {
	current, err := b.store.Get(id)
	if err != nil {
		return models.AutomationFlow{}, "", err
	}
	if current.TestPhone == "" {
		flow, err := b.fail(ctx, id, ErrNoTestPhone.Error())
		if err != nil {
			return flow, "", err
		}
		return flow, "", ErrNoTestPhone
	}

	flow, err := b.store.Update(ctx, id, func(f *models.AutomationFlow) error {
		if err := f.SetStatus(models.StatusSending); err != nil {
			return err
		}
		f.Error = ""
		return nil
	})
	if err != nil {
		return models.AutomationFlow{}, "", err
	}

	sid, sendErr := b.backend.Send(ctx, flow.TestPhone, flow.MessagePreview)
	if sendErr != nil {
		log.Printf("Send test for %s failed: %v", id, sendErr)
		reason := msgDispatchFailed
		var apiErr *apiclient.APIError
		if errors.As(sendErr, &apiErr) && apiErr.Message != "" {
			reason = apiErr.Message
		}
		flow, err = b.fail(ctx, id, reason)
		if err != nil {
			return flow, "", err
		}
		return flow, "", errors.New(reason)
	}

	flow, err = b.store.Update(ctx, id, func(f *models.AutomationFlow) error {
		if err := f.SetStatus(models.StatusReady); err != nil {
			return err
		}
		f.Error = ""
		return nil
	})
	return flow, sid, err
}

func (b *Builder) Delete(ctx context.Context, id string) error {
	return b.store.Delete(ctx, id)
}

func (b *Builder) List() []models.AutomationFlow {
	return b.store.List()
}

// Counts returns how many flows are ready and how many are drafts
func (b *Builder) Counts() (ready, drafts int) {
	for _, f := range b.store.List() {
		switch f.Status {
		case models.StatusReady:
			ready++
		case models.StatusDraft:
			drafts++
		}
	}
	return ready, drafts
}

// ExportReady renders the ready flows as a JSON array for AUTOMATION_FLOWS.
// The webhook list is configured separately and is not synced automatically.
func (b *Builder) ExportReady() ([]byte, error) {
	ready := []models.AutomationFlow{}
	for _, f := range b.store.List() {
		if f.Status == models.StatusReady {
			ready = append(ready, f)
		}
	}
	return json.Marshal(ready)
}

func (b *Builder) fail(ctx context.Context, id, reason string) (models.AutomationFlow, error) {
	return b.store.Update(ctx, id, func(f *models.AutomationFlow) error {
		if err := f.SetStatus(models.StatusError); err != nil {
			return err
		}
		f.Error = reason
		return nil
	})
}
