package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"whatsapp-autoreply/pkg/models"
)

// StorageKey is the fixed key the flow list is persisted under
const StorageKey = "automation-flows"

var (
	ErrNotFound    = errors.New("automation not found")
	ErrDuplicateID = errors.New("automation id already exists")
)

// Storage is a string key/value backend, modeled on browser localStorage
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
}

// Store is the builder's authoritative automation list. Every mutation is
// written through to Storage before it becomes visible, then announced to
// subscribers.
type Store struct {
	mu       sync.Mutex
	notifyMu sync.Mutex
	storage  Storage
	flows    []models.AutomationFlow
	subs     map[int]func([]models.AutomationFlow)
	nextSub  int
}

// Open loads the list from storage. A stored value that is not valid JSON is
// logged and treated as an empty list.
func Open(ctx context.Context, storage Storage) (*Store, error) {
	s := &Store{
		storage: storage,
		flows:   []models.AutomationFlow{},
		subs:    make(map[int]func([]models.AutomationFlow)),
	}

	raw, ok, err := storage.GetItem(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load automations: %w", err)
	}
	if !ok {
		return s, nil
	}

	var flows []models.AutomationFlow
	if err := json.Unmarshal([]byte(raw), &flows); err != nil {
		log.Printf("Failed to parse automations: %v", err)
		return s, nil
	}
	if flows != nil {
		s.flows = flows
	}
	return s, nil
}

// List returns a copy of all flows in order
func (s *Store) List() []models.AutomationFlow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.flows)
}

func (s *Store) Get(id string) (models.AutomationFlow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.AutomationFlow{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.flows[i], nil
}

// Prepend inserts flow at the head of the list
func (s *Store) Prepend(ctx context.Context, flow models.AutomationFlow) error {
	return s.mutate(ctx, func(flows []models.AutomationFlow) ([]models.AutomationFlow, error) {
		for _, f := range flows {
			if f.ID == flow.ID {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateID, flow.ID)
			}
		}
		return append([]models.AutomationFlow{flow}, flows...), nil
	})
}

// Update applies fn to the flow with the given id and returns the result. If fn
// fails nothing is written.
func (s *Store) Update(ctx context.Context, id string, fn func(*models.AutomationFlow) error) (models.AutomationFlow, error) {
	var updated models.AutomationFlow
	err := s.mutate(ctx, func(flows []models.AutomationFlow) ([]models.AutomationFlow, error) {
		for i := range flows {
			if flows[i].ID != id {
				continue
			}
			if err := fn(&flows[i]); err != nil {
				return nil, err
			}
			updated = flows[i]
			return flows, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
	return updated, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(flows []models.AutomationFlow) ([]models.AutomationFlow, error) {
		out := flows[:0]
		found := false
		for _, f := range flows {
			if f.ID == id {
				found = true
				continue
			}
			out = append(out, f)
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return out, nil
	})
}

// Replace swaps the whole list
func (s *Store) Replace(ctx context.Context, flows []models.AutomationFlow) error {
	return s.mutate(ctx, func([]models.AutomationFlow) ([]models.AutomationFlow, error) {
		return clone(flows), nil
	})
}

// Subscribe registers fn to receive a snapshot after every mutation, in commit
// order. fn must not mutate the store. The returned func removes the
// subscription.
func (s *Store) Subscribe(fn func([]models.AutomationFlow)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// mutate runs fn on a private copy, persists the result and only then commits
// it. Subscribers are called outside mu but under notifyMu, which is taken
// before mu is released so deliveries follow commit order.
func (s *Store) mutate(ctx context.Context, fn func([]models.AutomationFlow) ([]models.AutomationFlow, error)) error {
	s.mu.Lock()
	next, err := fn(clone(s.flows))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if next == nil {
		next = []models.AutomationFlow{}
	}

	raw, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("encode automations: %w", err)
	}
	if err := s.storage.SetItem(ctx, StorageKey, string(raw)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save automations: %w", err)
	}
	s.flows = next

	snapshot := clone(next)
	subs := make([]func([]models.AutomationFlow), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range subs {
		fn(clone(snapshot))
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.flows {
		if s.flows[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(flows []models.AutomationFlow) []models.AutomationFlow {
	return append([]models.AutomationFlow{}, flows...)
}
