package activity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type EntryType string

const (
	TypeGeneration EntryType = "generation"
	TypeSend       EntryType = "send"
	TypeWebhook    EntryType = "webhook"
)

// DefaultLimit is how many entries the feed keeps
const DefaultLimit = 10

// HeartbeatMessage is appended on every heartbeat tick
const HeartbeatMessage = "Awaiting next automation run..."

type Entry struct {
	ID        string    `json:"id"`
	Type      EntryType `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Feed is a bounded, newest-first log of runtime events. It is safe for
// concurrent use.
type Feed struct {
	mu        sync.Mutex
	entries   []Entry
	seed      Entry
	limit     int
	now       func() time.Time
	listeners []func(Entry)
	resets    []func([]Entry)
}

func NewFeed() *Feed {
	return newFeed(time.Now)
}

func newFeed(now func() time.Time) *Feed {
	seed := Entry{
		ID:        "seed-1",
		Type:      TypeGeneration,
		Message:   "AI ramping prompt injected for onboarding sequence.",
		Timestamp: now(),
	}
	return &Feed{
		entries: []Entry{seed},
		seed:    seed,
		limit:   DefaultLimit,
		now:     now,
	}
}

// OnAppend registers fn to be called with every appended entry
func (f *Feed) OnAppend(fn func(Entry)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// OnClear registers fn to be called with the remaining entries after Clear
func (f *Feed) OnClear(fn func([]Entry)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, fn)
}

// Append adds an entry at the head, dropping the oldest beyond the limit
func (f *Feed) Append(t EntryType, message string) Entry {
	entry := Entry{
		ID:        uuid.NewString(),
		Type:      t,
		Message:   message,
		Timestamp: f.now(),
	}

	f.mu.Lock()
	next := make([]Entry, 0, f.limit)
	next = append(next, entry)
	next = append(next, f.entries...)
	if len(next) > f.limit {
		next = next[:f.limit]
	}
	f.entries = next
	listeners := append([]func(Entry){}, f.listeners...)
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(entry)
	}
	return entry
}

// Entries returns a copy of the feed, newest first
func (f *Feed) Entries() []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Entry(nil), f.entries...)
}

// Clear resets the feed to its seed entry and notifies OnClear listeners
func (f *Feed) Clear() {
	f.mu.Lock()
	f.entries = []Entry{f.seed}
	resets := append([]func([]Entry){}, f.resets...)
	f.mu.Unlock()

	for _, fn := range resets {
		fn([]Entry{f.seed})
	}
}

// RunHeartbeat appends HeartbeatMessage every interval until ctx is done. A
// non-positive interval disables the heartbeat.
func (f *Feed) RunHeartbeat(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Append(TypeGeneration, HeartbeatMessage)
		}
	}
}
