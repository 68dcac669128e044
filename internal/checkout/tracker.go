package checkout

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrUnknownIntent = errors.New("unknown payment intent")

type Session struct {
	IntentID  string    `json:"intentId"`
	State     State     `json:"state"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tracker keeps the checkout state of recent payment intents in memory.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func (t *Tracker) Get(intentID string) (Session, bool) {
	t.mu.RLock()
	session, ok := t.sessions[intentID]
	t.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// Open records an intent handed to the browser.
func (t *Tracker) Open(intentID string) {
	t.set(intentID, StatePaymentOpen)
}

// Complete marks the intent paid, whatever state it was in.
func (t *Tracker) Complete(intentID string) {
	t.set(intentID, StateSuccess)
}

// Apply moves a tracked intent along the flow.
func (t *Tracker) Apply(intentID string, ev Event) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	session, ok := t.sessions[intentID]
	if !ok {
		return Session{}, ErrUnknownIntent
	}
	next, err := Next(session.State, ev)
	if err != nil {
		return *session, err
	}
	session.State = next
	session.UpdatedAt = t.now()
	return *session, nil
}

func (t *Tracker) set(intentID string, state State) {
	if intentID == "" {
		return
	}
	t.mu.Lock()
	t.sessions[intentID] = &Session{IntentID: intentID, State: state, UpdatedAt: t.now()}
	t.mu.Unlock()
}

// Prune drops sessions untouched for longer than maxAge.
func (t *Tracker) Prune(maxAge time.Duration) int {
	cutoff := t.now().Add(-maxAge)
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for id, session := range t.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(t.sessions, id)
			removed++
		}
	}
	return removed
}

// Run prunes on every interval until ctx is done.
func (t *Tracker) Run(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Prune(maxAge)
		}
	}
}
