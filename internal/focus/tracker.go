// Package focus tracks one active focus session per user in process memory.
package focus

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

// MaxSessionMinutes caps what a single forgotten session can credit.
const MaxSessionMinutes = 12 * 60

// Recorder credits finished focus time to today's metrics.
type Recorder interface {
	AddFocus(ctx context.Context, userID string, minutes int) error
}

// Session is an active or just-finished focus block.
type Session struct {
	UserID    string    `json:"user_id"`
	Label     string    `json:"label,omitempty"`
	StartedAt time.Time `json:"started_at"`
	// ElapsedMinutes is filled on reads and on stop.
	ElapsedMinutes int `json:"elapsed_minutes"`
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]Session
	recorder Recorder
	now      func() time.Time
}

// NewTracker constructs a Tracker that credits stopped sessions to recorder.
func NewTracker(recorder Recorder) *Tracker {
	return &Tracker{sessions: make(map[string]Session), recorder: recorder, now: time.Now}
}

// Start opens a session. A user with an open session gets domain.ErrConflict.
func (t *Tracker) Start(userID, label string) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions[userID]; ok {
		return Session{}, fmt.Errorf("%w: focus session already running", domain.ErrConflict)
	}
	s := Session{UserID: userID, Label: strings.TrimSpace(label), StartedAt: t.now().UTC()}
	t.sessions[userID] = s
	return s, nil
}

// Current returns the open session, or nil.
func (t *Tracker) Current(userID string) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[userID]
	if !ok {
		return nil
	}
	s.ElapsedMinutes = t.elapsed(s)
	return &s
}

// Stop closes the open session and credits its whole minutes to today's focus_minutes.
// Without an open session it returns domain.ErrNotFound. The session is closed even if
// crediting fails.
func (t *Tracker) Stop(ctx context.Context, userID string) (Session, error) {
	t.mu.Lock()
	s, ok := t.sessions[userID]
	if ok {
		delete(t.sessions, userID)
		s.ElapsedMinutes = t.elapsed(s)
	}
	t.mu.Unlock()

	if !ok {
		return Session{}, fmt.Errorf("%w: no focus session running", domain.ErrNotFound)
	}
	if err := t.recorder.AddFocus(ctx, userID, s.ElapsedMinutes); err != nil {
		return s, fmt.Errorf("record focus minutes: %w", err)
	}
	return s, nil
}

func (t *Tracker) elapsed(s Session) int {
	minutes := int(t.now().Sub(s.StartedAt) / time.Minute)
	if minutes < 0 {
		return 0
	}
	if minutes > MaxSessionMinutes {
		return MaxSessionMinutes
	}
	return minutes
}
