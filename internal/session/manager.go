package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager owns the live sessions. Sessions never share state; the manager
// only guards the registry.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	depth    int
	ttl      time.Duration
}

func NewManager(depth int, ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		depth:    depth,
		ttl:      ttl,
	}
}

func (m *Manager) Create() *Session {
	s := New(uuid.NewString(), m.depth)
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	slog.Debug("session created", "session", s.id)
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ForNote returns the sessions that currently have noteID open, ordered by id.
func (m *Manager) ForNote(noteID string) []*Session {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.Unlock()

	var out []*Session
	for _, s := range all {
		if s.NoteID() == noteID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// CloseNote clears every session editing a deleted note.
func (m *Manager) CloseNote(noteID string) int {
	sessions := m.ForNote(noteID)
	for _, s := range sessions {
		s.Close()
	}
	return len(sessions)
}

// RenameNote moves sessions from oldID to newID.
func (m *Manager) RenameNote(oldID, newID string) int {
	sessions := m.ForNote(oldID)
	for _, s := range sessions {
		s.Retarget(newID)
	}
	return len(sessions)
}

// Sweep drops sessions idle since before now-ttl.
func (m *Manager) Sweep(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.LastUsed().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		slog.Info("session sweeper disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := m.Sweep(now); removed > 0 {
				slog.Info("sessions expired", "removed", removed, "live", m.Len())
			}
		}
	}
}
