package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"synonym_arena/internal/domain"
)

type storedSession struct {
	session   domain.Session
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory. Each operation runs
// under one lock, which gives the same all-or-nothing semantics as the
// Redis scripts.
type MemorySessionStore struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	ttl      time.Duration
	sessions map[string]*storedSession
	departed map[string]time.Time
}

func NewMemorySessionStore(clock clockwork.Clock, ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		clock:    clock,
		ttl:      ttl,
		sessions: make(map[string]*storedSession),
		departed: make(map[string]time.Time),
	}
}

func (m *MemorySessionStore) Create(_ context.Context, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookupLocked(s.Meta.GameID); ok {
		return fmt.Errorf("session %s already exists", s.Meta.GameID)
	}
	m.sessions[s.Meta.GameID] = &storedSession{
		session:   cloneSession(s),
		expiresAt: m.clock.Now().Add(m.ttl),
	}
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, gameID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.lookupLocked(gameID)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", gameID, ErrNotFound)
	}
	s := cloneSession(st.session)
	return &s, nil
}

func (m *MemorySessionStore) MarkFinished(_ context.Context, gameID, handle string, round int, subs []domain.Submission) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.lookupLocked(gameID)
	if !ok {
		return 0, false, fmt.Errorf("session %s: %w", gameID, ErrNotFound)
	}
	if st.session.Meta.Status != domain.SessionActive {
		return 0, false, ErrSessionClosed
	}
	p, ok := st.session.Player(handle)
	if !ok {
		return 0, false, ErrNotPlayer
	}
	current := st.session.Meta.CurrentRound
	if p.RoundStatus == domain.RoundFinished || (round != 0 && round != current) {
		return current, false, nil
	}

	p.RoundStatus = domain.RoundFinished
	if p.Rounds == nil {
		p.Rounds = make(map[int][]domain.Submission)
	}
	p.Rounds[current] = append([]domain.Submission(nil), subs...)
	return current, true, nil
}

func (m *MemorySessionStore) IncrementFinished(_ context.Context, gameID string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.lookupLocked(gameID)
	if !ok {
		return 0, false, fmt.Errorf("session %s: %w", gameID, ErrNotFound)
	}
	meta := &st.session.Meta
	if meta.FinishedCount >= 2 {
		return meta.FinishedCount, false, nil
	}
	meta.FinishedCount++
	return meta.FinishedCount, true, nil
}

func (m *MemorySessionStore) AdvanceRound(_ context.Context, gameID string, fromRound int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.lookupLocked(gameID)
	if !ok {
		return false, fmt.Errorf("session %s: %w", gameID, ErrNotFound)
	}
	meta := &st.session.Meta
	if meta.Status != domain.SessionActive || meta.CurrentRound != fromRound || meta.FinishedCount != 2 {
		return false, nil
	}

	meta.CurrentRound = fromRound + 1
	meta.FinishedCount = 0
	for i := range st.session.Players {
		st.session.Players[i].RoundStatus = domain.RoundInProgress
	}
	return true, nil
}

func (m *MemorySessionStore) Complete(_ context.Context, gameID string, totals map[string]int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.lookupLocked(gameID)
	if !ok {
		return false, fmt.Errorf("session %s: %w", gameID, ErrNotFound)
	}
	meta := &st.session.Meta
	if meta.Status != domain.SessionActive || meta.CurrentRound != domain.RoundsPerGame || meta.FinishedCount != 2 {
		return false, nil
	}

	meta.Status = domain.SessionCompleted
	meta.CurrentRound = TerminalRound
	for i := range st.session.Players {
		p := &st.session.Players[i]
		p.Status = domain.SessionCompleted
		p.TotalScore = totals[p.ConnectionHandle]
	}
	st.expiresAt = m.clock.Now().Add(m.ttl)
	return true, nil
}

func (m *MemorySessionStore) Forfeit(_ context.Context, gameID, handle string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.lookupLocked(gameID)
	if !ok {
		return false, fmt.Errorf("session %s: %w", gameID, ErrNotFound)
	}
	if _, ok := st.session.Player(handle); !ok {
		return false, ErrNotPlayer
	}
	meta := &st.session.Meta
	if meta.Status != domain.SessionActive {
		return false, nil
	}

	meta.Status = domain.SessionCompleted
	meta.ForfeitedBy = handle
	for i := range st.session.Players {
		st.session.Players[i].Status = domain.SessionCompleted
	}
	st.expiresAt = m.clock.Now().Add(m.ttl)
	return true, nil
}

func (m *MemorySessionStore) FindActiveByConnection(_ context.Context, handle string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	for id := range m.sessions {
		st, ok := m.lookupLocked(id)
		if !ok || st.session.Meta.Status != domain.SessionActive {
			continue
		}
		if _, ok := st.session.Player(handle); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MemorySessionStore) MarkDeparted(_ context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	for h, until := range m.departed {
		if !now.Before(until) {
			delete(m.departed, h)
		}
	}
	m.departed[handle] = now.Add(m.ttl)
	return nil
}

func (m *MemorySessionStore) Departed(_ context.Context, handle string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.departed[handle]
	return ok && m.clock.Now().Before(until), nil
}

// lookupLocked drops the session when its retention window has passed.
func (m *MemorySessionStore) lookupLocked(gameID string) (*storedSession, bool) {
	st, ok := m.sessions[gameID]
	if !ok {
		return nil, false
	}
	if !m.clock.Now().Before(st.expiresAt) {
		delete(m.sessions, gameID)
		return nil, false
	}
	return st, true
}

func cloneSession(s domain.Session) domain.Session {
	out := s
	out.Meta.Words = append([]domain.Word(nil), s.Meta.Words...)
	for i, p := range s.Players {
		if p.Rounds == nil {
			continue
		}
		rounds := make(map[int][]domain.Submission, len(p.Rounds))
		for r, subs := range p.Rounds {
			rounds[r] = append([]domain.Submission(nil), subs...)
		}
		out.Players[i].Rounds = rounds
	}
	return out
}
