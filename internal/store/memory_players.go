package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"

	"synonym_arena/internal/domain"
)

// MemoryPlayers keeps ratings, match history and solo games in memory when
// no database is configured.
type MemoryPlayers struct {
	mu            sync.Mutex
	clock         clockwork.Clock
	defaultRating int
	players       map[string]*domain.Player
	matches       []domain.MatchRecord
	soloGames     []domain.SoloGame
}

func NewMemoryPlayers(clock clockwork.Clock, defaultRating int) *MemoryPlayers {
	return &MemoryPlayers{
		clock:         clock,
		defaultRating: defaultRating,
		players:       make(map[string]*domain.Player),
	}
}

func (m *MemoryPlayers) GetPlayer(_ context.Context, userID string) (*domain.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[userID]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", userID, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryPlayers) UpsertPlayer(_ context.Context, p *domain.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now().UTC()
	cur := m.playerLocked(p.UserID, p.DisplayName)
	if p.DisplayName != "" {
		cur.DisplayName = p.DisplayName
	}
	if p.AvatarRef != "" {
		cur.AvatarRef = p.AvatarRef
	}
	cur.UpdatedAt = now
	*p = *cur
	return nil
}

func (m *MemoryPlayers) SaveMatch(_ context.Context, rec *domain.MatchRecord, rate domain.RatingFunc) (*domain.RatingUpdate, *domain.RatingUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ua, ub *domain.RatingUpdate
	if rate != nil {
		if rec.PlayerAID == nil || rec.PlayerBID == nil {
			return nil, nil, fmt.Errorf("rated match %s needs both user ids", rec.GameID)
		}
		pa := m.playerLocked(*rec.PlayerAID, rec.PlayerAName)
		pb := m.playerLocked(*rec.PlayerBID, rec.PlayerBName)
		a, b := rate(pa.Rating, pb.Rating)
		pa.Rating, pb.Rating = a.NewRating, b.NewRating
		ua, ub = &a, &b
	}

	rec.ID = int64(len(m.matches) + 1)
	rec.CreatedAt = m.clock.Now().UTC()
	m.matches = append(m.matches, *rec)
	return ua, ub, nil
}

func (m *MemoryPlayers) SaveSoloGame(_ context.Context, g *domain.SoloGame, rate domain.SoloRatingFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.playerLocked(g.UserID, "")
	upd := rate(p.SoloRating)
	g.RatingBefore = p.SoloRating
	g.RatingAfter = upd.NewRating
	g.RatingChange = upd.Change
	p.SoloRating = upd.NewRating

	g.ID = int64(len(m.soloGames) + 1)
	g.CreatedAt = m.clock.Now().UTC()
	m.soloGames = append(m.soloGames, *g)
	return nil
}

// Matches returns a copy of the stored match history.
func (m *MemoryPlayers) Matches() []domain.MatchRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.MatchRecord(nil), m.matches...)
}

func (m *MemoryPlayers) playerLocked(userID, name string) *domain.Player {
	p, ok := m.players[userID]
	if !ok {
		now := m.clock.Now().UTC()
		p = &domain.Player{
			UserID:      userID,
			DisplayName: name,
			Rating:      m.defaultRating,
			SoloRating:  m.defaultRating,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		m.players[userID] = p
	}
	return p
}

// RecentByPlayer returns the latest matches a player took part in, newest first.
func (m *MemoryPlayers) RecentByPlayer(_ context.Context, userID string, limit int) ([]domain.MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res []domain.MatchRecord
	for i := len(m.matches) - 1; i >= 0 && len(res) < limit; i-- {
		rec := m.matches[i]
		if (rec.PlayerAID != nil && *rec.PlayerAID == userID) || (rec.PlayerBID != nil && *rec.PlayerBID == userID) {
			res = append(res, rec)
		}
	}
	return res, nil
}
