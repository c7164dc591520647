package domain

import "time"

// RoundsPerGame is the fixed length of a session.
const RoundsPerGame = 5

// SessionStatus - статус сессии
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// RoundStatus - статус игрока в текущем раунде
type RoundStatus string

const (
	RoundInProgress RoundStatus = "in_progress"
	RoundFinished   RoundStatus = "finished"
)

type Submission struct {
	Word       string `json:"word"`
	PointValue int    `json:"point_value"`
}

// SessionMeta is the shared metadata record of a game session.
type SessionMeta struct {
	GameID        string        `json:"game_id"`
	GameMode      string        `json:"game_mode"`
	CurrentRound  int           `json:"current_round"`
	Words         []Word        `json:"words"`
	FinishedCount int           `json:"finished_players_count"`
	Status        SessionStatus `json:"status"`
	ForfeitedBy   string        `json:"forfeited_by,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Word returns the content item of a 1-based round.
func (m SessionMeta) Word(round int) (Word, bool) {
	if round < 1 || round > len(m.Words) {
		return Word{}, false
	}
	return m.Words[round-1], true
}

// PlayerState is one participant's record within a session.
type PlayerState struct {
	GameID           string               `json:"game_id"`
	ConnectionHandle string               `json:"connection_handle"`
	UserID           string               `json:"user_id,omitempty"`
	DisplayName      string               `json:"display_name"`
	AvatarRef        string               `json:"avatar_ref,omitempty"`
	RoundStatus      RoundStatus          `json:"round_status"`
	Rounds           map[int][]Submission `json:"rounds"`
	TotalScore       int                  `json:"total_score"`
	Status           SessionStatus        `json:"status"`
}

// Score sums the point values of every stored round.
func (p PlayerState) Score() int {
	total := 0
	for round := 1; round <= RoundsPerGame; round++ {
		for _, s := range p.Rounds[round] {
			total += s.PointValue
		}
	}
	return total
}

type Session struct {
	Meta    SessionMeta    `json:"meta"`
	Players [2]PlayerState `json:"players"`
}

func (s *Session) Player(handle string) (*PlayerState, bool) {
	for i := range s.Players {
		if s.Players[i].ConnectionHandle == handle {
			return &s.Players[i], true
		}
	}
	return nil, false
}

// Opponent returns the participant whose handle is not the given one.
func (s *Session) Opponent(handle string) (*PlayerState, bool) {
	if _, ok := s.Player(handle); !ok {
		return nil, false
	}
	for i := range s.Players {
		if s.Players[i].ConnectionHandle != handle {
			return &s.Players[i], true
		}
	}
	return nil, false
}

// FinishedPlayers counts player records marked finished for the current round.
func (s *Session) FinishedPlayers() int {
	n := 0
	for _, p := range s.Players {
		if p.RoundStatus == RoundFinished {
			n++
		}
	}
	return n
}
