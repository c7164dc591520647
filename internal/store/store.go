// Package store holds the shared state of matchmaking and live sessions.
// Every mutation is a single conditional write so that concurrent handlers
// on any instance agree on the outcome without locks.
package store

import (
	"context"
	"errors"

	"synonym_arena/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrSessionClosed = errors.New("session is not active")
	ErrNotPlayer     = errors.New("connection is not a participant")
)

// TerminalRound marks a session that ran through all of its rounds.
const TerminalRound = domain.RoundsPerGame + 1

type QueueStore interface {
	// Oldest returns the longest-waiting live entry for mode, or nil.
	Oldest(ctx context.Context, mode string) (*domain.QueueEntry, error)
	Enqueue(ctx context.Context, entry domain.QueueEntry) error
	// Claim removes entry if it is still queued. false means another
	// caller claimed it first or it left the queue.
	Claim(ctx context.Context, entry domain.QueueEntry) (bool, error)
	// RemoveByConnection drops every entry owned by handle.
	RemoveByConnection(ctx context.Context, handle string) (int, error)
}

type SessionStore interface {
	// Create writes the metadata and both player records at once.
	Create(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, gameID string) (*domain.Session, error)

	// MarkFinished flips the caller to finished for the current round and
	// stores its submissions. It returns the round it recorded, or
	// applied=false when the caller had already finished. A non-zero round
	// must equal the current round, otherwise nothing is written.
	MarkFinished(ctx context.Context, gameID, handle string, round int, subs []domain.Submission) (current int, applied bool, err error)
	// IncrementFinished adds one to the finished counter only while it is
	// below two.
	IncrementFinished(ctx context.Context, gameID string) (count int, applied bool, err error)
	// AdvanceRound moves fromRound to fromRound+1 and resets both players,
	// only if the session is active, still on fromRound and both finished.
	AdvanceRound(ctx context.Context, gameID string, fromRound int) (bool, error)
	// Complete closes a session after its last round with the final totals
	// keyed by connection handle.
	Complete(ctx context.Context, gameID string, totals map[string]int) (bool, error)
	// Forfeit closes an active session on behalf of the leaving handle.
	Forfeit(ctx context.Context, gameID, handle string) (bool, error)

	FindActiveByConnection(ctx context.Context, handle string) ([]string, error)

	// MarkDeparted records that handle's connection is gone. A session
	// created for it afterwards checks Departed and forfeits itself.
	MarkDeparted(ctx context.Context, handle string) error
	Departed(ctx context.Context, handle string) (bool, error)
}
