package ws

import (
	"context"
	"errors"
	"log/slog"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/service"
)

// Dispatcher routes decoded client messages to the game services and sends
// the direct replies. Broadcasts to both players are sent by the services.
type Dispatcher struct {
	matchmaking *service.MatchmakingService
	rounds      *service.RoundService
	disconnect  *service.DisconnectService
	notifier    service.Notifier
	// trustClientUserID accepts user_id from join_queue when no token is in
	// use. Only safe when authentication is disabled.
	trustClientUserID bool
	log               *slog.Logger
}

type DispatcherConfig struct {
	Matchmaking       *service.MatchmakingService
	Rounds            *service.RoundService
	Disconnect        *service.DisconnectService
	Notifier          service.Notifier
	TrustClientUserID bool
	Logger            *slog.Logger
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Dispatcher{
		matchmaking:       cfg.Matchmaking,
		rounds:            cfg.Rounds,
		disconnect:        cfg.Disconnect,
		notifier:          cfg.Notifier,
		trustClientUserID: cfg.TrustClientUserID,
		log:               cfg.Logger,
	}
}

func (d *Dispatcher) Handle(ctx context.Context, c *Client, raw []byte) {
	msg, err := Decode(raw)
	if err != nil {
		d.reply(ctx, c, domain.MsgError, domain.ErrorPayload{Message: err.Error()})
		return
	}

	switch m := msg.(type) {
	case JoinQueue:
		d.joinQueue(ctx, c, m)
	case SubmitWord:
		if err := d.rounds.SubmitWord(ctx, c.Handle, m.SubmitWordPayload); err != nil {
			d.replyError(ctx, c, domain.MsgSubmitWord, err)
		}
	case FinishRound:
		d.finishRound(ctx, c, m)
	}
}

func (d *Dispatcher) joinQueue(ctx context.Context, c *Client, m JoinQueue) {
	userID := c.UserID
	if userID == "" && d.trustClientUserID {
		userID = m.UserID
	}

	res, err := d.matchmaking.Join(ctx, service.JoinRequest{
		GameMode:         m.GameMode,
		ConnectionHandle: c.Handle,
		DisplayName:      m.DisplayName,
		UserID:           userID,
		AvatarRef:        m.AvatarRef,
	})
	if err != nil {
		d.replyError(ctx, c, domain.MsgJoinQueue, err)
		return
	}
	if !res.Matched() {
		d.reply(ctx, c, domain.MsgWaiting, domain.EmptyPayload{})
	}
}

func (d *Dispatcher) finishRound(ctx context.Context, c *Client, m FinishRound) {
	out, err := d.rounds.FinishRound(ctx, c.Handle, m.FinishRoundPayload)
	if err != nil {
		d.replyError(ctx, c, domain.MsgFinishRound, err)
		return
	}
	switch out {
	case service.FinishWaitingForOpponent:
		d.reply(ctx, c, domain.MsgWaitingForOpponent, domain.EmptyPayload{})
	case service.FinishAlreadyFinished:
		d.reply(ctx, c, domain.MsgAlreadyFinished, domain.EmptyPayload{})
	}
}

// Disconnected runs the disconnect cleanup for a closed connection.
func (d *Dispatcher) Disconnected(ctx context.Context, c *Client) {
	d.disconnect.HandleDisconnect(ctx, c.Handle)
}

func (d *Dispatcher) reply(ctx context.Context, c *Client, msgType string, payload any) {
	if err := d.notifier.Send(ctx, c.Handle, msgType, payload); err != nil {
		d.log.Debug("reply failed", "connection", c.Handle, "type", msgType, "error", err)
	}
}

func (d *Dispatcher) replyError(ctx context.Context, c *Client, op string, err error) {
	msg := "internal error"
	switch {
	case errors.Is(err, service.ErrValidation):
		msg = err.Error()
	case errors.Is(err, service.ErrNotFound):
		msg = "game not found"
	case errors.Is(err, service.ErrSessionClosed):
		msg = "game is not active"
	default:
		d.log.Error("message failed", "connection", c.Handle, "op", op, "error", err)
	}
	d.reply(ctx, c, domain.MsgError, domain.ErrorPayload{Message: msg})
}
