package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"synonym_arena/internal/domain"
)

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownType = errors.New("unknown message type")
)

// Inbound is the closed set of client messages.
type Inbound interface {
	Validate() error
	inbound()
}

type JoinQueue struct{ domain.JoinQueuePayload }

type SubmitWord struct{ domain.SubmitWordPayload }

type FinishRound struct{ domain.FinishRoundPayload }

func (JoinQueue) inbound()   {}
func (SubmitWord) inbound()  {}
func (FinishRound) inbound() {}

func (m JoinQueue) Validate() error {
	if strings.TrimSpace(m.GameMode) == "" {
		return fmt.Errorf("%w: game_mode is required", ErrMalformed)
	}
	if strings.TrimSpace(m.DisplayName) == "" {
		return fmt.Errorf("%w: display_name is required", ErrMalformed)
	}
	return nil
}

func (m SubmitWord) Validate() error {
	if m.OpponentConnectionHandle == "" && m.GameID == "" {
		return fmt.Errorf("%w: opponent_connection_handle is required", ErrMalformed)
	}
	if strings.TrimSpace(m.AnsweredWord) == "" {
		return fmt.Errorf("%w: answered_word is required", ErrMalformed)
	}
	return nil
}

func (m FinishRound) Validate() error {
	if strings.TrimSpace(m.GameID) == "" {
		return fmt.Errorf("%w: game_id is required", ErrMalformed)
	}
	if m.RoundNumber < 0 || m.RoundNumber > domain.RoundsPerGame {
		return fmt.Errorf("%w: round_number out of range", ErrMalformed)
	}
	for i, s := range m.Submissions {
		if s.PointValue < 0 {
			return fmt.Errorf("%w: submissions[%d].point_value is negative", ErrMalformed, i)
		}
	}
	return nil
}

// Decode parses one client frame into its typed message and validates it.
func Decode(raw []byte) (Inbound, error) {
	var env inboundMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var msg Inbound
	switch env.Type {
	case domain.MsgJoinQueue:
		var m JoinQueue
		if err := unmarshalPayload(env.Payload, &m.JoinQueuePayload); err != nil {
			return nil, err
		}
		msg = m
	case domain.MsgSubmitWord:
		var m SubmitWord
		if err := unmarshalPayload(env.Payload, &m.SubmitWordPayload); err != nil {
			return nil, err
		}
		msg = m
	case domain.MsgFinishRound:
		var m FinishRound
		if err := unmarshalPayload(env.Payload, &m.FinishRoundPayload); err != nil {
			return nil, err
		}
		msg = m
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

func unmarshalPayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("%w: payload is required", ErrMalformed)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
