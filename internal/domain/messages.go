package domain

// Message names exchanged over the game socket.
const (
	// client -> server
	MsgJoinQueue   = "join_queue"
	MsgSubmitWord  = "submit_word"
	MsgFinishRound = "finish_round"

	// server -> client
	MsgWaiting            = "waiting"
	MsgGameStart          = "game_start"
	MsgOpponentSubmitWord = "opponent_submit_word"
	MsgWaitingForOpponent = "waiting_for_opponent"
	MsgAlreadyFinished    = "already_finished"
	MsgNextRound          = "next_round"
	MsgGameOver           = "game_over"
	MsgOpponentForfeit    = "opponent_forfeit"
	MsgError              = "error"
)

// ForfeitMessage is the text sent to the player left in a session.
const ForfeitMessage = "Your opponent has disconnected"

// client -> server

type JoinQueuePayload struct {
	GameMode    string `json:"game_mode"`
	DisplayName string `json:"display_name"`
	UserID      string `json:"user_id,omitempty"`
	AvatarRef   string `json:"avatar_ref,omitempty"`
}

type SubmitWordPayload struct {
	OpponentConnectionHandle string `json:"opponent_connection_handle"`
	AnsweredWord             string `json:"answered_word"`
	PointValue               int    `json:"point_value"`
	// GameID is optional; when present the answer is scored server-side.
	GameID string `json:"game_id,omitempty"`
}

type FinishRoundPayload struct {
	GameID      string       `json:"game_id"`
	Submissions []Submission `json:"submissions"`
	// RoundNumber is optional; when set, a finish for any other round is
	// answered already_finished and not recorded.
	RoundNumber int `json:"round_number,omitempty"`
}

// server -> client

type EmptyPayload struct{}

type GameStartPayload struct {
	GameID         string   `json:"game_id"`
	StartTimestamp int64    `json:"start_timestamp"`
	ContentItem    Word     `json:"content_item"`
	Opponent       Opponent `json:"opponent"`
}

type OpponentSubmitWordPayload struct {
	PointValue int `json:"point_value"`
}

type NextRoundPayload struct {
	RoundNumber    int   `json:"round_number"`
	ContentItem    Word  `json:"content_item"`
	StartTimestamp int64 `json:"start_timestamp"`
}

type GameOverPayload struct {
	YourRecord     GameRecord `json:"your_record"`
	OpponentRecord GameRecord `json:"opponent_record"`
}

type OpponentForfeitPayload struct {
	Message string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
