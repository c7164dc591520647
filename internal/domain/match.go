package domain

import "time"

type Winner string

const (
	WinnerA Winner = "player_a"
	WinnerB Winner = "player_b"
)

// MatchOutcome is consumed once by the rating adjuster.
type MatchOutcome struct {
	RatingA int
	RatingB int
	Winner  Winner
	ScoreA  int
	ScoreB  int
}

type RatingUpdate struct {
	NewRating int `json:"new_rating"`
	Change    int `json:"change"`
}

// GameRecord is a player's final record as pushed in game_over.
type GameRecord struct {
	PlayerState
	Rating *RatingUpdate `json:"rating,omitempty"`
}

// MatchRecord - запись завершённого матча
type MatchRecord struct {
	ID           int64     `db:"id" json:"id"`
	GameID       string    `db:"game_id" json:"game_id"`
	GameMode     string    `db:"game_mode" json:"game_mode"`
	PlayerAName  string    `db:"player_a_name" json:"player_a_name"`
	PlayerBName  string    `db:"player_b_name" json:"player_b_name"`
	PlayerAID    *string   `db:"player_a_user_id" json:"player_a_user_id,omitempty"`
	PlayerBID    *string   `db:"player_b_user_id" json:"player_b_user_id,omitempty"`
	ScoreA       int       `db:"score_a" json:"score_a"`
	ScoreB       int       `db:"score_b" json:"score_b"`
	WinnerUserID *string   `db:"winner_user_id" json:"winner_user_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RatingFunc derives both new ratings from the players' current ones.
type RatingFunc func(ratingA, ratingB int) (RatingUpdate, RatingUpdate)

// SoloRatingFunc derives the new single-player rating from the current one.
type SoloRatingFunc func(rating int) RatingUpdate
