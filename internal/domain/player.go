package domain

import "time"

type Player struct {
	UserID      string    `db:"user_id" json:"user_id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	AvatarRef   string    `db:"avatar_ref" json:"avatar_ref,omitempty"`
	Rating      int       `db:"rating" json:"rating"`
	SoloRating  int       `db:"solo_rating" json:"solo_rating"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type SoloRound struct {
	Word  string `json:"word"`
	Score int    `json:"score"`
}

// SoloGame - результат одиночной игры
type SoloGame struct {
	ID           int64       `db:"id" json:"id"`
	UserID       string      `db:"user_id" json:"user_id"`
	GameMode     string      `db:"game_mode" json:"game_mode"`
	Rounds       []SoloRound `db:"rounds" json:"round_info"`
	FinalScore   int         `db:"final_score" json:"final_score"`
	RatingBefore int         `db:"rating_before" json:"rating_before"`
	RatingAfter  int         `db:"rating_after" json:"rating_after"`
	RatingChange int         `db:"rating_change" json:"rating_change"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}
