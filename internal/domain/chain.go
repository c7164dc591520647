package domain

// ChainLink is a word that commonly follows a chain prompt, with its
// frequency score.
type ChainLink struct {
	Word  string `json:"word"`
	Score int    `json:"score"`
}

// ChainWord is one prompt of the chains word game. Links are ordered by
// score, highest first.
type ChainWord struct {
	WordID     int64       `json:"word_id" db:"word_id"`
	FirstChain string      `json:"first_chain" db:"first_chain"`
	Links      []ChainLink `json:"links" db:"links"`
}
