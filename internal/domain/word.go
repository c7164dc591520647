package domain

// Word is one content item: a prompt word plus its accepted answers
// grouped into three strength tiers.
type Word struct {
	WordID           int64    `json:"word_id"`
	Word             string   `json:"word"`
	StrongestMatches []string `json:"strongest_matches"`
	StrongMatches    []string `json:"strong_matches"`
	WeakMatches      []string `json:"weak_matches"`
}
