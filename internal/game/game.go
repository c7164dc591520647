package game

// GameMode - режим игры
type GameMode string

const (
	ModeSynonyms  GameMode = "synonyms"
	ModeSoloSynon GameMode = "synonyms-solo"
)

// Points per answer tier.
const (
	PointsStrongest = 3
	PointsStrong    = 2
	PointsWeak      = 1
)
