package domain

// Difficulty is a display tag on a card. It does not influence scheduling.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps free-form deck text onto the closed difficulty set,
// defaulting to medium for anything unrecognised.
func ParseDifficulty(s string) Difficulty {
	switch s {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Card is a single question-answer unit. Cards are authored in deck files
// and are read-only at runtime; the ID is a content hash so re-parsing the
// same card always yields the same identity.
type Card struct {
	ID         string
	DeckID     string
	Question   string
	Answer     string
	Difficulty Difficulty
	Frequency  string
	Tags       []string
}

// Deck is a named, fixed collection of cards on one topic.
type Deck struct {
	ID          string
	Name        string
	Description string
	CardCount   int
}
