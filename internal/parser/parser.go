// Package parser reads markdown deck files. A file declares its deck with
// `# deck:` / `# desc:` header lines, then cards as marker-prefixed blocks
// separated by `---`:
//
//	Q: question text (may continue over following lines)
//	A: answer text
//	T: comma, separated, tags
//	D: easy|medium|hard
//	F: display frequency tag
package parser

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/emclaughlin/flashdeck/internal/cardid"
	"github.com/emclaughlin/flashdeck/internal/domain"
)

const (
	deckPrefix       = "# deck:"
	descPrefix       = "# desc:"
	questionPrefix   = "Q:"
	answerPrefix     = "A:"
	tagsPrefix       = "T:"
	difficultyPrefix = "D:"
	frequencyPrefix  = "F:"
)

type state int

const (
	seeking state = iota
	readingQuestion
	readingAnswer
	afterField
)

// ParseFile reads the deck file at path. The file name (minus extension)
// names the deck when no `# deck:` header is present.
func ParseFile(path string) (domain.Deck, []domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.Deck{}, nil, err
	}
	defer file.Close()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(file, base)
}

// Parse extracts the deck and its cards from r. defaultName is used when
// the file carries no deck header.
func Parse(r io.Reader, defaultName string) (domain.Deck, []domain.Card, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	deck := domain.Deck{Name: defaultName}
	var cards []domain.Card
	var current domain.Card
	var block []string
	currentState := seeking

	closeBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.Join(block, "\n")
		switch currentState {
		case readingQuestion:
			current.Question = content
		case readingAnswer:
			current.Answer = content
		}
		block = nil
	}

	finishCard := func() {
		closeBlock()
		if current.Question != "" {
			if current.Difficulty == "" {
				current.Difficulty = domain.DifficultyMedium
			}
			cards = append(cards, current)
		}
		current = domain.Card{}
		currentState = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, deckPrefix):
			deck.Name = strings.TrimSpace(line[len(deckPrefix):])
			continue
		case strings.HasPrefix(line, descPrefix):
			deck.Description = strings.TrimSpace(line[len(descPrefix):])
			continue
		case line == "---":
			finishCard()
			continue
		}

		switch {
		case strings.HasPrefix(line, questionPrefix):
			if currentState != seeking { // a new question always starts a new card
				finishCard()
			}
			currentState = readingQuestion
			block = append(block, markerContent(line, questionPrefix))
		case strings.HasPrefix(line, answerPrefix):
			closeBlock()
			currentState = readingAnswer
			block = append(block, markerContent(line, answerPrefix))
		case strings.HasPrefix(line, tagsPrefix):
			closeBlock()
			current.Tags = splitTags(markerContent(line, tagsPrefix))
			currentState = afterField
		case strings.HasPrefix(line, difficultyPrefix):
			closeBlock()
			current.Difficulty = domain.ParseDifficulty(strings.TrimSpace(markerContent(line, difficultyPrefix)))
			currentState = afterField
		case strings.HasPrefix(line, frequencyPrefix):
			closeBlock()
			current.Frequency = strings.TrimSpace(markerContent(line, frequencyPrefix))
			currentState = afterField
		default:
			if currentState == readingQuestion || currentState == readingAnswer {
				block = append(block, line)
			}
		}
	}
	finishCard()

	if err := scanner.Err(); err != nil {
		return domain.Deck{}, nil, err
	}

	deck.ID = Slug(deck.Name)
	for i := range cards {
		cards[i].DeckID = deck.ID
		cards[i].ID = cardid.Hash(cards[i].Question, cards[i].Answer)
	}
	deck.CardCount = len(cards)
	return deck, cards, nil
}

func markerContent(line, prefix string) string {
	content := line[len(prefix):]
	if strings.HasPrefix(content, " ") {
		content = content[1:]
	}
	return content
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Slug derives a stable deck identifier from its name: lowercase with runs
// of non-alphanumerics collapsed to single hyphens.
func Slug(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
