package deck

import (
	"fmt"
	"strings"

	"github.com/vytor/flashdeck/internal/errors"
)

// Card is one question/answer pair.
type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Deck is a named, ordered set of cards with unique questions. A Deck is
// never modified after construction; edits build a replacement.
type Deck struct {
	name  string
	cards []Card
	index map[string]int
}

// New validates name and cards and builds a Deck. Cards go through the same
// trim, discard and de-duplicate rule as Parse.
func New(name string, cards []Card) (*Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ErrInvalidName
	}

	cards = normalize(cards)
	if len(cards) == 0 {
		return nil, fmt.Errorf("deck %q: %w", name, errors.ErrEmptyDeck)
	}

	index := make(map[string]int, len(cards))
	for i, c := range cards {
		index[c.Question] = i
	}
	return &Deck{name: name, cards: cards, index: index}, nil
}

// FromText parses raw and builds a Deck from the result.
func FromText(name, raw string) (*Deck, error) {
	return New(name, Parse(raw))
}

func (d *Deck) Name() string { return d.name }

func (d *Deck) Len() int { return len(d.cards) }

// Cards returns a copy of the cards in insertion order.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Questions returns the question keys in insertion order.
func (d *Deck) Questions() []string {
	out := make([]string, len(d.cards))
	for i, c := range d.cards {
		out[i] = c.Question
	}
	return out
}

// Answer looks up the answer stored for question.
func (d *Deck) Answer(question string) (string, bool) {
	i, ok := d.index[question]
	if !ok {
		return "", false
	}
	return d.cards[i].Answer, true
}

// Text renders the deck in the editable "question - answer" form. Parsing the
// result yields the same cards unless a question itself contains a dash.
func (d *Deck) Text() string {
	var sb strings.Builder
	for i, c := range d.cards {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(c.Question)
		sb.WriteString(" - ")
		sb.WriteString(c.Answer)
	}
	return sb.String()
}
