package quiz

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/vytor/flashdeck/internal/deck"
	"github.com/vytor/flashdeck/internal/errors"
)

// Mode selects how answers are given.
type Mode int

const (
	// ModeReveal shows the answer on request and lets the user grade themselves.
	ModeReveal Mode = iota
	// ModeTyped grades a typed answer automatically.
	ModeTyped
)

func (m Mode) String() string {
	switch m {
	case ModeReveal:
		return "reveal"
	case ModeTyped:
		return "typed"
	default:
		return "unknown"
	}
}

// ParseMode accepts "reveal" or "typed", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reveal":
		return ModeReveal, nil
	case "typed", "type":
		return ModeTyped, nil
	default:
		return 0, fmt.Errorf("unknown quiz mode %q, expected reveal or typed", s)
	}
}

// State is the position of a Session in its review loop.
type State int

const (
	AwaitingQuestion State = iota
	QuestionShown
	AnswerShown
	Complete
)

func (s State) String() string {
	switch s {
	case AwaitingQuestion:
		return "awaiting_question"
	case QuestionShown:
		return "question_shown"
	case AnswerShown:
		return "answer_shown"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Result reports the outcome of a typed answer.
type Result struct {
	Question string `json:"question"`
	Correct  bool   `json:"correct"`
	Expected string `json:"expected"`
}

// Session runs one review pass over a snapshot of a deck. A card leaves the
// pool only when answered correctly, so a session cannot complete while any
// card is still unknown; there is no retry cap.
//
// A Session is not safe for concurrent use.
type Session struct {
	deckName  string
	answers   map[string]string
	questions []string
	mode      Mode
	rng       *rand.Rand

	remaining []string
	current   string
	drawn     bool
	revealed  bool
	score     int
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used to draw cards.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithSeed draws cards from a deterministic source.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Start begins a session over d in the given mode.
func Start(d *deck.Deck, mode Mode, opts ...Option) (*Session, error) {
	if d == nil || d.Len() == 0 {
		return nil, fmt.Errorf("start session: %w", errors.ErrEmptyDeck)
	}
	if mode != ModeReveal && mode != ModeTyped {
		return nil, fmt.Errorf("start session: unknown mode %d", mode)
	}

	cards := d.Cards()
	s := &Session{
		deckName:  d.Name(),
		answers:   make(map[string]string, len(cards)),
		questions: make([]string, len(cards)),
		mode:      mode,
	}
	for i, c := range cards {
		s.answers[c.Question] = c.Answer
		s.questions[i] = c.Question
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.Restart()
	return s, nil
}

// Restart puts every card back in the pool and clears the score. The
// snapshot and mode are kept.
func (s *Session) Restart() {
	s.remaining = slices.Clone(s.questions)
	s.current = ""
	s.drawn = false
	s.revealed = false
	s.score = 0
}

func (s *Session) DeckName() string { return s.deckName }
func (s *Session) Mode() Mode       { return s.mode }
func (s *Session) Score() int       { return s.score }
func (s *Session) Total() int       { return len(s.questions) }

// Progress returns how many cards have been answered correctly and the
// fixed total.
func (s *Session) Progress() (completed, total int) {
	total = len(s.questions)
	return total - len(s.remaining), total
}

func (s *Session) State() State {
	switch {
	case len(s.remaining) == 0:
		return Complete
	case !s.drawn:
		return AwaitingQuestion
	case s.revealed:
		return AnswerShown
	default:
		return QuestionShown
	}
}

// Question returns the card currently asked, drawing one if none is shown.
// It returns false once the session is complete.
func (s *Session) Question() (string, bool) {
	s.draw()
	if !s.drawn {
		return "", false
	}
	return s.current, true
}

// Answer returns the current card's answer. It is only available once the
// answer has been revealed.
func (s *Session) Answer() (string, error) {
	if err := s.expect("answer", ModeReveal, AnswerShown); err != nil {
		return "", err
	}
	return s.answers[s.current], nil
}

// SubmitAnswer grades text against the current card, ignoring case and
// surrounding whitespace. A wrong answer keeps the card in the pool.
func (s *Session) SubmitAnswer(text string) (Result, error) {
	s.draw()
	if err := s.expect("submit answer", ModeTyped, QuestionShown); err != nil {
		return Result{}, err
	}

	expected := s.answers[s.current]
	res := Result{
		Question: s.current,
		Correct:  Matches(text, expected),
		Expected: expected,
	}
	if res.Correct {
		s.retire()
	}
	s.next()
	return res, nil
}

// Reveal shows the answer of the current card.
func (s *Session) Reveal() error {
	s.draw()
	if err := s.expect("reveal", ModeReveal, QuestionShown); err != nil {
		return err
	}
	s.revealed = true
	return nil
}

// MarkKnown records a revealed card as known and removes it from the pool.
func (s *Session) MarkKnown() error {
	if err := s.expect("mark known", ModeReveal, AnswerShown); err != nil {
		return err
	}
	s.retire()
	s.next()
	return nil
}

// MarkUnknown keeps a revealed card in the pool; it may be drawn again
// straight away.
func (s *Session) MarkUnknown() error {
	if err := s.expect("mark unknown", ModeReveal, AnswerShown); err != nil {
		return err
	}
	s.next()
	return nil
}

func (s *Session) expect(op string, mode Mode, state State) error {
	if s.mode != mode {
		return fmt.Errorf("%s: not available in %s mode: %w", op, s.mode, errors.ErrInvalidState)
	}
	if cur := s.State(); cur != state {
		return fmt.Errorf("%s: session is %s: %w", op, cur, errors.ErrInvalidState)
	}
	return nil
}

// draw picks a card uniformly from the pool when none is current.
func (s *Session) draw() {
	if s.drawn || len(s.remaining) == 0 {
		return
	}
	s.current = s.remaining[s.rng.IntN(len(s.remaining))]
	s.drawn = true
	s.revealed = false
}

func (s *Session) retire() {
	if i := slices.Index(s.remaining, s.current); i >= 0 {
		s.remaining = slices.Delete(s.remaining, i, i+1)
	}
	s.score++
}

// next clears the current card and draws the following one.
func (s *Session) next() {
	s.current = ""
	s.drawn = false
	s.revealed = false
	s.draw()
}

// Matches compares a given answer with the expected one, ignoring case and
// surrounding whitespace.
func Matches(given, expected string) bool {
	return normalizeAnswer(given) == normalizeAnswer(expected)
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
