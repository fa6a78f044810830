// internal/solver/session.go
//
// One solve attempt, modeled as an explicit state machine.
// Responsibilities:
//   - Track phase: guessing (with a counter), solved, exhausted.
//   - Own the attempt's Knowledge and injected random source.
//   - Expose a stepwise API (Suggest / Record / Reject) so both the CLI
//     loop and the HTTP session endpoints can drive the same machine.
//
// Transitions from Guessing(n):
//   - Record(guess, ev): fold the evaluation; if all positions are
//     confirmed -> Solved, else if n+1 hits the limit -> Exhausted,
//     else -> Guessing(n+1).
//   - Reject(guess): the collaborator refused the word. The counter does
//     not advance and the knowledge does not change; the word is banned
//     from future suggestions so the next Suggest cannot repeat it.
package solver

import (
	"errors"
	"math/rand"
	"time"

	"github.com/ka7eh/wordle-solver/internal/wordle"
)

// DefaultGuessLimit is the classic six-guess budget.
const DefaultGuessLimit = 6

// Phase is the coarse state of a session.
type Phase int

const (
	PhaseGuessing Phase = iota
	PhaseSolved
	PhaseExhausted
)

func (p Phase) String() string {
	switch p {
	case PhaseSolved:
		return "solved"
	case PhaseExhausted:
		return "exhausted"
	default:
		return "guessing"
	}
}

// ErrFinished is returned when a finished session is driven further.
var ErrFinished = errors.New("solver: session already finished")

// GuessRecord is one accepted guess with its evaluation.
type GuessRecord struct {
	Guess      string            `json:"guess"`
	Evaluation wordle.Evaluation `json:"-"`
	Tiles      string            `json:"tiles"` // compact g/y/b form
}

// Outcome summarizes a finished (or in-flight) attempt.
type Outcome struct {
	Solved   bool
	Word     string // the answer when solved, partial confirmed otherwise
	Guesses  int
	Rejected int
}

// Session drives one attempt over a shared read-only dictionary. Not safe
// for concurrent use; concurrent attempts each get their own Session.
type Session struct {
	dict     []string
	know     *Knowledge
	rng      *rand.Rand
	limit    int
	count    int
	phase    Phase
	history  []GuessRecord
	banned   map[string]struct{}
	rejected int
}

// Option configures a Session.
type Option func(*Session)

// WithRand injects the random source used for tie-breaking; pass a seeded
// source for reproducible attempts.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithLimit overrides the guess budget (tests shorten it).
func WithLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.limit = n
		}
	}
}

// NewSession starts a fresh attempt with empty knowledge. The dictionary
// slice is shared and never mutated.
func NewSession(dict []string, opts ...Option) *Session {
	s := &Session{
		dict:   dict,
		know:   NewKnowledge(),
		limit:  DefaultGuessLimit,
		banned: make(map[string]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Phase returns the current state.
func (s *Session) Phase() Phase { return s.phase }

// Count returns the number of accepted guesses so far.
func (s *Session) Count() int { return s.count }

// Limit returns the guess budget.
func (s *Session) Limit() int { return s.limit }

// Knowledge exposes the attempt's constraint state (read it, don't mutate).
func (s *Session) Knowledge() *Knowledge { return s.know }

// History returns the accepted guesses in order.
func (s *Session) History() []GuessRecord { return s.history }

// Candidates filters and ranks the dictionary against the current
// knowledge, skipping words the collaborator has rejected.
func (s *Session) Candidates() []Candidate {
	dict := s.dict
	if len(s.banned) > 0 {
		dict = make([]string, 0, len(s.dict))
		for _, w := range s.dict {
			if _, bad := s.banned[w]; !bad {
				dict = append(dict, w)
			}
		}
	}
	return FilterRank(dict, s.know)
}

// Suggest ranks the remaining candidates and picks the next guess.
// Returns ErrFinished after the session ends and ErrNoCandidates when
// filtering leaves nothing.
func (s *Session) Suggest() (string, []Candidate, error) {
	if s.phase != PhaseGuessing {
		return "", nil, ErrFinished
	}
	ranked := s.Candidates()
	guess, err := SelectGuess(s.rng, ranked)
	if err != nil {
		return "", ranked, err
	}
	return guess, ranked, nil
}

// Record applies an accepted guess and its evaluation, then transitions.
// The confirmed-position and exclusion guards live in Knowledge.Record.
func (s *Session) Record(guess string, ev wordle.Evaluation) error {
	if s.phase != PhaseGuessing {
		return ErrFinished
	}
	if err := wordle.CheckWord(guess); err != nil {
		return err
	}
	s.know.Record(guess, ev)
	s.history = append(s.history, GuessRecord{Guess: guess, Evaluation: ev, Tiles: ev.String()})
	s.count++

	switch {
	case s.know.Solved():
		s.phase = PhaseSolved
	case s.count >= s.limit:
		s.phase = PhaseExhausted
	}
	return nil
}

// Reject marks a guess the collaborator refused to accept. No counter
// advance, no knowledge mutation; the word just stops being suggested.
func (s *Session) Reject(guess string) error {
	if s.phase != PhaseGuessing {
		return ErrFinished
	}
	s.banned[guess] = struct{}{}
	s.rejected++
	return nil
}

// Rejected returns how many guesses the collaborator refused.
func (s *Session) Rejected() int { return s.rejected }

// Outcome summarizes the attempt. Exhausted attempts report the partial
// confirmed pattern; that is a normal terminal state, not an error.
func (s *Session) Outcome() Outcome {
	return Outcome{
		Solved:   s.phase == PhaseSolved,
		Word:     s.know.Word(),
		Guesses:  s.count,
		Rejected: s.rejected,
	}
}
