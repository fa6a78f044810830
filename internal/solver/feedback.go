// internal/solver/feedback.go
//
// The feedback collaborator and the blocking play loop.
// Responsibilities:
//   - Feedback: whoever can evaluate a guess. Ground-truth mode compares
//     against a known target; assist mode relays tiles from an external
//     game. The loop treats both identically once an evaluation exists.
//   - Play: drive one session to a terminal phase, one guess outstanding
//     at a time, blocking on the collaborator between guesses.
//
// The collaborator owns its own timeout/cancellation policy; the loop
// only honors the caller's context.
package solver

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/ka7eh/wordle-solver/internal/wordle"
)

// ErrGuessRejected is returned by a Feedback whose external system refused
// the guess (not in its word list). The loop retries at the same guess
// count without recording anything.
var ErrGuessRejected = errors.New("solver: guess rejected by collaborator")

// Feedback evaluates one guess. Evaluate blocks until feedback is
// available or ctx is done.
type Feedback interface {
	Evaluate(ctx context.Context, guess string) (wordle.Evaluation, error)
}

// FeedbackFunc adapts a function to the Feedback interface.
type FeedbackFunc func(ctx context.Context, guess string) (wordle.Evaluation, error)

func (f FeedbackFunc) Evaluate(ctx context.Context, guess string) (wordle.Evaluation, error) {
	return f(ctx, guess)
}

// GroundTruth evaluates guesses against a known target word.
type GroundTruth struct {
	Target string
}

func (g GroundTruth) Evaluate(_ context.Context, guess string) (wordle.Evaluation, error) {
	return wordle.Evaluate(guess, g.Target), nil
}

// GuessSource lets a caller substitute its own guess for the suggestion
// (interactive mode). The returned word must be valid per wordle.CheckWord;
// re-prompting on bad input is the source's job. A nil source always plays
// the suggestion.
type GuessSource func(ctx context.Context, suggestion string, candidates []Candidate) (string, error)

// Play runs the session to a terminal phase. Each iteration suggests a
// guess, asks the collaborator to evaluate it, and records the result.
// A rejected guess is banned and retried at the same count. The returned
// Outcome is valid even when err is non-nil (partial state).
func Play(ctx context.Context, s *Session, fb Feedback, src GuessSource) (Outcome, error) {
	for s.Phase() == PhaseGuessing {
		if err := ctx.Err(); err != nil {
			return s.Outcome(), err
		}

		guess, ranked, err := s.Suggest()
		if err != nil {
			return s.Outcome(), err
		}
		if src != nil {
			guess, err = src(ctx, guess, ranked)
			if err != nil {
				return s.Outcome(), err
			}
		}

		ev, err := fb.Evaluate(ctx, guess)
		if errors.Is(err, ErrGuessRejected) {
			log.Debug().Str("guess", guess).Msg("guess rejected, retrying")
			_ = s.Reject(guess)
			continue
		}
		if err != nil {
			return s.Outcome(), err
		}
		if err := s.Record(guess, ev); err != nil {
			return s.Outcome(), err
		}

		k := s.Knowledge()
		log.Info().
			Int("guess", s.Count()).
			Str("word", guess).
			Str("tiles", ev.String()).
			Str("confirmed", k.Word()).
			Str("present", string(k.sortedPresent())).
			Str("absent", k.AbsentLetters()).
			Msg("recorded evaluation")
		log.Debug().Str("pattern", k.Matcher().Pattern()).Msg("filter pattern")
	}
	return s.Outcome(), nil
}
