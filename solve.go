// solve.go
//
// The solve subcommand.
// Target selection:
//   - positional word: ground-truth mode against that word;
//   - --random: ground-truth mode against a random dictionary word;
//   - --daily:  ground-truth mode against today's deterministic word;
//   - none of the above: assist mode, the user relays tiles from an
//     external game (g/y/b per letter, "!" when the game rejects a word).
//
// --tries repeats the ground-truth attempt concurrently and reports
// aggregate statistics. --interactive lets the user type their own guesses
// instead of always playing the suggestion. --db appends finished attempts
// to a SQLite log.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ka7eh/wordle-solver/internal/history"
	"github.com/ka7eh/wordle-solver/internal/solver"
	"github.com/ka7eh/wordle-solver/internal/trials"
	"github.com/ka7eh/wordle-solver/internal/wordle"
	"github.com/ka7eh/wordle-solver/internal/words"
)

func newSolveCmd() *cobra.Command {
	var (
		random      bool
		daily       bool
		interactive bool
		tries       int
		workers     int
		seed        int64
		dbPath      string
	)

	cmd := &cobra.Command{
		Use:   "solve [word]",
		Short: "Run the solver against a known word, or assist an external game",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, err := words.Resolve(flagWords)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			rng := rand.New(rand.NewSource(seed))

			target := ""
			switch {
			case len(args) == 1:
				target = wordle.Normalize(args[0])
				if err := wordle.CheckWord(target); err != nil {
					return err
				}
				if !dict.Contains(target) {
					return fmt.Errorf("target %q is not in the dictionary", target)
				}
			case random:
				target = dict.Random(rng)
			case daily:
				target = dict.Daily(time.Now(), getEnv("DAILY_SALT", "local_dev_salt"))
			}

			var rec history.Recorder = history.Discard{}
			if dbPath != "" {
				db, err := history.Open(dbPath)
				if err != nil {
					return err
				}
				defer db.Close()
				rec = db
			}

			ctx := cmd.Context()
			if target != "" && tries > 1 {
				return runTrials(ctx, cmd, dict, target, tries, workers, seed, rec)
			}
			return runSingle(ctx, cmd, dict, target, seed, interactive, rec)
		},
	}

	cmd.Flags().BoolVar(&random, "random", false, "pick a random target word")
	cmd.Flags().BoolVar(&daily, "daily", false, "use today's deterministic target word")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "type guesses yourself instead of playing the suggestion")
	cmd.Flags().IntVar(&tries, "tries", 1, "repeat the attempt N times and report statistics")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent attempts for --tries")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: time-based)")
	cmd.Flags().StringVar(&dbPath, "db", "", "record finished attempts to this SQLite file")
	return cmd
}

// runSingle plays one session to the end and reports the outcome.
func runSingle(ctx context.Context, cmd *cobra.Command, dict words.Dictionary,
	target string, seed int64, interactive bool, rec history.Recorder) error {

	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())

	sess := solver.NewSession(dict.Words(), solver.WithRand(rand.New(rand.NewSource(seed))))

	var fb solver.Feedback
	mode := "assist"
	if target != "" {
		mode = "practice"
		fb = solver.GroundTruth{Target: target}
		log.Debug().Str("target", target).Msg("ground-truth mode")
	} else {
		fb = relayFeedback(in, out)
		fmt.Fprintln(out, "assist mode: play the suggestions in your game and type the tiles back")
	}

	var src solver.GuessSource
	if interactive {
		src = promptGuess(dict, in, out)
	}

	started := time.Now()
	outcome, err := solver.Play(ctx, sess, fb, src)
	if err != nil && !errors.Is(err, solver.ErrNoCandidates) {
		return err
	}

	attempt := history.Attempt{
		Mode:       mode,
		Target:     target,
		Outcome:    sess.Phase().String(),
		Guesses:    outcome.Guesses,
		Rejected:   outcome.Rejected,
		DurationMS: time.Since(started).Milliseconds(),
		StartedAt:  started.UTC(),
	}
	if rerr := rec.RecordAttempt(ctx, attempt); rerr != nil {
		log.Warn().Err(rerr).Msg("record attempt")
	}

	switch {
	case errors.Is(err, solver.ErrNoCandidates):
		return fmt.Errorf("out of candidates after %d guesses (confirmed %q): %w",
			outcome.Guesses, outcome.Word, err)
	case outcome.Solved:
		fmt.Fprintf(out, "solved %q in %d guesses\n", outcome.Word, outcome.Guesses)
	default:
		fmt.Fprintf(out, "no solution found within %d guesses (confirmed %q)\n",
			sess.Limit(), outcome.Word)
	}
	return nil
}

// runTrials repeats the ground-truth attempt and prints aggregate stats.
func runTrials(ctx context.Context, cmd *cobra.Command, dict words.Dictionary,
	target string, tries, workers int, seed int64, rec history.Recorder) error {

	out := cmd.OutOrStdout()
	bar := progressbar.NewOptions(tries,
		progressbar.OptionSetDescription("solving"),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionClearOnFinish(),
	)

	report, err := trials.Run(ctx, dict.Words(), trials.Config{
		Target:  target,
		Count:   tries,
		Workers: workers,
		Seed:    seed,
		OnResult: func(res trials.Result) {
			_ = bar.Add(1)
			outcome := "exhausted"
			if res.Solved {
				outcome = "solved"
			}
			if rerr := rec.RecordAttempt(ctx, history.Attempt{
				Mode:       "trial",
				Target:     target,
				Outcome:    outcome,
				Guesses:    res.Guesses,
				DurationMS: res.Duration.Milliseconds(),
			}); rerr != nil {
				log.Warn().Err(rerr).Msg("record trial attempt")
			}
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d/%d solved (%.1f%%), avg %.2f guesses, %s total\n",
		report.Solved, report.Total, report.SolveRate()*100, report.AvgGuesses(),
		report.Elapsed.Round(time.Millisecond))
	for g := 1; g <= solver.DefaultGuessLimit; g++ {
		if n := report.Distribution[g]; n > 0 {
			fmt.Fprintf(out, "  %d guesses: %d\n", g, n)
		}
	}
	return nil
}

// relayFeedback reads per-tile evaluations from the user, who is playing
// the suggestions in an external game. "!" means the game rejected the
// word; the solver retries with another candidate.
func relayFeedback(in *bufio.Scanner, out io.Writer) solver.FeedbackFunc {
	return func(_ context.Context, guess string) (wordle.Evaluation, error) {
		fmt.Fprintf(out, "guess: %s\n", guess)
		for {
			fmt.Fprint(out, "tiles (g/y/b, ! if rejected): ")
			if !in.Scan() {
				if err := in.Err(); err != nil {
					return wordle.Evaluation{}, err
				}
				return wordle.Evaluation{}, io.EOF
			}
			line := wordle.Normalize(in.Text())
			if line == "!" {
				return wordle.Evaluation{}, solver.ErrGuessRejected
			}
			ev, err := wordle.ParseEvaluation(line)
			if err != nil {
				fmt.Fprintln(out, "  want five of g/y/b, e.g. gybbg")
				continue
			}
			return ev, nil
		}
	}
}

// promptGuess lets the user override the suggestion with their own word.
// Bad input re-prompts without touching the session.
func promptGuess(dict words.Dictionary, in *bufio.Scanner, out io.Writer) solver.GuessSource {
	return func(_ context.Context, suggestion string, ranked []solver.Candidate) (string, error) {
		for {
			fmt.Fprintf(out, "suggestion: %s (%d candidates)\n", suggestion, len(ranked))
			fmt.Fprint(out, "your guess (enter to accept): ")
			if !in.Scan() {
				if err := in.Err(); err != nil {
					return "", err
				}
				return "", io.EOF
			}
			g := wordle.Normalize(in.Text())
			if g == "" {
				return suggestion, nil
			}
			if err := wordle.CheckWord(g); err != nil {
				fmt.Fprintln(out, " ", err)
				continue
			}
			if !dict.Contains(g) {
				fmt.Fprintln(out, "  not in dictionary")
				continue
			}
			return g, nil
		}
	}
}
