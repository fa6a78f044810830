// internal/trials/trials.go
//
// Repeated solve attempts against one target, run concurrently.
// Responsibilities:
//   - Launch N independent sessions over a shared read-only dictionary,
//     bounded by a worker limit.
//   - Seed each attempt's random source deterministically from a base
//     seed, so a whole run is reproducible.
//   - Aggregate a Report: solved count, guess distribution, rejections,
//     wall time.
//
// Attempts share nothing mutable: each owns its knowledge and random
// source, so they are free to run in parallel.

package trials

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ka7eh/wordle-solver/internal/solver"
)

// Config describes one trial run.
type Config struct {
	Target  string
	Count   int   // number of attempts; at least 1
	Workers int   // concurrent attempts; 0 means GOMAXPROCS (errgroup default)
	Seed    int64 // base seed; attempt i uses Seed+i
	Limit   int   // guess budget per attempt; 0 means the default

	// OnResult, if set, is called after every finished attempt (from the
	// attempt's goroutine; must be safe for concurrent use). Progress bars
	// hook in here.
	OnResult func(Result)
}

// Result is the outcome of a single attempt.
type Result struct {
	Attempt  int
	Solved   bool
	Guesses  int
	Duration time.Duration
}

// Report aggregates a whole run.
type Report struct {
	Target       string        `json:"target"`
	Total        int           `json:"total"`
	Solved       int           `json:"solved"`
	Distribution map[int]int   `json:"distribution"` // guesses -> solved count
	Elapsed      time.Duration `json:"elapsed"`
}

// SolveRate is the fraction of attempts that solved the word.
func (r Report) SolveRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Solved) / float64(r.Total)
}

// AvgGuesses averages guess counts over solved attempts.
func (r Report) AvgGuesses() float64 {
	if r.Solved == 0 {
		return 0
	}
	total := 0
	for g, n := range r.Distribution {
		total += g * n
	}
	return float64(total) / float64(r.Solved)
}

// Run executes cfg.Count attempts and aggregates them. The first hard
// failure (a contradictory candidate set, typically a target missing from
// the dictionary) cancels the remaining attempts and is returned alongside
// the partial report.
func Run(ctx context.Context, dict []string, cfg Config) (Report, error) {
	if cfg.Count < 1 {
		cfg.Count = 1
	}

	report := Report{Target: cfg.Target, Distribution: make(map[int]int)}
	var mu sync.Mutex // guards report

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}

	for i := 0; i < cfg.Count; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			opts := []solver.Option{
				solver.WithRand(rand.New(rand.NewSource(cfg.Seed + int64(i)))),
			}
			if cfg.Limit > 0 {
				opts = append(opts, solver.WithLimit(cfg.Limit))
			}
			s := solver.NewSession(dict, opts...)

			began := time.Now()
			out, err := solver.Play(ctx, s, solver.GroundTruth{Target: cfg.Target}, nil)
			if err != nil {
				return err
			}
			res := Result{
				Attempt:  i,
				Solved:   out.Solved,
				Guesses:  out.Guesses,
				Duration: time.Since(began),
			}

			mu.Lock()
			report.Total++
			if res.Solved {
				report.Solved++
				report.Distribution[res.Guesses]++
			}
			mu.Unlock()

			if cfg.OnResult != nil {
				cfg.OnResult(res)
			}
			return nil
		})
	}

	err := g.Wait()
	report.Elapsed = time.Since(start)
	return report, err
}
