package trials

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ka7eh/wordle-solver/internal/solver"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var dict = []string{"apple", "angle", "ankle", "table", "crane", "slate"}

func TestRun(t *testing.T) {
	t.Run("aggregates all attempts", func(t *testing.T) {
		var done atomic.Int32
		rep, err := Run(context.Background(), dict, Config{
			Target:   "angle",
			Count:    20,
			Workers:  4,
			Seed:     7,
			OnResult: func(Result) { done.Add(1) },
		})
		require.NoError(t, err)
		assert.Equal(t, 20, rep.Total)
		assert.Equal(t, 20, rep.Solved, "small dictionary always solves in time")
		assert.EqualValues(t, 20, done.Load())
		assert.Positive(t, rep.AvgGuesses())
		assert.Equal(t, 1.0, rep.SolveRate())

		sum := 0
		for _, n := range rep.Distribution {
			sum += n
		}
		assert.Equal(t, rep.Solved, sum)
	})

	t.Run("reproducible with the same seed", func(t *testing.T) {
		cfg := Config{Target: "angle", Count: 10, Workers: 2, Seed: 99}
		a, err := Run(context.Background(), dict, cfg)
		require.NoError(t, err)
		b, err := Run(context.Background(), dict, cfg)
		require.NoError(t, err)
		assert.Equal(t, a.Distribution, b.Distribution)
	})

	t.Run("missing target cancels the run", func(t *testing.T) {
		_, err := Run(context.Background(), []string{"slate", "crane"}, Config{
			Target: "angle",
			Count:  8,
			Seed:   1,
		})
		assert.ErrorIs(t, err, solver.ErrNoCandidates)
	})

	t.Run("count floor of one", func(t *testing.T) {
		rep, err := Run(context.Background(), dict, Config{Target: "angle", Seed: 3})
		require.NoError(t, err)
		assert.Equal(t, 1, rep.Total)
	})
}
