package solver

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ka7eh/wordle-solver/internal/wordle"
)

func TestFilterRank(t *testing.T) {
	dict := []string{"apple", "angle", "ankle", "table"}

	t.Run("empty knowledge keeps everything", func(t *testing.T) {
		ranked := FilterRank(dict, NewKnowledge())
		assert.Len(t, ranked, 4)
	})

	t.Run("survivors after guessing apple against angle", func(t *testing.T) {
		k := NewKnowledge()
		ev := wordle.Evaluate("apple", "angle")
		require.Equal(t, "gbbgg", ev.String())
		k.Record("apple", ev)

		ranked := FilterRank(dict, k)
		words := make([]string, len(ranked))
		for i, c := range ranked {
			words[i] = c.Word
		}
		assert.ElementsMatch(t, []string{"angle", "ankle"}, words)
		// both differ from the "a00le" pattern by two substitutions
		for _, c := range ranked {
			assert.Equal(t, 2, c.Weight, c.Word)
		}
	})

	t.Run("present letters pull weight down", func(t *testing.T) {
		k := NewKnowledge()
		// 'n' present but not at position 0
		k.Record("nymph", mustEval(t, "ybbbb"))
		ranked := FilterRank([]string{"angle", "brick"}, k)
		require.Len(t, ranked, 2)
		assert.Equal(t, "angle", ranked[0].Word, "word reusing the known letter ranks first")
		assert.Less(t, ranked[0].Weight, ranked[1].Weight)
	})

	t.Run("sorted ascending", func(t *testing.T) {
		k := NewKnowledge()
		k.Record("nymph", mustEval(t, "ybbbb"))
		ranked := FilterRank([]string{"brick", "angle", "snail"}, k)
		require.Len(t, ranked, 3)
		for i := 1; i < len(ranked); i++ {
			assert.GreaterOrEqual(t, ranked[i].Weight, ranked[i-1].Weight)
		}
		assert.Equal(t, "brick", ranked[2].Word)
	})
}

// Filtering is monotone: one more evaluation can only shrink the survivor
// set, never grow it back.
func TestFilterRankMonotone(t *testing.T) {
	dict := []string{"apple", "angle", "ankle", "table", "crane", "slate"}
	target := "angle"

	k := NewKnowledge()
	prev := FilterRank(dict, k)
	for _, guess := range []string{"slate", "crane", "apple"} {
		k.Record(guess, wordle.Evaluate(guess, target))
		next := FilterRank(dict, k)
		assert.LessOrEqual(t, len(next), len(prev))
		prevSet := make(map[string]bool, len(prev))
		for _, c := range prev {
			prevSet[c.Word] = true
		}
		for _, c := range next {
			assert.True(t, prevSet[c.Word], "%s appeared after more feedback", c.Word)
		}
		prev = next
	}
}

// Once knowledge is consistent with the target, the target never weighs
// more than a word violating a confirmed position.
func TestWeightFavorsTarget(t *testing.T) {
	k := NewKnowledge()
	k.Record("apple", wordle.Evaluate("apple", "angle"))

	wTarget := weight("angle", k)
	for _, violator := range []string{"table", "bible", "cycle"} {
		assert.LessOrEqual(t, wTarget, weight(violator, k), violator)
	}
}

func TestSelectGuess(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("empty set is an error", func(t *testing.T) {
		_, err := SelectGuess(rng, nil)
		assert.ErrorIs(t, err, ErrNoCandidates)
	})

	t.Run("single candidate", func(t *testing.T) {
		w, err := SelectGuess(rng, []Candidate{{Word: "angle", Weight: 0}})
		require.NoError(t, err)
		assert.Equal(t, "angle", w)
	})

	t.Run("uniform over the minimum-weight prefix only", func(t *testing.T) {
		ranked := []Candidate{
			{Word: "angle", Weight: 1},
			{Word: "ankle", Weight: 1},
			{Word: "table", Weight: 3},
		}
		seen := map[string]int{}
		for i := 0; i < 200; i++ {
			w, err := SelectGuess(rng, ranked)
			require.NoError(t, err)
			seen[w]++
		}
		assert.Zero(t, seen["table"], "heavier word must never be picked")
		assert.Positive(t, seen["angle"])
		assert.Positive(t, seen["ankle"])
	})
}
