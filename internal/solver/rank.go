// internal/solver/rank.go
//
// Candidate filtering, weighing, and guess selection.
// Responsibilities:
//   - Filter the full dictionary against the knowledge matcher.
//   - Weigh each survivor: edit distance to the confirmed pattern, minus
//     one per known-present letter the word reuses. Lower is better.
//   - Pick uniformly among the minimum-weight candidates.
//
// Filtering always starts from the full dictionary, never from the
// previous step's survivors: the weights depend on the whole current
// knowledge and must be exact, not cumulative.
package solver

import (
	"errors"
	"math/rand"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrNoCandidates means filtering left nothing: the accumulated feedback
// is contradictory, or the target is not in the dictionary. Guessing
// blindly past this point has no informational basis, so it is surfaced
// to the caller instead of recovered.
var ErrNoCandidates = errors.New("solver: no candidates match accumulated feedback")

// Candidate is a dictionary word with its derived weight.
type Candidate struct {
	Word   string `json:"word"`
	Weight int    `json:"weight"`
}

// weight scores a word against the current knowledge. Base is the
// Levenshtein distance between the word and the padded confirmed pattern;
// every known-present letter occurring anywhere in the word takes one off.
func weight(word string, k *Knowledge) int {
	w := levenshtein.ComputeDistance(word, k.padded())
	for c := range k.present {
		if strings.IndexByte(word, c) >= 0 {
			w--
		}
	}
	return w
}

// FilterRank restricts dict to words matching the knowledge at every
// position, weighs the survivors, and returns them sorted ascending by
// weight. Order among equal weights is unspecified; only the minimum-weight
// prefix matters to selection.
func FilterRank(dict []string, k *Knowledge) []Candidate {
	m := k.Matcher()
	out := make([]Candidate, 0, len(dict))
	for _, w := range dict {
		if !m.Matches(w) {
			continue
		}
		out = append(out, Candidate{Word: w, Weight: weight(w, k)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weight < out[j].Weight })
	return out
}

// SelectGuess picks uniformly at random among the leading candidates that
// share the minimum weight. Random tie-breaking is part of the algorithm,
// not a shortcut; a deterministic secondary key would bias repeated runs.
// Returns ErrNoCandidates on an empty list.
func SelectGuess(rng *rand.Rand, ranked []Candidate) (string, error) {
	if len(ranked) == 0 {
		return "", ErrNoCandidates
	}
	min := ranked[0].Weight
	n := 1
	for n < len(ranked) && ranked[n].Weight == min {
		n++
	}
	return ranked[rng.Intn(n)].Word, nil
}
