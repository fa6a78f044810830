// internal/solver/knowledge.go
//
// Accumulated knowledge about the hidden word.
// Responsibilities:
//   - Fold per-guess evaluations into per-position constraints.
//   - Answer "is the word fully known" and reconstruct it.
//   - Build the per-position matcher the ranking step filters with.
//
// The representation mirrors the three kinds of feedback:
//   - confirmed: the letter pinned to each position, if any.
//   - present:   letters known to be in the word, with the positions they
//     are known NOT to occupy (a "present" tile rules out one position,
//     not the others).
//   - absent:    letters known to occur nowhere.
//
// Exclusion-based position matching is deliberate: inclusion-based matching
// would over-constrain, because a yellow tile says nothing about the
// positions that were never tested.
package solver

import (
	"sort"
	"strings"

	"github.com/ka7eh/wordle-solver/internal/wordle"
)

// padByte fills unknown positions when the confirmed pattern is compared
// against candidates. It must never appear in a real word.
const padByte = '0'

// posSet is a bitmask over the five letter positions.
type posSet uint8

func (p posSet) has(i int) bool { return p&(1<<i) != 0 }
func (p *posSet) add(i int)    { *p |= 1 << i }
func (p *posSet) remove(i int) { *p &^= 1 << i }
func (p posSet) positions() []int {
	var out []int
	for i := 0; i < wordle.WordLen; i++ {
		if p.has(i) {
			out = append(out, i)
		}
	}
	return out
}

// Knowledge is the constraint state of one solve attempt. The zero value
// is not usable; construct with NewKnowledge. Not safe for concurrent use:
// a Knowledge is owned by exactly one session.
type Knowledge struct {
	confirmed [wordle.WordLen]byte // 0 = unknown
	present   map[byte]posSet      // letter -> positions it does NOT occupy
	absent    [26]bool             // letter occurs nowhere
}

// NewKnowledge returns an empty knowledge base: every position unknown,
// every letter possible everywhere.
func NewKnowledge() *Knowledge {
	return &Knowledge{present: make(map[byte]posSet)}
}

// Record folds one evaluated guess into the knowledge base. The whole
// evaluation is applied before Record returns, so queries always see a
// consistent per-guess state.
//
// Guards:
//   - A confirmed position is never overwritten, even by contradictory
//     later feedback.
//   - A position is never excluded for the letter confirmed at it.
//
// An absent tag always lands in the absent set. With repeated guess
// letters and a single target letter the real game marks the extra copy
// absent, which makes absent overlap present for that letter; the matcher
// still behaves (the open positions just exclude it), and the confirmed
// position keeps working because confirmed wins outright.
func (k *Knowledge) Record(guess string, ev wordle.Evaluation) {
	for i := 0; i < wordle.WordLen; i++ {
		c := guess[i]
		switch ev[i] {
		case wordle.TagCorrect:
			if k.confirmed[i] == 0 {
				k.confirmed[i] = c
			}
			if p, ok := k.present[c]; ok && p.has(i) {
				p.remove(i)
				k.present[c] = p
			}
		case wordle.TagPresent:
			if k.confirmed[i] == c {
				continue
			}
			p := k.present[c]
			p.add(i)
			k.present[c] = p
		case wordle.TagAbsent:
			k.absent[c-'a'] = true
		}
	}
}

// Solved reports whether every position is confirmed.
func (k *Knowledge) Solved() bool {
	for _, c := range k.confirmed {
		if c == 0 {
			return false
		}
	}
	return true
}

// Word returns the confirmed letters with '_' at unknown positions,
// e.g. "a__le". When Solved, this is the answer.
func (k *Knowledge) Word() string {
	var b [wordle.WordLen]byte
	for i, c := range k.confirmed {
		if c == 0 {
			b[i] = '_'
		} else {
			b[i] = c
		}
	}
	return string(b[:])
}

// padded is the confirmed pattern with padByte at unknown positions; it is
// the reference string candidate weights are measured against.
func (k *Knowledge) padded() string {
	var b [wordle.WordLen]byte
	for i, c := range k.confirmed {
		if c == 0 {
			b[i] = padByte
		} else {
			b[i] = c
		}
	}
	return string(b[:])
}

// PresentLetters returns the letters known to be in the word, sorted, each
// with the positions it is known not to occupy. For the API and debug logs.
func (k *Knowledge) PresentLetters() map[string][]int {
	out := make(map[string][]int, len(k.present))
	for c, p := range k.present {
		out[string(c)] = p.positions()
	}
	return out
}

// AbsentLetters returns the letters known absent, in alphabetical order.
func (k *Knowledge) AbsentLetters() string {
	var sb strings.Builder
	for i, gone := range k.absent {
		if gone {
			sb.WriteByte(byte('a' + i))
		}
	}
	return sb.String()
}

// Matcher builds the per-position predicate for the current state:
//   - a confirmed position matches only its letter;
//   - an open position matches any letter not absent and not excluded there.
//
// A position whose allowed set comes out empty is legal and matches
// nothing; contradictory feedback filters every candidate out rather than
// crashing.
func (k *Knowledge) Matcher() Matcher {
	var m Matcher
	for i := 0; i < wordle.WordLen; i++ {
		if c := k.confirmed[i]; c != 0 {
			m.allowed[i] = 1 << (c - 'a')
			continue
		}
		set := letterSet(1<<26) - 1 // all 26 letters
		for j, gone := range k.absent {
			if gone {
				set &^= 1 << j
			}
		}
		for c, p := range k.present {
			if p.has(i) {
				set &^= 1 << (c - 'a')
			}
		}
		m.allowed[i] = set
	}
	return m
}

// letterSet is a bitmask over the alphabet.
type letterSet uint32

// Matcher is a compiled per-position predicate over five-letter words.
type Matcher struct {
	allowed [wordle.WordLen]letterSet
}

// Matches reports whether w satisfies the predicate at every position.
// w must be a valid five-letter lowercase word.
func (m Matcher) Matches(w string) bool {
	for i := 0; i < wordle.WordLen; i++ {
		if m.allowed[i]&(1<<(w[i]-'a')) == 0 {
			return false
		}
	}
	return true
}

// Pattern renders the predicate in a regex-like form for debug logs,
// e.g. "a[^bd].[^bdn][^bd]" ('.' = anything, "[]" = nothing matches).
func (m Matcher) Pattern() string {
	var sb strings.Builder
	for i := 0; i < wordle.WordLen; i++ {
		set := m.allowed[i]
		var in, out []byte
		for c := byte('a'); c <= 'z'; c++ {
			if set&(1<<(c-'a')) != 0 {
				in = append(in, c)
			} else {
				out = append(out, c)
			}
		}
		switch {
		case len(in) == 1:
			sb.WriteByte(in[0])
		case len(out) == 0:
			sb.WriteByte('.')
		case len(in) == 0:
			sb.WriteString("[]")
		default:
			sb.WriteString("[^")
			sb.Write(out)
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

// sortedPresent returns the present letters in stable order; used where a
// deterministic iteration matters (logs, snapshots).
func (k *Knowledge) sortedPresent() []byte {
	out := make([]byte, 0, len(k.present))
	for c := range k.present {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
