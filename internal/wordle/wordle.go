// internal/wordle/wordle.go
//
// Shared vocabulary for the game rules.
// Defines:
//   - Tag: per-letter evaluation of a guess (absent/present/correct).
//   - Evaluation: the ordered five-tag result of one guess.
//   - Evaluate: ground-truth comparison of a guess against a known target.
//   - ParseEvaluation/String: the compact g/y/b form used by the CLI and API.
//
// Evaluate implements the standard two-pass scoring rule so repeated
// letters behave the way the real game behaves: exact matches claim their
// letters first, then leftover target letters are handed out as "present"
// left to right, and anything beyond that is "absent".
package wordle

import (
	"errors"
	"strings"
)

// WordLen is the fixed word length. Everything in this module assumes it.
const WordLen = 5

// Tag is the evaluation of a single letter in a guess.
// The integer values double as the wire encoding (0=absent, 1=present,
// 2=correct), so keep them stable.
type Tag uint8

const (
	TagAbsent  Tag = iota // letter does not occur in the target at all
	TagPresent            // letter occurs, but not at this position
	TagCorrect            // letter occurs at exactly this position
)

// Evaluation is the per-position result of one guess.
type Evaluation [WordLen]Tag

var (
	ErrWordLength    = errors.New("wordle: word must be exactly 5 letters")
	ErrWordChar      = errors.New("wordle: word must be lowercase a-z")
	ErrBadEvaluation = errors.New("wordle: evaluation must be 5 letters of g/y/b")
)

// tagLetters maps a Tag to its compact letter form, indexed by Tag value.
const tagLetters = "byg"

func (t Tag) String() string {
	switch t {
	case TagCorrect:
		return "correct"
	case TagPresent:
		return "present"
	default:
		return "absent"
	}
}

// String renders the evaluation in the compact form, e.g. "gybbg"
// (g=correct, y=present, b=absent).
func (e Evaluation) String() string {
	var b [WordLen]byte
	for i, t := range e {
		b[i] = tagLetters[t]
	}
	return string(b[:])
}

// Correct reports whether every position is TagCorrect.
func (e Evaluation) Correct() bool {
	for _, t := range e {
		if t != TagCorrect {
			return false
		}
	}
	return true
}

// Marks returns the evaluation as wire integers (0=absent, 1=present,
// 2=correct), the encoding the HTTP API responds with.
func (e Evaluation) Marks() []int {
	out := make([]int, WordLen)
	for i, t := range e {
		out[i] = int(t)
	}
	return out
}

// ParseEvaluation parses the compact g/y/b form. It accepts upper or lower
// case and returns ErrBadEvaluation for anything else.
func ParseEvaluation(s string) (Evaluation, error) {
	var ev Evaluation
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != WordLen {
		return ev, ErrBadEvaluation
	}
	for i := 0; i < WordLen; i++ {
		switch s[i] {
		case 'g':
			ev[i] = TagCorrect
		case 'y':
			ev[i] = TagPresent
		case 'b':
			ev[i] = TagAbsent
		default:
			return ev, ErrBadEvaluation
		}
	}
	return ev, nil
}

// Normalize lowercases and trims a raw word or evaluation string.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CheckWord validates the shape of a word: exactly five lowercase ASCII
// letters. Dictionary membership is a separate concern.
func CheckWord(w string) error {
	if len(w) != WordLen {
		return ErrWordLength
	}
	for i := 0; i < WordLen; i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return ErrWordChar
		}
	}
	return nil
}

// Evaluate scores guess against a known target using the two-pass rule.
// Both words must already be valid per CheckWord.
//
// Pass 1: mark exact matches and count the remaining target letters.
// Pass 2: for each non-exact guess letter, consume a remaining count as
// "present" if one is left, otherwise mark "absent".
func Evaluate(guess, target string) Evaluation {
	var ev Evaluation
	var counts [26]int

	for i := 0; i < WordLen; i++ {
		if guess[i] == target[i] {
			ev[i] = TagCorrect
		} else {
			counts[target[i]-'a']++
		}
	}

	for i := 0; i < WordLen; i++ {
		if ev[i] == TagCorrect {
			continue
		}
		if c := guess[i] - 'a'; counts[c] > 0 {
			ev[i] = TagPresent
			counts[c]--
		}
	}
	return ev
}
