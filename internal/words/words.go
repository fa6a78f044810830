// internal/words/words.go
//
// Dictionary loading for the solver.
//
// A Dictionary is an immutable ordered list of valid five-letter words plus
// a lookup set. The source is one word per line; entries with the wrong
// length or non a-z characters are dropped here so the solver core can
// assume every candidate is well formed.
//
// Resolution order for the default dictionary:
//   1. an explicit path (--words flag),
//   2. the WORDS_FILE environment variable,
//   3. the embedded default list.
package words

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"

	"github.com/ka7eh/wordle-solver/assets"
	"github.com/ka7eh/wordle-solver/internal/wordle"
)

// Dictionary is a read-only word list. The zero value is empty.
type Dictionary struct {
	list []string
	set  map[string]struct{}
}

var ErrEmpty = errors.New("words: no valid words in list")

// New builds a Dictionary from raw entries, lowercasing and dropping
// anything that is not exactly five ASCII letters.
func New(entries []string) (Dictionary, error) {
	list := make([]string, 0, len(entries))
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		w := strings.ToLower(strings.TrimSpace(e))
		if wordle.CheckWord(w) != nil {
			continue
		}
		if _, dup := set[w]; dup {
			continue
		}
		list = append(list, w)
		set[w] = struct{}{}
	}
	if len(list) == 0 {
		return Dictionary{}, ErrEmpty
	}
	return Dictionary{list: list, set: set}, nil
}

// Load reads a one-word-per-line file into a Dictionary.
func Load(path string) (Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dictionary{}, fmt.Errorf("words: open %s: %w", path, err)
	}
	defer f.Close()

	var entries []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		entries = append(entries, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return Dictionary{}, fmt.Errorf("words: read %s: %w", path, err)
	}
	d, err := New(entries)
	if err != nil {
		return Dictionary{}, fmt.Errorf("words: %s: %w", path, err)
	}
	return d, nil
}

var (
	defaultOnce sync.Once
	defaultDict Dictionary
	defaultErr  error
)

// Default returns the embedded word list, parsed once per process.
func Default() (Dictionary, error) {
	defaultOnce.Do(func() {
		raw, err := assets.DefaultWords()
		if err != nil {
			defaultErr = err
			return
		}
		defaultDict, defaultErr = New(raw)
	})
	return defaultDict, defaultErr
}

// Resolve picks the dictionary source: the given path if non-empty, else
// WORDS_FILE from the environment, else the embedded default.
func Resolve(path string) (Dictionary, error) {
	if path == "" {
		path = os.Getenv("WORDS_FILE")
	}
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Len returns the number of words.
func (d Dictionary) Len() int { return len(d.list) }

// Words returns the backing list in load order. Callers must not modify it.
func (d Dictionary) Words() []string { return d.list }

// Contains reports whether w is in the dictionary.
func (d Dictionary) Contains(w string) bool {
	_, ok := d.set[strings.ToLower(w)]
	return ok
}

// Random returns a uniformly random word using the supplied source.
func (d Dictionary) Random(rng *rand.Rand) string {
	return d.list[rng.Intn(len(d.list))]
}
