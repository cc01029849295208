package spell

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
)

//go:embed words.txt
var builtinWordList string

// builtinWords parses the embedded list once per process.
var builtinWords = sync.OnceValue(func() []string {
	words, err := LoadWordList(strings.NewReader(builtinWordList))
	if err != nil {
		panic(fmt.Sprintf("spell: embedded word list: %v", err))
	}
	return words
})

// LoadWordList reads a whitespace-separated word list. Lines starting with
// '#' are comments. Words are lowercased; duplicates are kept and removed
// later when the dictionary is built.
func LoadWordList(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, f := range strings.Fields(line) {
			words = append(words, strings.ToLower(f))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("spell: read word list: %w", err)
	}
	return words, nil
}

// LoadWordFile is [LoadWordList] for a file on disk.
func LoadWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("spell: open word list %q: %w", path, err)
	}
	defer f.Close()

	words, err := LoadWordList(f)
	if err != nil {
		return nil, fmt.Errorf("spell: %q: %w", path, err)
	}
	return words, nil
}

// dictionary is an immutable set of lowercase words, additionally bucketed
// by byte length so suggestion search only visits plausible candidates.
type dictionary struct {
	set   map[string]struct{}
	byLen map[int][]string
}

func newDictionary(lists ...[]string) *dictionary {
	d := &dictionary{
		set:   make(map[string]struct{}),
		byLen: make(map[int][]string),
	}
	for _, list := range lists {
		for _, w := range list {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" {
				continue
			}
			if _, ok := d.set[w]; ok {
				continue
			}
			d.set[w] = struct{}{}
			d.byLen[len(w)] = append(d.byLen[len(w)], w)
		}
	}
	for n := range d.byLen {
		slices.Sort(d.byLen[n])
	}
	return d
}

func (d *dictionary) has(word string) bool {
	_, ok := d.set[word]
	return ok
}

func (d *dictionary) size() int {
	return len(d.set)
}

// withinLength calls fn for every word whose length differs from n by at
// most delta, shortest bucket first and alphabetically within a bucket.
func (d *dictionary) withinLength(n, delta int, fn func(string)) {
	for l := max(1, n-delta); l <= n+delta; l++ {
		for _, w := range d.byLen[l] {
			fn(w)
		}
	}
}
