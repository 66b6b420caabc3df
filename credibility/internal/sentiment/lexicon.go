// Package sentiment provides the polarity oracles used by the content
// sentiment extractor: an embedded AFINN word list and an HTTP client for a
// remote scoring service.
package sentiment

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kljensen/snowball/english"
)

//go:embed afinn.tsv
var afinnTSV string

var tokenSplit = regexp.MustCompile(`[^\p{L}\p{N}'-]+`)

// negationWindow is how many tokens after a negator have their valence
// flipped.
const negationWindow = 3

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "nothing": {}, "nobody": {},
	"neither": {}, "nor": {}, "without": {}, "hardly": {}, "barely": {},
	"cannot": {}, "can't": {}, "don't": {}, "doesn't": {}, "didn't": {},
	"isn't": {}, "wasn't": {}, "aren't": {}, "weren't": {}, "won't": {},
	"wouldn't": {}, "shouldn't": {}, "couldn't": {}, "hasn't": {},
	"haven't": {}, "hadn't": {}, "ain't": {},
}

// Tokenize splits text on anything that is not a letter, digit, apostrophe
// or hyphen. Typographic apostrophes are folded to ASCII first. Leading and
// trailing apostrophes and hyphens are trimmed.
func Tokenize(text string) []string {
	parts := tokenSplit.Split(strings.ReplaceAll(text, "\u2019", "'"), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, "'-"); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

type stemScore struct {
	sum   int
	count int
}

// Lexicon scores tokens by AFINN valence. It is immutable and safe for
// concurrent use.
type Lexicon struct {
	words map[string]int
	stems map[string]stemScore
}

// NewLexicon parses the embedded word list. With stemming, tokens missing
// from the list fall back to the mean valence of list words sharing their
// Porter2 stem.
func NewLexicon(stemming bool) (*Lexicon, error) {
	words, err := parseTSV(afinnTSV)
	if err != nil {
		return nil, err
	}

	l := &Lexicon{words: words}
	if stemming {
		l.stems = make(map[string]stemScore, len(words))
		for w, v := range words {
			stem := english.Stem(w, false)
			s := l.stems[stem]
			s.sum += v
			s.count++
			l.stems[stem] = s
		}
	}
	return l, nil
}

func parseTSV(data string) (map[string]int, error) {
	words := make(map[string]int)
	sc := bufio.NewScanner(strings.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		word, value, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("afinn line %d: missing tab", line)
		}
		v, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("afinn line %d: %w", line, err)
		}
		words[strings.TrimSpace(word)] = v
	}
	return words, sc.Err()
}

// Size returns the number of scored words.
func (l *Lexicon) Size() int {
	return len(l.words)
}

// Tokenize implements credibility.Oracle.
func (l *Lexicon) Tokenize(text string) []string {
	return Tokenize(text)
}

// Polarity is the summed valence divided by the number of tokens, so
// unscored words dilute the result. A negator such as "not" scores nothing
// itself and flips the valence of the next negationWindow tokens; a later
// negator restarts the window. No tokens yields 0.
func (l *Lexicon) Polarity(_ context.Context, tokens []string) (float64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	var sum float64
	negated := 0
	for _, t := range tokens {
		if _, ok := negators[t]; ok {
			negated = negationWindow
			continue
		}
		v := l.valence(t)
		if negated > 0 {
			v = -v
			negated--
		}
		sum += v
	}
	return sum / float64(len(tokens)), nil
}

func (l *Lexicon) valence(token string) float64 {
	if v, ok := l.words[token]; ok {
		return float64(v)
	}
	if l.stems == nil {
		return 0
	}
	if s, ok := l.stems[english.Stem(token, false)]; ok {
		return float64(s.sum) / float64(s.count)
	}
	return 0
}
