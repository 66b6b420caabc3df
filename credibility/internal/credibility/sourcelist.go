package credibility

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// ListVerdict is the outcome of matching a hostname against curated lists.
type ListVerdict int

const (
	Unlisted ListVerdict = iota
	Trusted
	Untrusted
)

// SourceList holds the curated trusted and untrusted domain suffixes. It is
// immutable after construction and safe for concurrent use.
type SourceList struct {
	trusted   suffixSet
	untrusted suffixSet
}

// NewSourceList builds the two suffix sets.
func NewSourceList(trusted, untrusted []string) *SourceList {
	return &SourceList{
		trusted:   newSuffixSet(trusted),
		untrusted: newSuffixSet(untrusted),
	}
}

// Classify checks the trusted list first, then the untrusted list. Matching
// is a case-sensitive suffix test on the hostname, so "notkompas.com" also
// matches "kompas.com".
func (l *SourceList) Classify(host string) ListVerdict {
	switch {
	case l.trusted.matches(host):
		return Trusted
	case l.untrusted.matches(host):
		return Untrusted
	default:
		return Unlisted
	}
}

type suffixSet struct {
	suffixes []string
	matcher  *ahocorasick.Matcher
}

func newSuffixSet(suffixes []string) suffixSet {
	cleaned := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return suffixSet{}
	}
	return suffixSet{suffixes: cleaned, matcher: ahocorasick.NewStringMatcher(cleaned)}
}

// matches finds candidate substrings in one pass, then keeps only those
// that end the hostname.
func (s suffixSet) matches(host string) bool {
	if s.matcher == nil {
		return false
	}
	for _, idx := range s.matcher.MatchThreadSafe([]byte(host)) {
		if idx < len(s.suffixes) && strings.HasSuffix(host, s.suffixes[idx]) {
			return true
		}
	}
	return false
}
