package domain

import "fmt"

// Vote is a reader's judgement of a source.
type Vote string

const (
	VoteUp   Vote = "up"
	VoteDown Vote = "down"
)

// ParseVote accepts exactly "up" or "down".
func ParseVote(s string) (Vote, error) {
	switch Vote(s) {
	case VoteUp, VoteDown:
		return Vote(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidVote, s)
	}
}
