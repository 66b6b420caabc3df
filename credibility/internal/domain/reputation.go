package domain

import "time"

// Reputation defaults.
const (
	DefaultTrustScore = 50
	MaxTrustScore     = 100

	CategoryGeneral      = "general"
	CategoryFromFeedback = "new (from feedback)"
)

// SourceReputation is the persisted trust record of one registrable domain.
type SourceReputation struct {
	Domain     string    `db:"domain"      json:"domain"`
	TrustScore int       `db:"trust_score" json:"trust_score"`
	Upvotes    int       `db:"upvotes"     json:"upvotes"`
	Downvotes  int       `db:"downvotes"   json:"downvotes"`
	Category   string    `db:"category"    json:"category"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"  json:"updated_at"`
}

// NewSourceReputation returns an untouched record with the default trust.
func NewSourceReputation(domainName, category string, now time.Time) *SourceReputation {
	if category == "" {
		category = CategoryGeneral
	}
	return &SourceReputation{
		Domain:     domainName,
		TrustScore: DefaultTrustScore,
		Category:   category,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// TotalVotes returns upvotes + downvotes.
func (r *SourceReputation) TotalVotes() int {
	return r.Upvotes + r.Downvotes
}

// ApplyVote increments the matching counter and recomputes the trust score.
// Callers must hold whatever lock makes the record update atomic.
func (r *SourceReputation) ApplyVote(v Vote, now time.Time) {
	if v == VoteUp {
		r.Upvotes++
	} else {
		r.Downvotes++
	}
	r.TrustScore = TrustFromVotes(r.Upvotes, r.Downvotes)
	r.UpdatedAt = now
}

// TrustFromVotes is round(up/(up+down)*100) with halves rounded up, in
// integer arithmetic. With no votes it returns DefaultTrustScore.
func TrustFromVotes(up, down int) int {
	total := up + down
	if total <= 0 {
		return DefaultTrustScore
	}
	return (2*MaxTrustScore*up + total) / (2 * total)
}

// ReputationFilter selects and orders records for listing.
type ReputationFilter struct {
	Search    string
	Category  string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// Sortable columns for ReputationFilter.SortBy.
const (
	SortByDomain     = "domain"
	SortByTrustScore = "trust_score"
	SortByVotes      = "votes"
	SortByUpdatedAt  = "updated_at"
)
