package domain

import (
	"cmp"
	"slices"
	"strings"
)

// Listing limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Sort orders for ReputationFilter.SortOrder.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Normalize lowercases the search terms and replaces unknown or unset
// fields with defaults.
func (f ReputationFilter) Normalize() ReputationFilter {
	f.Search = strings.ToLower(strings.TrimSpace(f.Search))
	f.Category = strings.TrimSpace(f.Category)

	switch f.SortBy {
	case SortByDomain, SortByTrustScore, SortByVotes, SortByUpdatedAt:
	default:
		f.SortBy = SortByDomain
	}
	if f.SortOrder != SortDesc {
		f.SortOrder = SortAsc
	}
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	f.Limit = min(f.Limit, MaxListLimit)
	f.Offset = max(f.Offset, 0)
	return f
}

// Matches reports whether rec passes the search and category conditions.
func (f ReputationFilter) Matches(rec *SourceReputation) bool {
	if f.Search != "" && !strings.Contains(rec.Domain, f.Search) {
		return false
	}
	return f.Category == "" || rec.Category == f.Category
}

// ApplyFilter filters, sorts and pages recs in memory. It returns the page
// and the number of matching records before paging. Ties are broken by
// domain so the order is stable.
func ApplyFilter(recs []*SourceReputation, filter ReputationFilter) ([]*SourceReputation, int) {
	f := filter.Normalize()

	matched := make([]*SourceReputation, 0, len(recs))
	for _, r := range recs {
		if f.Matches(r) {
			matched = append(matched, r)
		}
	}

	slices.SortFunc(matched, func(a, b *SourceReputation) int {
		var c int
		switch f.SortBy {
		case SortByTrustScore:
			c = cmp.Compare(a.TrustScore, b.TrustScore)
		case SortByVotes:
			c = cmp.Compare(a.TotalVotes(), b.TotalVotes())
		case SortByUpdatedAt:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		}
		if f.SortOrder == SortDesc {
			c = -c
		}
		if c == 0 {
			c = strings.Compare(a.Domain, b.Domain)
		}
		return c
	})

	total := len(matched)
	if f.Offset >= total {
		return []*SourceReputation{}, total
	}
	end := min(f.Offset+f.Limit, total)
	return matched[f.Offset:end], total
}
