package domain_test

import (
	"slices"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

func records() []*domain.SourceReputation {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return []*domain.SourceReputation{
		{Domain: "kompas.com", TrustScore: 90, Upvotes: 9, Downvotes: 1, Category: "national", UpdatedAt: base},
		{Domain: "tempo.co", TrustScore: 80, Upvotes: 4, Downvotes: 1, Category: "national", UpdatedAt: base.Add(time.Hour)},
		{Domain: "gosipterkini.com", TrustScore: 10, Downvotes: 3, Category: "gossip", UpdatedAt: base.Add(2 * time.Hour)},
	}
}

func domains(recs []*domain.SourceReputation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Domain)
	}
	return out
}

func TestApplyFilter_DefaultSortsByDomain(t *testing.T) {
	t.Parallel()

	page, total := domain.ApplyFilter(records(), domain.ReputationFilter{})
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	want := []string{"gosipterkini.com", "kompas.com", "tempo.co"}
	if got := domains(page); !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestApplyFilter_SortAndPage(t *testing.T) {
	t.Parallel()

	filter := domain.ReputationFilter{SortBy: domain.SortByTrustScore, SortOrder: domain.SortDesc, Limit: 2}
	page, total := domain.ApplyFilter(records(), filter)
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	want := []string{"kompas.com", "tempo.co"}
	if got := domains(page); !slices.Equal(got, want) {
		t.Errorf("page = %v, want %v", got, want)
	}

	filter.Offset = 2
	page, _ = domain.ApplyFilter(records(), filter)
	if got := domains(page); !slices.Equal(got, []string{"gosipterkini.com"}) {
		t.Errorf("second page = %v", got)
	}

	filter.Offset = 10
	page, _ = domain.ApplyFilter(records(), filter)
	if page == nil || len(page) != 0 {
		t.Errorf("past-the-end page = %v, want empty", page)
	}
}

func TestApplyFilter_SearchAndCategory(t *testing.T) {
	t.Parallel()

	page, total := domain.ApplyFilter(records(), domain.ReputationFilter{Search: " KOM ", Category: "national"})
	if total != 1 || page[0].Domain != "kompas.com" {
		t.Errorf("got %v (total %d)", domains(page), total)
	}

	_, total = domain.ApplyFilter(records(), domain.ReputationFilter{Category: "gossip", SortBy: domain.SortByVotes})
	if total != 1 {
		t.Errorf("gossip total = %d, want 1", total)
	}
}

func TestReputationFilter_Normalize(t *testing.T) {
	t.Parallel()

	f := domain.ReputationFilter{SortBy: "bogus", SortOrder: "sideways", Limit: 10_000, Offset: -3}.Normalize()
	if f.SortBy != domain.SortByDomain || f.SortOrder != domain.SortAsc {
		t.Errorf("sort = %s %s", f.SortBy, f.SortOrder)
	}
	if f.Limit != domain.MaxListLimit || f.Offset != 0 {
		t.Errorf("limit/offset = %d/%d", f.Limit, f.Offset)
	}
}
