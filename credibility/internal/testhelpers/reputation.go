package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/credibility/internal/credibility"
	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

// FixedTime is the creation time of fixture records.
var FixedTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Reputation builds a vote-free record with the given trust.
func Reputation(domainName string, trust int, category string) *domain.SourceReputation {
	rec := domain.NewSourceReputation(domainName, category, FixedTime)
	rec.TrustScore = trust
	return rec
}

// SeedRecords inserts recs into store and fails the test on any error or
// pre-existing domain.
func SeedRecords(t testing.TB, store credibility.ReputationStore, recs ...*domain.SourceReputation) {
	t.Helper()

	for _, rec := range recs {
		inserted, err := store.InsertIfAbsent(context.Background(), rec)
		if err != nil {
			t.Fatalf("seed %s: %v", rec.Domain, err)
		}
		if !inserted {
			t.Fatalf("seed %s: already present", rec.Domain)
		}
	}
}
