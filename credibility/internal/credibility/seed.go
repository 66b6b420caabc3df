package credibility

import (
	"context"
	"fmt"
	"strings"
	"time"

	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

// SeedEntry is one curated reputation record.
type SeedEntry struct {
	Domain     string
	TrustScore int
	Category   string
}

// SeedResult summarizes a seeding run.
type SeedResult struct {
	Inserted int
	Skipped  int
}

// Seed inserts curated records whose domain is not yet stored. Existing
// records, and the votes they carry, are never touched.
func Seed(
	ctx context.Context, store ReputationStore, entries []SeedEntry, logger infralogger.Logger,
) (SeedResult, error) {
	var result SeedResult
	now := time.Now().UTC()

	for _, e := range entries {
		name := strings.ToLower(strings.TrimSpace(e.Domain))
		if name == "" {
			result.Skipped++
			continue
		}
		if e.TrustScore < 0 || e.TrustScore > domain.MaxTrustScore {
			return result, fmt.Errorf("seed %s: trust score %d out of range", name, e.TrustScore)
		}

		rec := domain.NewSourceReputation(name, e.Category, now)
		rec.TrustScore = e.TrustScore

		inserted, err := store.InsertIfAbsent(ctx, rec)
		if err != nil {
			return result, fmt.Errorf("seed %s: %w", name, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}

	logger.Info("Reputation seeding complete",
		infralogger.Int("inserted", result.Inserted),
		infralogger.Int("skipped", result.Skipped),
	)
	return result, nil
}
