package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/credibility/internal/credibility"
	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
	"github.com/jonesrussell/north-cloud/credibility/internal/importer"
	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"
)

// SeedStore inserts the configured curated records, followed by the rows of
// the seed workbook when one is configured.
func (a *App) SeedStore(ctx context.Context) (credibility.SeedResult, error) {
	entries := make([]credibility.SeedEntry, 0, len(a.Config.Reputation.Seed))
	for _, s := range a.Config.Reputation.Seed {
		trust := domain.DefaultTrustScore
		if s.TrustScore != nil {
			trust = *s.TrustScore
		}
		entries = append(entries, credibility.SeedEntry{
			Domain:     s.Domain,
			TrustScore: trust,
			Category:   s.Category,
		})
	}

	if path := a.Config.Reputation.SeedFile; path != "" {
		fromFile, err := LoadSeedFile(path, a.Logger)
		if err != nil {
			return credibility.SeedResult{}, err
		}
		entries = append(entries, fromFile...)
	}

	if len(entries) == 0 {
		return credibility.SeedResult{}, nil
	}
	return credibility.Seed(ctx, a.Store, entries, a.Logger)
}

// LoadSeedFile parses a seed workbook. Invalid rows are logged and skipped.
func LoadSeedFile(path string, log infralogger.Logger) ([]credibility.SeedEntry, error) {
	rows, rowErrs, err := importer.ParseExcelPath(path)
	if err != nil {
		return nil, err
	}
	for _, e := range rowErrs {
		if e.Row == 0 {
			return nil, fmt.Errorf("seed file %s: %s", path, e.Error)
		}
		log.Warn("Skipping invalid seed row",
			infralogger.String("file", path),
			infralogger.Int("row", e.Row),
			infralogger.String("error", e.Error),
		)
	}
	return importer.ToSeedEntries(rows), nil
}
