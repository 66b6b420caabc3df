package credibility

import (
	"context"
	"regexp"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

// dataPattern matches a run of three or more digits, a percentage, or a
// day of month followed by an Indonesian month name.
var dataPattern = regexp.MustCompile(
	`(?i)(\d{3,})|(\d+\s?%)|(\d{1,2}\s(januari|februari|maret|april|mei|juni|juli|agustus|september|oktober|november|desember))`,
)

// DataPresenceExtractor rewards content that cites concrete figures.
type DataPresenceExtractor struct {
	impact int
}

// NewDataPresenceExtractor creates a DataPresenceExtractor.
func NewDataPresenceExtractor(impact int) *DataPresenceExtractor {
	return &DataPresenceExtractor{impact: impact}
}

// Name implements Extractor.
func (e *DataPresenceExtractor) Name() string {
	return SignalDataPresence
}

// Extract implements Extractor.
func (e *DataPresenceExtractor) Extract(_ context.Context, article domain.Article) (domain.Signal, error) {
	if !dataPattern.MatchString(article.Content) {
		return domain.Signal{Name: SignalDataPresence}, nil
	}
	return domain.Signal{Name: SignalDataPresence, Impact: e.impact, Reason: reasonIncludesData}, nil
}
