package credibility

import (
	"context"
	"strings"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

// ClickbaitThresholds configures the title red flags.
type ClickbaitThresholds struct {
	// MinLetters is the letter count a title must exceed before its
	// capitalization is judged.
	MinLetters       int
	UppercaseRatio   float64
	PunctuationCount int
	Impact           int
}

// ClickbaitExtractor flags shouting titles. The first red flag wins; flags
// never stack and a clean title earns nothing.
type ClickbaitExtractor struct {
	thresholds ClickbaitThresholds
}

// NewClickbaitExtractor creates a ClickbaitExtractor.
func NewClickbaitExtractor(thresholds ClickbaitThresholds) *ClickbaitExtractor {
	return &ClickbaitExtractor{thresholds: thresholds}
}

// Name implements Extractor.
func (e *ClickbaitExtractor) Name() string {
	return SignalClickbait
}

// Extract implements Extractor. Only ASCII letters are counted.
func (e *ClickbaitExtractor) Extract(_ context.Context, article domain.Article) (domain.Signal, error) {
	sig := domain.Signal{Name: SignalClickbait}

	upper, letters := 0, 0
	for _, r := range article.Title {
		switch {
		case r >= 'A' && r <= 'Z':
			upper++
			letters++
		case r >= 'a' && r <= 'z':
			letters++
		}
	}
	if letters > e.thresholds.MinLetters && float64(upper)/float64(letters) > e.thresholds.UppercaseRatio {
		sig.Impact, sig.Reason = e.thresholds.Impact, reasonExcessiveCaps
		return sig, nil
	}

	if strings.Count(article.Title, "!")+strings.Count(article.Title, "?") >= e.thresholds.PunctuationCount {
		sig.Impact, sig.Reason = e.thresholds.Impact, reasonExcessivePunctuation
	}
	return sig, nil
}
