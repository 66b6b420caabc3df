package credibility

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

// Oracle computes text polarity. Implementations live in the sentiment
// package.
type Oracle interface {
	// Tokenize splits lowercase text into words.
	Tokenize(text string) []string
	// Polarity returns a signed score for tokens; it has no side effects.
	Polarity(ctx context.Context, tokens []string) (float64, error)
}

// SentimentThresholds maps polarity bands to impacts.
type SentimentThresholds struct {
	Negative       float64
	Positive       float64
	NegativeImpact int
	PositiveImpact int
	NeutralImpact  int
}

// SentimentExtractor penalizes both polarity extremes and rewards the
// neutral band.
type SentimentExtractor struct {
	oracle     Oracle
	thresholds SentimentThresholds
}

// NewSentimentExtractor creates a SentimentExtractor.
func NewSentimentExtractor(oracle Oracle, thresholds SentimentThresholds) *SentimentExtractor {
	return &SentimentExtractor{oracle: oracle, thresholds: thresholds}
}

// Name implements Extractor.
func (e *SentimentExtractor) Name() string {
	return SignalSentiment
}

// Extract implements Extractor. Oracle failures are returned wrapped in
// domain.ErrSentimentUnavailable.
func (e *SentimentExtractor) Extract(ctx context.Context, article domain.Article) (domain.Signal, error) {
	// cases.Caser is stateful, so one is built per call.
	lowered := cases.Lower(language.Und).String(article.Content)

	score, err := e.oracle.Polarity(ctx, e.oracle.Tokenize(lowered))
	if err != nil {
		return domain.Signal{}, fmt.Errorf("%w: %w", domain.ErrSentimentUnavailable, err)
	}

	sig := domain.Signal{Name: SignalSentiment}
	switch {
	case math.IsNaN(score):
		sig.Impact, sig.Reason = e.thresholds.NeutralImpact, reasonNeutralTone
	case score < e.thresholds.Negative:
		sig.Impact, sig.Reason = e.thresholds.NegativeImpact, reasonNegativeTone
	case score > e.thresholds.Positive:
		sig.Impact, sig.Reason = e.thresholds.PositiveImpact, reasonSensational
	default:
		sig.Impact, sig.Reason = e.thresholds.NeutralImpact, reasonNeutralTone
	}
	return sig, nil
}
