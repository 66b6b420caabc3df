package credibility

import (
	"context"
	"strings"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

// DepthThresholds configures the word count rule.
type DepthThresholds struct {
	MinWords       int
	ShortImpact    int
	AdequateImpact int
}

// ContentDepthExtractor penalizes short articles.
type ContentDepthExtractor struct {
	thresholds DepthThresholds
}

// NewContentDepthExtractor creates a ContentDepthExtractor.
func NewContentDepthExtractor(thresholds DepthThresholds) *ContentDepthExtractor {
	return &ContentDepthExtractor{thresholds: thresholds}
}

// Name implements Extractor.
func (e *ContentDepthExtractor) Name() string {
	return SignalContentDepth
}

// Extract implements Extractor.
func (e *ContentDepthExtractor) Extract(_ context.Context, article domain.Article) (domain.Signal, error) {
	if len(strings.Fields(article.Content)) < e.thresholds.MinWords {
		return domain.Signal{Name: SignalContentDepth, Impact: e.thresholds.ShortImpact, Reason: reasonTooShort}, nil
	}
	return domain.Signal{Name: SignalContentDepth, Impact: e.thresholds.AdequateImpact, Reason: reasonAdequateDepth}, nil
}
