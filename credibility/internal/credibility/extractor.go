// Package credibility implements the credibility scoring engine: five
// independent signal extractors, the score aggregator and the feedback
// updater that maintains per-domain source reputation.
package credibility

import (
	"context"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

// Signal names, in evaluation order.
const (
	SignalSourceReputation = "source_reputation"
	SignalSentiment        = "content_sentiment"
	SignalClickbait        = "clickbait_title"
	SignalDataPresence     = "data_presence"
	SignalContentDepth     = "content_depth"
)

// Extractor scores one aspect of an article. An Extractor must not mutate
// shared state; only the sentiment oracle may fail.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, article domain.Article) (domain.Signal, error)
}

// Reasons returned in the breakdown. Source reasons are format strings
// taking the hostname.
const (
	reasonTrustedSource    = "✅ Source (%s) is trusted."
	reasonUntrustedSource  = "❌ Source (%s) frequently publishes clickbait."
	reasonUnverifiedSource = "⚠️ Source reputation is unverified."
	reasonInvalidURL       = "❌ Source URL is invalid."
	reasonReaderTrusted    = "✅ Source (%s) is rated trustworthy by readers (trust %d/100)."
	reasonReaderDistrusted = "❌ Source (%s) is rated untrustworthy by readers (trust %d/100)."
	reasonReaderNeutral    = "⚠️ Source (%s) has a mixed reader reputation (trust %d/100)."

	reasonNegativeTone = "❌ Language is strongly negative or provocative."
	reasonSensational  = "⚠️ Language is overly sensational."
	reasonNeutralTone  = "✅ Language is broadly neutral."

	reasonExcessiveCaps        = "❌ Title uses excessive capitalization."
	reasonExcessivePunctuation = "❌ Title uses excessive punctuation."

	reasonIncludesData = "✅ Article includes data (numbers or dates)."

	reasonTooShort      = "⚠️ Article content is too short."
	reasonAdequateDepth = "✅ Article content has adequate depth."
)
