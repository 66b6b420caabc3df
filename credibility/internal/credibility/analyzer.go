package credibility

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// Settings holds the tunable constants of the scoring rules.
type Settings struct {
	Baseline           int
	StripHTML          bool
	Source             SourceImpacts
	Sentiment          SentimentThresholds
	Clickbait          ClickbaitThresholds
	DataPresenceImpact int
	Depth              DepthThresholds
}

// DefaultSettings returns the stock scoring rules.
func DefaultSettings() Settings {
	return Settings{
		Baseline:  50,
		StripHTML: true,
		Source: SourceImpacts{
			Trusted:      25,
			Untrusted:    -35,
			Unverified:   -5,
			InvalidURL:   -10,
			NeutralTrust: domain.DefaultTrustScore,
		},
		Sentiment: SentimentThresholds{
			Negative:       -0.1,
			Positive:       0.1,
			NegativeImpact: -25,
			PositiveImpact: -15,
			NeutralImpact:  15,
		},
		Clickbait: ClickbaitThresholds{
			MinLetters:       10,
			UppercaseRatio:   0.5,
			PunctuationCount: 3,
			Impact:           -20,
		},
		DataPresenceImpact: 15,
		Depth: DepthThresholds{
			MinWords:       150,
			ShortImpact:    -20,
			AdequateImpact: 10,
		},
	}
}

// Analyzer runs the extractors in a fixed order and aggregates their
// signals. It holds no mutable state.
type Analyzer struct {
	baseline   int
	stripHTML  bool
	domains    *DomainExtractor
	extractors []Extractor
}

// NewAnalyzer wires the five extractors. source is either a list or a
// learned SourceReputationExtractor and always runs first.
func NewAnalyzer(settings Settings, source Extractor, oracle Oracle, domains *DomainExtractor) *Analyzer {
	return &Analyzer{
		baseline:  settings.Baseline,
		stripHTML: settings.StripHTML,
		domains:   domains,
		extractors: []Extractor{
			source,
			NewSentimentExtractor(oracle, settings.Sentiment),
			NewClickbaitExtractor(settings.Clickbait),
			NewDataPresenceExtractor(settings.DataPresenceImpact),
			NewContentDepthExtractor(settings.Depth),
		},
	}
}

// Analyze scores article. It fails with domain.ErrValidation when a field
// is missing and with domain.ErrSentimentUnavailable when the oracle fails;
// a bad URL only lowers the score.
func (a *Analyzer) Analyze(ctx context.Context, article domain.Article) (*domain.AnalysisResult, error) {
	if err := article.Validate(); err != nil {
		return nil, err
	}
	if a.stripHTML {
		article.Content = PlainText(article.Content)
	}

	signals := make([]domain.Signal, 0, len(a.extractors))
	for _, ex := range a.extractors {
		sig, err := ex.Extract(ctx, article)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", ex.Name(), err)
		}
		signals = append(signals, sig)
	}

	score, breakdown := Aggregate(a.baseline, signals)
	result := &domain.AnalysisResult{
		Score:     score,
		Breakdown: breakdown,
		Signals:   signals,
	}
	if name, err := a.domains.Domain(article.URL); err == nil {
		result.Domain = name
	}
	return result, nil
}

// Aggregate sums the impacts onto baseline, clamps the total to
// [MinScore, MaxScore] and collects the non-empty reasons in order.
func Aggregate(baseline int, signals []domain.Signal) (score int, breakdown []string) {
	score = baseline
	breakdown = make([]string, 0, len(signals))
	for _, s := range signals {
		score += s.Impact
		if s.Reason != "" {
			breakdown = append(breakdown, s.Reason)
		}
	}
	return max(MinScore, min(MaxScore, score)), breakdown
}
