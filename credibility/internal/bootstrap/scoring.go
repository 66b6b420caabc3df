package bootstrap

import (
	"github.com/jonesrussell/north-cloud/credibility/internal/config"
	"github.com/jonesrussell/north-cloud/credibility/internal/credibility"
	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"
)

// ScoringSettings maps the scoring configuration onto analyzer settings.
func ScoringSettings(s config.ScoringConfig) credibility.Settings {
	stripHTML := s.StripHTML == nil || *s.StripHTML
	return credibility.Settings{
		Baseline:  s.Baseline,
		StripHTML: stripHTML,
		Source: credibility.SourceImpacts{
			Trusted:      s.Source.TrustedImpact,
			Untrusted:    s.Source.UntrustedImpact,
			Unverified:   s.Source.UnverifiedImpact,
			InvalidURL:   s.Source.InvalidURLImpact,
			NeutralTrust: s.Source.NeutralTrust,
		},
		Sentiment: credibility.SentimentThresholds{
			Negative:       s.Sentiment.NegativeThreshold,
			Positive:       s.Sentiment.PositiveThreshold,
			NegativeImpact: s.Sentiment.NegativeImpact,
			PositiveImpact: s.Sentiment.PositiveImpact,
			NeutralImpact:  s.Sentiment.NeutralImpact,
		},
		Clickbait: credibility.ClickbaitThresholds{
			MinLetters:       s.Clickbait.MinLetters,
			UppercaseRatio:   s.Clickbait.UppercaseRatio,
			PunctuationCount: s.Clickbait.PunctuationCount,
			Impact:           s.Clickbait.Impact,
		},
		DataPresenceImpact: s.DataPresence.Impact,
		Depth: credibility.DepthThresholds{
			MinWords:       s.Depth.MinWords,
			ShortImpact:    s.Depth.ShortImpact,
			AdequateImpact: s.Depth.AdequateImpact,
		},
	}
}

// DomainMode maps the configured mode name.
func DomainMode(mode string) credibility.DomainMode {
	if mode == config.DomainModePublicSuffix {
		return credibility.PublicSuffix
	}
	return credibility.TwoLabel
}

// SourceExtractor builds the source reputation extractor for the
// configured policy.
func SourceExtractor(
	cfg config.SourceConfig,
	reader credibility.ReputationReader,
	domains *credibility.DomainExtractor,
	log infralogger.Logger,
) *credibility.SourceReputationExtractor {
	impacts := credibility.SourceImpacts{
		Trusted:      cfg.TrustedImpact,
		Untrusted:    cfg.UntrustedImpact,
		Unverified:   cfg.UnverifiedImpact,
		InvalidURL:   cfg.InvalidURLImpact,
		NeutralTrust: cfg.NeutralTrust,
	}
	if cfg.Policy == config.PolicyList {
		list := credibility.NewSourceList(cfg.TrustedSources, cfg.UntrustedSources)
		return credibility.NewListSourceExtractor(list, domains, impacts, log)
	}
	return credibility.NewLearnedSourceExtractor(reader, domains, impacts, log)
}
