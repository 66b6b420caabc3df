package bootstrap

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/credibility/internal/config"
	"github.com/jonesrussell/north-cloud/credibility/internal/credibility"
	"github.com/jonesrussell/north-cloud/credibility/internal/sentiment"
	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"
)

// SetupOracle builds the configured sentiment oracle.
func SetupOracle(cfg config.SentimentConfig, log infralogger.Logger) (credibility.Oracle, error) {
	switch cfg.Provider {
	case config.SentimentHTTP:
		log.Info("Using remote sentiment oracle", infralogger.String("url", cfg.URL))
		return sentiment.NewHTTPOracle(sentiment.HTTPConfig{
			URL:              cfg.URL,
			Timeout:          cfg.Timeout,
			MaxRetries:       cfg.MaxRetries,
			FailureThreshold: cfg.FailureThreshold,
			ResetTimeout:     cfg.ResetTimeout,
		}, log), nil

	case config.SentimentLexicon, "":
		stemming := cfg.Stemming == nil || *cfg.Stemming
		lex, err := sentiment.NewLexicon(stemming)
		if err != nil {
			return nil, err
		}
		log.Debug("Sentiment lexicon loaded",
			infralogger.Int("entries", lex.Size()),
			infralogger.Bool("stemming", stemming),
		)
		return lex, nil

	default:
		return nil, fmt.Errorf("unknown sentiment provider %q", cfg.Provider)
	}
}
