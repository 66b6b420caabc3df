package credibility

import (
	"context"
	"errors"
	"fmt"

	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

// ReputationReader looks up stored reputation records.
type ReputationReader interface {
	// FindByDomain returns domain.ErrReputationNotFound for unknown domains.
	FindByDomain(ctx context.Context, domainName string) (*domain.SourceReputation, error)
}

// SourceImpacts configures the source reputation extractor.
type SourceImpacts struct {
	Trusted    int
	Untrusted  int
	Unverified int
	InvalidURL int
	// NeutralTrust is the stored trust score that contributes nothing.
	NeutralTrust int
}

// SourceReputationExtractor scores the article's source either against the
// curated lists (list policy) or against stored reader trust (learned
// policy). A bad URL is absorbed as a penalty, never returned as an error.
type SourceReputationExtractor struct {
	list    *SourceList
	reader  ReputationReader
	domains *DomainExtractor
	impacts SourceImpacts
	logger  infralogger.Logger
}

// NewListSourceExtractor uses the curated lists only.
func NewListSourceExtractor(
	list *SourceList, domains *DomainExtractor, impacts SourceImpacts, logger infralogger.Logger,
) *SourceReputationExtractor {
	return &SourceReputationExtractor{list: list, domains: domains, impacts: impacts, logger: logger}
}

// NewLearnedSourceExtractor uses stored reputation only. Lookups never
// create records.
func NewLearnedSourceExtractor(
	reader ReputationReader, domains *DomainExtractor, impacts SourceImpacts, logger infralogger.Logger,
) *SourceReputationExtractor {
	return &SourceReputationExtractor{reader: reader, domains: domains, impacts: impacts, logger: logger}
}

// Name implements Extractor.
func (e *SourceReputationExtractor) Name() string {
	return SignalSourceReputation
}

// Extract implements Extractor.
func (e *SourceReputationExtractor) Extract(ctx context.Context, article domain.Article) (domain.Signal, error) {
	host, err := e.domains.Hostname(article.URL)
	if err != nil {
		e.logger.Debug("Source URL rejected",
			infralogger.String("url", article.URL),
			infralogger.Error(err),
		)
		return e.signal(e.impacts.InvalidURL, reasonInvalidURL), nil
	}

	if e.reader == nil {
		return e.fromList(host), nil
	}
	return e.fromStore(ctx, host), nil
}

func (e *SourceReputationExtractor) fromList(host string) domain.Signal {
	switch e.list.Classify(host) {
	case Trusted:
		return e.signal(e.impacts.Trusted, fmt.Sprintf(reasonTrustedSource, host))
	case Untrusted:
		return e.signal(e.impacts.Untrusted, fmt.Sprintf(reasonUntrustedSource, host))
	default:
		return e.signal(e.impacts.Unverified, reasonUnverifiedSource)
	}
}

func (e *SourceReputationExtractor) fromStore(ctx context.Context, host string) domain.Signal {
	key := e.domains.Registrable(host)

	rec, err := e.reader.FindByDomain(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrReputationNotFound) {
			e.logger.Warn("Reputation lookup failed, scoring source as unverified",
				infralogger.String("domain", key),
				infralogger.Error(err),
			)
		}
		return e.signal(e.impacts.Unverified, reasonUnverifiedSource)
	}

	impact := rec.TrustScore - e.impacts.NeutralTrust
	format := reasonReaderNeutral
	switch {
	case impact > 0:
		format = reasonReaderTrusted
	case impact < 0:
		format = reasonReaderDistrusted
	}
	return e.signal(impact, fmt.Sprintf(format, key, rec.TrustScore))
}

func (e *SourceReputationExtractor) signal(impact int, reason string) domain.Signal {
	return domain.Signal{Name: SignalSourceReputation, Impact: impact, Reason: reason}
}
