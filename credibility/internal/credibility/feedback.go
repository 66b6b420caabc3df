package credibility

import (
	"context"
	"fmt"

	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

// ReputationStore persists source reputation. UpsertVote must be atomic per
// domain: concurrent votes are never lost.
type ReputationStore interface {
	ReputationReader
	// InsertIfAbsent stores rec unless the domain already exists and reports
	// whether it inserted.
	InsertIfAbsent(ctx context.Context, rec *domain.SourceReputation) (bool, error)
	// UpsertVote creates the record with category domain.CategoryFromFeedback
	// when absent, applies the vote and returns the updated record.
	UpsertVote(ctx context.Context, domainName string, vote domain.Vote) (*domain.SourceReputation, error)
}

// ReputationLister is implemented by stores that support browsing.
type ReputationLister interface {
	List(ctx context.Context, filter domain.ReputationFilter) ([]*domain.SourceReputation, int, error)
}

// FeedbackUpdater applies reader votes to the reputation store.
type FeedbackUpdater struct {
	store   ReputationStore
	domains *DomainExtractor
	logger  infralogger.Logger
}

// NewFeedbackUpdater creates a FeedbackUpdater.
func NewFeedbackUpdater(store ReputationStore, domains *DomainExtractor, logger infralogger.Logger) *FeedbackUpdater {
	return &FeedbackUpdater{store: store, domains: domains, logger: logger}
}

// Submit records one vote for the domain of rawURL. Checks run in order:
// missing fields, vote value, URL. Store failures wrap
// domain.ErrPersistence and leave no partial update.
func (f *FeedbackUpdater) Submit(ctx context.Context, rawURL, rawVote string) (*domain.SourceReputation, domain.Vote, error) {
	if rawURL == "" || rawVote == "" {
		return nil, "", domain.ErrValidation
	}

	vote, err := domain.ParseVote(rawVote)
	if err != nil {
		return nil, "", err
	}

	name, err := f.domains.Domain(rawURL)
	if err != nil {
		return nil, "", err
	}

	rec, err := f.store.UpsertVote(ctx, name, vote)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	f.logger.Info("Vote recorded",
		infralogger.String("domain", rec.Domain),
		infralogger.String("vote", string(vote)),
		infralogger.Int("trust_score", rec.TrustScore),
		infralogger.Int("upvotes", rec.Upvotes),
		infralogger.Int("downvotes", rec.Downvotes),
	)
	return rec, vote, nil
}
