package credibility

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

const tracerName = "github.com/jonesrussell/north-cloud/credibility"

// AnalysisObserver is notified after every successful analysis.
// Implementations must not block.
type AnalysisObserver interface {
	AnalysisCompleted(ctx context.Context, article domain.Article, result *domain.AnalysisResult)
}

// AnalysisFailureObserver is notified when an analysis returns an error.
type AnalysisFailureObserver interface {
	AnalysisFailed(ctx context.Context, article domain.Article, err error)
}

// VoteObserver is notified after every persisted vote.
// Implementations must not block.
type VoteObserver interface {
	VoteRecorded(ctx context.Context, vote domain.Vote, rec *domain.SourceReputation)
}

// Service is the entry point used by the HTTP API and the CLI.
type Service struct {
	analyzer *Analyzer
	feedback *FeedbackUpdater
	tracer   trace.Tracer
	analyses []AnalysisObserver
	failures []AnalysisFailureObserver
	votes    []VoteObserver
	logger   infralogger.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTracerProvider traces Analyze and Feedback calls.
func WithTracerProvider(tp trace.TracerProvider) ServiceOption {
	return func(s *Service) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// WithAnalysisObserver adds an observer for completed analyses.
func WithAnalysisObserver(o AnalysisObserver) ServiceOption {
	return func(s *Service) {
		s.analyses = append(s.analyses, o)
	}
}

// WithAnalysisFailureObserver adds an observer for failed analyses.
func WithAnalysisFailureObserver(o AnalysisFailureObserver) ServiceOption {
	return func(s *Service) {
		s.failures = append(s.failures, o)
	}
}

// WithVoteObserver adds an observer for recorded votes.
func WithVoteObserver(o VoteObserver) ServiceOption {
	return func(s *Service) {
		s.votes = append(s.votes, o)
	}
}

// NewService creates a Service. feedback may be nil for analysis-only use.
func NewService(analyzer *Analyzer, feedback *FeedbackUpdater, logger infralogger.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		analyzer: analyzer,
		feedback: feedback,
		tracer:   noop.NewTracerProvider().Tracer(tracerName),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze scores an article and notifies analysis observers.
func (s *Service) Analyze(ctx context.Context, article domain.Article) (*domain.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "credibility.Analyze")
	defer span.End()

	result, err := s.analyzer.Analyze(ctx, article)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, domain.ErrSentimentUnavailable) {
			s.logger.Error("Analysis failed",
				infralogger.String("url", article.URL),
				infralogger.Error(err),
			)
		}
		for _, o := range s.failures {
			o.AnalysisFailed(ctx, article, err)
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("credibility.score", result.Score),
		attribute.String("credibility.domain", result.Domain),
	)
	for _, o := range s.analyses {
		o.AnalysisCompleted(ctx, article, result)
	}
	return result, nil
}

// Feedback records a reader vote and notifies vote observers.
func (s *Service) Feedback(ctx context.Context, rawURL, rawVote string) (*domain.SourceReputation, error) {
	if s.feedback == nil {
		return nil, domain.ErrPersistence
	}

	ctx, span := s.tracer.Start(ctx, "credibility.Feedback")
	defer span.End()

	rec, vote, err := s.feedback.Submit(ctx, rawURL, rawVote)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, domain.ErrPersistence) {
			s.logger.Error("Feedback persistence failed",
				infralogger.String("url", rawURL),
				infralogger.Error(err),
			)
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.String("credibility.domain", rec.Domain),
		attribute.Int("credibility.trust_score", rec.TrustScore),
	)
	for _, o := range s.votes {
		o.VoteRecorded(ctx, vote, rec)
	}
	return rec, nil
}
