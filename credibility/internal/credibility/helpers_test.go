package credibility_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"

	"github.com/jonesrussell/north-cloud/credibility/internal/credibility"
	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

var (
	errBackend = errors.New("backend down")
	fixedNow   = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
)

// stubOracle returns a fixed polarity.
type stubOracle struct {
	score float64
	err   error
	calls atomic.Int32
}

func (o *stubOracle) Tokenize(text string) []string {
	return strings.Fields(text)
}

func (o *stubOracle) Polarity(context.Context, []string) (float64, error) {
	o.calls.Add(1)
	return o.score, o.err
}

// failingStore fails every call.
type failingStore struct{}

func (failingStore) FindByDomain(context.Context, string) (*domain.SourceReputation, error) {
	return nil, errBackend
}

func (failingStore) InsertIfAbsent(context.Context, *domain.SourceReputation) (bool, error) {
	return false, errBackend
}

func (failingStore) UpsertVote(context.Context, string, domain.Vote) (*domain.SourceReputation, error) {
	return nil, errBackend
}

func words(n int, word string) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func listAnalyzer(oracle credibility.Oracle) *credibility.Analyzer {
	settings := credibility.DefaultSettings()
	domains := credibility.NewDomainExtractor(credibility.TwoLabel)
	list := credibility.NewSourceList(
		[]string{"kompas.com", "reuters.com"},
		[]string{"blogspot.com", "wordpress.com"},
	)
	source := credibility.NewListSourceExtractor(list, domains, settings.Source, infralogger.NewNop())
	return credibility.NewAnalyzer(settings, source, oracle, domains)
}

func learnedAnalyzer(reader credibility.ReputationReader, oracle credibility.Oracle) *credibility.Analyzer {
	settings := credibility.DefaultSettings()
	domains := credibility.NewDomainExtractor(credibility.TwoLabel)
	source := credibility.NewLearnedSourceExtractor(reader, domains, settings.Source, infralogger.NewNop())
	return credibility.NewAnalyzer(settings, source, oracle, domains)
}
