// Package snapshot periodically counts the stored source reputations by
// stance so dashboards can follow how trust shifts as votes arrive.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/north-cloud/credibility/internal/credibility"
	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"
)

// Stances of a stored trust score relative to the neutral value.
const (
	StanceTrusted    = "trusted"
	StanceNeutral    = "neutral"
	StanceDistrusted = "distrusted"
)

const runTimeout = time.Minute

// Sink receives the counts of a completed pass. Every stance is present.
type Sink interface {
	SourcesSnapshot(counts map[string]int)
}

// Job lists every stored reputation and reports the stance counts.
type Job struct {
	lister  credibility.ReputationLister
	neutral int
	sink    Sink
	log     infralogger.Logger
	cron    *cron.Cron
}

// New creates a job. neutral is the trust score that maps to a zero impact
// under the learned policy.
func New(lister credibility.ReputationLister, neutral int, sink Sink, log infralogger.Logger) *Job {
	return &Job{
		lister:  lister,
		neutral: neutral,
		sink:    sink,
		log:     log,
	}
}

// Stance classifies trust against neutral.
func Stance(trust, neutral int) string {
	switch {
	case trust > neutral:
		return StanceTrusted
	case trust < neutral:
		return StanceDistrusted
	default:
		return StanceNeutral
	}
}

// Count pages through the whole store.
func (j *Job) Count(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{StanceTrusted: 0, StanceNeutral: 0, StanceDistrusted: 0}
	filter := domain.ReputationFilter{Limit: domain.MaxListLimit}

	for {
		recs, total, err := j.lister.List(ctx, filter.Normalize())
		if err != nil {
			return nil, fmt.Errorf("list reputations: %w", err)
		}
		for _, r := range recs {
			counts[Stance(r.TrustScore, j.neutral)]++
		}
		filter.Offset += len(recs)
		if len(recs) == 0 || filter.Offset >= total {
			return counts, nil
		}
	}
}

// Run performs one pass and hands the counts to the sink.
func (j *Job) Run(ctx context.Context) error {
	counts, err := j.Count(ctx)
	if err != nil {
		return err
	}
	j.sink.SourcesSnapshot(counts)
	j.log.Debug("Reputation snapshot taken",
		infralogger.Int(StanceTrusted, counts[StanceTrusted]),
		infralogger.Int(StanceNeutral, counts[StanceNeutral]),
		infralogger.Int(StanceDistrusted, counts[StanceDistrusted]),
	)
	return nil
}

// Start runs one pass immediately, then schedules Run on spec. spec uses the
// five-field cron format or a descriptor such as "@every 5m".
func (j *Job) Start(ctx context.Context, spec string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	j.cron = cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	if _, err := j.cron.AddFunc(spec, func() { j.runLogged(ctx) }); err != nil {
		return fmt.Errorf("schedule reputation snapshot %q: %w", spec, err)
	}

	j.runLogged(ctx)
	j.cron.Start()
	j.log.Info("Reputation snapshots scheduled", infralogger.String("schedule", spec))
	return nil
}

// Stop halts the schedule and waits for a running pass.
func (j *Job) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

func (j *Job) runLogged(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), runTimeout)
	defer cancel()

	if err := j.Run(runCtx); err != nil {
		j.log.Warn("Reputation snapshot failed", infralogger.Error(err))
	}
}
