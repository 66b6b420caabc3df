package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

const reputationColumns = "domain, trust_score, upvotes, downvotes, category, created_at, updated_at"

// upsertVoteQuery increments one counter and recomputes the trust score in
// a single statement: round-half-up of 100*up/total in integer arithmetic.
const upsertVoteQuery = `
	INSERT INTO source_reputations (domain, trust_score, upvotes, downvotes, category, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (domain) DO UPDATE SET
		upvotes = source_reputations.upvotes + excluded.upvotes,
		downvotes = source_reputations.downvotes + excluded.downvotes,
		trust_score = (
			200 * (source_reputations.upvotes + excluded.upvotes)
			+ source_reputations.upvotes + excluded.upvotes
			+ source_reputations.downvotes + excluded.downvotes
		) / (2 * (
			source_reputations.upvotes + excluded.upvotes
			+ source_reputations.downvotes + excluded.downvotes
		)),
		updated_at = excluded.updated_at
	RETURNING ` + reputationColumns

const insertIfAbsentQuery = `
	INSERT INTO source_reputations (domain, trust_score, upvotes, downvotes, category, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (domain) DO NOTHING`

// ReputationRepository stores source reputation in postgres or sqlite.
type ReputationRepository struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
	now     func() time.Time
}

// NewReputationRepository creates a repository for db.
func NewReputationRepository(db *sqlx.DB) *ReputationRepository {
	var placeholder sq.PlaceholderFormat = sq.Question
	if db.DriverName() == DriverPostgres {
		placeholder = sq.Dollar
	}
	return &ReputationRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// FindByDomain retrieves a record by its registrable domain.
func (r *ReputationRepository) FindByDomain(ctx context.Context, domainName string) (*domain.SourceReputation, error) {
	var rec domain.SourceReputation
	query := r.db.Rebind(`SELECT ` + reputationColumns + ` FROM source_reputations WHERE domain = ?`)

	if err := r.db.GetContext(ctx, &rec, query, domainName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReputationNotFound
		}
		return nil, fmt.Errorf("get source reputation: %w", err)
	}
	return &rec, nil
}

// InsertIfAbsent inserts rec unless the domain exists.
func (r *ReputationRepository) InsertIfAbsent(ctx context.Context, rec *domain.SourceReputation) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(insertIfAbsentQuery),
		rec.Domain, rec.TrustScore, rec.Upvotes, rec.Downvotes, rec.Category, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert source reputation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert source reputation: %w", err)
	}
	return n == 1, nil
}

// UpsertVote applies vote atomically in the database.
func (r *ReputationRepository) UpsertVote(ctx context.Context, domainName string, vote domain.Vote) (*domain.SourceReputation, error) {
	now := r.now()
	fresh := domain.NewSourceReputation(domainName, domain.CategoryFromFeedback, now)
	fresh.ApplyVote(vote, now)

	var rec domain.SourceReputation
	err := r.db.GetContext(ctx, &rec, r.db.Rebind(upsertVoteQuery),
		fresh.Domain, fresh.TrustScore, fresh.Upvotes, fresh.Downvotes, fresh.Category, fresh.CreatedAt, fresh.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert vote: %w", err)
	}
	return &rec, nil
}

var sortColumns = map[string]string{
	domain.SortByDomain:     "domain",
	domain.SortByTrustScore: "trust_score",
	domain.SortByVotes:      "(upvotes + downvotes)",
	domain.SortByUpdatedAt:  "updated_at",
}

// List retrieves records with filtering, sorting and paging.
func (r *ReputationRepository) List(
	ctx context.Context, filter domain.ReputationFilter,
) ([]*domain.SourceReputation, int, error) {
	f := filter.Normalize()

	where := sq.And{}
	if f.Search != "" {
		where = append(where, sq.Expr(`domain LIKE ? ESCAPE '\'`, "%"+escapeLike(f.Search)+"%"))
	}
	if f.Category != "" {
		where = append(where, sq.Eq{"category": f.Category})
	}

	countQuery, countArgs, err := r.builder.Select("COUNT(*)").From("source_reputations").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err = r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count source reputations: %w", err)
	}

	order := strings.ToUpper(f.SortOrder)
	query, args, err := r.builder.Select(reputationColumns).
		From("source_reputations").
		Where(where).
		OrderBy(sortColumns[f.SortBy]+" "+order, "domain ASC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	recs := make([]*domain.SourceReputation, 0, f.Limit)
	if err = r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list source reputations: %w", err)
	}
	return recs, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
