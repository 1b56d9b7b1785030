package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fundranker/internal/contracts"
)

// ErrNoResult is returned when no ranking result has been stored for a
// category and strategy.
var ErrNoResult = errors.New("no ranking result found")

// Repository persists ranking results in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new selection repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveResult stores one ranking result, replacing any earlier result
// for the same category, strategy and date.
func (r *Repository) SaveResult(ctx context.Context, result *contracts.RankingResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	day := result.GeneratedAt.Truncate(24 * time.Hour)

	_, err = tx.Exec(ctx,
		`DELETE FROM ranking_results
		 WHERE category = $1 AND strategy = $2 AND rank_date = $3`,
		result.Category, result.Strategy, day,
	)
	if err != nil {
		return fmt.Errorf("failed to delete old results: %w", err)
	}

	query := `
		INSERT INTO ranking_results (
			category, strategy, rank_date, generated_at, top_n,
			scheme_code, fund_name, rank, total_score, components, span_days
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, fund := range result.Funds {
		components, err := json.Marshal(fund.Components)
		if err != nil {
			return fmt.Errorf("failed to marshal components: %w", err)
		}

		_, err = tx.Exec(ctx, query,
			result.Category, result.Strategy, day, result.GeneratedAt, result.TopN,
			fund.SchemeCode, fund.Name, fund.Rank, fund.TotalScore, components, fund.SpanDays,
		)
		if err != nil {
			return fmt.Errorf("failed to insert ranking row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetLatest retrieves the most recent result for a category and
// strategy.
func (r *Repository) GetLatest(ctx context.Context, category, strategy string) (*contracts.RankingResult, error) {
	var day *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(rank_date) FROM ranking_results
		 WHERE category = $1 AND strategy = $2`,
		category, strategy,
	).Scan(&day)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to find latest rank date: %w", err)
	}
	if day == nil {
		return nil, fmt.Errorf("%s/%s: %w", category, strategy, ErrNoResult)
	}

	query := `
		SELECT generated_at, top_n, scheme_code, fund_name, rank,
		       total_score, components, span_days
		FROM ranking_results
		WHERE category = $1 AND strategy = $2 AND rank_date = $3
		ORDER BY rank ASC
	`

	rows, err := r.pool.Query(ctx, query, category, strategy, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking results: %w", err)
	}
	defer rows.Close()

	result := &contracts.RankingResult{
		Category: category,
		Strategy: strategy,
	}

	for rows.Next() {
		var fund contracts.RankedFund
		var components []byte

		err := rows.Scan(
			&result.GeneratedAt, &result.TopN, &fund.SchemeCode, &fund.Name,
			&fund.Rank, &fund.TotalScore, &components, &fund.SpanDays,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if err := json.Unmarshal(components, &fund.Components); err != nil {
			return nil, fmt.Errorf("failed to unmarshal components: %w", err)
		}

		result.Funds = append(result.Funds, fund)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if len(result.Funds) == 0 {
		return nil, fmt.Errorf("no ranking result found for %s/%s", category, strategy)
	}

	return result, nil
}

// ListCategories returns the categories with stored results.
func (r *Repository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT category FROM ranking_results ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return categories, nil
}
