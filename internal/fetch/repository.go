package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fundranker/internal/contracts"
)

// Repository persists NAV points when database persistence is on.
// Expects a nav_points table keyed on (scheme_code, nav_date).
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new NAV repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveSeries upserts every point of a series in one transaction.
func (r *Repository) SaveSeries(ctx context.Context, schemeCode string, series *contracts.PriceSeries) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO nav_points (scheme_code, nav_date, nav)
		VALUES ($1, $2, $3)
		ON CONFLICT (scheme_code, nav_date) DO UPDATE SET
			nav = EXCLUDED.nav
	`

	for _, p := range series.Points() {
		if _, err := tx.Exec(ctx, query, schemeCode, p.Date, p.NAV); err != nil {
			return fmt.Errorf("save nav point: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetSeries retrieves NAV points for a scheme within a date range.
func (r *Repository) GetSeries(ctx context.Context, schemeCode string, from, to time.Time) (*contracts.PriceSeries, error) {
	query := `
		SELECT nav_date, nav
		FROM nav_points
		WHERE scheme_code = $1 AND nav_date BETWEEN $2 AND $3
		ORDER BY nav_date ASC
	`

	rows, err := r.pool.Query(ctx, query, schemeCode, from, to)
	if err != nil {
		return nil, fmt.Errorf("query nav points: %w", err)
	}
	defer rows.Close()

	var points []contracts.PricePoint
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Date, &p.NAV); err != nil {
			return nil, fmt.Errorf("scan nav point: %w", err)
		}
		points = append(points, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate nav points: %w", rows.Err())
	}

	return contracts.NewPriceSeries(points)
}

// LatestDate returns the newest stored NAV date for a scheme.
func (r *Repository) LatestDate(ctx context.Context, schemeCode string) (time.Time, error) {
	query := `SELECT MAX(nav_date) FROM nav_points WHERE scheme_code = $1`

	var latest *time.Time
	if err := r.pool.QueryRow(ctx, query, schemeCode).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("query latest nav date: %w", err)
	}
	if latest == nil {
		return time.Time{}, fmt.Errorf("no nav points for scheme %s", schemeCode)
	}
	return *latest, nil
}
