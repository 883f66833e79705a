// Package snapshot persists score payloads so history survives cache
// expiry and restarts.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equitylens/equitylens/internal/contracts"
)

// ErrNotFound is returned when no snapshot exists for a ticker.
var ErrNotFound = errors.New("snapshot not found")

// Record is one persisted scoring run.
type Record struct {
	Ticker    string                 `json:"ticker"`
	ScoredAt  time.Time              `json:"scored_at"`
	Payload   contracts.ScorePayload `json:"payload"`
	Sources   []string               `json:"sources"`
	CreatedAt time.Time              `json:"created_at"`
}

// Repository handles score snapshot persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a snapshot repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save upserts the latest scoring run for a ticker and day. The
// opportunity series is not persisted; it is recomputed on demand.
func (r *Repository) Save(ctx context.Context, payload contracts.ScorePayload, sources []string, scoredAt time.Time) error {
	stored := payload
	stored.OpportunitySeries = nil

	payloadJSON, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}

	query := `
		INSERT INTO scoring.snapshots (
			ticker, scored_on, scored_at, score, score_adj, coverage, verdict, payload, sources
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (ticker, scored_on) DO UPDATE SET
			scored_at = EXCLUDED.scored_at,
			score = EXCLUDED.score,
			score_adj = EXCLUDED.score_adj,
			coverage = EXCLUDED.coverage,
			verdict = EXCLUDED.verdict,
			payload = EXCLUDED.payload,
			sources = EXCLUDED.sources
	`

	_, err = r.pool.Exec(ctx, query,
		payload.Ticker, scoredAt.UTC().Truncate(24*time.Hour), scoredAt,
		payload.Score, payload.ScoreAdjusted, payload.Coverage, payload.Verdict,
		payloadJSON, sourcesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", payload.Ticker, err)
	}

	return nil
}

// Latest returns the most recent snapshot for a ticker.
func (r *Repository) Latest(ctx context.Context, ticker string) (*Record, error) {
	query := `
		SELECT ticker, scored_at, payload, sources, created_at
		FROM scoring.snapshots
		WHERE ticker = $1
		ORDER BY scored_at DESC
		LIMIT 1
	`

	return r.scanOne(r.pool.QueryRow(ctx, query, ticker), ticker)
}

// History returns up to limit snapshots for a ticker, newest first.
func (r *Repository) History(ctx context.Context, ticker string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 30
	}

	query := `
		SELECT ticker, scored_at, payload, sources, created_at
		FROM scoring.snapshots
		WHERE ticker = $1
		ORDER BY scored_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", ticker, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history for %s: %w", ticker, err)
	}

	return records, nil
}

// LatestAll returns the newest snapshot per ticker, ordered by ticker.
func (r *Repository) LatestAll(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT DISTINCT ON (ticker) ticker, scored_at, payload, sources, created_at
		FROM scoring.snapshots
		ORDER BY ticker, scored_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshots: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read latest snapshots: %w", err)
	}

	return records, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func (r *Repository) scanOne(row pgx.Row, ticker string) (*Record, error) {
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func scanRecord(row scannable) (*Record, error) {
	var rec Record
	var payloadJSON, sourcesJSON []byte

	if err := row.Scan(&rec.Ticker, &rec.ScoredAt, &payloadJSON, &sourcesJSON, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	if err := json.Unmarshal(payloadJSON, &rec.Payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if err := json.Unmarshal(sourcesJSON, &rec.Sources); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
	}

	return &rec, nil
}
