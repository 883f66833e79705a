package snapshot

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equitylens/equitylens/internal/contracts"
)

const snapshotDDL = `
	CREATE SCHEMA IF NOT EXISTS scoring;
	CREATE TABLE IF NOT EXISTS scoring.snapshots (
		ticker     TEXT        NOT NULL,
		scored_on  DATE        NOT NULL,
		scored_at  TIMESTAMPTZ NOT NULL,
		score      INT         NOT NULL,
		score_adj  INT         NOT NULL,
		coverage   INT         NOT NULL,
		verdict    TEXT        NOT NULL,
		payload    JSONB       NOT NULL,
		sources    JSONB       NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (ticker, scored_on)
	);
`

func setupRepository(t *testing.T) *Repository {
	t.Helper()

	// Skip if running in CI without database
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), connString)
	require.NoError(t, err, "database connection failed")
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(), snapshotDDL)
	require.NoError(t, err, "schema setup failed")

	_, err = pool.Exec(context.Background(), `DELETE FROM scoring.snapshots WHERE ticker LIKE 'ZZTEST%'`)
	require.NoError(t, err)

	return NewRepository(pool)
}

func testPayload(ticker string, score int) contracts.ScorePayload {
	return contracts.ScorePayload{
		Ticker:        ticker,
		Score:         score,
		ScoreAdjusted: score + 5,
		Color:         contracts.ColorModerate,
		Verdict:       contracts.VerdictWatch,
		Coverage:      55,
		OpportunitySeries: []contracts.OpportunityPoint{
			{Timestamp: 1700000000, Close: 100, Opportunity: 40},
		},
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	scoredAt := time.Now().UTC()
	payload := testPayload("ZZTEST1", 60)
	sources := []string{"marketd:quote", "fundament:statements"}

	require.NoError(t, repo.Save(ctx, payload, sources, scoredAt))

	rec, err := repo.Latest(ctx, "ZZTEST1")
	require.NoError(t, err)
	assert.Equal(t, "ZZTEST1", rec.Ticker)
	assert.Equal(t, 60, rec.Payload.Score)
	assert.Equal(t, sources, rec.Sources)
	// The opportunity series is recomputed on demand, never stored.
	assert.Nil(t, rec.Payload.OpportunitySeries)

	// Same day upsert replaces instead of appending.
	require.NoError(t, repo.Save(ctx, testPayload("ZZTEST1", 65), sources, scoredAt))
	history, err := repo.History(ctx, "ZZTEST1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 65, history[0].Payload.Score)
}

func TestRepositoryLatestNotFound(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.Latest(context.Background(), "ZZTESTMISSING")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryLatestAll(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	scoredAt := time.Now().UTC()
	sources := []string{"marketd:quote"}
	require.NoError(t, repo.Save(ctx, testPayload("ZZTEST2", 40), sources, scoredAt.Add(-48*time.Hour)))
	require.NoError(t, repo.Save(ctx, testPayload("ZZTEST2", 45), sources, scoredAt))
	require.NoError(t, repo.Save(ctx, testPayload("ZZTEST3", 80), sources, scoredAt))

	records, err := repo.LatestAll(ctx, 100)
	require.NoError(t, err)

	byTicker := make(map[string]Record)
	for _, rec := range records {
		if rec.Ticker == "ZZTEST2" || rec.Ticker == "ZZTEST3" {
			byTicker[rec.Ticker] = rec
		}
	}
	require.Len(t, byTicker, 2)
	assert.Equal(t, 45, byTicker["ZZTEST2"].Payload.Score)
	assert.Equal(t, 80, byTicker["ZZTEST3"].Payload.Score)
}
