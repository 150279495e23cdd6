package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rawblock/flashengine/pkg/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect initializes the connection pool to PostgreSQL using pgx.
func Connect(connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL for the anonymization engine")
	return &PostgresStore{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes the schema.sql file.
func (s *PostgresStore) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/db/schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %v", err)
	}

	_, err = s.pool.Exec(context.Background(), string(schemaBytes))
	if err != nil {
		return fmt.Errorf("failed to execute schema migrations: %v", err)
	}

	log.Println("Anonymization engine schema initialized")
	return nil
}

// SaveRun upserts a run's submitted configuration and, once available, its
// outcome. cfg is stored verbatim as JSONB so a run's exact parameters stay
// auditable regardless of later default changes.
func (s *PostgresStore) SaveRun(ctx context.Context, runID string, cfg models.RunConfig, result models.RunResult) error {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal run config: %v", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	upsertSQL := `
		INSERT INTO anonymization_runs (run_id, status, config, level_vector, quality, outlier_count, error, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CASE WHEN $2 IN ('done', 'no_solution', 'interrupted', 'error') THEN NOW() ELSE NULL END)
		ON CONFLICT (run_id) DO UPDATE
		SET status = EXCLUDED.status,
		    level_vector = EXCLUDED.level_vector,
		    quality = EXCLUDED.quality,
		    outlier_count = EXCLUDED.outlier_count,
		    error = EXCLUDED.error,
		    completed_at = EXCLUDED.completed_at;
	`
	levelVector := result.LevelVector
	if levelVector == nil {
		levelVector = []int{}
	}
	_, err = tx.Exec(ctx, upsertSQL, runID, result.Status, cfgJSON, levelVector, result.Quality, result.OutlierCount, nullIfEmpty(result.Error))
	if err != nil {
		return fmt.Errorf("failed to upsert anonymization_runs: %v", err)
	}

	return tx.Commit(ctx)
}

// SaveNodeStates persists the diagnostic lattice states returned alongside a
// no-solution outcome, replacing any previously stored states for runID.
func (s *PostgresStore) SaveNodeStates(ctx context.Context, runID string, states []models.NodeStateView) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM anonymization_node_states WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("failed to clear prior node states: %v", err)
	}

	insertSQL := `INSERT INTO anonymization_node_states (run_id, level, state, quality) VALUES ($1, $2, $3, $4)`
	for _, st := range states {
		if _, err := tx.Exec(ctx, insertSQL, runID, st.Level, st.State, st.Quality); err != nil {
			return fmt.Errorf("failed to insert node state: %v", err)
		}
	}

	return tx.Commit(ctx)
}

// GetRun fetches one run's stored status and outcome by id.
func (s *PostgresStore) GetRun(ctx context.Context, runID string) (models.RunResult, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT status, level_vector, quality, outlier_count, error
		FROM anonymization_runs WHERE run_id = $1
	`, runID)

	var result models.RunResult
	result.RunID = runID
	var levelVector []int
	var quality *float64
	var outlierCount *int
	var runErr *string
	if err := row.Scan(&result.Status, &levelVector, &quality, &outlierCount, &runErr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RunResult{}, false, nil
		}
		return models.RunResult{}, false, err
	}
	result.LevelVector = levelVector
	if quality != nil {
		result.Quality = *quality
	}
	if outlierCount != nil {
		result.OutlierCount = *outlierCount
	}
	if runErr != nil {
		result.Error = *runErr
	}
	return result, true, nil
}

// ListRuns returns a page of runs, most recently submitted first.
func (s *PostgresStore) ListRuns(ctx context.Context, page, limit int) ([]models.RunResult, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var totalCount int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM anonymization_runs`).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT run_id, status, level_vector, quality, outlier_count, error
		FROM anonymization_runs
		ORDER BY submitted_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []models.RunResult
	for rows.Next() {
		var r models.RunResult
		var levelVector []int
		var quality *float64
		var outlierCount *int
		var runErr *string
		if err := rows.Scan(&r.RunID, &r.Status, &levelVector, &quality, &outlierCount, &runErr); err != nil {
			return nil, 0, err
		}
		r.LevelVector = levelVector
		if quality != nil {
			r.Quality = *quality
		}
		if outlierCount != nil {
			r.OutlierCount = *outlierCount
		}
		if runErr != nil {
			r.Error = *runErr
		}
		runs = append(runs, r)
	}
	if runs == nil {
		runs = []models.RunResult{}
	}
	return runs, totalCount, nil
}

// GetPool exposes the connection pool for callers that need a raw query path.
func (s *PostgresStore) GetPool() *pgxpool.Pool {
	return s.pool
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
