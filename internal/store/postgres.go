// Package store provides optional Postgres persistence for contenders,
// cutlist snapshots, and run checkpoints, as a durable twin of the local
// JSON files for deployments where the filesystem doesn't survive a
// redeploy. pgxpool.New + Ping at Connect, a schema.sql file executed
// verbatim at InitSchema, and explicit Begin/Exec/Rollback/Commit
// transactions rather than an ORM.
package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rawblock/cryptomunge/pkg/models"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps a pgx connection pool for the search engine's durable
// persistence needs.
type Store struct {
	pool *pgxpool.Pool
}

// Connect initializes the connection pool to PostgreSQL using pgx.
func Connect(connStr string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("store: unable to connect: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("store: ping failed: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema executes the embedded schema against the connected database.
func (s *Store) InitSchema() error {
	_, err := s.pool.Exec(context.Background(), schemaSQL)
	if err != nil {
		return fmt.Errorf("store: schema init: %w", err)
	}
	return nil
}

// CreateRun registers a new search run and returns its generated id.
func (s *Store) CreateRun(ctx context.Context, driver string, dataType models.InputType, mode models.OperationMode, scoring models.ScoringMode, params any) (uuid.UUID, error) {
	id := uuid.New()
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return uuid.Nil, err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (run_id, driver, data_type, mode, scoring_mode, params) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, driver, string(dataType), string(mode), string(scoring), paramsJSON)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store: create run: %w", err)
	}
	return id, nil
}

// SaveContenders persists a batch of contenders for a run inside a
// single transaction, the same batch-insert shape as a SaveAnalysisResult
// call.
func (s *Store) SaveContenders(ctx context.Context, runID uuid.UUID, sequenceTexts []string, contenders []models.Contender) error {
	if len(contenders) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertSQL = `
		INSERT INTO contenders (run_id, sequence_text, aggregate_score, metrics)
		VALUES ($1, $2, $3, $4)
	`
	for i, c := range contenders {
		metricsJSON, err := json.Marshal(c.Metrics)
		if err != nil {
			return fmt.Errorf("store: marshal metrics: %w", err)
		}
		if _, err := tx.Exec(ctx, insertSQL, runID, sequenceTexts[i], c.AggregateScore, metricsJSON); err != nil {
			return fmt.Errorf("store: insert contender: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// TopContenders returns the n highest aggregate-score rows for a run.
type ContenderRow struct {
	SequenceText   string  `json:"sequenceText"`
	AggregateScore float64 `json:"aggregateScore"`
}

func (s *Store) TopContenders(ctx context.Context, runID uuid.UUID, n int) ([]ContenderRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT sequence_text, aggregate_score FROM contenders WHERE run_id = $1 ORDER BY aggregate_score DESC LIMIT $2`,
		runID, n)
	if err != nil {
		return nil, fmt.Errorf("store: query top contenders: %w", err)
	}
	defer rows.Close()

	var out []ContenderRow
	for rows.Next() {
		var r ContenderRow
		if err := rows.Scan(&r.SequenceText, &r.AggregateScore); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if out == nil {
		out = []ContenderRow{}
	}
	return out, nil
}

// SaveCheckpoint upserts the resumable run state for runID. It is the
// only copy of that state; no local checkpoint file is written.
func (s *Store) SaveCheckpoint(ctx context.Context, runID uuid.UUID, state []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO checkpoints (run_id, state) VALUES ($1, $2)
		 ON CONFLICT (run_id) DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()`,
		runID, state)
	if err != nil {
		return fmt.Errorf("store: save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint retrieves the last saved state for runID. No caller in
// this module restores a run from it.
func (s *Store) LoadCheckpoint(ctx context.Context, runID uuid.UUID) ([]byte, error) {
	var state []byte
	err := s.pool.QueryRow(ctx, `SELECT state FROM checkpoints WHERE run_id = $1`, runID).Scan(&state)
	if err != nil {
		return nil, fmt.Errorf("store: load checkpoint: %w", err)
	}
	return state, nil
}

// SaveCutListSnapshot records a point-in-time copy of one (level,
// pass-count) matrix slot, the durable counterpart of CutList.json.
func (s *Store) SaveCutListSnapshot(ctx context.Context, level, passCount int, matrix []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO cutlist_snapshots (level, pass_count, matrix) VALUES ($1, $2, $3)`,
		level, passCount, matrix)
	if err != nil {
		return fmt.Errorf("store: save cutlist snapshot: %w", err)
	}
	return nil
}

// RecordMungeFailure is an optional sink drivers may skip: a
// reversibility or scoring failure for one candidate sequence, logged
// for later inspection rather than halting the run.
func (s *Store) RecordMungeFailure(ctx context.Context, runID uuid.UUID, sequenceText, reason string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO munge_failures (run_id, sequence_text, reason) VALUES ($1, $2, $3)`,
		runID, sequenceText, reason)
	if err != nil {
		return fmt.Errorf("store: record munge failure: %w", err)
	}
	return nil
}
