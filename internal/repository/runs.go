package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olamide-oso/docfields/constants"
	"github.com/olamide-oso/docfields/internal/pipeline"
)

// RunStore persists per-document outcomes for later inspection. Schemas are
// never persisted, only results.
type RunStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRunStore(db *sql.DB, logger *slog.Logger) *RunStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunStore{db: db, logger: logger}
}

// Migrate creates the outcome tables if they do not exist. The DDL sticks to
// the SQL subset both sqlite and postgres accept.
func (s *RunStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			instructions TEXT NOT NULL,
			percent_scale TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			run_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			document TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			fields TEXT,
			PRIMARY KEY (run_id, position)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// SaveRun writes the run header and every outcome in one transaction.
func (s *RunStore) SaveRun(ctx context.Context, result pipeline.Result, instructions string, scale constants.PercentScale) error {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, instructions, percent_scale, created_at) VALUES ($1, $2, $3, $4)`,
		result.RunID.String(), instructions, string(scale), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, o := range result.Outcomes {
		var fields any
		if o.Fields != nil {
			b, err := json.Marshal(o.Fields)
			if err != nil {
				return fmt.Errorf("encode fields for %s: %w", o.Document, err)
			}
			fields = string(b)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO outcomes (run_id, position, document, status, error, fields) VALUES ($1, $2, $3, $4, $5, $6)`,
			result.RunID.String(), i, o.Document, string(o.Status), o.Err, fields,
		); err != nil {
			return fmt.Errorf("insert outcome %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("repository.run.saved",
		"run_id", result.RunID.String(),
		"outcomes", len(result.Outcomes),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// OutcomeRow is a stored outcome as read back from the store. Fields is the
// raw JSON of the normalized record, empty for failures.
type OutcomeRow struct {
	Document string
	Status   constants.OutcomeStatus
	Err      string
	Fields   string
}

// ListOutcomes returns a run's outcomes in input order.
func (s *RunStore) ListOutcomes(ctx context.Context, runID uuid.UUID) ([]OutcomeRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document, status, error, fields FROM outcomes WHERE run_id = $1 ORDER BY position`,
		runID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []OutcomeRow
	for rows.Next() {
		var r OutcomeRow
		var errMsg, fields sql.NullString
		if err := rows.Scan(&r.Document, &r.Status, &errMsg, &fields); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		r.Err = errMsg.String
		r.Fields = fields.String
		out = append(out, r)
	}
	return out, rows.Err()
}
