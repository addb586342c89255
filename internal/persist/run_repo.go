package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/l1jgo/itemforge/internal/apply"
)

// RunRow is one document's outcome within an apply run.
type RunRow struct {
	RunID     uuid.UUID
	Scope     string
	Origin    string
	Applied   int
	Failed    int
	Skipped   int
	CreatedAt time.Time
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// runRows flattens a summary into rows sharing one run id.
func runRows(id uuid.UUID, sum *apply.Summary) []RunRow {
	rows := make([]RunRow, 0, len(sum.Documents))
	for _, d := range sum.Documents {
		rows = append(rows, RunRow{
			RunID:   id,
			Scope:   string(d.Scope),
			Origin:  d.Origin,
			Applied: d.Applied,
			Failed:  d.Failed,
			Skipped: d.Skipped,
		})
	}
	return rows
}

// Record writes every document result of sum in a single transaction and
// returns the new run id.
func (r *RunRepo) Record(ctx context.Context, sum *apply.Summary) (uuid.UUID, error) {
	id := uuid.New()
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("run begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, row := range runRows(id, sum) {
		if _, err := tx.Exec(ctx,
			`INSERT INTO apply_runs (run_id, scope, origin, applied, failed, skipped)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			row.RunID, row.Scope, row.Origin, row.Applied, row.Failed, row.Skipped,
		); err != nil {
			return uuid.Nil, fmt.Errorf("run insert: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("run commit: %w", err)
	}
	return id, nil
}

// Recent returns the rows of the newest runs, newest first.
func (r *RunRepo) Recent(ctx context.Context, limit int) ([]RunRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT run_id, scope, origin, applied, failed, skipped, created_at
		 FROM apply_runs ORDER BY created_at DESC, id DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RunRow
	for rows.Next() {
		var row RunRow
		if err := rows.Scan(
			&row.RunID, &row.Scope, &row.Origin,
			&row.Applied, &row.Failed, &row.Skipped, &row.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
