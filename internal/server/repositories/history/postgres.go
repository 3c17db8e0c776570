package history

import (
	"context"
	"fmt"

	"github.com/bomin1134/gb-ud-portal/internal/dbx"
	"github.com/bomin1134/gb-ud-portal/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, e *models.SubmissionEvent) error {
	query := `
		INSERT INTO submission_events (branch_id, week_id, action, status, file_count, actor)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		e.BranchID, e.WeekID, string(e.Action), string(e.Status), e.FileCount, e.Actor).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, branchID int, weekID string, limit int) ([]*models.SubmissionEvent, error) {
	query := `SELECT id, branch_id, week_id, action, status, file_count, actor, created_at FROM submission_events
		WHERE branch_id = $1 AND week_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, branchID, weekID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	defer rows.Close()

	result := []*models.SubmissionEvent{}
	for rows.Next() {
		var (
			e              models.SubmissionEvent
			action, status string
		)
		if err := rows.Scan(&e.ID, &e.BranchID, &e.WeekID, &action, &status, &e.FileCount, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Action = models.EventAction(action)
		e.Status = models.ParseStatus(status)
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
