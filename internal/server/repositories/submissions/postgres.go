package submissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bomin1134/gb-ud-portal/internal/attachments"
	"github.com/bomin1134/gb-ud-portal/internal/common"
	"github.com/bomin1134/gb-ud-portal/internal/dbx"
	"github.com/bomin1134/gb-ud-portal/internal/server/models"
)

const selectColumns = `SELECT branch_id, week_id, title, status, note, files, submitted_at FROM submissions`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*models.Submission, error) {
	var (
		s           models.Submission
		status      string
		files       sql.NullString
		submittedAt sql.NullTime
	)
	if err := row.Scan(&s.BranchID, &s.WeekID, &s.Title, &status, &s.Note, &files, &submittedAt); err != nil {
		return nil, err
	}
	s.Status = models.ParseStatus(status)
	s.Files = attachments.Decode(files.String)
	if submittedAt.Valid {
		t := submittedAt.Time
		s.SubmittedAt = &t
	}
	return &s, nil
}

func (r *PostgresRepository) Get(ctx context.Context, branchID int, weekID string) (*models.Submission, error) {
	query := selectColumns + ` WHERE id = $1`

	s, err := scanSubmission(r.db.QueryRowContext(ctx, query, common.RecordID(branchID, weekID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NewSubmission(branchID, weekID), nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) GetWeeks(ctx context.Context, branchID int, weekIDs []string) ([]*models.Submission, error) {
	if len(weekIDs) == 0 {
		return []*models.Submission{}, nil
	}

	query := selectColumns + ` WHERE branch_id = $1 AND week_id IN (` + dbx.Placeholders(2, len(weekIDs)) + `)`
	args := make([]any, 0, len(weekIDs)+1)
	args = append(args, branchID)
	for _, w := range weekIDs {
		args = append(args, w)
	}

	found, err := r.collect(ctx, query, args, func(s *models.Submission) string { return s.WeekID })
	if err != nil {
		return nil, err
	}
	return fillWeeks(branchID, weekIDs, found), nil
}

func (r *PostgresRepository) GetMatrix(ctx context.Context, branchIDs []int, weekIDs []string) (map[string]*models.Submission, error) {
	if len(branchIDs) == 0 || len(weekIDs) == 0 {
		return map[string]*models.Submission{}, nil
	}

	query := selectColumns +
		` WHERE branch_id IN (` + dbx.Placeholders(1, len(branchIDs)) + `)` +
		` AND week_id IN (` + dbx.Placeholders(len(branchIDs)+1, len(weekIDs)) + `)`
	args := make([]any, 0, len(branchIDs)+len(weekIDs))
	for _, b := range branchIDs {
		args = append(args, b)
	}
	for _, w := range weekIDs {
		args = append(args, w)
	}

	found, err := r.collect(ctx, query, args, (*models.Submission).ID)
	if err != nil {
		return nil, err
	}
	return fillMatrix(branchIDs, weekIDs, found), nil
}

func (r *PostgresRepository) collect(ctx context.Context, query string, args []any, key func(*models.Submission) string) (map[string]*models.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select submissions: %w", err)
	}
	defer rows.Close()

	found := make(map[string]*models.Submission)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		found[key(s)] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return found, nil
}

// Upsert writes the whole record, replacing any previous version.
func (r *PostgresRepository) Upsert(ctx context.Context, s *models.Submission) error {
	query := `
		INSERT INTO submissions (id, branch_id, week_id, title, status, note, files, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (id)
		DO UPDATE SET
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			note = EXCLUDED.note,
			files = EXCLUDED.files,
			submitted_at = EXCLUDED.submitted_at,
			updated_at = now();
	`
	var submittedAt sql.NullTime
	if s.SubmittedAt != nil {
		submittedAt = sql.NullTime{Time: *s.SubmittedAt, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, query,
		s.ID(), s.BranchID, s.WeekID, s.Title, string(s.Status), s.Note, attachments.Encode(s.Files), submittedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

func (r *PostgresRepository) Reset(ctx context.Context, branchID int, weekID string) error {
	return r.Upsert(ctx, models.NewSubmission(branchID, weekID))
}
