package notices

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

func (r *PostgresRepository) Create(ctx context.Context, n *models.Notice) error {
	query := `
		INSERT INTO notices (title, body, author)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, n.Title, n.Body, n.Author).Scan(&n.ID, &n.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*models.Notice, error) {
	query := `SELECT id, title, body, author, created_at FROM notices ORDER BY created_at DESC, id DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select notices: %w", err)
	}
	defer rows.Close()

	result := []*models.Notice{}
	for rows.Next() {
		var n models.Notice
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.Author, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
