package fieldreports

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bomin1134/gb-ud-portal/internal/attachments"
	"github.com/bomin1134/gb-ud-portal/internal/dbx"
	"github.com/bomin1134/gb-ud-portal/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, fr *models.FieldReport) error {
	measurements := fr.Measurements
	if measurements == nil {
		measurements = map[string]string{}
	}
	m, err := json.Marshal(measurements)
	if err != nil {
		return fmt.Errorf("encode measurements: %w", err)
	}

	query := `
		INSERT INTO field_reports (user_id, branch_id, category, item_name, latitude, longitude, address, measurements, memo, photos)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err = r.db.QueryRowContext(ctx, query,
		fr.UserID, fr.BranchID, fr.Category, fr.ItemName, fr.Latitude, fr.Longitude,
		fr.Address, string(m), fr.Memo, attachments.Encode(fr.Photos)).
		Scan(&fr.ID, &fr.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByBranch(ctx context.Context, branchID int, limit int) ([]*models.FieldReport, error) {
	query := `SELECT id, user_id, branch_id, category, item_name, latitude, longitude, address, measurements, memo, photos, created_at
		FROM field_reports
		WHERE branch_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, branchID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select field reports: %w", err)
	}
	defer rows.Close()

	result := []*models.FieldReport{}
	for rows.Next() {
		var (
			fr                   models.FieldReport
			measurements, photos []byte
		)
		if err := rows.Scan(&fr.ID, &fr.UserID, &fr.BranchID, &fr.Category, &fr.ItemName, &fr.Latitude, &fr.Longitude,
			&fr.Address, &measurements, &fr.Memo, &photos, &fr.CreatedAt); err != nil {
			return nil, err
		}
		fr.Measurements = map[string]string{}
		if len(measurements) > 0 {
			if err := json.Unmarshal(measurements, &fr.Measurements); err != nil {
				return nil, fmt.Errorf("decode measurements of report %d: %w", fr.ID, err)
			}
		}
		fr.Photos = attachments.Decode(string(photos))
		result = append(result, &fr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
