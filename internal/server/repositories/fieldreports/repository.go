// Package fieldreports stores geotagged accessibility-defect measurements.
package fieldreports

import (
	"context"

	"github.com/bomin1134/gb-ud-portal/internal/server/models"
)

type Repository interface {
	// Create stores r and fills in its ID and CreatedAt.
	Create(ctx context.Context, r *models.FieldReport) error
	// ListByBranch returns up to limit reports of a branch, newest first.
	ListByBranch(ctx context.Context, branchID int, limit int) ([]*models.FieldReport, error)
}
