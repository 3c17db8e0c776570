// Package history stores the append-only audit trail of submit and delete
// actions per branch week.
package history

import (
	"context"

	"github.com/bomin1134/gb-ud-portal/internal/server/models"
)

type Repository interface {
	// Append records e and fills in its ID and CreatedAt.
	Append(ctx context.Context, e *models.SubmissionEvent) error
	// List returns up to limit events for the pair, newest first.
	List(ctx context.Context, branchID int, weekID string, limit int) ([]*models.SubmissionEvent, error)
}
