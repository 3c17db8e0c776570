// Package notices stores the portal-wide announcements admins post.
package notices

import (
	"context"

	"github.com/bomin1134/gb-ud-portal/internal/server/models"
)

type Repository interface {
	// Create stores n and fills in its ID and CreatedAt.
	Create(ctx context.Context, n *models.Notice) error
	// List returns up to limit notices, newest first.
	List(ctx context.Context, limit int) ([]*models.Notice, error)
}
