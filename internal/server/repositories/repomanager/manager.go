package repomanager

import (
	"context"

	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/fieldreports"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/history"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/notices"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/submissions"
)

// Repositories is one consistent set of repositories, either bound to the
// pool or to a single transaction.
type Repositories struct {
	Submissions  submissions.Repository
	History      history.Repository
	Notices      notices.Repository
	FieldReports fieldreports.Repository
}

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Repos() Repositories
	// WithTx runs fn against repositories that share one unit of work.
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Close() error
}
