package repomanager

import (
	"context"
	"sync"

	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/fieldreports"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/history"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/notices"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/submissions"
)

// MemoryRepositoryManager backs demo mode. WithTx only serializes units of
// work; a failed fn does not roll back what it already wrote.
type MemoryRepositoryManager struct {
	mu    sync.Mutex
	repos Repositories
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{repos: Repositories{
		Submissions:  submissions.NewMemoryRepository(),
		History:      history.NewMemoryRepository(),
		Notices:      notices.NewMemoryRepository(),
		FieldReports: fieldreports.NewMemoryRepository(),
	}}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Repos() Repositories { return m.repos }

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m.repos)
}

func (m *MemoryRepositoryManager) Close() error { return nil }
