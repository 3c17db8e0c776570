package notices

import (
	"context"
	"sync"
	"time"

	"github.com/bomin1134/gb-ud-portal/internal/server/models"
)

type MemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	notices []models.Notice
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, n *models.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	n.ID = r.nextID
	n.CreatedAt = r.now()
	r.notices = append(r.notices, *n)
	return nil
}

func (r *MemoryRepository) List(_ context.Context, limit int) ([]*models.Notice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []*models.Notice{}
	for i := len(r.notices) - 1; i >= 0 && len(result) < limit; i-- {
		n := r.notices[i]
		result = append(result, &n)
	}
	return result, nil
}
