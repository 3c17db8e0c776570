package history

import (
	"context"
	"sync"
	"time"

	"github.com/bomin1134/gb-ud-portal/internal/server/models"
)

type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	events []models.SubmissionEvent
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func (r *MemoryRepository) Append(_ context.Context, e *models.SubmissionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	e.ID = r.nextID
	e.CreatedAt = r.now()
	r.events = append(r.events, *e)
	return nil
}

func (r *MemoryRepository) List(_ context.Context, branchID int, weekID string, limit int) ([]*models.SubmissionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []*models.SubmissionEvent{}
	for i := len(r.events) - 1; i >= 0 && len(result) < limit; i-- {
		e := r.events[i]
		if e.BranchID == branchID && e.WeekID == weekID {
			result = append(result, &e)
		}
	}
	return result, nil
}
