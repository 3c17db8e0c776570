package fieldreports

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/bomin1134/gb-ud-portal/internal/server/models"
)

type MemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	reports []models.FieldReport
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func clone(fr models.FieldReport) models.FieldReport {
	fr.Measurements = maps.Clone(fr.Measurements)
	if fr.Measurements == nil {
		fr.Measurements = map[string]string{}
	}
	fr.Photos = slices.Clone(fr.Photos)
	return fr
}

func (r *MemoryRepository) Create(_ context.Context, fr *models.FieldReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	fr.ID = r.nextID
	fr.CreatedAt = r.now()
	r.reports = append(r.reports, clone(*fr))
	return nil
}

func (r *MemoryRepository) ListByBranch(_ context.Context, branchID int, limit int) ([]*models.FieldReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []*models.FieldReport{}
	for i := len(r.reports) - 1; i >= 0 && len(result) < limit; i-- {
		if r.reports[i].BranchID != branchID {
			continue
		}
		fr := clone(r.reports[i])
		result = append(result, &fr)
	}
	return result, nil
}
