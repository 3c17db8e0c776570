package submissions

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/bomin1134/gb-ud-portal/internal/attachments"
	"github.com/bomin1134/gb-ud-portal/internal/common"
	"github.com/bomin1134/gb-ud-portal/internal/server/models"
)

// MemoryRepository keeps records in process memory for demo mode. Each
// instance is an independent store; records live as long as the instance.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]models.Submission
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]models.Submission)}
}

// clone copies s so callers never share slices or timestamps with the store.
func clone(s models.Submission) *models.Submission {
	s.Files = slices.Clone(s.Files)
	if s.SubmittedAt != nil {
		t := *s.SubmittedAt
		s.SubmittedAt = &t
	}
	if s.Files == nil {
		s.Files = []attachments.Ref{}
	}
	return &s
}

func (r *MemoryRepository) Get(_ context.Context, branchID int, weekID string) (*models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.records[common.RecordID(branchID, weekID)]; ok {
		return clone(s), nil
	}
	return models.NewSubmission(branchID, weekID), nil
}

func (r *MemoryRepository) GetWeeks(_ context.Context, branchID int, weekIDs []string) ([]*models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[string]*models.Submission)
	for _, w := range weekIDs {
		if s, ok := r.records[common.RecordID(branchID, w)]; ok {
			found[w] = clone(s)
		}
	}
	return fillWeeks(branchID, weekIDs, found), nil
}

func (r *MemoryRepository) GetMatrix(_ context.Context, branchIDs []int, weekIDs []string) (map[string]*models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[string]*models.Submission)
	for _, b := range branchIDs {
		for _, w := range weekIDs {
			id := common.RecordID(b, w)
			if s, ok := r.records[id]; ok {
				found[id] = clone(s)
			}
		}
	}
	return fillMatrix(branchIDs, weekIDs, found), nil
}

func (r *MemoryRepository) Upsert(_ context.Context, s *models.Submission) error {
	stored := clone(*s)
	if stored.SubmittedAt != nil {
		// match timestamptz precision
		t := stored.SubmittedAt.Truncate(time.Microsecond)
		stored.SubmittedAt = &t
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[s.ID()] = *stored
	return nil
}

func (r *MemoryRepository) Reset(ctx context.Context, branchID int, weekID string) error {
	return r.Upsert(ctx, models.NewSubmission(branchID, weekID))
}
