// Package submissions stores the weekly submission record of each branch.
package submissions

import (
	"context"

	"github.com/bomin1134/gb-ud-portal/internal/server/models"
)

// Repository reads and writes submission records. Reads never report a
// missing record: an unwritten (branch, week) comes back all-default.
// Writes replace the whole record; concurrent writers are last-write-wins.
type Repository interface {
	Get(ctx context.Context, branchID int, weekID string) (*models.Submission, error)
	// GetWeeks returns one record per week id, in the order given.
	GetWeeks(ctx context.Context, branchID int, weekIDs []string) ([]*models.Submission, error)
	// GetMatrix returns a record for every (branch, week) pair keyed by
	// common.RecordID.
	GetMatrix(ctx context.Context, branchIDs []int, weekIDs []string) (map[string]*models.Submission, error)
	Upsert(ctx context.Context, s *models.Submission) error
	// Reset writes the all-default record for the pair. The row is kept.
	Reset(ctx context.Context, branchID int, weekID string) error
}

func fillWeeks(branchID int, weekIDs []string, found map[string]*models.Submission) []*models.Submission {
	out := make([]*models.Submission, 0, len(weekIDs))
	for _, w := range weekIDs {
		if s, ok := found[w]; ok {
			out = append(out, s)
			continue
		}
		out = append(out, models.NewSubmission(branchID, w))
	}
	return out
}

func fillMatrix(branchIDs []int, weekIDs []string, found map[string]*models.Submission) map[string]*models.Submission {
	out := make(map[string]*models.Submission, len(branchIDs)*len(weekIDs))
	for _, b := range branchIDs {
		for _, w := range weekIDs {
			s := models.NewSubmission(b, w)
			if got, ok := found[s.ID()]; ok {
				s = got
			}
			out[s.ID()] = s
		}
	}
	return out
}
