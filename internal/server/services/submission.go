// Package services contains the portal's business logic: the weekly
// submission workflow, authentication, notices and field reports.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/bomin1134/gb-ud-portal/internal/attachments"
	"github.com/bomin1134/gb-ud-portal/internal/common"
	"github.com/bomin1134/gb-ud-portal/internal/directory"
	"github.com/bomin1134/gb-ud-portal/internal/logging"
	"github.com/bomin1134/gb-ud-portal/internal/server/config"
	"github.com/bomin1134/gb-ud-portal/internal/server/models"
	"github.com/bomin1134/gb-ud-portal/internal/server/objectstore"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/repomanager"
	"github.com/bomin1134/gb-ud-portal/internal/weeks"
)

const historyLimit = 50

// FileUpload is one file received with a submit action.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

type SubmitInput struct {
	Title  string
	Status models.Status
	Note   string
	Files  []FileUpload
}

type UploadFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// SubmitResult is the saved record plus the files that could not be stored.
// Failed files are simply absent from the record.
type SubmitResult struct {
	Submission *models.Submission `json:"submission"`
	Failed     []UploadFailure    `json:"failed"`
}

type WeekRow struct {
	Week       weeks.Week         `json:"week"`
	Submission *models.Submission `json:"submission"`
}

type DashboardRow struct {
	Branch   directory.Branch `json:"branch"`
	Statuses []models.Status  `json:"statuses"`
}

type Dashboard struct {
	Weeks []weeks.Week   `json:"weeks"`
	Rows  []DashboardRow `json:"rows"`
}

type SubmissionService struct {
	repos     repomanager.RepositoryManager
	store     objectstore.Store
	directory *directory.Directory
	calendar  *weeks.Calendar
	log       logging.Logger

	uploader       uploader
	signedURLTTL   time.Duration
	maxFiles       int
	windowWeeks    int
	dashboardWeeks int

	now func() time.Time
}

func NewSubmissionService(repos repomanager.RepositoryManager, store objectstore.Store, dir *directory.Directory,
	cal *weeks.Calendar, log logging.Logger, cfg *config.Config) *SubmissionService {
	l := log.With("module", "submissions")
	return &SubmissionService{
		repos:          repos,
		store:          store,
		directory:      dir,
		calendar:       cal,
		log:            l,
		uploader:       uploader{store: store, log: l, limit: cfg.UploadConcurrency},
		signedURLTTL:   cfg.SignedURLTTL,
		maxFiles:       cfg.MaxFilesPerSubmit,
		windowWeeks:    cfg.WindowWeeks,
		dashboardWeeks: cfg.DashboardWeeks,
		now:            time.Now,
	}
}

// authorize checks that u may act on the branch and that the branch exists.
func (s *SubmissionService) authorize(u directory.User, branchID int) error {
	if !u.CanAccess(branchID) {
		return fmt.Errorf("branch %d: %w", branchID, common.ErrorForbidden)
	}
	if _, err := s.directory.Branch(branchID); err != nil {
		return err
	}
	return nil
}

func (s *SubmissionService) week(weekID string) (weeks.Week, error) {
	w, err := s.calendar.Parse(weekID)
	if err != nil {
		return weeks.Week{}, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return w, nil
}

func (s *SubmissionService) Get(ctx context.Context, u directory.User, branchID int, weekID string) (*models.Submission, error) {
	if err := s.authorize(u, branchID); err != nil {
		return nil, err
	}
	if _, err := s.week(weekID); err != nil {
		return nil, err
	}
	return s.repos.Repos().Submissions.Get(ctx, branchID, weekID)
}

// BranchOverview lists the branch's records for the rolling window, newest
// week first.
func (s *SubmissionService) BranchOverview(ctx context.Context, u directory.User, branchID int) ([]WeekRow, error) {
	if err := s.authorize(u, branchID); err != nil {
		return nil, err
	}

	ws := s.calendar.Rolling(s.windowWeeks)
	records, err := s.repos.Repos().Submissions.GetWeeks(ctx, branchID, weeks.IDs(ws))
	if err != nil {
		return nil, err
	}

	rows := make([]WeekRow, 0, len(ws))
	for i, w := range ws {
		rows = append(rows, WeekRow{Week: w, Submission: records[i]})
	}
	return rows, nil
}

// Dashboard is the admin matrix of every branch's status over the latest
// weeks.
func (s *SubmissionService) Dashboard(ctx context.Context, u directory.User) (*Dashboard, error) {
	if !u.IsAdmin() {
		return nil, common.ErrorForbidden
	}

	ws := s.calendar.Rolling(s.dashboardWeeks)
	ids := weeks.IDs(ws)
	matrix, err := s.repos.Repos().Submissions.GetMatrix(ctx, s.directory.BranchIDs(), ids)
	if err != nil {
		return nil, err
	}

	branches := s.directory.Branches()
	d := &Dashboard{Weeks: ws, Rows: make([]DashboardRow, 0, len(branches))}
	for _, b := range branches {
		row := DashboardRow{Branch: b, Statuses: make([]models.Status, 0, len(ids))}
		for _, w := range ids {
			st := models.StatusNotSubmitted
			if rec, ok := matrix[common.RecordID(b.ID, w)]; ok {
				st = rec.Status
			}
			row.Statuses = append(row.Statuses, st)
		}
		d.Rows = append(d.Rows, row)
	}
	return d, nil
}

// Submit uploads the new files, merges them into the files already on record
// and writes the whole record. Upload failures do not stop the submit; a
// record write failure returns common.ErrSaveFailed.
func (s *SubmissionService) Submit(ctx context.Context, u directory.User, branchID int, weekID string, in SubmitInput) (*SubmitResult, error) {
	if err := s.authorize(u, branchID); err != nil {
		return nil, err
	}
	if _, err := s.week(weekID); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.StatusReportSubmitted
	}
	if !in.Status.Submitted() {
		return nil, fmt.Errorf("%w: status must be %s or %s", common.ErrorValidation,
			models.StatusReportSubmitted, models.StatusOfficialSubmitted)
	}
	if len(in.Files) > s.maxFiles {
		return nil, fmt.Errorf("%w: at most %d files per submit", common.ErrorValidation, s.maxFiles)
	}

	existing, err := s.repos.Repos().Submissions.Get(ctx, branchID, weekID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSaveFailed, err)
	}

	uploaded, failed := s.uploader.upload(ctx, in.Files, func(f FileUpload) attachments.Ref {
		return attachments.Upload(branchID, weekID, f.Name)
	})

	now := s.now()
	rec := &models.Submission{
		BranchID:    branchID,
		WeekID:      weekID,
		Title:       in.Title,
		Status:      in.Status,
		Note:        in.Note,
		Files:       attachments.Merge(existing.Files, uploaded),
		SubmittedAt: &now,
	}

	err = s.repos.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		if err := repos.Submissions.Upsert(ctx, rec); err != nil {
			return err
		}
		return repos.History.Append(ctx, &models.SubmissionEvent{
			BranchID: branchID, WeekID: weekID, Action: models.EventSubmit,
			Status: rec.Status, FileCount: len(rec.Files), Actor: u.ID,
		})
	})
	if err != nil {
		s.log.Error(ctx, "submission not saved", "branch", branchID, "week", weekID, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrSaveFailed, err)
	}

	s.log.Info(ctx, "submission saved", "branch", branchID, "week", weekID,
		"status", rec.Status, "files", len(rec.Files), "failed", len(failed), "actor", u.ID)
	return &SubmitResult{Submission: rec, Failed: failed}, nil
}

// DeleteWeek removes every stored file of the week and resets its record.
// A failed purge is logged and the reset still happens; a failed reset is
// returned.
func (s *SubmissionService) DeleteWeek(ctx context.Context, u directory.User, branchID int, weekID string) error {
	if err := s.authorize(u, branchID); err != nil {
		return err
	}
	if _, err := s.week(weekID); err != nil {
		return err
	}

	prefix := attachments.Prefix(branchID, weekID)
	n, err := s.store.DeletePrefix(ctx, prefix)
	if err != nil {
		s.log.Warn(ctx, "purge incomplete", "prefix", prefix, "removed", n, "error", err)
	}

	err = s.repos.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		if err := repos.Submissions.Reset(ctx, branchID, weekID); err != nil {
			return err
		}
		return repos.History.Append(ctx, &models.SubmissionEvent{
			BranchID: branchID, WeekID: weekID, Action: models.EventDelete,
			Status: models.StatusNotSubmitted, Actor: u.ID,
		})
	})
	if err != nil {
		return fmt.Errorf("reset %s: %w", common.RecordID(branchID, weekID), err)
	}

	s.log.Info(ctx, "week deleted", "branch", branchID, "week", weekID, "removed", n, "actor", u.ID)
	return nil
}

var branchKey = regexp.MustCompile(`^(?:field/)?gb(\d{3})/`)

// BranchOfKey returns the branch a storage key belongs to.
func BranchOfKey(key string) (int, bool) {
	m := branchKey.FindStringSubmatch(key)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// FileURL returns a signed read URL for a stored file of a branch u may
// read. name is the suggested download name and defaults to the key's
// basename.
func (s *SubmissionService) FileURL(ctx context.Context, u directory.User, key, name string) (string, error) {
	branchID, ok := BranchOfKey(key)
	if !ok {
		return "", fmt.Errorf("%w: unknown file path", common.ErrorValidation)
	}
	if !u.CanAccess(branchID) {
		return "", common.ErrorForbidden
	}
	if name == "" {
		name = attachments.Basename(key)
	}

	url, err := s.store.SignedURL(ctx, key, name, s.signedURLTTL)
	if err != nil {
		return "", errors.Join(common.ErrorInternal, err)
	}
	return url, nil
}

func (s *SubmissionService) History(ctx context.Context, u directory.User, branchID int, weekID string) ([]*models.SubmissionEvent, error) {
	if err := s.authorize(u, branchID); err != nil {
		return nil, err
	}
	if _, err := s.week(weekID); err != nil {
		return nil, err
	}
	return s.repos.Repos().History.List(ctx, branchID, weekID, historyLimit)
}

// Weeks is the rolling window of selectable weeks.
func (s *SubmissionService) Weeks() []weeks.Week {
	return s.calendar.Rolling(s.windowWeeks)
}
