package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bomin1134/gb-ud-portal/internal/common"
	"github.com/bomin1134/gb-ud-portal/internal/directory"
	"github.com/bomin1134/gb-ud-portal/internal/logging"
	"github.com/bomin1134/gb-ud-portal/internal/server/models"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/repomanager"
)

const noticeLimit = 100

type NoticeService struct {
	repos repomanager.RepositoryManager
	log   logging.Logger
}

func NewNoticeService(repos repomanager.RepositoryManager, log logging.Logger) *NoticeService {
	return &NoticeService{repos: repos, log: log.With("module", "notices")}
}

func (s *NoticeService) List(ctx context.Context) ([]*models.Notice, error) {
	return s.repos.Repos().Notices.List(ctx, noticeLimit)
}

// Create posts a notice. Only admins may post.
func (s *NoticeService) Create(ctx context.Context, u directory.User, title, body string) (*models.Notice, error) {
	if !u.IsAdmin() {
		return nil, common.ErrorForbidden
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}

	n := &models.Notice{Title: title, Body: body, Author: u.ID}
	if err := s.repos.Repos().Notices.Create(ctx, n); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "notice posted", "id", n.ID, "author", u.ID)
	return n, nil
}
