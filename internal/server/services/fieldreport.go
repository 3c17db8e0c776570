package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bomin1134/gb-ud-portal/internal/attachments"
	"github.com/bomin1134/gb-ud-portal/internal/common"
	"github.com/bomin1134/gb-ud-portal/internal/directory"
	"github.com/bomin1134/gb-ud-portal/internal/logging"
	"github.com/bomin1134/gb-ud-portal/internal/server/config"
	"github.com/bomin1134/gb-ud-portal/internal/server/models"
	"github.com/bomin1134/gb-ud-portal/internal/server/objectstore"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

const fieldReportLimit = 100

// AddressResolver turns coordinates into a display address.
type AddressResolver interface {
	Lookup(ctx context.Context, lat, lng float64) (string, error)
}

type FieldReportInput struct {
	BranchID     int               `validate:"gte=1"`
	CategoryID   string            `validate:"required"`
	ItemID       string            `validate:"required"`
	Latitude     float64           `validate:"gte=-90,lte=90"`
	Longitude    float64           `validate:"gte=-180,lte=180"`
	Address      string            `validate:"max=300"`
	Measurements map[string]string `validate:"required"`
	Memo         string            `validate:"max=2000"`
	Photos       []FileUpload
}

type FieldReportService struct {
	repos     repomanager.RepositoryManager
	catalog   *Catalog
	geocoder  AddressResolver
	validate  *validator.Validate
	log       logging.Logger
	uploader  uploader
	maxPhotos int
}

// NewFieldReportService wires the service. geocoder may be nil, in which case
// reports keep the address the client sent.
func NewFieldReportService(repos repomanager.RepositoryManager, store objectstore.Store, catalog *Catalog,
	geocoder AddressResolver, log logging.Logger, cfg *config.Config) *FieldReportService {
	l := log.With("module", "fieldreports")
	return &FieldReportService{
		repos:     repos,
		catalog:   catalog,
		geocoder:  geocoder,
		validate:  validator.New(),
		log:       l,
		uploader:  uploader{store: store, log: l, limit: cfg.UploadConcurrency},
		maxPhotos: cfg.MaxPhotosPerReport,
	}
}

func (s *FieldReportService) Catalog() *Catalog {
	return s.catalog
}

func (s *FieldReportService) Create(ctx context.Context, u directory.User, in FieldReportInput) (*models.FieldReport, []UploadFailure, error) {
	if in.BranchID == 0 {
		in.BranchID = u.BranchID
	}
	if !u.CanAccess(in.BranchID) {
		return nil, nil, common.ErrorForbidden
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	cat, item, ok := s.catalog.Find(in.CategoryID, in.ItemID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown item %s/%s", common.ErrorValidation, in.CategoryID, in.ItemID)
	}
	measurements := make(map[string]string, len(item.Fields))
	for _, f := range item.Fields {
		v := strings.TrimSpace(in.Measurements[f])
		if v == "" {
			return nil, nil, fmt.Errorf("%w: measurement %q is required", common.ErrorValidation, f)
		}
		measurements[f] = v
	}
	if len(in.Photos) > s.maxPhotos {
		return nil, nil, fmt.Errorf("%w: at most %d photos", common.ErrorValidation, s.maxPhotos)
	}

	address := strings.TrimSpace(in.Address)
	if address == "" && s.geocoder != nil {
		a, err := s.geocoder.Lookup(ctx, in.Latitude, in.Longitude)
		if err != nil {
			s.log.Warn(ctx, "address lookup failed", "lat", in.Latitude, "lng", in.Longitude, "error", err)
		}
		address = a
	}

	photos, failed := s.uploader.upload(ctx, in.Photos, func(f FileUpload) attachments.Ref {
		return attachments.FieldPhoto(in.BranchID, f.Name)
	})

	fr := &models.FieldReport{
		UserID:       u.ID,
		BranchID:     in.BranchID,
		Category:     cat.Name,
		ItemName:     item.Label,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Address:      address,
		Measurements: measurements,
		Memo:         in.Memo,
		Photos:       photos,
	}
	if err := s.repos.Repos().FieldReports.Create(ctx, fr); err != nil {
		return nil, failed, fmt.Errorf("%w: %v", common.ErrSaveFailed, err)
	}

	s.log.Info(ctx, "field report saved", "id", fr.ID, "branch", fr.BranchID, "item", fr.ItemName, "photos", len(photos))
	return fr, failed, nil
}

// List returns the branch's latest reports. Admins must name a branch;
// branch users always see their own.
func (s *FieldReportService) List(ctx context.Context, u directory.User, branchID int) ([]*models.FieldReport, error) {
	if branchID == 0 {
		branchID = u.BranchID
	}
	if branchID == 0 {
		return nil, fmt.Errorf("%w: branch is required", common.ErrorValidation)
	}
	if !u.CanAccess(branchID) {
		return nil, common.ErrorForbidden
	}
	return s.repos.Repos().FieldReports.ListByBranch(ctx, branchID, fieldReportLimit)
}
