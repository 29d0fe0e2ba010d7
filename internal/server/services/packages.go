package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/colisso/internal/logging"
	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/repomanager"
)

// PackageInput carries the editable fields of a package. Nil dimensions
// take the defaults.
type PackageInput struct {
	Description *string  `json:"description"`
	Weight      *float64 `json:"weight"`
	Length      *float64 `json:"length"`
	Width       *float64 `json:"width"`
	Height      *float64 `json:"height"`
	Value       *float64 `json:"value"`
	Contents    *string  `json:"contents"`
}

// apply validates in and writes it over p.
func (in PackageInput) apply(p *models.Package) error {
	var err error
	if p.Weight, err = positiveOr("weight", in.Weight, models.DefaultWeight); err != nil {
		return err
	}
	if p.Length, err = positiveOr("length", in.Length, models.DefaultLength); err != nil {
		return err
	}
	if p.Width, err = positiveOr("width", in.Width, models.DefaultWidth); err != nil {
		return err
	}
	if p.Height, err = positiveOr("height", in.Height, models.DefaultHeight); err != nil {
		return err
	}
	if err := nonNegative("value", in.Value); err != nil {
		return err
	}
	p.Description = trimmed(in.Description)
	p.Value = in.Value
	p.Contents = trimmed(in.Contents)
	return nil
}

// PackageService manages the parcels of a label.
type PackageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewPackageService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *PackageService {
	return &PackageService{db: db, repomanager: m, logger: logger.With("module", "packages")}
}

func (s *PackageService) ensureLabel(ctx context.Context, labelID string) error {
	_, err := s.repomanager.Labels(s.db).Get(ctx, labelID)
	return err
}

// List returns the packages of labelID, oldest first.
func (s *PackageService) List(ctx context.Context, labelID string) ([]models.Package, error) {
	if err := s.ensureLabel(ctx, labelID); err != nil {
		return nil, err
	}
	return s.repomanager.Packages(s.db).ListByLabel(ctx, labelID)
}

// Get returns package id when it belongs to labelID.
func (s *PackageService) Get(ctx context.Context, labelID, id string) (*models.Package, error) {
	p, err := s.repomanager.Packages(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.LabelID != labelID {
		return nil, notFound("package", id)
	}
	return p, nil
}

func (s *PackageService) Add(ctx context.Context, labelID string, in PackageInput) (*models.Package, error) {
	p := &models.Package{LabelID: labelID}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := s.ensureLabel(ctx, labelID); err != nil {
		return nil, err
	}
	created, err := s.repomanager.Packages(s.db).Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "package added", "label_id", labelID, "package_id", created.ID)
	return created, nil
}

// Update replaces every mutable field of the package.
func (s *PackageService) Update(ctx context.Context, labelID, id string, in PackageInput) (*models.Package, error) {
	p, err := s.Get(ctx, labelID, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	return s.repomanager.Packages(s.db).Update(ctx, p)
}

func (s *PackageService) Remove(ctx context.Context, labelID, id string) error {
	if _, err := s.Get(ctx, labelID, id); err != nil {
		return err
	}
	return s.repomanager.Packages(s.db).Delete(ctx, id)
}
