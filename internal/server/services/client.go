package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/colisso/internal/common"
	"github.com/dmitrijs2005/colisso/internal/logging"
	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/dmitrijs2005/colisso/internal/server/repositories/repomanager"
)

// ClientInput carries the editable fields of a client.
type ClientInput struct {
	Name    string  `json:"name"`
	Company *string `json:"company"`
	Address string  `json:"address"`
	Country string  `json:"country"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Notes   *string `json:"notes"`
}

func (in ClientInput) validate() error {
	return firstError(
		required("name", in.Name),
		required("address", in.Address),
		required("country", in.Country),
		optionalEmail("email", trimmed(in.Email)),
		optionalPhone("phone", trimmed(in.Phone)),
	)
}

func (in ClientInput) apply(c *models.Client) {
	c.Name = strings.TrimSpace(in.Name)
	c.Company = trimmed(in.Company)
	c.Address = strings.TrimSpace(in.Address)
	c.Country = strings.TrimSpace(in.Country)
	c.Phone = trimmed(in.Phone)
	c.Email = trimmed(in.Email)
	c.Notes = trimmed(in.Notes)
}

type ClientService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewClientService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ClientService {
	return &ClientService{db: db, repomanager: m, logger: logger.With("module", "clients")}
}

func (s *ClientService) ensureUniqueName(ctx context.Context, name, excludeID string) error {
	exists, err := s.repomanager.Clients(s.db).ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("a client named %q already exists: %w", name, common.ErrorConflict)
	}
	return nil
}

func (s *ClientService) Create(ctx context.Context, in ClientInput) (*models.Client, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := &models.Client{}
	in.apply(c)

	if err := s.ensureUniqueName(ctx, c.Name, ""); err != nil {
		return nil, err
	}

	// the unique index still guards against a concurrent insert
	created, err := s.repomanager.Clients(s.db).Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "client created", "client_id", created.ID)
	return created, nil
}

func (s *ClientService) List(ctx context.Context) ([]models.Client, error) {
	return s.repomanager.Clients(s.db).List(ctx)
}

// Get returns the client together with its labels.
func (s *ClientService) Get(ctx context.Context, id string) (*models.ClientDetails, error) {
	c, err := s.repomanager.Clients(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	labels, err := s.repomanager.Labels(s.db).ListByClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ClientDetails{Client: *c, Labels: labels}, nil
}

// Update replaces the editable fields of client id.
func (s *ClientService) Update(ctx context.Context, id string, in ClientInput) (*models.Client, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	repo := s.repomanager.Clients(s.db)

	c, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(c)

	if err := s.ensureUniqueName(ctx, c.Name, id); err != nil {
		return nil, err
	}
	return repo.Update(ctx, c)
}

// Delete removes a client that has no labels.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	repo := s.repomanager.Clients(s.db)

	n, err := repo.CountLabels(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("client has %d label(s): %w", n, common.ErrorConflict)
	}
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "client deleted", "client_id", id)
	return nil
}
