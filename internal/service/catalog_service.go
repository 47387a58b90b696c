package service

import (
	"context"
	"strings"

	"quartermaster/internal/access"
	"quartermaster/internal/models"
	"quartermaster/internal/repository"
	"quartermaster/internal/validation"
)

type CatalogService struct {
	resourceRepo repository.ResourceRepository
}

// ResourceInput is the full set of editable resource fields.
type ResourceInput struct {
	Name              string `json:"name" validate:"notblank,max=200"`
	Description       string `json:"description" validate:"max=5000"`
	Category          string `json:"category" validate:"notblank,max=100"`
	QuantityAvailable int    `json:"quantity_available" validate:"gte=0"`
}

func (in ResourceInput) apply(r *models.Resource) {
	r.Name = strings.TrimSpace(in.Name)
	r.Description = strings.TrimSpace(in.Description)
	r.Category = strings.TrimSpace(in.Category)
	r.QuantityAvailable = in.QuantityAvailable
}

func NewCatalogService(resourceRepo repository.ResourceRepository) *CatalogService {
	return &CatalogService{resourceRepo: resourceRepo}
}

func (s *CatalogService) List(ctx context.Context, filter repository.ResourceFilter) ([]models.Resource, error) {
	return s.resourceRepo.List(ctx, filter)
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.resourceRepo.Categories(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Resource, error) {
	return s.resourceRepo.GetByID(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, p *access.Principal, in ResourceInput) (*models.Resource, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	resource := &models.Resource{CreatedByUserID: p.UserID}
	in.apply(resource)
	if err := s.resourceRepo.Create(ctx, resource); err != nil {
		return nil, err
	}
	return resource, nil
}

// Update replaces every editable field of the resource.
func (s *CatalogService) Update(ctx context.Context, p *access.Principal, id uint, in ResourceInput) (*models.Resource, error) {
	if err := access.RequireAdmin(p); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	resource := &models.Resource{ID: id}
	in.apply(resource)
	if err := s.resourceRepo.Update(ctx, resource); err != nil {
		return nil, err
	}
	return s.resourceRepo.GetByID(ctx, id)
}

func (s *CatalogService) Delete(ctx context.Context, p *access.Principal, id uint) error {
	if err := access.RequireAdmin(p); err != nil {
		return err
	}
	return s.resourceRepo.Delete(ctx, id)
}
