package property

import (
	"context"
	"fmt"

	propertyRepo "viewingdesk/database/repository/property"
	"viewingdesk/models"
)

// CatalogService exposes the read-only property list.
type CatalogService interface {
	ListProperties(ctx context.Context) ([]models.Property, error)
}

// DefaultCatalogService rebuilds the list from the sheet on every call.
type DefaultCatalogService struct {
	Repo propertyRepo.PropertyRepository
}

func (s *DefaultCatalogService) ListProperties(ctx context.Context) ([]models.Property, error) {
	props, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return props, nil
}
