package usecase

import (
	"context"

	domainErrors "github.com/polkiloo/veo3store/internal/domain/errors"
	"github.com/polkiloo/veo3store/internal/domain/model"
	"github.com/polkiloo/veo3store/internal/domain/repository"
)

// CatalogUseCase exposes the package catalog.
type CatalogUseCase struct {
	packages repository.PackageRepository
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(packages repository.PackageRepository) *CatalogUseCase {
	return &CatalogUseCase{packages: packages}
}

// List returns active packages in display order.
func (u *CatalogUseCase) List(ctx context.Context) ([]model.Package, error) {
	return u.packages.ListActive(ctx)
}

// Get returns an active package.
func (u *CatalogUseCase) Get(ctx context.Context, id string) (*model.Package, error) {
	pkg, err := u.packages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !pkg.Active {
		return nil, domainErrors.ErrNotFound
	}
	return pkg, nil
}
