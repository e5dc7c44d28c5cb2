package repository

import (
	"context"

	"github.com/polkiloo/veo3store/internal/domain/model"
)

// PackageRepository gives read access to the catalog.
type PackageRepository interface {
	ListActive(ctx context.Context) ([]model.Package, error)
	GetByID(ctx context.Context, id string) (*model.Package, error)
}
