package repository

import (
	"context"
	"time"

	"github.com/polkiloo/veo3store/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
//
// Save and Complete are compare-and-swap writes: they apply only while the
// stored status still equals expected and report ErrInvalidState otherwise.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, filter model.OrderFilter, page model.Page) (*model.OrderList, error)
	Save(ctx context.Context, order *model.Order, expected model.OrderStatus) error
	Complete(ctx context.Context, order *model.Order, license *model.License) error
	TransferContentExists(ctx context.Context, memo string) (bool, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]model.Order, error)
	CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error)
	RevenueSince(ctx context.Context, since time.Time) (int64, error)
}
