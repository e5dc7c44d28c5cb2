package handlers

import (
	"context"

	"github.com/polkiloo/veo3store/internal/domain/model"
	"github.com/polkiloo/veo3store/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string, meta model.SessionMeta) (*usecase.LoginResult, error)
	Logout(ctx context.Context, userID int64) error
	Me(ctx context.Context, userID int64) (*model.User, error)
	Authorize(ctx context.Context, token string) (model.TokenClaims, error)
}

// CatalogFacade exposes the package catalog.
type CatalogFacade interface {
	Packages(ctx context.Context) ([]model.Package, error)
	Package(ctx context.Context, id string) (*model.Package, error)
}

// OrderFacade encapsulates customer order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, userID int64, packageID string, method model.PaymentMethod) (*model.Checkout, error)
	ConfirmPayment(ctx context.Context, orderID string, userID int64) (*model.Order, error)
	Order(ctx context.Context, orderID string, userID int64) (*model.Checkout, error)
	OrderStatus(ctx context.Context, orderID string, userID int64) (model.OrderStatus, error)
	UserOrders(ctx context.Context, userID int64, page model.Page) (*model.OrderList, error)
}

// AdminFacade provides the review console operations.
type AdminFacade interface {
	AdminOrders(ctx context.Context, filter model.OrderFilter, page model.Page) (*model.OrderList, error)
	AdminOrder(ctx context.Context, orderID string) (*model.Order, error)
	ApproveOrder(ctx context.Context, orderID string, adminID int64, in usecase.ApproveInput) (*model.Order, error)
	RejectOrder(ctx context.Context, orderID string, adminID int64, reason string) (*model.Order, error)
	Dashboard(ctx context.Context) (*model.DashboardStats, error)
}

// HealthFacade reports readiness of backing stores.
type HealthFacade interface {
	Health(ctx context.Context) error
}

// StoreFacade aggregates the full set of operations used across handlers.
type StoreFacade interface {
	AuthFacade
	CatalogFacade
	OrderFacade
	AdminFacade
	HealthFacade
}
