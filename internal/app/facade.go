package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"

	"github.com/polkiloo/veo3store/internal/domain/model"
	"github.com/polkiloo/veo3store/internal/usecase"
)

// HealthChecker is a backing store that can report readiness.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NamedCheck labels a HealthChecker for error reporting.
type NamedCheck struct {
	Name    string
	Checker HealthChecker
}

// FacadeParams lists StoreFacade dependencies.
type FacadeParams struct {
	fx.In

	Auth      *usecase.AuthUseCase
	Catalog   *usecase.CatalogUseCase
	Lifecycle *usecase.LifecycleUseCase
	Payments  *usecase.PaymentDesk
	Dashboard *usecase.DashboardUseCase
	Checks    []NamedCheck `group:"health"`
}

// StoreFacade adapts use cases to the HTTP handlers and the expiry sweeper.
type StoreFacade struct {
	auth      *usecase.AuthUseCase
	catalog   *usecase.CatalogUseCase
	lifecycle *usecase.LifecycleUseCase
	payments  *usecase.PaymentDesk
	dashboard *usecase.DashboardUseCase
	checks    []NamedCheck
}

func NewStoreFacade(p FacadeParams) *StoreFacade {
	return &StoreFacade{
		auth:      p.Auth,
		catalog:   p.Catalog,
		lifecycle: p.Lifecycle,
		payments:  p.Payments,
		dashboard: p.Dashboard,
		checks:    p.Checks,
	}
}

func (f *StoreFacade) Register(ctx context.Context, in usecase.RegisterInput) (*model.User, error) {
	return f.auth.Register(ctx, in)
}

func (f *StoreFacade) Login(ctx context.Context, email, password string, meta model.SessionMeta) (*usecase.LoginResult, error) {
	return f.auth.Login(ctx, email, password, meta)
}

func (f *StoreFacade) Logout(ctx context.Context, userID int64) error {
	return f.auth.Logout(ctx, userID)
}

func (f *StoreFacade) Me(ctx context.Context, userID int64) (*model.User, error) {
	return f.auth.Me(ctx, userID)
}

func (f *StoreFacade) Authorize(ctx context.Context, token string) (model.TokenClaims, error) {
	return f.auth.Authorize(ctx, token)
}

func (f *StoreFacade) EnsureAdmin(ctx context.Context, email, password string) error {
	return f.auth.EnsureAdmin(ctx, email, password)
}

func (f *StoreFacade) Packages(ctx context.Context) ([]model.Package, error) {
	return f.catalog.List(ctx)
}

func (f *StoreFacade) Package(ctx context.Context, id string) (*model.Package, error) {
	return f.catalog.Get(ctx, id)
}

// CreateOrder opens the order and attaches bank transfer instructions.
func (f *StoreFacade) CreateOrder(ctx context.Context, userID int64, packageID string, method model.PaymentMethod) (*model.Checkout, error) {
	order, err := f.lifecycle.Create(ctx, userID, packageID, method)
	if err != nil {
		return nil, err
	}
	return f.payments.Checkout(order), nil
}

func (f *StoreFacade) ConfirmPayment(ctx context.Context, orderID string, userID int64) (*model.Order, error) {
	return f.lifecycle.ConfirmPayment(ctx, orderID, userID)
}

func (f *StoreFacade) Order(ctx context.Context, orderID string, userID int64) (*model.Checkout, error) {
	order, err := f.lifecycle.Get(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	return f.payments.Checkout(order), nil
}

func (f *StoreFacade) OrderStatus(ctx context.Context, orderID string, userID int64) (model.OrderStatus, error) {
	return f.lifecycle.Status(ctx, orderID, userID)
}

func (f *StoreFacade) UserOrders(ctx context.Context, userID int64, page model.Page) (*model.OrderList, error) {
	return f.lifecycle.ListForUser(ctx, userID, page)
}

func (f *StoreFacade) AdminOrders(ctx context.Context, filter model.OrderFilter, page model.Page) (*model.OrderList, error) {
	return f.lifecycle.List(ctx, filter, page)
}

func (f *StoreFacade) AdminOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return f.lifecycle.GetAny(ctx, orderID)
}

func (f *StoreFacade) ApproveOrder(ctx context.Context, orderID string, adminID int64, in usecase.ApproveInput) (*model.Order, error) {
	return f.lifecycle.Approve(ctx, orderID, adminID, in)
}

func (f *StoreFacade) RejectOrder(ctx context.Context, orderID string, adminID int64, reason string) (*model.Order, error) {
	return f.lifecycle.Reject(ctx, orderID, adminID, reason)
}

func (f *StoreFacade) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	return f.dashboard.Stats(ctx)
}

// ExpiredOrders lists orders the sweeper should close.
func (f *StoreFacade) ExpiredOrders(ctx context.Context, now time.Time, limit int) ([]model.Order, error) {
	return f.lifecycle.Expirable(ctx, now, limit)
}

func (f *StoreFacade) ExpireOrder(ctx context.Context, orderID string, now time.Time) (*model.Order, error) {
	return f.lifecycle.Expire(ctx, orderID, now)
}

// Health runs every registered check concurrently and returns the first failure.
func (f *StoreFacade) Health(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, check := range f.checks {
		g.Go(func() error {
			if err := check.Checker.HealthCheck(gctx); err != nil {
				return fmt.Errorf("%s: %w", check.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
