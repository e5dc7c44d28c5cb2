// Package httpstub holds facade stubs for HTTP layer tests.
package httpstub

import (
	"context"

	"github.com/polkiloo/veo3store/internal/domain/model"
	testhelpers "github.com/polkiloo/veo3store/internal/test"
	"github.com/polkiloo/veo3store/internal/usecase"
)

// AuthFacadeStub simulates authentication facade interactions.
type AuthFacadeStub struct {
	RegisterFn  func(context.Context, usecase.RegisterInput) (*model.User, error)
	LoginFn     func(context.Context, string, string, model.SessionMeta) (*usecase.LoginResult, error)
	LogoutFn    func(context.Context, int64) error
	MeFn        func(context.Context, int64) (*model.User, error)
	AuthorizeFn func(context.Context, string) (model.TokenClaims, error)
}

// Register returns created user for successful registration scenarios.
func (s AuthFacadeStub) Register(ctx context.Context, in usecase.RegisterInput) (*model.User, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, in)
	}
	return &model.User{ID: 1, Email: in.Email, Name: in.Name, Phone: in.Phone, Role: model.RoleUser}, nil
}

// Login returns a token for successful authentication scenarios.
func (s AuthFacadeStub) Login(ctx context.Context, email, password string, meta model.SessionMeta) (*usecase.LoginResult, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, email, password, meta)
	}
	return &usecase.LoginResult{
		Token:     "token",
		SessionID: "session",
		User:      &model.User{ID: 1, Email: email, Name: "Khach Hang", Role: model.RoleUser},
	}, nil
}

// Logout succeeds unless overridden.
func (s AuthFacadeStub) Logout(ctx context.Context, userID int64) error {
	if s.LogoutFn != nil {
		return s.LogoutFn(ctx, userID)
	}
	return nil
}

// Me returns a user with the requested identifier.
func (s AuthFacadeStub) Me(ctx context.Context, userID int64) (*model.User, error) {
	if s.MeFn != nil {
		return s.MeFn(ctx, userID)
	}
	return &model.User{ID: userID, Email: "khach@example.com", Name: "Khach Hang", Role: model.RoleUser}, nil
}

// Authorize treats "admin" as an admin token and anything else as user 1.
func (s AuthFacadeStub) Authorize(ctx context.Context, token string) (model.TokenClaims, error) {
	if s.AuthorizeFn != nil {
		return s.AuthorizeFn(ctx, token)
	}
	if token == "admin" {
		return model.TokenClaims{UserID: 99, SessionID: "admin-session", Role: model.RoleAdmin}, nil
	}
	return model.TokenClaims{UserID: 1, SessionID: "session", Role: model.RoleUser}, nil
}

// CatalogFacadeStub serves catalog reads.
type CatalogFacadeStub struct {
	PackagesFn func(context.Context) ([]model.Package, error)
	PackageFn  func(context.Context, string) (*model.Package, error)
}

// Packages returns a single default package.
func (s CatalogFacadeStub) Packages(ctx context.Context) ([]model.Package, error) {
	if s.PackagesFn != nil {
		return s.PackagesFn(ctx)
	}
	return []model.Package{{ID: "p3", Name: "Gói 3 Tháng", DurationMonths: 3, SalePrice: 1199000, Active: true}}, nil
}

// Package returns the package with the given id.
func (s CatalogFacadeStub) Package(ctx context.Context, id string) (*model.Package, error) {
	if s.PackageFn != nil {
		return s.PackageFn(ctx, id)
	}
	return &model.Package{ID: id, Name: "Gói 3 Tháng", DurationMonths: 3, SalePrice: 1199000, Active: true}, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn  func(context.Context, int64, string, model.PaymentMethod) (*model.Checkout, error)
	ConfirmFn func(context.Context, string, int64) (*model.Order, error)
	OrderFn   func(context.Context, string, int64) (*model.Checkout, error)
	StatusFn  func(context.Context, string, int64) (model.OrderStatus, error)
	ListFn    func(context.Context, int64, model.Page) (*model.OrderList, error)
}

func sampleCheckout(order *model.Order) *model.Checkout {
	return &model.Checkout{Order: order, Payment: model.PaymentInstructions{
		Bank:            model.BankInfo{BankName: "MB Bank", BankCode: "MB", AccountNumber: "0987654321", AccountName: "CONG TY VEO3 AI"},
		Amount:          order.Amount,
		TransferContent: order.TransferContent,
		QRCodeURL:       "https://img.vietqr.io/image/MB-0987654321-compact2.png",
	}}
}

// CreateOrder returns a PENDING checkout by default.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, userID int64, packageID string, method model.PaymentMethod) (*model.Checkout, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, userID, packageID, method)
	}
	order := testhelpers.SampleOrder()
	order.UserID = userID
	order.PackageID = packageID
	return sampleCheckout(order), nil
}

// ConfirmPayment moves the sample order to PROCESSING.
func (s OrderFacadeStub) ConfirmPayment(ctx context.Context, orderID string, userID int64) (*model.Order, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, orderID, userID)
	}
	order := testhelpers.SampleOrder()
	order.ID = orderID
	order.Status = model.OrderStatusProcessing
	return order, nil
}

// Order returns the sample checkout.
func (s OrderFacadeStub) Order(ctx context.Context, orderID string, userID int64) (*model.Checkout, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, orderID, userID)
	}
	order := testhelpers.SampleOrder()
	order.ID = orderID
	return sampleCheckout(order), nil
}

// OrderStatus returns PENDING by default.
func (s OrderFacadeStub) OrderStatus(ctx context.Context, orderID string, userID int64) (model.OrderStatus, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, orderID, userID)
	}
	return model.OrderStatusPending, nil
}

// UserOrders returns a single page with the sample order.
func (s OrderFacadeStub) UserOrders(ctx context.Context, userID int64, page model.Page) (*model.OrderList, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, userID, page)
	}
	page = page.Normalize()
	return &model.OrderList{Orders: []model.Order{*testhelpers.SampleOrder()}, Total: 1, Page: page.Page, Limit: page.Limit}, nil
}

// AdminFacadeStub simulates the review console.
type AdminFacadeStub struct {
	ListFn      func(context.Context, model.OrderFilter, model.Page) (*model.OrderList, error)
	GetFn       func(context.Context, string) (*model.Order, error)
	ApproveFn   func(context.Context, string, int64, usecase.ApproveInput) (*model.Order, error)
	RejectFn    func(context.Context, string, int64, string) (*model.Order, error)
	DashboardFn func(context.Context) (*model.DashboardStats, error)
}

// AdminOrders returns a single page with the sample order.
func (s AdminFacadeStub) AdminOrders(ctx context.Context, filter model.OrderFilter, page model.Page) (*model.OrderList, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, filter, page)
	}
	page = page.Normalize()
	return &model.OrderList{Orders: []model.Order{*testhelpers.SampleOrder()}, Total: 1, Page: page.Page, Limit: page.Limit}, nil
}

// AdminOrder returns the sample order.
func (s AdminFacadeStub) AdminOrder(ctx context.Context, orderID string) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, orderID)
	}
	order := testhelpers.SampleOrder()
	order.ID = orderID
	return order, nil
}

// ApproveOrder returns a completed order carrying a license.
func (s AdminFacadeStub) ApproveOrder(ctx context.Context, orderID string, adminID int64, in usecase.ApproveInput) (*model.Order, error) {
	if s.ApproveFn != nil {
		return s.ApproveFn(ctx, orderID, adminID, in)
	}
	order := testhelpers.SampleOrder()
	order.ID = orderID
	order.Status = model.OrderStatusCompleted
	order.LicenseKey = "VEO3-KEY"
	order.DeliveryMethod = in.DeliveryMethod
	return order, nil
}

// RejectOrder returns a rejected order.
func (s AdminFacadeStub) RejectOrder(ctx context.Context, orderID string, adminID int64, reason string) (*model.Order, error) {
	if s.RejectFn != nil {
		return s.RejectFn(ctx, orderID, adminID, reason)
	}
	order := testhelpers.SampleOrder()
	order.ID = orderID
	order.Status = model.OrderStatusRejected
	order.RejectionReason = reason
	return order, nil
}

// Dashboard returns fixed counters.
func (s AdminFacadeStub) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	if s.DashboardFn != nil {
		return s.DashboardFn(ctx)
	}
	return &model.DashboardStats{TotalUsers: 3, TotalOrders: 5, ProcessingOrders: 1, MonthlyRevenue: 1199000}, nil
}

// HealthFacadeStub reports configured readiness.
type HealthFacadeStub struct {
	Err error
}

// Health returns the configured error.
func (s HealthFacadeStub) Health(ctx context.Context) error {
	return s.Err
}

// StoreFacadeStub aggregates facade dependencies for HTTP layer tests.
type StoreFacadeStub struct {
	AuthFacadeStub
	CatalogFacadeStub
	OrderFacadeStub
	AdminFacadeStub
	HealthFacadeStub
}

