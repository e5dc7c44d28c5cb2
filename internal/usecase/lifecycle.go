package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/polkiloo/veo3store/internal/config"
	domainErrors "github.com/polkiloo/veo3store/internal/domain/errors"
	"github.com/polkiloo/veo3store/internal/domain/model"
	"github.com/polkiloo/veo3store/internal/domain/repository"
)

const (
	maxMemoAttempts = 5
	minDevices      = 1
	maxDevices      = 10
)

// ErrMemoExhausted is returned when no unused transfer memo could be allocated.
var ErrMemoExhausted = errors.New("could not allocate a unique transfer memo")

// ApproveInput carries the admin's delivery choices.
type ApproveInput struct {
	MaxDevices      int
	DeliveryMethod  model.DeliveryMethod
	DeliveryContact string
	AdminNotes      string
}

// LifecycleUseCase drives orders through PENDING -> PROCESSING -> COMPLETED | REJECTED
// and PENDING -> EXPIRED.
type LifecycleUseCase struct {
	orders   repository.OrderRepository
	packages repository.PackageRepository
	issuer   LicenseIssuer
	events   EventPublisher
	metrics  LifecycleMetrics
	logger   *slog.Logger
	orderTTL time.Duration

	now    func() time.Time
	memo   func(time.Time) string
	number func(time.Time) string
	newID  func() string
}

// LifecycleParams lists LifecycleUseCase dependencies.
type LifecycleParams struct {
	fx.In

	Orders   repository.OrderRepository
	Packages repository.PackageRepository
	Issuer   LicenseIssuer
	Events   EventPublisher
	Metrics  LifecycleMetrics `optional:"true"`
	Config   *config.Config
	Logger   *slog.Logger
}

// NewLifecycleUseCase constructs LifecycleUseCase.
func NewLifecycleUseCase(p LifecycleParams) *LifecycleUseCase {
	metrics := p.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	ttl := 24 * time.Hour
	if p.Config != nil && p.Config.OrderTTL > 0 {
		ttl = p.Config.OrderTTL
	}
	return &LifecycleUseCase{
		orders:   p.Orders,
		packages: p.Packages,
		issuer:   p.Issuer,
		events:   p.Events,
		metrics:  metrics,
		logger:   p.Logger,
		orderTTL: ttl,
		now:      time.Now,
		memo:     NewTransferMemo,
		number:   NewOrderNumber,
		newID:    uuid.NewString,
	}
}

// Create opens a PENDING order for the package with a fresh transfer memo.
func (u *LifecycleUseCase) Create(ctx context.Context, userID int64, packageID string, method model.PaymentMethod) (*model.Order, error) {
	if method == "" {
		method = model.PaymentMethodBankTransfer
	}
	switch {
	case method == model.PaymentMethodUSDT:
		return nil, domainErrors.NewValidationError("paymentMethod", "USDT payment is not supported yet")
	case !method.Supported():
		return nil, domainErrors.NewValidationError("paymentMethod", "unknown payment method")
	}

	packageID = strings.TrimSpace(packageID)
	if packageID == "" {
		return nil, domainErrors.NewValidationError("packageId", "package is required")
	}
	pkg, err := u.packages.GetByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if !pkg.Active {
		return nil, domainErrors.ErrNotFound
	}

	now := u.now()
	for attempt := 0; attempt < maxMemoAttempts; attempt++ {
		memo := u.memo(now)
		taken, err := u.orders.TransferContentExists(ctx, memo)
		if err != nil {
			return nil, fmt.Errorf("check transfer memo: %w", err)
		}
		if taken {
			continue
		}

		order := &model.Order{
			ID:              u.newID(),
			OrderNumber:     u.number(now),
			UserID:          userID,
			PackageID:       pkg.ID,
			PackageName:     pkg.Name,
			DurationMonths:  pkg.DurationMonths,
			Amount:          pkg.SalePrice,
			Currency:        model.CurrencyVND,
			PaymentMethod:   method,
			TransferContent: memo,
			Status:          model.OrderStatusPending,
			MaxDevices:      pkg.MaxDevices,
			ExpiresAt:       now.Add(u.orderTTL),
		}
		if err := u.orders.Create(ctx, order); err != nil {
			if errors.Is(err, domainErrors.ErrAlreadyExists) {
				continue
			}
			return nil, err
		}

		u.logger.Info("order created",
			slog.String("order_id", order.ID),
			slog.Int64("user_id", userID),
			slog.String("transfer_content", memo))
		u.notify(ctx, order, model.OrderEventCreated,
			fmt.Sprintf("New order %s - %d VND", order.OrderNumber, order.Amount))
		return order, nil
	}

	return nil, ErrMemoExhausted
}

// ConfirmPayment records the customer's claim that the transfer was made.
func (u *LifecycleUseCase) ConfirmPayment(ctx context.Context, orderID string, userID int64) (*model.Order, error) {
	order, err := u.Get(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPending {
		return nil, u.refuse("confirm", order)
	}

	now := u.now()
	if order.Due(now) {
		if _, err := u.expire(ctx, order, now); err != nil && !errors.Is(err, domainErrors.ErrInvalidState) {
			return nil, err
		}
		return nil, fmt.Errorf("order %s payment window closed: %w", order.ID, domainErrors.ErrInvalidState)
	}

	order.Status = model.OrderStatusProcessing
	order.UserConfirmedAt = &now
	if err := u.save(ctx, "confirm", order, model.OrderStatusPending); err != nil {
		return nil, err
	}

	u.notify(ctx, order, model.OrderEventPaymentConfirmed,
		fmt.Sprintf("User confirmed payment for order %s, needs review", order.OrderNumber))
	return order, nil
}

// Approve issues the license and completes a PROCESSING order.
func (u *LifecycleUseCase) Approve(ctx context.Context, orderID string, adminID int64, in ApproveInput) (*model.Order, error) {
	method := in.DeliveryMethod
	if method == "" {
		method = model.DeliveryMethodEmail
	}
	if !method.Valid() {
		return nil, domainErrors.NewValidationError("deliveryMethod", "must be EMAIL, TELEGRAM or ZALO")
	}
	if in.MaxDevices != 0 && (in.MaxDevices < minDevices || in.MaxDevices > maxDevices) {
		return nil, domainErrors.NewValidationError("maxDevices", fmt.Sprintf("must be between %d and %d", minDevices, maxDevices))
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusProcessing {
		return nil, u.refuse("approve", order)
	}

	devices := in.MaxDevices
	if devices == 0 {
		devices = u.defaultDevices(ctx, order)
	}

	license, err := u.issuer.Issue(ctx, model.LicenseRequest{
		OrderID:        order.ID,
		UserID:         order.UserID,
		PackageID:      order.PackageID,
		DurationMonths: order.DurationMonths,
		MaxDevices:     devices,
	})
	if err != nil {
		u.metrics.LicenseIssued(false)
		u.logger.Error("license issuance failed",
			slog.String("order_id", order.ID),
			slog.Int64("admin_id", adminID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", domainErrors.ErrLicenseIssuance, err)
	}
	u.metrics.LicenseIssued(true)

	now := u.now()
	if license.StartsAt.IsZero() {
		license.StartsAt = now
	}
	if license.EndsAt.IsZero() {
		license.EndsAt = license.StartsAt.AddDate(0, order.DurationMonths, 0)
	}
	if license.ID == "" {
		license.ID = u.newID()
	}
	license.OrderID = order.ID
	license.UserID = order.UserID

	contact := strings.TrimSpace(in.DeliveryContact)
	if contact == "" {
		contact = order.UserEmail
	}
	endsAt := license.EndsAt

	order.Status = model.OrderStatusCompleted
	order.ApprovedAt = &now
	order.DeliveredAt = &now
	order.LicenseID = license.ID
	order.LicenseKey = license.Key
	order.LicenseEndsAt = &endsAt
	order.MaxDevices = license.MaxDevices
	order.DeliveryMethod = method
	order.DeliveryContact = contact
	order.AdminNotes = strings.TrimSpace(in.AdminNotes)

	if err := u.orders.Complete(ctx, order, license); err != nil {
		if errors.Is(err, domainErrors.ErrInvalidState) {
			u.metrics.TransitionConflict("approve")
		}
		return nil, err
	}
	u.metrics.ObserveTransition(model.OrderStatusProcessing, model.OrderStatusCompleted)

	u.logger.Info("order approved",
		slog.String("order_id", order.ID),
		slog.Int64("admin_id", adminID),
		slog.String("license_id", license.ID))
	u.notify(ctx, order, model.OrderEventLicenseDelivery,
		fmt.Sprintf("Order %s approved, deliver license via %s to %s", order.OrderNumber, method, contact))
	return order, nil
}

// Reject closes a PROCESSING order with the admin's reason.
func (u *LifecycleUseCase) Reject(ctx context.Context, orderID string, adminID int64, reason string) (*model.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domainErrors.NewValidationError("reason", "rejection reason is required")
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusProcessing {
		return nil, u.refuse("reject", order)
	}

	now := u.now()
	order.Status = model.OrderStatusRejected
	order.RejectedAt = &now
	order.RejectionReason = reason
	if err := u.save(ctx, "reject", order, model.OrderStatusProcessing); err != nil {
		return nil, err
	}

	u.logger.Info("order rejected", slog.String("order_id", order.ID), slog.Int64("admin_id", adminID))
	u.notify(ctx, order, model.OrderEventRejected,
		fmt.Sprintf("Order %s rejected: %s", order.OrderNumber, reason))
	return order, nil
}

// Expire closes an unpaid order whose window has passed. Expiring an
// already expired order is a no-op.
func (u *LifecycleUseCase) Expire(ctx context.Context, orderID string, now time.Time) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch {
	case order.Status == model.OrderStatusExpired:
		return order, nil
	case order.Due(now):
		return u.expire(ctx, order, now)
	default:
		return nil, u.refuse("expire", order)
	}
}

func (u *LifecycleUseCase) expire(ctx context.Context, order *model.Order, now time.Time) (*model.Order, error) {
	order.Status = model.OrderStatusExpired
	if err := u.save(ctx, "expire", order, model.OrderStatusPending); err != nil {
		if errors.Is(err, domainErrors.ErrInvalidState) {
			if current, getErr := u.orders.GetByID(ctx, order.ID); getErr == nil && current.Status == model.OrderStatusExpired {
				return current, nil
			}
		}
		return nil, err
	}

	u.logger.Info("order expired", slog.String("order_id", order.ID), slog.Time("expires_at", order.ExpiresAt))
	u.notify(ctx, order, model.OrderEventExpired,
		fmt.Sprintf("Order %s expired unpaid at %s", order.OrderNumber, now.Format(time.RFC3339)))
	return order, nil
}

// Expirable lists PENDING orders whose payment window closed before now.
func (u *LifecycleUseCase) Expirable(ctx context.Context, now time.Time, limit int) ([]model.Order, error) {
	return u.orders.ListExpired(ctx, now, limit)
}

// Get returns an order owned by userID.
func (u *LifecycleUseCase) Get(ctx context.Context, orderID string, userID int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domainErrors.ErrNotFound
	}
	return order, nil
}

// Status returns the current status of an owned order.
func (u *LifecycleUseCase) Status(ctx context.Context, orderID string, userID int64) (model.OrderStatus, error) {
	order, err := u.Get(ctx, orderID, userID)
	if err != nil {
		return "", err
	}
	return order.Status, nil
}

// GetAny returns any order regardless of owner.
func (u *LifecycleUseCase) GetAny(ctx context.Context, orderID string) (*model.Order, error) {
	return u.orders.GetByID(ctx, orderID)
}

// ListForUser returns a page of the user's orders, newest first.
func (u *LifecycleUseCase) ListForUser(ctx context.Context, userID int64, page model.Page) (*model.OrderList, error) {
	return u.orders.List(ctx, model.OrderFilter{UserID: userID}, page)
}

// List returns a page of orders for the admin console.
func (u *LifecycleUseCase) List(ctx context.Context, filter model.OrderFilter, page model.Page) (*model.OrderList, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domainErrors.NewValidationError("status", fmt.Sprintf("unknown order status %q", filter.Status))
	}
	return u.orders.List(ctx, filter, page)
}

func (u *LifecycleUseCase) save(ctx context.Context, operation string, order *model.Order, expected model.OrderStatus) error {
	if err := u.orders.Save(ctx, order, expected); err != nil {
		if errors.Is(err, domainErrors.ErrInvalidState) {
			u.metrics.TransitionConflict(operation)
		}
		return err
	}
	u.metrics.ObserveTransition(expected, order.Status)
	return nil
}

func (u *LifecycleUseCase) refuse(operation string, order *model.Order) error {
	u.metrics.TransitionConflict(operation)
	return fmt.Errorf("cannot %s order %s in status %s: %w", operation, order.ID, order.Status, domainErrors.ErrInvalidState)
}

func (u *LifecycleUseCase) defaultDevices(ctx context.Context, order *model.Order) int {
	if pkg, err := u.packages.GetByID(ctx, order.PackageID); err == nil && pkg.MaxDevices > 0 {
		return pkg.MaxDevices
	}
	if order.MaxDevices > 0 {
		return order.MaxDevices
	}
	return minDevices
}

// notify publishes outside of any transaction; failures are logged and counted only.
func (u *LifecycleUseCase) notify(ctx context.Context, order *model.Order, eventType model.OrderEventType, message string) {
	event := model.OrderEvent{
		Type:            eventType,
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		UserID:          order.UserID,
		Amount:          order.Amount,
		TransferContent: order.TransferContent,
		Status:          order.Status,
		DeliveryMethod:  order.DeliveryMethod,
		DeliveryContact: order.DeliveryContact,
		Message:         message,
		OccurredAt:      u.now().UTC(),
	}
	if err := u.events.Publish(ctx, event); err != nil {
		u.metrics.NotificationFailed(eventType)
		u.logger.Warn("order notification failed",
			slog.String("order_id", order.ID),
			slog.String("type", string(eventType)),
			slog.String("error", err.Error()))
	}
}
