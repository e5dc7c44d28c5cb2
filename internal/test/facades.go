package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/veo3store/internal/domain/model"
)

// SampleOrder returns a PENDING order used across handler tests.
func SampleOrder() *model.Order {
	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return &model.Order{
		ID:              "3f1c2d4e-0000-4000-8000-000000000001",
		OrderNumber:     "ORD20260314000123",
		UserID:          1,
		UserEmail:       "khach@example.com",
		UserName:        "Khach Hang",
		PackageID:       "p3",
		PackageName:     "Gói 3 Tháng",
		DurationMonths:  3,
		Amount:          1199000,
		Currency:        model.CurrencyVND,
		PaymentMethod:   model.PaymentMethodBankTransfer,
		TransferContent: "VEO3 20260314 AB12",
		Status:          model.OrderStatusPending,
		MaxDevices:      2,
		ExpiresAt:       created.Add(24 * time.Hour),
		CreatedAt:       created,
		UpdatedAt:       created,
	}
}

// ExpiryFacadeStub mimics worker interactions with the store facade.
type ExpiryFacadeStub struct {
	Batches   [][]model.Order
	ListFn    func(context.Context, time.Time, int) ([]model.Order, error)
	ExpireFn  func(context.Context, string, time.Time) (*model.Order, error)
	mu        sync.Mutex
	Expired   []string
	listCalls atomic.Int32
}

// ExpiredOrders returns batches from the configured queue, then nothing.
func (s *ExpiryFacadeStub) ExpiredOrders(ctx context.Context, now time.Time, limit int) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, now, limit)
	}
	call := int(s.listCalls.Add(1))
	if call <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	return nil, nil
}

// ExpireOrder records the expired order id.
func (s *ExpiryFacadeStub) ExpireOrder(ctx context.Context, orderID string, now time.Time) (*model.Order, error) {
	if s.ExpireFn != nil {
		return s.ExpireFn(ctx, orderID, now)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Expired = append(s.Expired, orderID)
	return &model.Order{ID: orderID, Status: model.OrderStatusExpired}, nil
}

// ExpiredIDs returns a copy of the recorded ids.
func (s *ExpiryFacadeStub) ExpiredIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Expired...)
}
