package client

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	domainErrors "github.com/polkiloo/veo3store/internal/domain/errors"
	"github.com/polkiloo/veo3store/internal/server/http/dto"
)

const (
	defaultReviewInterval = 10 * time.Second
	statusProcessing      = "PROCESSING"
)

// AdminReview is the payment verification console: it keeps the latest
// listing and drops answers that arrive after a newer one was applied.
type AdminReview struct {
	client *Client

	seq     atomic.Uint64
	mu      sync.Mutex
	applied uint64
	list    *dto.OrderListResponse
}

func NewAdminReview(c *Client) *AdminReview {
	return &AdminReview{client: c}
}

// Refresh loads a page of orders. A stale answer is returned to the caller
// but not applied, and reported by applied=false.
func (r *AdminReview) Refresh(ctx context.Context, q OrderQuery) (list *dto.OrderListResponse, applied bool, err error) {
	seq := r.seq.Add(1)
	list, err = r.client.AdminOrders(ctx, q)
	if err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq <= r.applied {
		return list, false, nil
	}
	r.applied = seq
	kept := *list
	kept.Orders = append([]dto.OrderResponse(nil), list.Orders...)
	r.list = &kept
	return list, true, nil
}

// Orders returns the last applied listing.
func (r *AdminReview) Orders() []dto.OrderResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.list == nil {
		return nil
	}
	return append([]dto.OrderResponse(nil), r.list.Orders...)
}

// NeedsAction returns orders waiting for payment verification.
func (r *AdminReview) NeedsAction() []dto.OrderResponse {
	var pending []dto.OrderResponse
	for _, o := range r.Orders() {
		if o.Status == statusProcessing {
			pending = append(pending, o)
		}
	}
	return pending
}

func (r *AdminReview) Approve(ctx context.Context, orderID string, req dto.ApproveOrderRequest) (*dto.OrderResponse, error) {
	if req.MaxDevices < 0 || req.MaxDevices > 10 {
		return nil, domainErrors.NewValidationError("maxDevices", "must be between 1 and 10")
	}
	seq := r.seq.Add(1)
	order, err := r.client.ApproveOrder(ctx, orderID, req)
	if err != nil {
		return nil, err
	}
	r.replace(seq, *order)
	return order, nil
}

// Reject refuses an empty reason without calling the server.
func (r *AdminReview) Reject(ctx context.Context, orderID, reason string) (*dto.OrderResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domainErrors.NewValidationError("reason", "rejection reason is required")
	}
	seq := r.seq.Add(1)
	order, err := r.client.RejectOrder(ctx, orderID, reason)
	if err != nil {
		return nil, err
	}
	r.replace(seq, *order)
	return order, nil
}

func (r *AdminReview) Stats(ctx context.Context) (*dto.DashboardResponse, error) {
	return r.client.Dashboard(ctx)
}

// Watch refreshes on a fixed interval until ctx is done. onUpdate receives
// every applied listing and every error. A slow request delays the next tick
// rather than being cancelled.
func (r *AdminReview) Watch(ctx context.Context, interval time.Duration, q OrderQuery, onUpdate func(*dto.OrderListResponse, error)) {
	if interval <= 0 {
		interval = defaultReviewInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		list, applied, err := r.Refresh(ctx, q)
		if ctx.Err() != nil {
			return
		}
		if onUpdate != nil && (err != nil || applied) {
			onUpdate(list, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// replace swaps in the order returned by a decision. Listings requested
// before the decision was sent are dropped from then on.
func (r *AdminReview) replace(seq uint64, order dto.OrderResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq > r.applied {
		r.applied = seq
	}
	if r.list == nil {
		return
	}
	for i := range r.list.Orders {
		if r.list.Orders[i].ID == order.ID {
			r.list.Orders[i] = order
			return
		}
	}
}
