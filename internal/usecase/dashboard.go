package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/polkiloo/veo3store/internal/domain/model"
	"github.com/polkiloo/veo3store/internal/domain/repository"
)

// DashboardUseCase aggregates admin console counters.
type DashboardUseCase struct {
	users    repository.UserRepository
	orders   repository.OrderRepository
	licenses repository.LicenseRepository
	now      func() time.Time
}

// NewDashboardUseCase constructs DashboardUseCase.
func NewDashboardUseCase(users repository.UserRepository, orders repository.OrderRepository, licenses repository.LicenseRepository) *DashboardUseCase {
	return &DashboardUseCase{users: users, orders: orders, licenses: licenses, now: time.Now}
}

// Stats collects the counters concurrently.
func (u *DashboardUseCase) Stats(ctx context.Context) (*model.DashboardStats, error) {
	now := u.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var (
		stats  model.DashboardStats
		counts map[model.OrderStatus]int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := u.users.Count(ctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		stats.TotalUsers = n
		return nil
	})
	g.Go(func() error {
		c, err := u.orders.CountByStatus(ctx)
		if err != nil {
			return fmt.Errorf("count orders: %w", err)
		}
		counts = c
		return nil
	})
	g.Go(func() error {
		total, active, err := u.licenses.Counts(ctx, now)
		if err != nil {
			return fmt.Errorf("count licenses: %w", err)
		}
		stats.TotalLicenses, stats.ActiveLicenses = total, active
		return nil
	})
	g.Go(func() error {
		revenue, err := u.orders.RevenueSince(ctx, monthStart)
		if err != nil {
			return fmt.Errorf("monthly revenue: %w", err)
		}
		stats.MonthlyRevenue = revenue
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, n := range counts {
		stats.TotalOrders += n
	}
	stats.PendingOrders = counts[model.OrderStatusPending]
	stats.ProcessingOrders = counts[model.OrderStatusProcessing]
	stats.CompletedOrders = counts[model.OrderStatusCompleted]
	stats.RejectedOrders = counts[model.OrderStatusRejected]
	stats.ExpiredOrders = counts[model.OrderStatusExpired]
	return &stats, nil
}
