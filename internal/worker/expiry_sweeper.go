package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/veo3store/internal/domain/errors"
	"github.com/polkiloo/veo3store/internal/domain/model"
)

// ExpiryFacade exposes the subset of application functionality required by the sweeper.
type ExpiryFacade interface {
	ExpiredOrders(ctx context.Context, now time.Time, limit int) ([]model.Order, error)
	ExpireOrder(ctx context.Context, orderID string, now time.Time) (*model.Order, error)
}

// ExpirySweeper periodically moves unpaid PENDING orders past their window to EXPIRED.
type ExpirySweeper struct {
	facade    ExpiryFacade
	interval  time.Duration
	batchSize int
	workers   int
	logger    *slog.Logger
	now       func() time.Time

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewExpirySweeper constructs the sweeper worker pool.
func NewExpirySweeper(facade ExpiryFacade, interval time.Duration, batchSize, workers int, logger *slog.Logger) *ExpirySweeper {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpirySweeper{
		facade:    facade,
		interval:  interval,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
		now:       time.Now,
	}
}

// Start launches background sweeping. The first sweep runs immediately.
func (s *ExpirySweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.jobs = make(chan model.Order, s.batchSize)

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(runCtx, s.jobs)
	}

	s.wg.Add(1)
	go s.dispatch(runCtx, s.jobs)
}

// Stop cancels sweeping and waits for in-flight expirations.
func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *ExpirySweeper) dispatch(ctx context.Context, jobs chan<- model.Order) {
	defer s.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx, jobs)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx, jobs)
		}
	}
}

func (s *ExpirySweeper) sweep(ctx context.Context, jobs chan<- model.Order) {
	orders, err := s.facade.ExpiredOrders(ctx, s.now(), s.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("list expired orders failed", slog.String("error", err.Error()))
		}
		return
	}
	if len(orders) > 0 {
		s.logger.Debug("expiring orders", slog.Int("count", len(orders)))
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case jobs <- order:
		}
	}
}

func (s *ExpirySweeper) worker(ctx context.Context, jobs <-chan model.Order) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-jobs:
			if !ok {
				return
			}
			s.expire(ctx, order)
		}
	}
}

func (s *ExpirySweeper) expire(ctx context.Context, order model.Order) {
	_, err := s.facade.ExpireOrder(ctx, order.ID, s.now())
	switch {
	case err == nil:
	case errors.Is(err, domainErrors.ErrInvalidState), errors.Is(err, domainErrors.ErrNotFound):
		// Customer confirmed payment between listing and expiring.
		s.logger.Debug("order left pending state before expiry", slog.String("order_id", order.ID))
	default:
		s.logger.Error("expire order failed", slog.String("order_id", order.ID), slog.String("error", err.Error()))
	}
}
