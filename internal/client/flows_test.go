package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/polkiloo/veo3store/internal/server/http/dto"
)

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for condition")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSessionWatcherSignsOutOnReplacedSession(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	loginHandler(mux, "tok-1")
	mux.HandleFunc("GET /api/auth/session/status", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 3 {
			writeData(w, http.StatusOK, dto.SessionStatusResponse{Valid: true, SessionID: "s1", UserID: "1"})
			return
		}
		writeError(w, http.StatusUnauthorized, "SESSION_INVALID", "phiên đăng nhập đã bị thay thế")
	})
	c, _ := newTestClient(t, mux)
	if _, err := c.Login(context.Background(), "khach@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	invalid := make(chan struct{}, 1)
	watcher := NewSessionWatcher(c, 5*time.Millisecond, func() { invalid <- struct{}{} })
	watcher.Start(context.Background())
	defer watcher.Stop()

	select {
	case <-invalid:
	case <-time.After(2 * time.Second):
		t.Fatal("expected OnInvalid to fire")
	}
	if c.Auth().Authenticated() {
		t.Fatal("expected auth state to be cleared")
	}
}

func TestSessionWatcherFailsOpen(t *testing.T) {
	mux := http.NewServeMux()
	loginHandler(mux, "tok-1")
	c, srv := newTestClient(t, mux)
	if _, err := c.Login(context.Background(), "khach@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	srv.Close()

	var fired atomic.Bool
	watcher := NewSessionWatcher(c, 5*time.Millisecond, func() { fired.Store(true) })
	watcher.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	watcher.Stop()

	if fired.Load() || !c.Auth().Authenticated() {
		t.Fatal("network failures must keep the session")
	}
}

func TestSessionWatcherStopsAfterLogout(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	loginHandler(mux, "tok-1")
	mux.HandleFunc("GET /api/auth/session/status", func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		writeData(w, http.StatusOK, dto.SessionStatusResponse{Valid: true})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, dto.MessageResponse{Message: "Đăng xuất thành công"})
	})
	c, _ := newTestClient(t, mux)
	if _, err := c.Login(context.Background(), "khach@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	watcher := NewSessionWatcher(c, 5*time.Millisecond, nil)
	watcher.Start(context.Background())
	waitUntil(t, func() bool { return polls.Load() > 0 })
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	seen := polls.Load()
	time.Sleep(30 * time.Millisecond)
	if polls.Load() != seen {
		t.Fatal("expected polling to stop after logout")
	}
	watcher.Stop()
}

func checkoutServer(t *testing.T, confirms *atomic.Int32) *Client {
	t.Helper()
	order := dto.OrderResponse{ID: "o1", OrderNumber: "ORD20260314000123", Amount: 1199000, Status: "PENDING", TransferContent: "VEO3 20260314 AB12"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		var req dto.CreateOrderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.PackageID != "p3" || req.PaymentMethod != MethodBankTransfer {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "bad request")
			return
		}
		writeData(w, http.StatusCreated, dto.CheckoutResponse{Order: order, Payment: &dto.PaymentResponse{
			Amount: order.Amount, TransferContent: order.TransferContent,
			BankInfo: dto.BankInfo{BankName: "MB Bank", AccountNumber: "0987654321", AccountName: "CONG TY VEO3 AI"},
		}})
	})
	mux.HandleFunc("POST /api/orders/{id}/confirm", func(w http.ResponseWriter, r *http.Request) {
		confirms.Add(1)
		confirmed := order
		confirmed.Status = "PROCESSING"
		writeData(w, http.StatusOK, confirmed)
	})
	mux.HandleFunc("GET /api/orders/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, dto.OrderStatusResponse{Status: "COMPLETED"})
	})
	c, _ := newTestClient(t, mux)
	return c
}

func TestCheckoutFlow(t *testing.T) {
	var confirms atomic.Int32
	co := NewCheckout(checkoutServer(t, &confirms))
	ctx := context.Background()

	if err := co.SelectMethod(MethodUSDT); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected USDT to be refused, got %v", err)
	}
	if err := co.Confirm(ctx); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected confirm before start to be refused, got %v", err)
	}
	if _, err := co.Refresh(ctx); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected refresh before start to be refused, got %v", err)
	}
	if err := co.SelectMethod(MethodBankTransfer); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := co.Start(ctx, "p3"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if co.Step() != StepPaymentDisplay {
		t.Fatalf("expected payment display, got %s", co.Step())
	}
	if p := co.Payment(); p == nil || p.Amount != 1199000 || p.TransferContent != "VEO3 20260314 AB12" {
		t.Fatalf("unexpected payment %+v", p)
	}
	if err := co.Start(ctx, "p3"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected second start to be refused, got %v", err)
	}
	if err := co.SelectMethod(MethodBankTransfer); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected method change after start to be refused, got %v", err)
	}

	if err := co.Confirm(ctx); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if co.Step() != StepConfirmed || co.Order().Status != "PROCESSING" {
		t.Fatalf("unexpected state %s %+v", co.Step(), co.Order())
	}
	if err := co.Confirm(ctx); !errors.Is(err, ErrValidation) || confirms.Load() != 1 {
		t.Fatalf("expected one confirmation request, got %d (%v)", confirms.Load(), err)
	}

	status, err := co.Refresh(ctx)
	if err != nil || status != "COMPLETED" || co.Order().Status != "COMPLETED" {
		t.Fatalf("refresh: %s %v", status, err)
	}
}

func TestAdminReview(t *testing.T) {
	var rejects atomic.Int32
	orders := []dto.OrderResponse{
		{ID: "o1", Status: "PROCESSING"},
		{ID: "o2", Status: "PENDING"},
		{ID: "o3", Status: "PROCESSING"},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/orders", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, dto.OrderListResponse{Orders: orders, Pagination: dto.Pagination{Total: 3, Page: 1, Limit: 10, TotalPages: 1}})
	})
	mux.HandleFunc("PUT /api/admin/orders/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		var req dto.ApproveOrderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeData(w, http.StatusOK, dto.OrderResponse{ID: r.PathValue("id"), Status: "COMPLETED", MaxDevices: req.MaxDevices,
			License: &dto.OrderLicense{LicenseKey: "VEO3-KEY"}})
	})
	mux.HandleFunc("PUT /api/admin/orders/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		rejects.Add(1)
		if r.PathValue("id") == "o1" {
			writeError(w, http.StatusConflict, "INVALID_STATE", "order already completed")
			return
		}
		writeData(w, http.StatusOK, dto.OrderResponse{ID: r.PathValue("id"), Status: "REJECTED"})
	})
	mux.HandleFunc("GET /api/admin/dashboard", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, dto.DashboardResponse{ProcessingOrders: 2, MonthlyRevenue: 1199000})
	})
	c, _ := newTestClient(t, mux)
	review := NewAdminReview(c)
	ctx := context.Background()

	if _, applied, err := review.Refresh(ctx, OrderQuery{Status: "PROCESSING"}); err != nil || !applied {
		t.Fatalf("refresh: %v %v", applied, err)
	}
	if got := review.NeedsAction(); len(got) != 2 || got[0].ID != "o1" || got[1].ID != "o3" {
		t.Fatalf("unexpected pending review %+v", got)
	}

	approved, err := review.Approve(ctx, "o1", dto.ApproveOrderRequest{MaxDevices: 3, DeliveryMethod: "EMAIL"})
	if err != nil || approved.Status != "COMPLETED" || approved.MaxDevices != 3 {
		t.Fatalf("approve: %+v %v", approved, err)
	}
	if got := review.NeedsAction(); len(got) != 1 || got[0].ID != "o3" {
		t.Fatalf("expected approved order to leave the queue, got %+v", got)
	}
	if _, err := review.Approve(ctx, "o3", dto.ApproveOrderRequest{MaxDevices: 11}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected device limit to be checked locally, got %v", err)
	}

	if _, err := review.Reject(ctx, "o3", "   "); !errors.Is(err, ErrValidation) || rejects.Load() != 0 {
		t.Fatalf("expected empty reason to be refused before any request, got %v (%d calls)", err, rejects.Load())
	}
	rejected, err := review.Reject(ctx, "o3", "Không nhận được chuyển khoản")
	if err != nil || rejected.Status != "REJECTED" {
		t.Fatalf("reject: %+v %v", rejected, err)
	}
	if _, err := review.Reject(ctx, "o1", "late"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}

	stats, err := review.Stats(ctx)
	if err != nil || stats.MonthlyRevenue != 1199000 {
		t.Fatalf("stats: %+v %v", stats, err)
	}
}

func TestAdminReviewDropsStaleRefresh(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/orders", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			<-release
			writeData(w, http.StatusOK, dto.OrderListResponse{Orders: []dto.OrderResponse{{ID: "old", Status: "PROCESSING"}}})
			return
		}
		writeData(w, http.StatusOK, dto.OrderListResponse{Orders: []dto.OrderResponse{{ID: "new", Status: "COMPLETED"}}})
	})
	c, _ := newTestClient(t, mux)
	review := NewAdminReview(c)

	var wg sync.WaitGroup
	var staleApplied atomic.Bool
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, applied, _ := review.Refresh(context.Background(), OrderQuery{})
		staleApplied.Store(applied)
	}()
	waitUntil(t, func() bool { return calls.Load() == 1 })

	if _, applied, err := review.Refresh(context.Background(), OrderQuery{}); err != nil || !applied {
		t.Fatalf("fresh refresh: %v %v", applied, err)
	}
	close(release)
	wg.Wait()

	if staleApplied.Load() {
		t.Fatal("expected the older response to be dropped")
	}
	if got := review.Orders(); len(got) != 1 || got[0].ID != "new" {
		t.Fatalf("expected newest listing to stay, got %+v", got)
	}
}

func TestAdminReviewWatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/orders", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, dto.OrderListResponse{Orders: []dto.OrderResponse{{ID: "o1", Status: "PROCESSING"}}})
	})
	c, _ := newTestClient(t, mux)
	review := NewAdminReview(c)

	ctx, cancel := context.WithCancel(context.Background())
	var updates atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		review.Watch(ctx, 5*time.Millisecond, OrderQuery{Status: "PROCESSING"}, func(list *dto.OrderListResponse, err error) {
			if err == nil && len(list.Orders) == 1 {
				updates.Add(1)
			}
		})
	}()
	waitUntil(t, func() bool { return updates.Load() >= 3 })
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected watch to return after cancel")
	}
}

func TestSessionWatcherSignsOutOnPlainTextUnauthorized(t *testing.T) {
	mux := http.NewServeMux()
	loginHandler(mux, "tok-1")
	mux.HandleFunc("GET /api/auth/session/status", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
	c, _ := newTestClient(t, mux)
	if _, err := c.Login(context.Background(), "khach@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	invalid := make(chan struct{}, 1)
	watcher := NewSessionWatcher(c, 5*time.Millisecond, func() { invalid <- struct{}{} })
	watcher.Start(context.Background())
	defer watcher.Stop()

	select {
	case <-invalid:
	case <-time.After(2 * time.Second):
		t.Fatal("expected OnInvalid to fire for a bare 401")
	}
	if c.Auth().Authenticated() {
		t.Fatal("expected auth state to be cleared")
	}
}

func TestSessionWatcherCallbackCanStopWatcher(t *testing.T) {
	mux := http.NewServeMux()
	loginHandler(mux, "tok-1")
	mux.HandleFunc("GET /api/auth/session/status", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "SESSION_INVALID", "phiên đăng nhập đã bị thay thế")
	})
	c, _ := newTestClient(t, mux)
	if _, err := c.Login(context.Background(), "khach@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	stopped := make(chan struct{})
	var watcher *SessionWatcher
	watcher = NewSessionWatcher(c, 5*time.Millisecond, func() {
		watcher.Stop()
		close(stopped)
	})
	watcher.Start(context.Background())

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop inside OnInvalid did not return")
	}
}

func TestCheckoutDropsStatusPolledBeforeConfirm(t *testing.T) {
	release := make(chan struct{})
	var polls atomic.Int32
	order := dto.OrderResponse{ID: "o1", Status: "PENDING"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusCreated, dto.CheckoutResponse{Order: order, Payment: &dto.PaymentResponse{Amount: 1199000}})
	})
	mux.HandleFunc("POST /api/orders/{id}/confirm", func(w http.ResponseWriter, r *http.Request) {
		confirmed := order
		confirmed.Status = "PROCESSING"
		writeData(w, http.StatusOK, confirmed)
	})
	mux.HandleFunc("GET /api/orders/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) == 1 {
			<-release
			writeData(w, http.StatusOK, dto.OrderStatusResponse{Status: "PENDING"})
			return
		}
		writeData(w, http.StatusOK, dto.OrderStatusResponse{Status: "COMPLETED"})
	})
	c, _ := newTestClient(t, mux)
	co := NewCheckout(c)
	ctx := context.Background()
	if err := co.Start(ctx, "p3"); err != nil {
		t.Fatalf("start: %v", err)
	}

	stale := make(chan string, 1)
	go func() {
		status, _ := co.Refresh(ctx)
		stale <- status
	}()
	waitUntil(t, func() bool { return polls.Load() == 1 })

	if err := co.Confirm(ctx); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	close(release)
	if got := <-stale; got != "PROCESSING" {
		t.Fatalf("expected stale poll to report the held status, got %s", got)
	}
	if co.Step() != StepConfirmed || co.Order().Status != "PROCESSING" {
		t.Fatalf("stale poll reverted state: %s %+v", co.Step(), co.Order())
	}

	if status, err := co.Refresh(ctx); err != nil || status != "COMPLETED" || co.Order().Status != "COMPLETED" {
		t.Fatalf("fresh poll: %s %v", status, err)
	}
}

func TestCheckoutRefusesConcurrentStart(t *testing.T) {
	release := make(chan struct{})
	var creates atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		creates.Add(1)
		<-release
		writeData(w, http.StatusCreated, dto.CheckoutResponse{Order: dto.OrderResponse{ID: "o1", Status: "PENDING"}})
	})
	c, _ := newTestClient(t, mux)
	co := NewCheckout(c)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- co.Start(ctx, "p3") }()
	waitUntil(t, func() bool { return creates.Load() == 1 })

	if err := co.Start(ctx, "p3"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected concurrent start to be refused, got %v", err)
	}
	close(release)
	if err := <-first; err != nil {
		t.Fatalf("first start: %v", err)
	}
	if creates.Load() != 1 || co.Step() != StepPaymentDisplay {
		t.Fatalf("expected exactly one order, got %d calls at %s", creates.Load(), co.Step())
	}
}

func TestCheckoutStartCanRetryAfterFailure(t *testing.T) {
	var creates atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		if creates.Add(1) == 1 {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "try again")
			return
		}
		writeData(w, http.StatusCreated, dto.CheckoutResponse{Order: dto.OrderResponse{ID: "o1", Status: "PENDING"}})
	})
	c, _ := newTestClient(t, mux)
	co := NewCheckout(c)

	if err := co.Start(context.Background(), "p3"); err == nil {
		t.Fatal("expected server error")
	}
	if err := co.Start(context.Background(), "p3"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if co.Step() != StepPaymentDisplay {
		t.Fatalf("unexpected step %s", co.Step())
	}
}

func TestAdminReviewDecisionOutranksInFlightRefresh(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/orders", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 2 {
			<-release
		}
		writeData(w, http.StatusOK, dto.OrderListResponse{Orders: []dto.OrderResponse{{ID: "o1", Status: "PROCESSING"}}})
	})
	mux.HandleFunc("PUT /api/admin/orders/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, dto.OrderResponse{ID: r.PathValue("id"), Status: "COMPLETED"})
	})
	c, _ := newTestClient(t, mux)
	review := NewAdminReview(c)
	ctx := context.Background()

	if _, applied, err := review.Refresh(ctx, OrderQuery{}); err != nil || !applied {
		t.Fatalf("initial refresh: %v %v", applied, err)
	}

	var wg sync.WaitGroup
	var staleApplied atomic.Bool
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, applied, _ := review.Refresh(ctx, OrderQuery{})
		staleApplied.Store(applied)
	}()
	waitUntil(t, func() bool { return calls.Load() == 2 })

	if _, err := review.Approve(ctx, "o1", dto.ApproveOrderRequest{MaxDevices: 1}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	close(release)
	wg.Wait()

	if staleApplied.Load() {
		t.Fatal("expected refresh sent before the decision to be dropped")
	}
	if got := review.Orders(); len(got) != 1 || got[0].Status != "COMPLETED" {
		t.Fatalf("expected approved order to stay completed, got %+v", got)
	}
	if pending := review.NeedsAction(); len(pending) != 0 {
		t.Fatalf("expected empty queue, got %+v", pending)
	}
}
