package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/veo3store/internal/domain/errors"
	"github.com/polkiloo/veo3store/internal/domain/model"
	"github.com/polkiloo/veo3store/internal/server/http/dto"
	"github.com/polkiloo/veo3store/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/veo3store/internal/test"
	"github.com/polkiloo/veo3store/internal/test/httpstub"
	"github.com/polkiloo/veo3store/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := dto.RegisterValidators(); err != nil {
		panic(err)
	}
}

func performRequest(t *testing.T, method, pattern, path string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, pattern, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func asUser(id int64, role model.Role) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDContextKey, id)
		c.Set(middleware.ClaimsContextKey, model.TokenClaims{UserID: id, SessionID: "session", Role: role})
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

type envelope[T any] struct {
	Success   bool           `json:"success"`
	Data      T              `json:"data"`
	Error     *dto.ErrorBody `json:"error"`
	Timestamp time.Time      `json:"timestamp"`
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", resp.Body.String(), err)
	}
	if env.Timestamp.IsZero() {
		t.Fatal("expected envelope timestamp")
	}
	return env
}

func expectError(t *testing.T, resp *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if resp.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, resp.Code, resp.Body.String())
	}
	env := decode[json.RawMessage](t, resp)
	if env.Success || env.Error == nil || env.Error.Code != code {
		t.Fatalf("expected error code %s, got %+v", code, env.Error)
	}
}

func TestCurrentUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentUserID(c); got != 0 {
		t.Fatalf("expected 0 when not set, got %d", got)
	}

	c.Set(middleware.UserIDContextKey, int64(42))
	if got := CurrentUserID(c); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domainErrors.NewValidationError("reason", "rejection reason is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{fmt.Errorf("wrap: %w", domainErrors.ErrValidation), http.StatusBadRequest, "VALIDATION_ERROR"},
		{domainErrors.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{domainErrors.ErrSessionInvalid, http.StatusUnauthorized, "SESSION_INVALID"},
		{domainErrors.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{domainErrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domainErrors.ErrAlreadyExists, http.StatusConflict, "CONFLICT"},
		{fmt.Errorf("order is COMPLETED: %w", domainErrors.ErrInvalidState), http.StatusConflict, "INVALID_STATE"},
		{fmt.Errorf("%w: timeout", domainErrors.ErrLicenseIssuance), http.StatusBadGateway, "LICENSE_ISSUANCE_FAILED"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			resp := performRequest(t, http.MethodGet, "/", "/", func(c *gin.Context) { respondError(c, tc.err) }, nil, nil)
			expectError(t, resp, tc.status, tc.code)
		})
	}
}

func TestAuthHandlerRegister(t *testing.T) {
	email := "khach.moi@example.com"
	handler := NewAuthHandler(httpstub.AuthFacadeStub{RegisterFn: func(_ context.Context, in usecase.RegisterInput) (*model.User, error) {
		if in.Email != email || in.Name != "Khach Hang" || in.Phone != "0900000000" {
			t.Fatalf("unexpected input %+v", in)
		}
		return &model.User{ID: 5, Email: in.Email, Name: in.Name, Role: model.RoleUser}, nil
	}}, time.Hour)

	body := mustJSON(t, dto.RegisterRequest{Email: email, Password: "secret1", Name: "Khach Hang", Phone: "0900000000"})
	resp := performRequest(t, http.MethodPost, "/register", "/register", handler.Register, nil, body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	env := decode[dto.RegisterResponse](t, resp)
	if !env.Success || env.Data.User.ID != "5" || env.Data.Message == "" {
		t.Fatalf("unexpected body %+v", env)
	}

	resp = performRequest(t, http.MethodPost, "/register", "/register", handler.Register, nil, []byte(`{"email":""}`))
	expectError(t, resp, http.StatusBadRequest, "VALIDATION_ERROR")

	dup := NewAuthHandler(httpstub.AuthFacadeStub{RegisterFn: func(context.Context, usecase.RegisterInput) (*model.User, error) {
		return nil, domainErrors.ErrAlreadyExists
	}}, time.Hour)
	resp = performRequest(t, http.MethodPost, "/register", "/register", dup.Register, nil, body)
	expectError(t, resp, http.StatusConflict, "CONFLICT")
}

func TestAuthHandlerLogin(t *testing.T) {
	var meta model.SessionMeta
	handler := NewAuthHandler(httpstub.AuthFacadeStub{LoginFn: func(_ context.Context, email, password string, m model.SessionMeta) (*usecase.LoginResult, error) {
		meta = m
		if password != "secret1" {
			return nil, domainErrors.ErrInvalidCredentials
		}
		return &usecase.LoginResult{
			Token:     "tok",
			SessionID: "s1",
			User:      &model.User{ID: 7, Email: email, Name: "Admin", Role: model.RoleAdmin},
		}, nil
	}}, 2*time.Hour)

	body := mustJSON(t, dto.LoginRequest{Email: "admin@veo3.vn", Password: "secret1"})
	resp := performRequest(t, http.MethodPost, "/login", "/login", handler.Login, nil, body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	env := decode[dto.LoginResponse](t, resp)
	if env.Data.AccessToken != "tok" || env.Data.User.Role != "ADMIN" || env.Data.User.ID != "7" {
		t.Fatalf("unexpected login body %+v", env.Data)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte(`"access_token"`)) {
		t.Fatal("expected snake_case access_token field")
	}
	result := resp.Result()
	t.Cleanup(func() { _ = result.Body.Close() })
	cookies := result.Cookies()
	if len(cookies) != 1 || cookies[0].Name != middleware.AuthCookieName || cookies[0].Value != "tok" || cookies[0].MaxAge != 7200 {
		t.Fatalf("unexpected cookies %+v", cookies)
	}
	if meta.IP == "" {
		t.Fatal("expected client ip in session meta")
	}

	body = mustJSON(t, dto.LoginRequest{Email: "admin@veo3.vn", Password: "wrong"})
	resp = performRequest(t, http.MethodPost, "/login", "/login", handler.Login, nil, body)
	expectError(t, resp, http.StatusUnauthorized, "INVALID_CREDENTIALS")

	resp = performRequest(t, http.MethodPost, "/login", "/login", handler.Login, nil, []byte(`not json`))
	expectError(t, resp, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestAuthHandlerSessionEndpoints(t *testing.T) {
	var loggedOut int64
	handler := NewAuthHandler(httpstub.AuthFacadeStub{LogoutFn: func(_ context.Context, id int64) error {
		loggedOut = id
		return nil
	}}, time.Hour)

	resp := performRequest(t, http.MethodPost, "/logout", "/logout", handler.Logout, asUser(3, model.RoleUser), nil)
	if resp.Code != http.StatusOK || loggedOut != 3 {
		t.Fatalf("expected logout of user 3, got status %d user %d", resp.Code, loggedOut)
	}
	result := resp.Result()
	t.Cleanup(func() { _ = result.Body.Close() })
	if cookies := result.Cookies(); len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected cookie to be cleared, got %+v", cookies)
	}

	resp = performRequest(t, http.MethodGet, "/me", "/me", handler.Me, asUser(3, model.RoleUser), nil)
	if env := decode[dto.UserResponse](t, resp); env.Data.ID != "3" {
		t.Fatalf("unexpected me body %+v", env.Data)
	}

	resp = performRequest(t, http.MethodGet, "/status", "/status", handler.SessionStatus, asUser(3, model.RoleUser), nil)
	env := decode[dto.SessionStatusResponse](t, resp)
	if !env.Data.Valid || env.Data.SessionID != "session" || env.Data.UserID != "3" {
		t.Fatalf("unexpected session status %+v", env.Data)
	}

	failing := NewAuthHandler(httpstub.AuthFacadeStub{
		LogoutFn: func(context.Context, int64) error { return errors.New("redis down") },
		MeFn:     func(context.Context, int64) (*model.User, error) { return nil, domainErrors.ErrNotFound },
	}, time.Hour)
	resp = performRequest(t, http.MethodPost, "/logout", "/logout", failing.Logout, asUser(3, model.RoleUser), nil)
	expectError(t, resp, http.StatusInternalServerError, "INTERNAL_ERROR")
	resp = performRequest(t, http.MethodGet, "/me", "/me", failing.Me, asUser(3, model.RoleUser), nil)
	expectError(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestCatalogHandler(t *testing.T) {
	handler := NewCatalogHandler(httpstub.CatalogFacadeStub{
		PackagesFn: func(context.Context) ([]model.Package, error) {
			return []model.Package{
				{ID: "p1", Name: "Gói 1 Tháng", SalePrice: 499000, Active: true},
				{ID: "p3", Name: "Gói 3 Tháng", SalePrice: 1199000, Popular: true, Features: []string{"SEO nâng cao"}, Active: true},
			}, nil
		},
		PackageFn: func(_ context.Context, id string) (*model.Package, error) {
			if id != "p3" {
				return nil, domainErrors.ErrNotFound
			}
			return &model.Package{ID: "p3", SalePrice: 1199000, Active: true}, nil
		},
	})

	resp := performRequest(t, http.MethodGet, "/packages", "/packages", handler.List, nil, nil)
	list := decode[[]dto.PackageResponse](t, resp)
	if len(list.Data) != 2 || !list.Data[1].IsPopular || list.Data[0].Features == nil {
		t.Fatalf("unexpected catalog %+v", list.Data)
	}

	resp = performRequest(t, http.MethodGet, "/packages/:id", "/packages/p3", handler.Get, nil, nil)
	if one := decode[dto.PackageResponse](t, resp); one.Data.SalePrice != 1199000 {
		t.Fatalf("unexpected package %+v", one.Data)
	}

	resp = performRequest(t, http.MethodGet, "/packages/:id", "/packages/nope", handler.Get, nil, nil)
	expectError(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestOrderHandlerCreate(t *testing.T) {
	var gotMethod model.PaymentMethod
	handler := NewOrderHandler(httpstub.OrderFacadeStub{CreateFn: func(_ context.Context, userID int64, packageID string, method model.PaymentMethod) (*model.Checkout, error) {
		gotMethod = method
		if method == model.PaymentMethodUSDT {
			return nil, domainErrors.NewValidationError("paymentMethod", "USDT payment is not supported yet")
		}
		order := testhelpers.SampleOrder()
		order.UserID, order.PackageID = userID, packageID
		return &model.Checkout{Order: order, Payment: model.PaymentInstructions{
			Bank:            model.BankInfo{BankName: "MB Bank", AccountNumber: "0987654321", AccountName: "CONG TY VEO3 AI"},
			Amount:          order.Amount,
			TransferContent: order.TransferContent,
			QRCodeURL:       "https://img.vietqr.io/image/MB-0987654321-compact2.png",
		}}, nil
	}})

	body := mustJSON(t, dto.CreateOrderRequest{PackageID: "p3"})
	resp := performRequest(t, http.MethodPost, "/orders", "/orders", handler.Create, asUser(1, model.RoleUser), body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	env := decode[dto.CheckoutResponse](t, resp)
	if env.Data.Order.Status != "PENDING" || env.Data.Order.Amount != 1199000 {
		t.Fatalf("unexpected order %+v", env.Data.Order)
	}
	if env.Data.Payment == nil || env.Data.Payment.TransferContent != "VEO3 20260314 AB12" || env.Data.Payment.BankInfo.BankName != "MB Bank" {
		t.Fatalf("unexpected payment %+v", env.Data.Payment)
	}
	if gotMethod != "" {
		t.Fatalf("expected empty method to reach the facade, got %q", gotMethod)
	}

	body = mustJSON(t, dto.CreateOrderRequest{PackageID: "p3", PaymentMethod: "USDT"})
	resp = performRequest(t, http.MethodPost, "/orders", "/orders", handler.Create, asUser(1, model.RoleUser), body)
	expectError(t, resp, http.StatusBadRequest, "VALIDATION_ERROR")

	resp = performRequest(t, http.MethodPost, "/orders", "/orders", handler.Create, asUser(1, model.RoleUser), []byte(`{}`))
	expectError(t, resp, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestOrderHandlerReads(t *testing.T) {
	processing := testhelpers.SampleOrder()
	processing.Status = model.OrderStatusProcessing
	handler := NewOrderHandler(httpstub.OrderFacadeStub{
		OrderFn: func(_ context.Context, id string, userID int64) (*model.Checkout, error) {
			if id == "processing" {
				return &model.Checkout{Order: processing}, nil
			}
			if userID != 1 {
				return nil, domainErrors.ErrNotFound
			}
			return &model.Checkout{Order: testhelpers.SampleOrder()}, nil
		},
		StatusFn: func(context.Context, string, int64) (model.OrderStatus, error) {
			return model.OrderStatusCompleted, nil
		},
		ListFn: func(_ context.Context, userID int64, page model.Page) (*model.OrderList, error) {
			if page.Page != 2 || page.Limit != 5 {
				t.Fatalf("unexpected page %+v", page)
			}
			return &model.OrderList{Orders: []model.Order{*processing}, Total: 6, Page: 2, Limit: 5}, nil
		},
	})

	resp := performRequest(t, http.MethodGet, "/orders/:id", "/orders/abc", handler.Get, asUser(1, model.RoleUser), nil)
	if env := decode[dto.CheckoutResponse](t, resp); env.Data.Payment == nil {
		t.Fatal("pending order should carry payment instructions")
	}
	resp = performRequest(t, http.MethodGet, "/orders/:id", "/orders/processing", handler.Get, asUser(1, model.RoleUser), nil)
	if env := decode[dto.CheckoutResponse](t, resp); env.Data.Payment != nil {
		t.Fatal("processing order must not carry payment instructions")
	}
	resp = performRequest(t, http.MethodGet, "/orders/:id", "/orders/abc", handler.Get, asUser(2, model.RoleUser), nil)
	expectError(t, resp, http.StatusNotFound, "NOT_FOUND")

	resp = performRequest(t, http.MethodGet, "/orders/:id/status", "/orders/abc/status", handler.Status, asUser(1, model.RoleUser), nil)
	if env := decode[dto.OrderStatusResponse](t, resp); env.Data.Status != "COMPLETED" {
		t.Fatalf("unexpected status %+v", env.Data)
	}

	resp = performRequest(t, http.MethodGet, "/users/orders", "/users/orders?page=2&limit=5", handler.ListMine, asUser(1, model.RoleUser), nil)
	list := decode[dto.OrderListResponse](t, resp)
	if list.Data.Pagination != (dto.Pagination{Total: 6, Page: 2, Limit: 5, TotalPages: 2}) || len(list.Data.Orders) != 1 {
		t.Fatalf("unexpected listing %+v", list.Data)
	}

	resp = performRequest(t, http.MethodGet, "/users/orders", "/users/orders?page=two", handler.ListMine, asUser(1, model.RoleUser), nil)
	expectError(t, resp, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestOrderHandlerConfirm(t *testing.T) {
	handler := NewOrderHandler(httpstub.OrderFacadeStub{})
	resp := performRequest(t, http.MethodPost, "/orders/:id/confirm", "/orders/abc/confirm", handler.Confirm, asUser(1, model.RoleUser), nil)
	if env := decode[dto.OrderResponse](t, resp); env.Data.Status != "PROCESSING" || env.Data.ID != "abc" {
		t.Fatalf("unexpected confirm body %+v", env.Data)
	}

	rejected := NewOrderHandler(httpstub.OrderFacadeStub{ConfirmFn: func(context.Context, string, int64) (*model.Order, error) {
		return nil, fmt.Errorf("cannot confirm order abc in status REJECTED: %w", domainErrors.ErrInvalidState)
	}})
	resp = performRequest(t, http.MethodPost, "/orders/:id/confirm", "/orders/abc/confirm", rejected.Confirm, asUser(1, model.RoleUser), nil)
	expectError(t, resp, http.StatusConflict, "INVALID_STATE")
}

func TestAdminHandler(t *testing.T) {
	var (
		gotFilter model.OrderFilter
		gotInput  usecase.ApproveInput
		gotAdmin  int64
		gotReason string
	)
	handler := NewAdminHandler(httpstub.AdminFacadeStub{
		ListFn: func(_ context.Context, filter model.OrderFilter, page model.Page) (*model.OrderList, error) {
			gotFilter = filter
			return &model.OrderList{Orders: []model.Order{*testhelpers.SampleOrder()}, Total: 1, Page: 1, Limit: 10}, nil
		},
		ApproveFn: func(_ context.Context, id string, adminID int64, in usecase.ApproveInput) (*model.Order, error) {
			gotInput, gotAdmin = in, adminID
			if id == "down" {
				return nil, fmt.Errorf("%w: 503", domainErrors.ErrLicenseIssuance)
			}
			order := testhelpers.SampleOrder()
			order.Status = model.OrderStatusCompleted
			order.LicenseKey = "VEO3-KEY"
			return order, nil
		},
		RejectFn: func(_ context.Context, id string, adminID int64, reason string) (*model.Order, error) {
			gotReason = reason
			if reason == "" {
				return nil, domainErrors.NewValidationError("reason", "rejection reason is required")
			}
			order := testhelpers.SampleOrder()
			order.Status = model.OrderStatusRejected
			order.RejectionReason = reason
			return order, nil
		},
	})
	admin := asUser(99, model.RoleAdmin)

	resp := performRequest(t, http.MethodGet, "/admin/orders", "/admin/orders?status=processing&search=VEO3", handler.List, admin, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotFilter.Status != model.OrderStatusProcessing || gotFilter.Search != "VEO3" {
		t.Fatalf("unexpected filter %+v", gotFilter)
	}

	resp = performRequest(t, http.MethodGet, "/admin/orders/:id", "/admin/orders/xyz", handler.Get, admin, nil)
	if env := decode[dto.OrderResponse](t, resp); env.Data.ID != "xyz" || env.Data.User == nil {
		t.Fatalf("unexpected admin order %+v", env.Data)
	}

	body := mustJSON(t, dto.ApproveOrderRequest{MaxDevices: 3, DeliveryMethod: "EMAIL", DeliveryContact: "khach@example.com"})
	resp = performRequest(t, http.MethodPut, "/admin/orders/:id/approve", "/admin/orders/abc/approve", handler.Approve, admin, body)
	env := decode[dto.OrderResponse](t, resp)
	if env.Data.Status != "COMPLETED" || env.Data.License == nil || env.Data.License.LicenseKey != "VEO3-KEY" {
		t.Fatalf("unexpected approve body %+v", env.Data)
	}
	if gotAdmin != 99 || gotInput.MaxDevices != 3 || gotInput.DeliveryMethod != model.DeliveryMethodEmail {
		t.Fatalf("unexpected approve call admin=%d input=%+v", gotAdmin, gotInput)
	}

	resp = performRequest(t, http.MethodPut, "/admin/orders/:id/approve", "/admin/orders/down/approve", handler.Approve, admin, body)
	expectError(t, resp, http.StatusBadGateway, "LICENSE_ISSUANCE_FAILED")

	resp = performRequest(t, http.MethodPut, "/admin/orders/:id/reject", "/admin/orders/abc/reject", handler.Reject, admin,
		mustJSON(t, dto.RejectOrderRequest{Reason: "Không nhận được chuyển khoản"}))
	if env := decode[dto.OrderResponse](t, resp); env.Data.Status != "REJECTED" || gotReason != "Không nhận được chuyển khoản" {
		t.Fatalf("unexpected reject body %+v", env.Data)
	}

	resp = performRequest(t, http.MethodPut, "/admin/orders/:id/reject", "/admin/orders/abc/reject", handler.Reject, admin, []byte(`{"reason":""}`))
	expectError(t, resp, http.StatusBadRequest, "VALIDATION_ERROR")

	resp = performRequest(t, http.MethodGet, "/admin/dashboard", "/admin/dashboard", handler.Dashboard, admin, nil)
	if stats := decode[dto.DashboardResponse](t, resp); stats.Data.MonthlyRevenue != 1199000 || stats.Data.TotalOrders != 5 {
		t.Fatalf("unexpected dashboard %+v", stats.Data)
	}
}

func TestHealthHandler(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/health", "/health", NewHealthHandler(httpstub.HealthFacadeStub{}).Check, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodGet, "/health", "/health", NewHealthHandler(httpstub.HealthFacadeStub{Err: errors.New("db down")}).Check, nil, nil)
	expectError(t, resp, http.StatusServiceUnavailable, "UNAVAILABLE")
}
