package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/polkiloo/veo3store/internal/server/http/dto"
)

// OrderQuery selects a page of the admin order listing.
type OrderQuery struct {
	Status string
	Search string
	Page   int
	Limit  int
}

func (q OrderQuery) values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	var out dto.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login signs in and records the session in the auth state.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, dto.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	user := out.User
	if _, err := c.auth.Set(out.AccessToken, &user); err != nil {
		c.logger.Warn("persist session marker failed", slog.String("error", err.Error()))
	}
	return &out, nil
}

// Logout ends the session. Local state is cleared even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	if clearErr := c.auth.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

func (c *Client) Me(ctx context.Context) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Restore signs back in from the session cookie when the marker says a
// session existed. It reports whether the client is authenticated afterwards.
func (c *Client) Restore(ctx context.Context) (bool, error) {
	had, err := c.auth.HadSession()
	if err != nil || !had {
		return false, err
	}
	user, err := c.Me(ctx)
	if err != nil {
		if IsSessionInvalid(err) {
			return false, c.auth.Clear()
		}
		return false, err
	}
	if _, err := c.auth.Set(c.auth.Token(), user); err != nil {
		return true, err
	}
	return true, nil
}

func (c *Client) SessionStatus(ctx context.Context) (*dto.SessionStatusResponse, error) {
	var out dto.SessionStatusResponse
	if err := c.do(ctx, http.MethodGet, "/auth/session/status", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Packages(ctx context.Context) ([]dto.PackageResponse, error) {
	var out []dto.PackageResponse
	if err := c.do(ctx, http.MethodGet, "/packages", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateOrder(ctx context.Context, packageID, paymentMethod string) (*dto.CheckoutResponse, error) {
	var out dto.CheckoutResponse
	req := dto.CreateOrderRequest{PackageID: packageID, PaymentMethod: paymentMethod}
	if err := c.do(ctx, http.MethodPost, "/orders", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ConfirmPayment(ctx context.Context, orderID string) (*dto.OrderResponse, error) {
	var out dto.OrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/confirm", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Order(ctx context.Context, orderID string) (*dto.CheckoutResponse, error) {
	var out dto.CheckoutResponse
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OrderStatus(ctx context.Context, orderID string) (string, error) {
	var out dto.OrderStatusResponse
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/status", nil, nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *Client) MyOrders(ctx context.Context, page, limit int) (*dto.OrderListResponse, error) {
	var out dto.OrderListResponse
	if err := c.do(ctx, http.MethodGet, "/users/orders", OrderQuery{Page: page, Limit: limit}.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminOrders(ctx context.Context, q OrderQuery) (*dto.OrderListResponse, error) {
	var out dto.OrderListResponse
	if err := c.do(ctx, http.MethodGet, "/admin/orders", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminOrder(ctx context.Context, orderID string) (*dto.OrderResponse, error) {
	var out dto.OrderResponse
	if err := c.do(ctx, http.MethodGet, "/admin/orders/"+url.PathEscape(orderID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApproveOrder(ctx context.Context, orderID string, req dto.ApproveOrderRequest) (*dto.OrderResponse, error) {
	var out dto.OrderResponse
	if err := c.do(ctx, http.MethodPut, "/admin/orders/"+url.PathEscape(orderID)+"/approve", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RejectOrder(ctx context.Context, orderID, reason string) (*dto.OrderResponse, error) {
	var out dto.OrderResponse
	req := dto.RejectOrderRequest{Reason: reason}
	if err := c.do(ctx, http.MethodPut, "/admin/orders/"+url.PathEscape(orderID)+"/reject", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	var out dto.DashboardResponse
	if err := c.do(ctx, http.MethodGet, "/admin/dashboard", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsSessionInvalid reports an explicit session rejection by the server.
func IsSessionInvalid(err error) bool {
	return errors.Is(err, ErrSessionInvalid)
}
