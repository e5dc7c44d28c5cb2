package license

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/polkiloo/veo3store/internal/domain/model"
)

const maxRetryAfter = 5 * time.Second

// TooManyRequestsError represents rate limiting signal from the license service.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// StatusError is a non-success answer of the license service.
type StatusError struct {
	Code int
	Body string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("license service responded %d: %s", e.Code, e.Body)
}

// Issuer mints licenses for approved orders.
type Issuer interface {
	Issue(ctx context.Context, req model.LicenseRequest) (*model.License, error)
}

// HTTPClient implements Issuer via the license service HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
	attempts   uint
	delay      time.Duration
	maxDelay   time.Duration
}

type issueRequest struct {
	OrderID        string `json:"orderId"`
	UserID         int64  `json:"userId"`
	PackageID      string `json:"packageId"`
	DurationMonths int    `json:"durationMonths"`
	MaxDevices     int    `json:"maxDevices"`
}

type issueResponse struct {
	ID         string    `json:"id"`
	LicenseKey string    `json:"licenseKey"`
	MaxDevices int       `json:"maxDevices"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
}

// NewHTTPClient creates license client with default timeout.
func NewHTTPClient(baseURL string, attempts int, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse license service url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("license service url must be absolute")
	}
	if attempts < 1 {
		attempts = 1
	}
	return &HTTPClient{
		baseURL:  parsed,
		logger:   logger,
		attempts: uint(attempts),
		delay:    200 * time.Millisecond,
		maxDelay: 2 * time.Second,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Issue asks the service for a license. The order id doubles as idempotency key,
// so a retried or repeated call returns the license minted the first time.
func (c *HTTPClient) Issue(ctx context.Context, req model.LicenseRequest) (*model.License, error) {
	payload, err := json.Marshal(issueRequest{
		OrderID:        req.OrderID,
		UserID:         req.UserID,
		PackageID:      req.PackageID,
		DurationMonths: req.DurationMonths,
		MaxDevices:     req.MaxDevices,
	})
	if err != nil {
		return nil, err
	}

	return retry.DoWithData(
		func() (*model.License, error) {
			return c.issueOnce(ctx, req, payload)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(c.maxDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.DelayType(func(n uint, err error, cfg *retry.Config) time.Duration {
			var tooMany TooManyRequestsError
			if errors.As(err, &tooMany) {
				return min(tooMany.RetryAfter, maxRetryAfter)
			}
			return retry.BackOffDelay(n, err, cfg)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("license issuance attempt failed",
				slog.String("order_id", req.OrderID),
				slog.Int("attempt", int(n)+1),
				slog.String("error", err.Error()))
		}),
	)
}

func (c *HTTPClient) issueOnce(ctx context.Context, req model.LicenseRequest, payload []byte) (*model.License, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/licenses")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.OrderID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var data issueResponse
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return nil, retry.Unrecoverable(fmt.Errorf("decode license: %w", err))
		}
		if data.LicenseKey == "" {
			return nil, retry.Unrecoverable(errors.New("license service returned an empty key"))
		}
		maxDevices := data.MaxDevices
		if maxDevices == 0 {
			maxDevices = req.MaxDevices
		}
		return &model.License{
			ID:         data.ID,
			OrderID:    req.OrderID,
			UserID:     req.UserID,
			Key:        data.LicenseKey,
			MaxDevices: maxDevices,
			StartsAt:   data.StartDate,
			EndsAt:     data.EndDate,
		}, nil
	case http.StatusTooManyRequests:
		return nil, TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("license request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, StatusError{Code: resp.StatusCode, Body: string(body)}
	}
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status StatusError
	if errors.As(err, &status) {
		return status.Code >= http.StatusInternalServerError
	}
	return true
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return time.Second
}
