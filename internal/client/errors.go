package client

import (
	"errors"
	"fmt"
	"net/http"

	domainErrors "github.com/polkiloo/veo3store/internal/domain/errors"
)

// Sentinels matched by APIError through errors.Is.
var (
	ErrNetwork            = errors.New("network error")
	ErrSessionInvalid     = domainErrors.ErrSessionInvalid
	ErrInvalidCredentials = domainErrors.ErrInvalidCredentials
	ErrForbidden          = domainErrors.ErrForbidden
	ErrNotFound           = domainErrors.ErrNotFound
	ErrInvalidState       = domainErrors.ErrInvalidState
	ErrValidation         = domainErrors.ErrValidation
)

// APIError is a failed call. Status is zero when the server was never reached.
type APIError struct {
	Status  int
	Code    string
	Message string
	Err     error

	// signedOut is set when this rejection cleared the client's auth state.
	signedOut bool
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("veo3 api unreachable: %v", e.Err)
	}
	return fmt.Sprintf("veo3 api %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is maps transport failures and response codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Status == 0
	case ErrSessionInvalid:
		return e.Status == http.StatusUnauthorized && e.Code != "INVALID_CREDENTIALS"
	case ErrInvalidCredentials:
		return e.Status == http.StatusUnauthorized && e.Code == "INVALID_CREDENTIALS"
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrInvalidState:
		return e.Code == "INVALID_STATE"
	case ErrValidation:
		return e.Status == http.StatusBadRequest
	}
	return false
}
