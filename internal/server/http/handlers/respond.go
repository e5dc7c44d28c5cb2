package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/veo3store/internal/domain/errors"
	"github.com/polkiloo/veo3store/internal/server/http/dto"
)

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, dto.Envelope{Success: true, Data: data, Timestamp: time.Now().UTC()})
}

func respondFailure(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.Envelope{
		Success:   false,
		Error:     &dto.ErrorBody{Code: code, Message: message},
		Timestamp: time.Now().UTC(),
	})
}

func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
}

// respondError maps domain errors onto status codes and envelope codes.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var validation *domainErrors.ValidationError
	switch {
	case errors.As(err, &validation):
		respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.Error())
	case errors.Is(err, domainErrors.ErrValidation):
		respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		respondFailure(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	case errors.Is(err, domainErrors.ErrSessionInvalid):
		respondFailure(c, http.StatusUnauthorized, "SESSION_INVALID", "session is no longer valid")
	case errors.Is(err, domainErrors.ErrForbidden):
		respondFailure(c, http.StatusForbidden, "FORBIDDEN", "access denied")
	case errors.Is(err, domainErrors.ErrNotFound):
		respondFailure(c, http.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		respondFailure(c, http.StatusConflict, "CONFLICT", "resource already exists")
	case errors.Is(err, domainErrors.ErrInvalidState):
		respondFailure(c, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, domainErrors.ErrLicenseIssuance):
		respondFailure(c, http.StatusBadGateway, "LICENSE_ISSUANCE_FAILED", "license service is unavailable, try again")
	default:
		respondFailure(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
