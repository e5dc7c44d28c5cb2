package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/veo3store/internal/server/http/dto"
)

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.Envelope{
		Success:   false,
		Error:     &dto.ErrorBody{Code: code, Message: message},
		Timestamp: time.Now().UTC(),
	})
}
