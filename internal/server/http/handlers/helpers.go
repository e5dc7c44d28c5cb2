package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/veo3store/internal/domain/errors"
	"github.com/polkiloo/veo3store/internal/domain/model"
	"github.com/polkiloo/veo3store/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domainErrors.NewValidationError(key, "must be an integer")
	}
	return n, nil
}

func parsePage(c *gin.Context) (model.Page, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return model.Page{}, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return model.Page{}, err
	}
	return model.Page{Page: page, Limit: limit}, nil
}
