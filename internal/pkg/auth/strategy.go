package auth

import (
	"errors"
	"time"

	"github.com/polkiloo/veo3store/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

// Strategy issues and verifies access tokens bound to a session.
type Strategy interface {
	IssueToken(claims model.TokenClaims) (string, error)
	ParseToken(token string) (model.TokenClaims, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}

const defaultTTL = 24 * time.Hour

func (o Options) ttl() time.Duration {
	if o.TTL <= 0 {
		return defaultTTL
	}
	return o.TTL
}
