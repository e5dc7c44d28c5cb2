package repository

import (
	"context"
	"time"

	"github.com/polkiloo/veo3store/internal/domain/model"
)

// SessionRepository keeps at most one session record per user.
type SessionRepository interface {
	Put(ctx context.Context, session *model.Session, ttl time.Duration) error
	Get(ctx context.Context, userID int64) (*model.Session, error)
	Delete(ctx context.Context, userID int64) error
}
