package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/polkiloo/veo3store/internal/config"
	domainErrors "github.com/polkiloo/veo3store/internal/domain/errors"
	"github.com/polkiloo/veo3store/internal/domain/model"
	"github.com/polkiloo/veo3store/internal/domain/repository"
)

const (
	sessionCreated    = "created"
	sessionValid      = "valid"
	sessionInvalid    = "invalid"
	sessionStoreError = "store_error"
)

// SessionUseCase keeps one authoritative session per user. A new login
// replaces the previous session, which then fails validation.
type SessionUseCase struct {
	sessions repository.SessionRepository
	metrics  SessionMetrics
	logger   *slog.Logger
	ttl      time.Duration
	now      func() time.Time
	newID    func() string
}

// SessionParams lists SessionUseCase dependencies.
type SessionParams struct {
	fx.In

	Sessions repository.SessionRepository
	Metrics  SessionMetrics `optional:"true"`
	Config   *config.Config
	Logger   *slog.Logger
}

// NewSessionUseCase constructs SessionUseCase.
func NewSessionUseCase(p SessionParams) *SessionUseCase {
	metrics := p.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	ttl := 24 * time.Hour
	if p.Config != nil && p.Config.TokenTTL > 0 {
		ttl = p.Config.TokenTTL
	}
	return &SessionUseCase{
		sessions: p.Sessions,
		metrics:  metrics,
		logger:   p.Logger,
		ttl:      ttl,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CreateSession records a new session for the user, replacing any previous one.
func (u *SessionUseCase) CreateSession(ctx context.Context, userID int64, meta model.SessionMeta) (string, error) {
	now := u.now().UTC()
	session := &model.Session{
		ID:         u.newID(),
		UserID:     userID,
		UserAgent:  meta.UserAgent,
		IP:         meta.IP,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := u.sessions.Put(ctx, session, u.ttl); err != nil {
		return "", err
	}
	u.metrics.SessionChecked(sessionCreated)
	return session.ID, nil
}

// Validate reports whether sessionID is the user's current session. Missing
// records are invalid; an unreachable store is treated as valid.
func (u *SessionUseCase) Validate(ctx context.Context, userID int64, sessionID string) bool {
	session, err := u.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.metrics.SessionChecked(sessionInvalid)
			return false
		}
		u.metrics.SessionChecked(sessionStoreError)
		u.logger.Warn("session store unavailable, allowing request",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		return true
	}

	if session.ID != sessionID {
		u.metrics.SessionChecked(sessionInvalid)
		return false
	}
	u.metrics.SessionChecked(sessionValid)
	return true
}

// InvalidateOnLogout removes the user's session.
func (u *SessionUseCase) InvalidateOnLogout(ctx context.Context, userID int64) error {
	return u.sessions.Delete(ctx, userID)
}

// Current returns the stored session of the user.
func (u *SessionUseCase) Current(ctx context.Context, userID int64) (*model.Session, error) {
	return u.sessions.Get(ctx, userID)
}
