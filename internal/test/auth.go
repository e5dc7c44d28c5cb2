package test

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/polkiloo/veo3store/internal/domain/model"
	pkgAuth "github.com/polkiloo/veo3store/internal/pkg/auth"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied password.
func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return "hash:" + password, nil
}

// Compare validates password against stored hash.
func (h HasherStub) Compare(hash string, password string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, password)
	}
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// StrategyStub encodes claims as "userID|sessionID|role" unless overridden.
type StrategyStub struct {
	IssueFn func(model.TokenClaims) (string, error)
	ParseFn func(string) (model.TokenClaims, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(claims model.TokenClaims) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(claims)
	}
	return strconv.FormatInt(claims.UserID, 10) + "|" + claims.SessionID + "|" + string(claims.Role), nil
}

// ParseToken parses previously issued token strings.
func (s StrategyStub) ParseToken(token string) (model.TokenClaims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	parts := strings.Split(token, "|")
	if len(parts) != 3 {
		return model.TokenClaims{}, pkgAuth.ErrInvalidToken
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return model.TokenClaims{}, pkgAuth.ErrInvalidToken
	}
	return model.TokenClaims{UserID: id, SessionID: parts[1], Role: model.Role(parts[2])}, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// AuthorizerStub resolves tokens for middleware tests.
type AuthorizerStub struct {
	Claims      model.TokenClaims
	Err         error
	AuthorizeFn func(context.Context, string) (model.TokenClaims, error)
}

// Authorize delegates to override or returns predefined result.
func (s AuthorizerStub) Authorize(ctx context.Context, token string) (model.TokenClaims, error) {
	if s.AuthorizeFn != nil {
		return s.AuthorizeFn(ctx, token)
	}
	if s.Err != nil {
		return model.TokenClaims{}, s.Err
	}
	return s.Claims, nil
}

var _ pkgAuth.PasswordHasher = HasherStub{}
var _ pkgAuth.Strategy = StrategyStub{}
