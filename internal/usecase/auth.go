package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	domainErrors "github.com/polkiloo/veo3store/internal/domain/errors"
	"github.com/polkiloo/veo3store/internal/domain/model"
	"github.com/polkiloo/veo3store/internal/domain/repository"
	pkgAuth "github.com/polkiloo/veo3store/internal/pkg/auth"
)

// RegisterInput carries a sign-up request.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// LoginResult is a fresh session and its access token.
type LoginResult struct {
	Token     string
	SessionID string
	User      *model.User
}

// AuthUseCase handles user lifecycle and token management.
type AuthUseCase struct {
	users    repository.UserRepository
	hasher   pkgAuth.PasswordHasher
	tokens   pkgAuth.Strategy
	sessions *SessionUseCase
	logger   *slog.Logger
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, sessions *SessionUseCase, logger *slog.Logger) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy, sessions: sessions, logger: logger}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", domainErrors.NewValidationError("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domainErrors.NewValidationError("email", "invalid email address")
	}
	return email, nil
}

// Register creates a customer account.
func (u *AuthUseCase) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if !pkgAuth.AcceptablePassword(in.Password) {
		return nil, domainErrors.NewValidationError("password",
			fmt.Sprintf("password must be at least %d characters", pkgAuth.MinPasswordLength))
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domainErrors.NewValidationError("name", "name is required")
	}

	return u.createUser(ctx, &model.User{
		Email: email,
		Name:  name,
		Phone: strings.TrimSpace(in.Phone),
		Role:  model.RoleUser,
	}, in.Password)
}

func (u *AuthUseCase) createUser(ctx context.Context, usr *model.User, password string) (*model.User, error) {
	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	usr.PasswordHash = hash

	if err := u.users.Create(ctx, usr); err != nil {
		return nil, err
	}
	return usr, nil
}

// Login verifies credentials, replaces the user's session and issues a token bound to it.
func (u *AuthUseCase) Login(ctx context.Context, email, password string, meta model.SessionMeta) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, domainErrors.ErrInvalidCredentials
	}

	sessionID, err := u.sessions.CreateSession(ctx, usr.ID, meta)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := u.tokens.IssueToken(model.TokenClaims{UserID: usr.ID, SessionID: sessionID, Role: usr.Role})
	if err != nil {
		return nil, err
	}

	u.logger.Info("user logged in", slog.Int64("user_id", usr.ID), slog.String("ip", meta.IP))
	return &LoginResult{Token: token, SessionID: sessionID, User: usr}, nil
}

// Logout drops the user's session.
func (u *AuthUseCase) Logout(ctx context.Context, userID int64) error {
	return u.sessions.InvalidateOnLogout(ctx, userID)
}

// Authorize resolves a bearer token into claims of a still current session.
func (u *AuthUseCase) Authorize(ctx context.Context, token string) (model.TokenClaims, error) {
	if token == "" {
		return model.TokenClaims{}, domainErrors.ErrSessionInvalid
	}
	claims, err := u.tokens.ParseToken(token)
	if err != nil {
		return model.TokenClaims{}, fmt.Errorf("%w: %w", domainErrors.ErrSessionInvalid, err)
	}
	if !u.sessions.Validate(ctx, claims.UserID, claims.SessionID) {
		return model.TokenClaims{}, domainErrors.ErrSessionInvalid
	}
	return claims, nil
}

// Me returns the account behind the session.
func (u *AuthUseCase) Me(ctx context.Context, userID int64) (*model.User, error) {
	return u.users.GetByID(ctx, userID)
}

// EnsureAdmin creates the bootstrap administrator unless the email is taken.
func (u *AuthUseCase) EnsureAdmin(ctx context.Context, email, password string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	existing, err := u.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsAdmin() {
			u.logger.Warn("bootstrap admin email belongs to a customer account", slog.String("email", email))
		}
		return nil
	case !errors.Is(err, domainErrors.ErrNotFound):
		return err
	}

	if !pkgAuth.AcceptablePassword(password) {
		return domainErrors.NewValidationError("password", "bootstrap admin password is too short")
	}
	if _, err := u.createUser(ctx, &model.User{Email: email, Name: "Administrator", Role: model.RoleAdmin}, password); err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil
		}
		return err
	}
	u.logger.Info("bootstrap admin created", slog.String("email", email))
	return nil
}
