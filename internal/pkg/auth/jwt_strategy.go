package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/polkiloo/veo3store/internal/domain/model"
)

const jwtIssuer = "veo3store"

// accessClaims is the JWT body of an access token.
type accessClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	Role      string `json:"role"`
}

// JWTStrategy issues HS256 JWT access tokens.
type JWTStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTStrategy builds JWTStrategy with provided secret and options.
func NewJWTStrategy(secret string, opts Options) *JWTStrategy {
	return &JWTStrategy{secret: []byte(secret), ttl: opts.ttl(), now: time.Now}
}

// IssueToken signs a JWT carrying user, session and role.
func (s *JWTStrategy) IssueToken(claims model.TokenClaims) (string, error) {
	if claims.SessionID == "" {
		return "", ErrInvalidToken
	}
	now := s.now()
	body := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claims.UserID, 10),
			Issuer:    jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		SessionID: claims.SessionID,
		Role:      string(claims.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, body).SignedString(s.secret)
}

// ParseToken verifies signature, issuer and expiry.
func (s *JWTStrategy) ParseToken(token string) (model.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &accessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithIssuer(jwtIssuer), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return model.TokenClaims{}, ErrInvalidToken
	}

	body, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid || body.SessionID == "" {
		return model.TokenClaims{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(body.Subject, 10, 64)
	if err != nil {
		return model.TokenClaims{}, ErrInvalidToken
	}

	return model.TokenClaims{UserID: userID, SessionID: body.SessionID, Role: model.Role(body.Role)}, nil
}

func (s *JWTStrategy) Name() string {
	return "jwt"
}
