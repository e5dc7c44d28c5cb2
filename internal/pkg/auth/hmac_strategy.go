package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/veo3store/internal/domain/model"
)

// HMACStrategy signs compact "user:session:role:expires" tokens with HMAC-SHA256.
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	return &HMACStrategy{secret: []byte(secret), ttl: opts.ttl(), now: time.Now}
}

// IssueToken generates signed auth token for the session.
func (s *HMACStrategy) IssueToken(claims model.TokenClaims) (string, error) {
	if claims.SessionID == "" || strings.Contains(claims.SessionID, ":") {
		return "", ErrInvalidToken
	}
	expires := s.now().Add(s.ttl).Unix()
	payload := fmt.Sprintf("%d:%s:%s:%d", claims.UserID, claims.SessionID, claims.Role, expires)
	token := fmt.Sprintf("%s:%s", payload, s.sign(payload))
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

// ParseToken validates token and returns the encoded claims.
func (s *HMACStrategy) ParseToken(token string) (model.TokenClaims, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return model.TokenClaims{}, ErrInvalidToken
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 5 {
		return model.TokenClaims{}, ErrInvalidToken
	}

	payload := strings.Join(parts[:4], ":")
	if !hmac.Equal([]byte(s.sign(payload)), []byte(parts[4])) {
		return model.TokenClaims{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return model.TokenClaims{}, ErrInvalidToken
	}

	expires, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return model.TokenClaims{}, ErrInvalidToken
	}

	if time.Unix(expires, 0).Before(s.now()) {
		return model.TokenClaims{}, ErrInvalidToken
	}

	return model.TokenClaims{UserID: userID, SessionID: parts[1], Role: model.Role(parts[2])}, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
