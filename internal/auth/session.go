package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultSessionTTL = 7 * 24 * time.Hour

	// used only in development when no secret is configured
	insecureDevelopmentSecret = "portfolio-insecure-development-secret-do-not-use"
	minProductionSecretLen    = 32
)

var (
	ErrSessionInvalid = errors.New("session invalid")
	ErrSecretNotSet   = errors.New("session secret not set")
)

// Session is the decoded identity of a verified session token.
type Session struct {
	ID        string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type sessionClaims struct {
	Username        string `json:"username"`
	IsAuthenticated *bool  `json:"isAuthenticated"`
	jwt.RegisteredClaims
}

type SessionManagerParams struct {
	Secret     string
	TTL        time.Duration
	Production bool
	// Now is used as the clock for issuing and verifying, time.Now when nil.
	Now func() time.Time
}

// SessionManager issues and verifies stateless, HS256 signed session tokens.
// Tokens cannot be revoked before they expire.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(params SessionManagerParams) (*SessionManager, error) {
	secret := params.Secret
	if secret == "" {
		if params.Production {
			return nil, ErrSecretNotSet
		}
		log.Warnln("session secret not set, using the insecure development secret")
		secret = insecureDevelopmentSecret
	}
	if params.Production && len(secret) < minProductionSecretLen {
		return nil, fmt.Errorf("session secret must be at least %d bytes long", minProductionSecretLen)
	}

	ttl := params.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}, nil
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new token for username.
func (m *SessionManager) Issue(username string) (string, *Session, error) {
	if username == "" {
		return "", nil, errors.New("empty username")
	}

	now := m.now()
	authenticated := true
	claims := sessionClaims{
		Username:        username,
		IsAuthenticated: &authenticated,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}

	return token, claims.session(), nil
}

// Verify returns the session carried by token, or ErrSessionInvalid when the
// signature, algorithm, expiry or any required claim is wrong.
func (m *SessionManager) Verify(token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}

	claims := &sessionClaims{}
	if _, err := jwt.ParseWithClaims(
		token,
		claims,
		func(_ *jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	); err != nil {
		log.Tracef("session verify: %s", err)
		return nil, ErrSessionInvalid
	}

	if claims.Username == "" || claims.IsAuthenticated == nil || !*claims.IsAuthenticated {
		return nil, ErrSessionInvalid
	}

	return claims.session(), nil
}

func (c *sessionClaims) session() *Session {
	s := &Session{
		ID:       c.ID,
		Username: c.Username,
	}
	if c.IssuedAt != nil {
		s.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}
