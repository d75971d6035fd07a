package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// ProviderClaims are issued by the identity provider. Subject is the user id.
type ProviderClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// SessionClaims are issued by this service. ID keys the cached identity.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// Tokens verifies identity provider tokens and issues/verifies session tokens.
type Tokens struct {
	providerSecret []byte
	providerIssuer string
	sessionSecret  []byte
	issuer         string
	ttl            time.Duration
	now            func() time.Time
}

type TokensConfig struct {
	ProviderSecret string
	ProviderIssuer string
	SessionSecret  string
	Issuer         string
	SessionTTL     time.Duration
}

func NewTokens(cfg TokensConfig) *Tokens {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Tokens{
		providerSecret: []byte(cfg.ProviderSecret),
		providerIssuer: cfg.ProviderIssuer,
		sessionSecret:  []byte(cfg.SessionSecret),
		issuer:         cfg.Issuer,
		ttl:            ttl,
		now:            time.Now,
	}
}

// TTL is the lifetime of issued session tokens.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// VerifyProvider validates an identity provider token and returns its claims.
func (t *Tokens) VerifyProvider(raw string) (*ProviderClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now)}
	if t.providerIssuer != "" {
		opts = append(opts, jwt.WithIssuer(t.providerIssuer))
	}
	claims := &ProviderClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, keyFunc(t.providerSecret), opts...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// IssueSession signs a new session token for subject. The returned session id
// is the token's jti.
func (t *Tokens) IssueSession(subject string) (token string, sessionID string, expiresAt time.Time, err error) {
	now := t.now()
	sessionID = uuid.NewString()
	expiresAt = now.Add(t.ttl)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   subject,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.sessionSecret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, sessionID, expiresAt, nil
}

// VerifySession validates a session token issued by IssueSession.
func (t *Tokens) VerifySession(raw string) (*SessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	claims := &SessionClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, keyFunc(t.sessionSecret), opts...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrInvalidToken)
	}
	return claims, nil
}

func keyFunc(secret []byte) jwt.Keyfunc {
	return func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return secret, nil
	}
}
