package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/memodb-io/roombook/internal/auth"
	"go.uber.org/zap"
)

// Session is a started session: the token to present and the identity it
// carries.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Viewer    auth.Viewer `json:"viewer"`
}

type SessionService interface {
	// Identify verifies an identity provider token.
	Identify(ctx context.Context, providerToken string) (*auth.ProviderClaims, error)
	// Start exchanges a provider token for a session. The user record is read
	// here and cached for the life of the session.
	Start(ctx context.Context, providerToken string) (*Session, error)
	// Resolve returns the cached identity and session id behind a session
	// token.
	Resolve(ctx context.Context, sessionToken string) (auth.Viewer, string, error)
	// Refresh replaces the cached identity, e.g. after a profile change.
	Refresh(ctx context.Context, sessionID string, v auth.Viewer) error
	End(ctx context.Context, sessionID string) error
}

type sessionService struct {
	tokens *auth.Tokens
	store  auth.SessionStore
	users  UserService
	log    *zap.Logger
}

func NewSessionService(tokens *auth.Tokens, store auth.SessionStore, users UserService, log *zap.Logger) SessionService {
	return &sessionService{tokens: tokens, store: store, users: users, log: log}
}

func (s *sessionService) Identify(_ context.Context, providerToken string) (*auth.ProviderClaims, error) {
	claims, err := s.tokens.VerifyProvider(providerToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return claims, nil
}

func (s *sessionService) Start(ctx context.Context, providerToken string) (*Session, error) {
	claims, err := s.Identify(ctx, providerToken)
	if err != nil {
		return nil, err
	}

	// a provider identity without a profile is not signed in
	u, err := s.users.Get(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	v := auth.ViewerOf(*u)

	token, sessionID, expiresAt, err := s.tokens.IssueSession(v.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, sessionID, v, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	s.log.Sugar().Infow("session started", "user_id", v.ID, "role", v.Role, "session_id", sessionID)

	return &Session{Token: token, ExpiresAt: expiresAt, Viewer: v}, nil
}

func (s *sessionService) Resolve(ctx context.Context, sessionToken string) (auth.Viewer, string, error) {
	claims, err := s.tokens.VerifySession(sessionToken)
	if err != nil {
		return auth.Viewer{}, "", fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	v, err := s.store.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			return auth.Viewer{}, "", ErrSessionNotFound
		}
		return auth.Viewer{}, "", fmt.Errorf("load session: %w", err)
	}
	if v.ID != claims.Subject {
		return auth.Viewer{}, "", ErrSessionNotFound
	}
	return v, claims.ID, nil
}

func (s *sessionService) Refresh(ctx context.Context, sessionID string, v auth.Viewer) error {
	if err := s.store.Put(ctx, sessionID, v, s.tokens.TTL()); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *sessionService) End(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
