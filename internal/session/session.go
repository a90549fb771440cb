// Package session owns the signed-in identity and its bearer credential.
// Nothing else writes the session; readers go through Current or Token.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/joss/debate/internal/api"
	"github.com/joss/debate/internal/domain"
	"github.com/joss/debate/internal/logging"
	"github.com/joss/debate/internal/store"
)

// ErrNoSession means nobody is signed in.
var ErrNoSession = errors.New("not signed in")

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, creds api.Credentials) (*api.LoginResult, error)
}

// Source is the read side of the provider, what controllers depend on.
type Source interface {
	Current(ctx context.Context) (*domain.Session, error)
}

// Provider holds the current session, backed by a store.
type Provider struct {
	auth  Authenticator
	store store.SessionStore
	now   func() time.Time
	log   *logging.Logger

	mu      sync.Mutex
	current *domain.Session
	loaded  bool
}

var _ Source = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		p.now = now
	}
}

// NewProvider creates a provider. auth may be nil when only reading.
func NewProvider(auth Authenticator, st store.SessionStore, opts ...Option) *Provider {
	p := &Provider{
		auth:  auth,
		store: st,
		now:   time.Now,
		log:   logging.New("session"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SignIn authenticates and replaces the current session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.Invalid("email", "is required")
	}
	if password == "" {
		return nil, domain.Invalid("password", "is required")
	}
	if p.auth == nil {
		return nil, errors.New("sign in: no authenticator configured")
	}

	res, err := p.auth.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	sess := &domain.Session{
		UserID:    res.User.ID,
		Username:  res.User.Username,
		Email:     res.User.Email,
		Role:      res.User.Role,
		Token:     res.Token,
		SignedIn:  p.now(),
		ExpiresAt: TokenExpiry(res.Token),
	}
	if sess.Email == "" {
		sess.Email = email
	}

	if err := p.store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	p.mu.Lock()
	p.current = sess
	p.loaded = true
	p.mu.Unlock()

	p.log.WithUser(sess.Username).Info("signed_in", map[string]interface{}{
		"user_id": sess.UserID,
	})
	cp := *sess
	return &cp, nil
}

// SignOut clears the session in memory and in the store.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.loaded = true
	p.mu.Unlock()

	if err := p.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	p.log.Info("signed_out", nil)
	return nil
}

// Current returns a copy of the session, or ErrNoSession. An expired session
// is cleared and reported as ErrNoSession.
func (p *Provider) Current(ctx context.Context) (*domain.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		sess, err := p.store.LoadSession(ctx)
		switch {
		case store.IsNotFound(err):
			sess = nil
		case err != nil:
			return nil, fmt.Errorf("load session: %w", err)
		}
		p.current = sess
		p.loaded = true
	}

	if p.current == nil {
		return nil, ErrNoSession
	}
	if p.current.Expired(p.now()) {
		p.log.Info("session_expired", map[string]interface{}{
			"expired_at": p.current.ExpiresAt,
		})
		p.current = nil
		if err := p.store.ClearSession(ctx); err != nil {
			p.log.Warn("clear_expired_session", nil, err)
		}
		return nil, ErrNoSession
	}

	cp := *p.current
	return &cp, nil
}

// Token returns the bearer credential, or ErrNoSession.
func (p *Provider) Token(ctx context.Context) (string, error) {
	sess, err := p.Current(ctx)
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}

// TokenExpiry reads the exp claim of a JWT without verifying it. The zero
// time is returned when the token is not a JWT or carries no exp.
func TokenExpiry(token string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
