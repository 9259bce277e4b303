// internal/session/session.go
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"goorm-board/internal/models"
	"goorm-board/internal/transport"
	"goorm-board/internal/utils"
)

// Session holds the authenticated state of the current client session:
// the bearer token and the user it belongs to. It lives exactly as long
// as the process; nothing here is persisted.
type Session struct {
	api   transport.API
	token interface{ SetToken(string) }

	mu        sync.RWMutex
	jwt       string
	user      *models.User
	expiresAt time.Time
}

// New wires a session over the given API. tokenSink receives the bearer
// token on login and an empty string on logout; the transport Client
// satisfies it.
func New(api transport.API, tokenSink interface{ SetToken(string) }) *Session {
	return &Session{api: api, token: tokenSink}
}

func (s *Session) Login(ctx context.Context, username, password string) (*models.User, error) {
	result, err := s.api.Login(ctx, transport.Credentials{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	s.install(result)
	return s.User(), nil
}

func (s *Session) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	result, err := s.api.Register(ctx, transport.Credentials{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	s.install(result)
	return s.User(), nil
}

// Logout tells the server goodbye and clears local auth state. Local
// state is cleared even when the server call fails; a dead token is
// useless either way.
func (s *Session) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)

	s.mu.Lock()
	s.jwt = ""
	s.user = nil
	s.expiresAt = time.Time{}
	s.mu.Unlock()
	s.token.SetToken("")

	return err
}

func (s *Session) install(result *transport.AuthResult) {
	user := result.User

	s.mu.Lock()
	s.jwt = result.Token
	s.user = &user
	s.expiresAt = tokenExpiry(result.Token)
	s.mu.Unlock()

	s.token.SetToken(result.Token)
}

// User returns a copy of the logged-in user, or nil for a guest session.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Role reports the effective role: guest until login succeeds.
func (s *Session) Role() models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.RoleGuest
	}
	return s.user.Role
}

// Check returns SESSION_EXPIRED when the token's exp claim has passed,
// saving a round trip that is known to fail. A token without a readable
// expiry is given the benefit of the doubt; the server has the last word.
func (s *Session) Check(now time.Time) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.jwt == "" {
		return utils.NewAppError(utils.ErrUnauthorized, "not logged in", nil)
	}
	if !s.expiresAt.IsZero() && now.After(s.expiresAt) {
		return utils.NewAppError(utils.ErrSessionExpired, "session expired, log in again", nil)
	}
	return nil
}

// tokenExpiry reads the exp claim without verifying the signature. The
// client never trusts the claim for authorization, only for deciding
// when to prompt a re-login.
func tokenExpiry(tokenString string) time.Time {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
