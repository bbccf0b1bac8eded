package service

import (
	"context"
	"sync"
	"time"

	"github.com/linkpro/linkpro/internal/app/model"
	"github.com/linkpro/linkpro/internal/app/repository"
	"go.uber.org/zap"
)

// SessionState is the lifecycle state of the process-local session.
type SessionState int

const (
	// SessionLoading is the initial state before Restore has run.
	SessionLoading SessionState = iota
	SessionAnonymous
	SessionAuthenticating
	SessionAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case SessionLoading:
		return "loading"
	case SessionAnonymous:
		return "anonymous"
	case SessionAuthenticating:
		return "authenticating"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// SessionController tracks the single current session of the process. There
// is at most one authenticated user at a time; a new login replaces the
// previous session. Tokens survive restarts through the session repository
// and are revalidated by Restore.
type SessionController struct {
	identity *IdentityService
	sessions repository.SessionRepository
	logger   *zap.Logger

	mu    sync.RWMutex
	state SessionState
	user  *model.User
	token string
}

func NewSessionController(identity *IdentityService, sessions repository.SessionRepository, logger *zap.Logger) *SessionController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionController{
		identity: identity,
		sessions: sessions,
		logger:   logger,
		state:    SessionLoading,
	}
}

// Restore revalidates the persisted session, if any. It always leaves the
// controller in Anonymous or Authenticated; a stale or invalid token is
// cleared silently.
func (c *SessionController) Restore(ctx context.Context) error {
	session, err := c.sessions.Load(ctx)
	if err != nil {
		c.setAnonymous()
		return err
	}
	if session == nil {
		c.setAnonymous()
		return nil
	}

	user, err := c.identity.ValidateToken(ctx, session.Token)
	if err != nil {
		c.logger.Info("persisted session no longer valid, clearing", zap.Error(err))
		if clearErr := c.sessions.Clear(ctx); clearErr != nil {
			c.logger.Warn("failed to clear stale session", zap.Error(clearErr))
		}
		c.setAnonymous()
		return nil
	}

	c.mu.Lock()
	c.state = SessionAuthenticated
	c.user = user
	c.token = session.Token
	c.mu.Unlock()

	c.logger.Info("session restored", zap.String("user_id", user.ID))
	return nil
}

// Login authenticates the credentials and makes the user the current
// session, replacing any previous one. On failure the controller returns to
// Anonymous.
func (c *SessionController) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	c.setState(SessionAuthenticating)

	user, err := c.identity.Authenticate(ctx, email, password)
	if err != nil {
		c.setAnonymous()
		return nil, "", err
	}

	return c.establish(ctx, user)
}

// Signup registers a new user and immediately signs them in.
func (c *SessionController) Signup(ctx context.Context, username, email, name, password string) (*model.User, string, error) {
	c.setState(SessionAuthenticating)

	user, err := c.identity.Register(ctx, username, email, name, password)
	if err != nil {
		c.setAnonymous()
		return nil, "", err
	}

	return c.establish(ctx, user)
}

// Logout clears the current session. Logging out while already anonymous is
// a no-op.
func (c *SessionController) Logout(ctx context.Context) error {
	if err := c.sessions.Clear(ctx); err != nil {
		return err
	}
	c.setAnonymous()
	c.logger.Info("session cleared")
	return nil
}

// Current returns the state and, when authenticated, the session user.
func (c *SessionController) Current() (SessionState, *model.User) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state, c.user
}

// Token returns the current session token, or "" when not authenticated.
func (c *SessionController) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// RefreshUser reloads the session user from the store, keeping theme and
// profile changes visible without a new login.
func (c *SessionController) RefreshUser(ctx context.Context) (*model.User, error) {
	c.mu.RLock()
	current := c.user
	c.mu.RUnlock()
	if current == nil {
		return nil, nil
	}

	user, err := c.identity.GetUser(ctx, current.ID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.state == SessionAuthenticated && c.user != nil && c.user.ID == user.ID {
		c.user = user
	}
	c.mu.Unlock()
	return user, nil
}

func (c *SessionController) establish(ctx context.Context, user *model.User) (*model.User, string, error) {
	tok, err := c.identity.IssueToken(user)
	if err != nil {
		c.setAnonymous()
		return nil, "", err
	}

	session := &model.Session{
		Key:      model.SessionKey,
		Token:    tok,
		UserID:   user.ID,
		IssuedAt: time.Now(),
	}
	if err := c.sessions.Save(ctx, session); err != nil {
		c.setAnonymous()
		return nil, "", err
	}

	c.mu.Lock()
	c.state = SessionAuthenticated
	c.user = user
	c.token = tok
	c.mu.Unlock()

	c.logger.Info("session established", zap.String("user_id", user.ID))
	return user, tok, nil
}

func (c *SessionController) setAnonymous() {
	c.mu.Lock()
	c.state = SessionAnonymous
	c.user = nil
	c.token = ""
	c.mu.Unlock()
}

func (c *SessionController) setState(state SessionState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}
