package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/google/uuid"
	"github.com/linkpro/linkpro/internal/app/apperrors"
	"github.com/linkpro/linkpro/internal/app/model"
	"github.com/linkpro/linkpro/internal/app/repository"
	"github.com/linkpro/linkpro/internal/app/token"
	"github.com/linkpro/linkpro/internal/infra/metrics"
	"go.uber.org/zap"
)

const minPasswordLength = 6

// Bloom filter sizing for the registration existence fast path.
const (
	identityFilterCapacity = 100_000
	identityFilterFPRate   = 0.01
)

// IdentityService owns user records and credentials: it enforces email and
// username uniqueness, authenticates credentials and issues session tokens.
type IdentityService struct {
	users  repository.UserRepository
	signer *token.SessionSigner
	logger *zap.Logger

	// mu serializes registrations so the duplicate checks and the insert
	// form one critical section: two concurrent registrations of the same
	// email in different casings cannot both pass the check. It also guards
	// the filter.
	//
	// seen holds lowercased emails and usernames already taken. A negative
	// answer is definitive (every insert is added), so most registrations
	// skip the duplicate query; a positive answer still goes to the DB.
	mu   sync.Mutex
	seen *bloom.BloomFilter
}

// NewIdentityService returns an identity service backed by the given
// repository and token signer.
func NewIdentityService(users repository.UserRepository, signer *token.SessionSigner, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{
		users:  users,
		signer: signer,
		logger: logger,
		seen:   bloom.NewWithEstimates(identityFilterCapacity, identityFilterFPRate),
	}
}

// SeedFilter warms the existence filter from the persisted users so the fast
// path is valid from the first registration after startup.
func (s *IdentityService) SeedFilter(ctx context.Context) error {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.seen.AddString(strings.ToLower(u.Email))
		s.seen.AddString(strings.ToLower(u.Username))
	}
	s.logger.Debug("identity filter seeded", zap.Int("users", len(users)))
	return nil
}

// Register creates a new user with its credential. It fails with a specific
// validation or duplicate error; on any failure no user is created.
func (s *IdentityService) Register(ctx context.Context, username, email, name, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	switch {
	case username == "":
		return nil, apperrors.Validation("username is required")
	case email == "":
		return nil, apperrors.Validation("email is required")
	case name == "":
		return nil, apperrors.Validation("name is required")
	case password == "":
		return nil, apperrors.Validation("password is required")
	case len(password) < minPasswordLength:
		return nil, apperrors.Validation("password must be at least %d characters long", minPasswordLength)
	}

	// Check and insert under one lock, otherwise two registrations of the
	// same email in different casings can both pass the checks and both
	// insert.
	s.mu.Lock()
	defer s.mu.Unlock()

	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrDuplicateEmail
	}

	taken, err = s.usernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrDuplicateUsername
	}

	user := &model.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     email,
		Name:      name,
		Theme:     model.ThemeLight,
		CreatedAt: time.Now(),
	}
	cred := &model.Credential{
		UserID:   user.ID,
		Password: password,
	}

	if err := s.users.Create(ctx, user, cred); err != nil {
		return nil, err
	}

	s.seen.AddString(strings.ToLower(user.Email))
	s.seen.AddString(strings.ToLower(user.Username))

	metrics.Registrations.Inc()
	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return user, nil
}

// Authenticate resolves the user by email and checks the stored credential.
// It distinguishes an unknown email (ErrUserNotFound) from a password
// mismatch (ErrInvalidCredentials) so callers can surface the exact reason.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	cred, err := s.users.GetCredential(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if cred.Password != password {
		return nil, apperrors.ErrInvalidCredentials
	}

	metrics.Logins.Inc()
	return user, nil
}

// IssueToken mints a session token carrying the user's id, username and the
// issuance time.
func (s *IdentityService) IssueToken(user *model.User) (string, error) {
	return s.signer.Issue(token.Claims{
		UserID:   user.ID,
		Username: user.Username,
		IssuedAt: time.Now(),
	})
}

// ValidateToken checks the token signature and resolves the referenced user.
// A token whose user no longer exists is invalid.
func (s *IdentityService) ValidateToken(ctx context.Context, tok string) (*model.User, error) {
	claims, err := s.signer.Validate(tok)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, token.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// UpdateTheme changes the only mutable user preference.
func (s *IdentityService) UpdateTheme(ctx context.Context, userID, theme string) (*model.User, error) {
	if theme != model.ThemeLight && theme != model.ThemeDark {
		return nil, apperrors.Validation("theme must be %q or %q", model.ThemeLight, model.ThemeDark)
	}
	if err := s.users.UpdateTheme(ctx, userID, theme); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// GetUser resolves a user by id.
func (s *IdentityService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// emailTaken is called with s.mu held.
func (s *IdentityService) emailTaken(ctx context.Context, email string) (bool, error) {
	if !s.seen.TestString(strings.ToLower(email)) {
		return false, nil
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// usernameTaken is called with s.mu held.
func (s *IdentityService) usernameTaken(ctx context.Context, username string) (bool, error) {
	if !s.seen.TestString(strings.ToLower(username)) {
		return false, nil
	}

	_, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
