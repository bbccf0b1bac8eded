package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/linkpro/linkpro/internal/app/apperrors"
	"github.com/linkpro/linkpro/internal/app/model"
	"github.com/linkpro/linkpro/internal/app/token"
)

// memUserRepo is an in-memory UserRepository used across service tests.
type memUserRepo struct {
	users map[string]*model.User
	creds map[string]string
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		users: make(map[string]*model.User),
		creds: make(map[string]string),
	}
}

func (m *memUserRepo) Create(ctx context.Context, user *model.User, cred *model.Credential) error {
	u := *user
	m.users[user.ID] = &u
	m.creds[cred.UserID] = cred.Password
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memUserRepo) GetCredential(ctx context.Context, userID string) (*model.Credential, error) {
	if pw, ok := m.creds[userID]; ok {
		return &model.Credential{UserID: userID, Password: pw}, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memUserRepo) UpdateTheme(ctx context.Context, userID, theme string) error {
	u, ok := m.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Theme = theme
	return nil
}

func (m *memUserRepo) Search(ctx context.Context, query string) ([]model.User, error) {
	q := strings.ToLower(query)
	var out []model.User
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Username), q) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func newTestIdentity(repo *memUserRepo) *IdentityService {
	signer := token.NewSessionSigner([]byte("test-secret"), 0)
	return NewIdentityService(repo, signer, nil)
}

func TestIdentityService_Register(t *testing.T) {
	svc := newTestIdentity(newMemUserRepo())

	user, err := svc.Register(context.Background(), "ana", "ana@example.com", "Ana Silva", "secret1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Error("expected id to be assigned")
	}
	if user.Theme != model.ThemeLight {
		t.Errorf("expected default theme light, got %q", user.Theme)
	}
}

func TestIdentityService_Register_Validation(t *testing.T) {
	svc := newTestIdentity(newMemUserRepo())
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		email    string
		fullName string
		password string
	}{
		{"missing username", "", "a@example.com", "Ana", "secret1"},
		{"missing email", "ana", "", "Ana", "secret1"},
		{"missing name", "ana", "a@example.com", "", "secret1"},
		{"missing password", "ana", "a@example.com", "Ana", ""},
		{"short password", "ana", "a@example.com", "Ana", "12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.username, tc.email, tc.fullName, tc.password)
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestIdentityService_Register_DuplicateEmail(t *testing.T) {
	svc := newTestIdentity(newMemUserRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ana", "ana@example.com", "Ana", "secret1"); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}

	// Email comparison is case-insensitive.
	_, err := svc.Register(ctx, "other", "ANA@Example.COM", "Other", "secret1")
	if !errors.Is(err, apperrors.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestIdentityService_Register_DuplicateUsername(t *testing.T) {
	svc := newTestIdentity(newMemUserRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ana", "ana@example.com", "Ana", "secret1"); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}

	_, err := svc.Register(ctx, "ANA", "fresh@example.com", "Other", "secret1")
	if !errors.Is(err, apperrors.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestIdentityService_Register_ConcurrentSameEmail(t *testing.T) {
	svc := newTestIdentity(newMemUserRepo())
	ctx := context.Background()

	// Concurrent registrations of the same email in different casings:
	// exactly one may win, the rest get ErrDuplicateEmail.
	emails := []string{"Ana@example.com", "ana@example.com", "ANA@EXAMPLE.COM", "aNa@Example.com"}
	results := make(chan error, len(emails))

	var start sync.WaitGroup
	start.Add(1)
	for i, email := range emails {
		go func(i int, email string) {
			start.Wait()
			_, err := svc.Register(ctx, fmt.Sprintf("user%d", i), email, "Ana", "secret1")
			results <- err
		}(i, email)
	}
	start.Done()

	var created, duplicates int
	for range emails {
		switch err := <-results; {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrDuplicateEmail):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one registration to succeed, got %d", created)
	}
	if duplicates != len(emails)-1 {
		t.Fatalf("expected %d duplicate errors, got %d", len(emails)-1, duplicates)
	}
}

func TestIdentityService_SeedFilter(t *testing.T) {
	repo := newMemUserRepo()
	repo.users["user-1"] = &model.User{ID: "user-1", Username: "ana", Email: "ana@example.com", Name: "Ana"}

	svc := newTestIdentity(repo)
	if err := svc.SeedFilter(context.Background()); err != nil {
		t.Fatalf("SeedFilter returned error: %v", err)
	}

	// Duplicates of pre-existing users must be caught after seeding.
	_, err := svc.Register(context.Background(), "fresh", "ana@example.com", "Other", "secret1")
	if !errors.Is(err, apperrors.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestIdentityService_Authenticate(t *testing.T) {
	svc := newTestIdentity(newMemUserRepo())
	ctx := context.Background()

	registered, err := svc.Register(ctx, "ana", "ana@example.com", "Ana", "secret1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "missing@example.com", "secret1"); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for unknown email, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ana@example.com", "wrong-pass"); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	user, err := svc.Authenticate(ctx, "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("expected user %s, got %s", registered.ID, user.ID)
	}
}

func TestIdentityService_ValidateToken(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestIdentity(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, "ana", "ana@example.com", "Ana", "secret1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	tok, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	resolved, err := svc.ValidateToken(ctx, tok)
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, resolved.ID)
	}

	// A token whose user has disappeared is invalid, not a lookup error.
	delete(repo.users, user.ID)
	if _, err := svc.ValidateToken(ctx, tok); !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for deleted user, got %v", err)
	}
}

func TestIdentityService_UpdateTheme(t *testing.T) {
	svc := newTestIdentity(newMemUserRepo())
	ctx := context.Background()

	user, err := svc.Register(ctx, "ana", "ana@example.com", "Ana", "secret1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, err := svc.UpdateTheme(ctx, user.ID, "neon"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown theme, got %v", err)
	}

	updated, err := svc.UpdateTheme(ctx, user.ID, model.ThemeDark)
	if err != nil {
		t.Fatalf("UpdateTheme returned error: %v", err)
	}
	if updated.Theme != model.ThemeDark {
		t.Errorf("expected theme dark, got %q", updated.Theme)
	}
}
