package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"google.golang.org/api/idtoken"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/repository/ports"
	"github.com/campthai/campthai-backend/internal/util"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
	roles map[uuid.UUID][]domain.Role
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[uuid.UUID]*domain.User),
		roles: make(map[uuid.UUID][]domain.Role),
	}
}

func (f *fakeUserRepo) CreateEmailUser(ctx context.Context, email string, passwordHash, passwordSalt []byte) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		PasswordSalt: passwordSalt,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[user.ID] = user
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) UpsertGoogleUser(ctx context.Context, email string, fullName *string, imageURL *string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			u.FullName = fullName
			u.ImageURL = imageURL
			clone := *u
			return &clone, nil
		}
	}
	user := &domain.User{
		ID: uuid.New(), Email: email, FullName: fullName, ImageURL: imageURL,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.users[user.ID] = user
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) ListRoles(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Role(nil), f.roles[userID]...), nil
}

var _ ports.UserRepository = (*fakeUserRepo)(nil)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	nextID   int64
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (f *fakeSessionRepo) CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	session := &domain.Session{
		ID: f.nextID, UserID: userID, Token: token,
		CreatedAt: time.Now(), ExpiresAt: expiresAt, IsActive: true,
	}
	f.sessions[token] = session
	clone := *session
	return &clone, nil
}

func (f *fakeSessionRepo) DeactivateSession(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok || !s.IsActive {
		return sql.ErrNoRows
	}
	s.IsActive = false
	return nil
}

func (f *fakeSessionRepo) FindActiveSession(ctx context.Context, token string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok || !s.IsActive {
		return nil, sql.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

var _ ports.SessionRepository = (*fakeSessionRepo)(nil)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeSessionRepo) {
	t.Helper()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	manager := util.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(users, sessions, manager, "test-audience"), users, sessions
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "camper@example.com", "GoodPass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if registered.Token == "" {
		t.Fatal("expected issued token")
	}

	if _, err := svc.Register(ctx, "camper@example.com", "GoodPass123"); !errors.Is(err, ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}

	loggedIn, err := svc.Login(ctx, "camper@example.com", "GoodPass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if loggedIn.User.ID != registered.User.ID {
		t.Fatal("login resolved a different user")
	}

	if _, err := svc.Login(ctx, "camper@example.com", "WrongPass123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "GoodPass123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	if _, err := svc.Register(context.Background(), "camper@example.com", "weak"); err == nil {
		t.Fatal("expected error for weak password")
	}
}

func TestAuthenticateAndLogout(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, "camper@example.com", "GoodPass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	user, err := svc.Authenticate(ctx, result.Token)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if user.ID != result.User.ID {
		t.Fatal("authenticate resolved a different user")
	}

	if err := svc.Logout(ctx, result.Token); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, err := svc.Authenticate(ctx, result.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage token, got %v", err)
	}
}

func TestIsAdminChecksRoleName(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, "admin@example.com", "GoodPass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if svc.IsAdmin(result.User) {
		t.Fatal("fresh account should not be admin")
	}

	users.roles[result.User.ID] = []domain.Role{{ID: uuid.New(), Name: domain.RoleAdmin}}
	user, err := svc.Authenticate(ctx, result.Token)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if !svc.IsAdmin(user) {
		t.Fatal("expected admin after role grant")
	}
}

func TestLoginWithGoogle(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	svc.verifyGoogle = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		if audience != "test-audience" {
			t.Fatalf("unexpected audience %q", audience)
		}
		if token == "bad" {
			return nil, errors.New("signature mismatch")
		}
		return &idtoken.Payload{Claims: map[string]interface{}{
			"email":          "google@example.com",
			"email_verified": true,
			"name":           "Google Camper",
			"picture":        "https://cdn.example.com/p.png",
		}}, nil
	}

	result, err := svc.LoginWithGoogle(ctx, "good")
	if err != nil {
		t.Fatalf("LoginWithGoogle returned error: %v", err)
	}
	if result.User.Email != "google@example.com" {
		t.Fatalf("unexpected email %q", result.User.Email)
	}
	if result.User.FullName == nil || *result.User.FullName != "Google Camper" {
		t.Fatal("expected full name from token claims")
	}

	if _, err := svc.LoginWithGoogle(ctx, "bad"); !errors.Is(err, ErrGoogleTokenInvalid) {
		t.Fatalf("expected ErrGoogleTokenInvalid, got %v", err)
	}

	svc.verifyGoogle = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		return &idtoken.Payload{Claims: map[string]interface{}{
			"email": "unverified@example.com", "email_verified": false,
		}}, nil
	}
	if _, err := svc.LoginWithGoogle(ctx, "any"); !errors.Is(err, ErrGoogleTokenInvalid) {
		t.Fatalf("expected ErrGoogleTokenInvalid for unverified email, got %v", err)
	}
}

func TestTrimToNil(t *testing.T) {
	if got := trimToNil(nil); got != nil {
		t.Fatal("nil input should stay nil")
	}
	empty := "   "
	if got := trimToNil(&empty); got != nil {
		t.Fatal("whitespace-only input should become nil")
	}
	value := "  hello  "
	got := trimToNil(&value)
	if got == nil || *got != "hello" {
		t.Fatalf("expected trimmed value, got %v", got)
	}
	if !strings.Contains(value, "hello") {
		t.Fatal("original string should be untouched")
	}
}
