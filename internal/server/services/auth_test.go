package services

import (
	"context"
	"errors"
	"testing"

	"github.com/silvercar/backend/internal/common"
	"github.com/silvercar/backend/internal/server/auth"
	"github.com/silvercar/backend/internal/server/metrics"
	"github.com/silvercar/backend/internal/server/models"
)

func newAuthService(t *testing.T, rm *fakeRepoManager) *AuthService {
	t.Helper()
	return NewAuthService(nil, rm, newTestHasher(), newTestCodec(t),
		testConfig(), nopLogger(), newTestRecorder(), metrics.NewCollector(nil))
}

func TestRegisterAndLogin_Scenario(t *testing.T) {
	rm := &fakeRepoManager{users: newMemUsersRepo()}
	s := newAuthService(t, rm)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.ID == "" || user.Role != models.RoleUser {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PasswordHash == "secret123" {
		t.Fatalf("password stored in plaintext")
	}

	token, err := s.Login(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	claims, err := newTestCodec(t).Decode(token)
	if err != nil {
		t.Fatalf("decoding issued token: %v", err)
	}
	if email, _ := claims.StringClaim(auth.ClaimEmail); email != "alice@example.com" {
		t.Fatalf("token email claim = %q, want alice@example.com", email)
	}
	if role, _ := claims.StringClaim(auth.ClaimRole); role != models.RoleUser {
		t.Fatalf("token role claim = %q, want %q", role, models.RoleUser)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	rm := &fakeRepoManager{users: newMemUsersRepo()}
	s := newAuthService(t, rm)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, err := s.Login(ctx, "alice@example.com", "wrong")
	if !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	rm := &fakeRepoManager{users: newMemUsersRepo()}
	s := newAuthService(t, rm)

	_, err := s.Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown account, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	rm := &fakeRepoManager{users: newMemUsersRepo()}
	s := newAuthService(t, rm)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"missing username", "", "a@b.com", "pw"},
		{"missing password", "alice", "a@b.com", ""},
		{"bad email", "alice", "not-an-email", "pw"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Register(ctx, tc.username, tc.email, tc.password)
			if !errors.Is(err, common.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	rm := &fakeRepoManager{users: newMemUsersRepo()}
	s := newAuthService(t, rm)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, err := s.Register(ctx, "alice2", "alice@example.com", "other")
	if !errors.Is(err, common.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}
