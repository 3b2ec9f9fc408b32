package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/silvercar/backend/internal/common"
	"github.com/silvercar/backend/internal/server/auth"
	"github.com/silvercar/backend/internal/server/metrics"
)

var jwtPattern = regexp.MustCompile(`[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)

func newResetFixture(t *testing.T) (*AuthService, *ResetService, *fakeSender, *fakeRepoManager) {
	t.Helper()
	rm := &fakeRepoManager{users: newMemUsersRepo()}
	sender := &fakeSender{}
	cfg := testConfig()
	hasher := newTestHasher()
	codec := newTestCodec(t)
	mc := metrics.NewCollector(nil)

	as := NewAuthService(nil, rm, hasher, codec, cfg, nopLogger(), newTestRecorder(), mc)
	rs := NewResetService(nil, rm, hasher, codec, sender, cfg, nopLogger(), newTestRecorder(), mc)
	return as, rs, sender, rm
}

func TestResetFlow_EndToEnd(t *testing.T) {
	as, rs, sender, _ := newResetFixture(t)
	ctx := context.Background()

	if _, err := as.Register(ctx, "alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if err := rs.RequestReset(ctx, "alice@example.com"); err != nil {
		t.Fatalf("RequestReset error: %v", err)
	}

	mail := sender.last(t)
	if mail.to != "alice@example.com" {
		t.Fatalf("reset mail sent to %q", mail.to)
	}
	token := jwtPattern.FindString(mail.body)
	if token == "" {
		t.Fatalf("no token found in reset mail body:\n%s", mail.body)
	}

	// the issued token is scoped to password reset
	claims, err := newTestCodec(t).Decode(token)
	if err != nil {
		t.Fatalf("decoding reset token: %v", err)
	}
	if typ, _ := claims.StringClaim(auth.ClaimType); typ != auth.TokenTypePasswordReset {
		t.Fatalf("token type = %q, want %q", typ, auth.TokenTypePasswordReset)
	}

	if err := rs.RedeemReset(ctx, token, "newpass1"); err != nil {
		t.Fatalf("RedeemReset error: %v", err)
	}

	if _, err := as.Login(ctx, "alice@example.com", "secret123"); !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("login with old password must fail, got %v", err)
	}
	if _, err := as.Login(ctx, "alice@example.com", "newpass1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestRequestReset_UnknownEmailIsGenericSuccess(t *testing.T) {
	_, rs, sender, _ := newResetFixture(t)

	if err := rs.RequestReset(context.Background(), "nonexistent@example.com"); err != nil {
		t.Fatalf("expected generic success for unknown email, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("no mail must be sent for unknown email, got %d", len(sender.sent))
	}
}

func TestRequestReset_DeliveryFailureIsGenericSuccess(t *testing.T) {
	as, rs, sender, _ := newResetFixture(t)
	ctx := context.Background()

	if _, err := as.Register(ctx, "alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	sender.err = common.ErrEmailDelivery
	if err := rs.RequestReset(ctx, "alice@example.com"); err != nil {
		t.Fatalf("delivery failure must not surface to the caller, got %v", err)
	}
}

func TestRedeemReset_AccessTokenRejected(t *testing.T) {
	as, rs, _, _ := newResetFixture(t)
	ctx := context.Background()

	if _, err := as.Register(ctx, "alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	token, err := as.Login(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	if err := rs.RedeemReset(ctx, token, "x1234567"); !errors.Is(err, common.ErrInvalidTokenType) {
		t.Fatalf("expected ErrInvalidTokenType for access token, got %v", err)
	}
}

func TestRedeemReset_MissingClaims(t *testing.T) {
	_, rs, _, _ := newResetFixture(t)

	token, err := newTestCodec(t).Encode(auth.Claims{
		auth.ClaimType: auth.TokenTypePasswordReset,
	}, time.Hour)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	if err := rs.RedeemReset(context.Background(), token, "x1234567"); !errors.Is(err, common.ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
}

func TestRedeemReset_ExpiredOrGarbageToken(t *testing.T) {
	_, rs, _, _ := newResetFixture(t)
	ctx := context.Background()

	expired, err := newTestCodec(t).Encode(auth.Claims{
		auth.ClaimEmail:  "alice@example.com",
		auth.ClaimUserID: "u-1",
		auth.ClaimType:   auth.TokenTypePasswordReset,
	}, -1*time.Second)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	for _, token := range []string{expired, "garbage", ""} {
		if err := rs.RedeemReset(ctx, token, "x1234567"); !errors.Is(err, common.ErrInvalidOrExpiredToken) {
			t.Fatalf("RedeemReset(%q): expected ErrInvalidOrExpiredToken, got %v", token, err)
		}
	}
}

func TestRedeemReset_StaleAccountReference(t *testing.T) {
	as, rs, _, _ := newResetFixture(t)
	ctx := context.Background()

	if _, err := as.Register(ctx, "alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	// claims reference the right email but a different user id
	token, err := newTestCodec(t).Encode(auth.Claims{
		auth.ClaimEmail:  "alice@example.com",
		auth.ClaimUserID: "not-the-real-id",
		auth.ClaimType:   auth.TokenTypePasswordReset,
	}, time.Hour)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	if err := rs.RedeemReset(ctx, token, "x1234567"); !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRedeemReset_EmptyPassword(t *testing.T) {
	_, rs, _, _ := newResetFixture(t)

	if err := rs.RedeemReset(context.Background(), "whatever", ""); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty password, got %v", err)
	}
}

func TestChangePassword_Scenarios(t *testing.T) {
	as, rs, _, _ := newResetFixture(t)
	ctx := context.Background()

	if _, err := as.Register(ctx, "alice", "alice@example.com", "secret123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	// same password is rejected even though each hash has a fresh salt
	if err := rs.ChangePassword(ctx, "alice@example.com", "secret123", "secret123"); !errors.Is(err, common.ErrSamePassword) {
		t.Fatalf("expected ErrSamePassword, got %v", err)
	}

	if err := rs.ChangePassword(ctx, "alice@example.com", "wrong", "newpass1"); !errors.Is(err, common.ErrInvalidOldPassword) {
		t.Fatalf("expected ErrInvalidOldPassword, got %v", err)
	}

	// absent account surfaces exactly like a wrong old password
	if err := rs.ChangePassword(ctx, "ghost@example.com", "x", "newpass1"); !errors.Is(err, common.ErrInvalidOldPassword) {
		t.Fatalf("expected ErrInvalidOldPassword for unknown account, got %v", err)
	}

	if err := rs.ChangePassword(ctx, "alice@example.com", "secret123", "newpass1"); err != nil {
		t.Fatalf("ChangePassword error: %v", err)
	}
	if _, err := as.Login(ctx, "alice@example.com", "newpass1"); err != nil {
		t.Fatalf("login with changed password: %v", err)
	}
	if _, err := as.Login(ctx, "alice@example.com", "secret123"); !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("login with old password must fail, got %v", err)
	}
}
