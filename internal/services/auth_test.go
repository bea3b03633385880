package services

import (
	"context"
	"errors"
	"testing"

	"github.com/roomly/roomly-backend/internal/data/repos"
	"github.com/roomly/roomly-backend/internal/data/repos/testutil"
	apperr "github.com/roomly/roomly-backend/internal/pkg/errors"
)

func newAuthService(t *testing.T) AuthService {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	return NewAuthService(log, gdb, repos.NewUserRepo(gdb, log), repos.NewUserTokenRepo(gdb, log))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, "Alice@Example.com", "correct-horse", "Alice", "Smith")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	parsed, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if parsed != user.ID {
		t.Fatalf("token subject %s, want %s", parsed, user.ID)
	}

	if _, _, err := svc.Login(ctx, "alice@example.com", "correct-horse"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("wrong password: got %v, want ErrUnauthorized", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("unknown user: got %v, want ErrUnauthorized", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "", "longenough", "", ""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("empty email: got %v", err)
	}
	if _, _, err := svc.Register(ctx, "a@b.com", "short", "", ""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("short password: got %v", err)
	}

	if _, _, err := svc.Register(ctx, "a@b.com", "longenough", "", ""); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, _, err := svc.Register(ctx, "A@B.com", "longenough", "", ""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("duplicate email: got %v, want ErrInvalidArgument", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, pair, err := svc.Register(ctx, "bob@example.com", "longenough", "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	// The old token is dead after rotation.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("reused token: got %v, want ErrUnauthorized", err)
	}
	// The new one still works.
	if _, err := svc.Refresh(ctx, next.RefreshToken); err != nil {
		t.Fatalf("rotated token: %v", err)
	}
}

func TestLogoutRevokesRefresh(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, pair, err := svc.Register(ctx, "carol@example.com", "longenough", "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("after logout: got %v, want ErrUnauthorized", err)
	}
	// Logging out twice or with garbage is harmless.
	if err := svc.Logout(ctx, "not-a-token"); err != nil {
		t.Fatalf("garbage logout: %v", err)
	}
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(t)
	if _, err := svc.ParseAccessToken("garbage"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
	if _, err := svc.ParseAccessToken(""); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("empty token: got %v, want ErrUnauthorized", err)
	}
}
