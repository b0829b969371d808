package session

import (
	"context"
	"testing"

	"vanta-trade/internal/config"
	"vanta-trade/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.NewSQLite(config.DatabaseConfig{
		InMemory:     true,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestLoginThenRestoreRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first, err := NewStore(st, config.SessionConfig{}, nil)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	if err := first.Login(ctx, Credentials{Username: "alice", Password: "secret"}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	loggedIn, ok := first.Current()
	if !ok {
		t.Fatalf("expected active session after login")
	}

	// 模拟进程重启：在同一份存储上建第二个 Store 并恢复。
	second, err := NewStore(st, config.SessionConfig{}, nil)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	second.Restore(ctx)

	restored, ok := second.Current()
	if !ok {
		t.Fatalf("expected session to survive restart")
	}
	if restored.ID != loggedIn.ID || restored.Username != "alice" {
		t.Errorf("restored session mismatch: got %+v want %+v", restored, loggedIn)
	}
}

func TestLogoutClearsDurableState(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first, err := NewStore(st, config.SessionConfig{}, nil)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	if err := first.Login(ctx, Credentials{Username: "bob", Password: "secret"}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if err := first.Logout(ctx); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, ok := first.Current(); ok {
		t.Fatalf("expected no session after logout")
	}

	// 重复登出不应报错。
	if err := first.Logout(ctx); err != nil {
		t.Fatalf("repeated Logout returned error: %v", err)
	}

	second, err := NewStore(st, config.SessionConfig{}, nil)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	second.Restore(ctx)
	if _, ok := second.Current(); ok {
		t.Errorf("expected restore after logout to yield no session")
	}
}

func TestLoginValidation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	s, err := NewStore(st, config.SessionConfig{}, nil)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	err = s.Login(ctx, Credentials{Username: "", Password: "secret"})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError for empty username, got %v", err)
	}
	if err.Error() != "Username is required" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if _, ok := s.Current(); ok {
		t.Errorf("failed login must not establish a session")
	}
	if s.Err() == "" {
		t.Errorf("expected stored error message")
	}

	s.ClearError()
	if s.Err() != "" {
		t.Errorf("ClearError did not clear the message")
	}
}

func TestRegisterShortPassword(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	s, err := NewStore(st, config.SessionConfig{}, nil)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	err = s.Register(ctx, Credentials{Username: "carol", Password: "12345"})
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError for short password, got %v", err)
	}
	if err.Error() != "Password must be at least 6 characters" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	// 校验失败不得写入持久化存储。
	if _, readErr := s.PersistedUserID(ctx); readErr == nil {
		t.Errorf("expected no persisted record after rejected register")
	}
}

func TestRegisterPersistsEmail(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	s, err := NewStore(st, config.SessionConfig{}, nil)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	creds := Credentials{Username: "dave", Password: "secret6", Email: "dave@example.com"}
	if err := s.Register(ctx, creds); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	sess, ok := s.Current()
	if !ok || sess.Email != "dave@example.com" {
		t.Errorf("expected email on session, got %+v", sess)
	}

	userID, err := s.PersistedUserID(ctx)
	if err != nil {
		t.Fatalf("PersistedUserID returned error: %v", err)
	}
	if userID != sess.ID {
		t.Errorf("persisted id %q does not match session id %q", userID, sess.ID)
	}
}

func TestFailedLoginPreservesPreviousSession(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	s, err := NewStore(st, config.SessionConfig{}, nil)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	if err := s.Login(ctx, Credentials{Username: "erin", Password: "secret"}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	before, _ := s.Current()

	if err := s.Login(ctx, Credentials{Username: "", Password: "x"}); err == nil {
		t.Fatalf("expected validation failure")
	}

	after, ok := s.Current()
	if !ok || after.ID != before.ID {
		t.Errorf("failed login must leave previous session unchanged")
	}
}

func TestDevUserActivation(t *testing.T) {
	st := newTestStore(t)

	cfg := config.SessionConfig{
		DevUser: config.DevUserConfig{
			Enabled:  true,
			Username: "kashley556",
			Email:    "kennethxashley@gmail.com",
		},
	}

	s, err := NewStore(st, cfg, nil)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	sess, ok := s.Current()
	if !ok {
		t.Fatalf("expected dev user to be active")
	}
	if sess.Username != "kashley556" || sess.ID == "" {
		t.Errorf("unexpected dev session: %+v", sess)
	}
}
