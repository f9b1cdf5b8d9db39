package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/msgbox/internal/model"
)

// --- モック ---

type mockCredentialFinder struct {
	findByUsernameFn func(ctx context.Context, username string) (*model.Account, error)
}

func (m *mockCredentialFinder) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	return m.findByUsernameFn(ctx, username)
}

// --- テスト ---

func TestAuthenticator_Authenticate_CorrectPassword(t *testing.T) {
	h := NewHasher(4)
	hash, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	finder := &mockCredentialFinder{
		findByUsernameFn: func(ctx context.Context, username string) (*model.Account, error) {
			return &model.Account{Username: username, PasswordHash: hash}, nil
		},
	}
	a := NewAuthenticator(finder, h)

	ok, err := a.Authenticate(context.Background(), "alice", "pw1")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if !ok {
		t.Error("expected authentication to succeed with correct password")
	}
}

// 未知のユーザーとパスワード不一致はどちらも (false, nil) で区別できないことを検証する。
func TestAuthenticator_Authenticate_UnknownUserAndWrongPassword_Indistinguishable(t *testing.T) {
	h := NewHasher(4)
	hash, err := h.Hash("correct")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	unknownFinder := &mockCredentialFinder{
		findByUsernameFn: func(ctx context.Context, username string) (*model.Account, error) {
			return nil, nil
		},
	}
	knownFinder := &mockCredentialFinder{
		findByUsernameFn: func(ctx context.Context, username string) (*model.Account, error) {
			return &model.Account{Username: username, PasswordHash: hash}, nil
		},
	}

	okUnknown, errUnknown := NewAuthenticator(unknownFinder, h).Authenticate(context.Background(), "ghost", "whatever")
	okWrong, errWrong := NewAuthenticator(knownFinder, h).Authenticate(context.Background(), "alice", "wrong")

	if okUnknown || okWrong {
		t.Error("expected both cases to fail authentication")
	}
	if errUnknown != nil || errWrong != nil {
		t.Errorf("expected both cases to return nil error, got %v / %v", errUnknown, errWrong)
	}
}

func TestAuthenticator_Authenticate_LookupError(t *testing.T) {
	finder := &mockCredentialFinder{
		findByUsernameFn: func(ctx context.Context, username string) (*model.Account, error) {
			return nil, errors.New("connection refused")
		},
	}
	a := NewAuthenticator(finder, NewHasher(4))

	ok, err := a.Authenticate(context.Background(), "alice", "pw")
	if err == nil {
		t.Fatal("expected error when account lookup fails, got nil")
	}
	if ok {
		t.Error("authentication must not succeed on lookup error")
	}
}
