package repository

import (
	"errors"
	"testing"

	"github.com/lib/pq"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// PostgresMessageRepoはMessageRepositoryインターフェースを満たすことを検証
func TestPostgresMessageRepo_ImplementsInterface(t *testing.T) {
	var _ MessageRepository = (*PostgresMessageRepo)(nil)
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresMessageRepoが正しく初期化されることを検証
func TestNewPostgresMessageRepo_Initializes(t *testing.T) {
	repo := NewPostgresMessageRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// ユニーク制約違反のSQLSTATE判定を検証する。
// ラップされたpqエラーも検出できること。
func TestIsPqError_UniqueViolation(t *testing.T) {
	pqErr := &pq.Error{Code: uniqueViolationCode}

	if !isPqError(pqErr, uniqueViolationCode) {
		t.Error("expected unique violation to be detected")
	}

	wrapped := errors.Join(errors.New("outer"), pqErr)
	if !isPqError(wrapped, uniqueViolationCode) {
		t.Error("expected wrapped unique violation to be detected")
	}

	if isPqError(errors.New("some other error"), uniqueViolationCode) {
		t.Error("non-pq error must not be detected as unique violation")
	}

	fkErr := &pq.Error{Code: foreignKeyViolationCode}
	if isPqError(fkErr, uniqueViolationCode) {
		t.Error("foreign key violation must not match unique violation code")
	}
	if !isPqError(fkErr, foreignKeyViolationCode) {
		t.Error("expected foreign key violation to be detected")
	}
}
