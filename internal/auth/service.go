package auth

import (
	"context"
	"fmt"

	"github.com/hitoshi/msgbox/internal/model"
)

// CredentialFinder は認証に必要なアカウント検索の最小インターフェース。
// repository.UserRepositoryの部分集合として定義する。
type CredentialFinder interface {
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
}

// Authenticator は提示されたパスワードを保存済みハッシュと照合する。
type Authenticator struct {
	users  CredentialFinder
	hasher *Hasher
}

// NewAuthenticator はAuthenticatorを生成する。
func NewAuthenticator(users CredentialFinder, hasher *Hasher) *Authenticator {
	return &Authenticator{users: users, hasher: hasher}
}

// Authenticate はユーザー名とパスワードの組が有効かを返す。
// アカウントが存在しない場合もパスワード不一致の場合も同じくfalseを返し、
// 呼び出し元からは区別できない。ユーザー名の存在調査を防ぐため。
// 副作用はない。最終ログイン日時の更新は認証成功後に呼び出し元が明示的に行う。
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (bool, error) {
	account, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		return false, nil
	}

	return a.hasher.Verify(account.PasswordHash, password), nil
}
