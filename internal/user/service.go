// Package user はアカウント登録・ログイン・一覧のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/msgbox/internal/auth"
	"github.com/hitoshi/msgbox/internal/model"
	"github.com/hitoshi/msgbox/internal/repository"
)

// TokenIssuer はセッショントークン発行の最小インターフェース。
// auth.TokenIssuerの部分集合として定義する。
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// Authenticator はパスワード照合の最小インターフェース。
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (bool, error)
}

// AccountDetail はアカウント詳細の公開ビュー。ハッシュは含まない。
type AccountDetail struct {
	model.PublicProfile
	JoinedAt    time.Time
	LastLoginAt time.Time
}

// Service はアカウント管理のサービス層。
type Service struct {
	users  repository.UserRepository
	hasher *auth.Hasher
	authn  Authenticator
	tokens TokenIssuer
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository, hasher *auth.Hasher, authn Authenticator, tokens TokenIssuer) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		authn:  authn,
		tokens: tokens,
	}
}

// Register は新規アカウントを登録し、セッショントークンを発行する。
// パスワードは一方向ハッシュとしてのみ保存する。
// ユーザー名が既に存在する場合はUsernameTakenを返し、トークンは発行しない。
// 処理順序: 登録 → トークン発行 → 最終ログイン日時更新。
func (s *Service) Register(ctx context.Context, username, password, firstName, lastName, phone string) (string, model.PublicProfile, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", model.PublicProfile{}, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		Username:     username,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
	}

	if err := s.users.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return "", model.PublicProfile{}, model.NewUsernameTakenError(username)
		}
		return "", model.PublicProfile{}, fmt.Errorf("failed to create account: %w", err)
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		return "", model.PublicProfile{}, fmt.Errorf("failed to issue token: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, username); err != nil {
		return "", model.PublicProfile{}, fmt.Errorf("failed to update last login: %w", err)
	}

	slog.Info("new account registered",
		slog.String("username", username),
	)

	return token, account.Public(), nil
}

// Login はパスワードを照合し、成功時にセッショントークンを発行する。
// 失敗時はInvalidCredentialsを返す。未知のユーザー名とパスワード不一致は
// レスポンス上区別できない。
// 処理順序: 認証 → トークン発行 → 最終ログイン日時更新。
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	ok, err := s.authn.Authenticate(ctx, username, password)
	if err != nil {
		return "", fmt.Errorf("failed to authenticate: %w", err)
	}
	if !ok {
		return "", model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, username); err != nil {
		return "", fmt.Errorf("failed to update last login: %w", err)
	}

	slog.Info("user logged in",
		slog.String("username", username),
	)

	return token, nil
}

// ListUsers は全アカウントの公開プロフィールを返す。
func (s *Service) ListUsers(ctx context.Context) ([]model.PublicProfile, error) {
	profiles, err := s.users.ListPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return profiles, nil
}

// Get は指定ユーザーの詳細を返す。見つからない場合はUserNotFoundを返す。
func (s *Service) Get(ctx context.Context, username string) (*AccountDetail, error) {
	account, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if account == nil {
		return nil, model.NewUserNotFoundError(username)
	}

	return &AccountDetail{
		PublicProfile: account.Public(),
		JoinedAt:      account.JoinedAt,
		LastLoginAt:   account.LastLoginAt,
	}, nil
}
