// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/msgbox/internal/model"
)

// ErrDuplicateUsername はユーザー名のユニーク制約違反を示す。
var ErrDuplicateUsername = errors.New("duplicate username")

// ErrNotFound は更新対象のレコードが存在しないことを示す。
var ErrNotFound = errors.New("record not found")

// UserRepository はアカウントデータの永続化インターフェース。
type UserRepository interface {
	// Create はアカウントを作成する。
	// ユーザー名が既に存在する場合はErrDuplicateUsernameを返す。
	// 作成時にJoinedAt、LastLoginAtがDB側で設定され、accountに書き戻される。
	Create(ctx context.Context, account *model.Account) error

	// FindByUsername は指定ユーザー名のアカウントをハッシュ込みで取得する。
	// 見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.Account, error)

	// ListPublic は全アカウントの公開プロフィールを返す。ハッシュは含まない。
	ListPublic(ctx context.Context) ([]model.PublicProfile, error)

	// UpdateLastLogin は最終ログイン日時を現在時刻に更新する。
	// アカウントが存在しない場合はErrNotFoundを返す。
	UpdateLastLogin(ctx context.Context, username string) error
}

// MessageWithCounterpart はメッセージに相手側の公開プロフィールを結合した構造体。
// 送信一覧では受信者、受信一覧では送信者がCounterpartになる。
type MessageWithCounterpart struct {
	model.Message
	Counterpart model.PublicProfile
}

// MessageRepository はメッセージデータの永続化インターフェース。
type MessageRepository interface {
	// Create はメッセージを作成する。
	// 参加者のいずれかが存在しない場合はErrNotFoundを返す。
	Create(ctx context.Context, message *model.Message) error

	// FindByID は指定IDのメッセージを両参加者のプロフィール付きで取得する。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.MessageView, error)

	// MarkRead は未読メッセージの既読日時をreadAtに設定し、結果の既読日時を返す。
	// 既に既読の場合は更新せず、元の既読日時を返す（単一行の条件付き更新）。
	// メッセージが存在しない場合はErrNotFoundを返す。
	MarkRead(ctx context.Context, id string, readAt time.Time) (*time.Time, error)

	// ListFrom は指定ユーザーが送信したメッセージ一覧を受信者プロフィール付きで返す。
	// sent_at昇順、同時刻はID昇順で並べる。
	ListFrom(ctx context.Context, username string) ([]MessageWithCounterpart, error)

	// ListTo は指定ユーザーが受信したメッセージ一覧を送信者プロフィール付きで返す。
	// sent_at昇順、同時刻はID昇順で並べる。
	ListTo(ctx context.Context, username string) ([]MessageWithCounterpart, error)
}
