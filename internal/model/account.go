// Package model はドメインモデルを定義する。
package model

import "time"

// Account はサービス利用アカウントを表す。
// PasswordHashはリポジトリ層の外（APIレスポンス等）に公開してはならない。
type Account struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	JoinedAt     time.Time
	LastLoginAt  time.Time
}

// PublicProfile は他アカウントに公開してよいフィールドのみを持つ。
// パスワードハッシュは含まない。
type PublicProfile struct {
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

// Public はアカウントから公開プロフィールを抽出する。
func (a *Account) Public() PublicProfile {
	return PublicProfile{
		Username:  a.Username,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Phone:     a.Phone,
	}
}
