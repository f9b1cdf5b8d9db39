// Package model はドメインモデルを定義する。
package model

import "time"

// Message はアカウント間のダイレクトメッセージを表す。
// ReadAtは受信者が既読にするまでnil。一度設定されたら変更されない。
type Message struct {
	ID           string
	FromUsername string
	ToUsername   string
	Body         string
	SentAt       time.Time
	ReadAt       *time.Time
}

// MessageView はメッセージ詳細に両参加者の公開プロフィールを付加したビュー。
type MessageView struct {
	ID       string
	Body     string
	SentAt   time.Time
	ReadAt   *time.Time
	FromUser PublicProfile
	ToUser   PublicProfile
}

// IsParticipant はusernameがメッセージの送信者または受信者かを返す。
func (m *Message) IsParticipant(username string) bool {
	return username == m.FromUsername || username == m.ToUsername
}
