// Package message はダイレクトメッセージのドメインロジックを提供する。
package message

import "github.com/hitoshi/msgbox/internal/model"

// CanView は呼び出し元がメッセージを閲覧できるかを判定する。
// 送信者または受信者のみ閲覧できる。それ以外はUnauthorized。
// 純粋な判定関数であり、状態の変更も検索も行わない。
func CanView(caller string, view *model.MessageView) error {
	if caller == view.FromUser.Username || caller == view.ToUser.Username {
		return nil
	}
	return model.NewUnauthorizedError()
}

// CanMarkRead は呼び出し元がメッセージを既読にできるかを判定する。
// 受信者のみ既読にできる。送信者による既読化は明示的に禁止する。
func CanMarkRead(caller string, view *model.MessageView) error {
	if caller == view.ToUser.Username {
		return nil
	}
	return model.NewUnauthorizedError()
}
