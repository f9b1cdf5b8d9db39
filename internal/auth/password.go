// Package auth はパスワードハッシュとセッショントークンの発行・検証を提供する。
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher はbcryptによるパスワードハッシュ生成と検証を行う。
// ワークファクターは起動時に1回設定し、リクエストごとに変更しない。
type Hasher struct {
	cost int
}

// NewHasher は指定ワークファクターのHasherを生成する。
// costがbcryptの有効範囲外の場合はbcrypt.DefaultCostを使用する。
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash はパスワードのソルト付き一方向ハッシュを生成する。
// 平文のパスワードは保存してはならない。
func (h *Hasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// Verify はパスワードが保存済みハッシュと一致するかを返す。
// 比較はbcrypt内部で一定時間で行われる。
func (h *Hasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
