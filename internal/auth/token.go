package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/msgbox/internal/model"
)

// Claims はセッショントークンのペイロード。
// 標準クレームに加えてアカウントのユーザー名を持つ。
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// TokenIssuer はHMAC署名付きセッショントークンの発行と検証を行う。
// 署名鍵はプロセス起動時に1回設定し、依存として注入する。
// トークンはサーバー側に保存しない。有効なトークンの所持がそのアカウントであることの証明になる。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer は署名鍵と有効期間を指定してTokenIssuerを生成する。
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl}
}

// Issue は指定ユーザー名を主張する署名付きトークンを発行する。
func (i *TokenIssuer) Issue(username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Username: username,
	})

	return token.SignedString(i.secret)
}

// Validate はトークンの署名を検証し、主張されたユーザー名を返す。
// 署名不一致、期限切れ、ペイロード不正のいずれもInvalidTokenとして扱う。
// リクエストの呼び出し元識別はこの検証を通してのみ行うこと。
func (i *TokenIssuer) Validate(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", model.NewInvalidTokenError()
	}

	if claims.Username == "" {
		return "", model.NewInvalidTokenError()
	}

	return claims.Username, nil
}
