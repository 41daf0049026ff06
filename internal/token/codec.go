// Package token はセッショントークンの署名と検証を提供する。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/staffman/internal/model"
)

// issuer はこのサービスが発行するトークンのiss claim。
const issuer = "staffman"

// ErrInvalidToken はトークン検証失敗を表す唯一のエラー。
// 期限切れ・署名不正・改ざん・形式不正を呼び出し側に区別させない。
var ErrInvalidToken = errors.New("invalid session token")

// sessionClaims はセッションペイロードをJWT claimとして表現する。
// UserIDはsub claimに格納する。
type sessionClaims struct {
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Codec はHS256固定のセッショントークンcodec。
// 鍵とTTLは生成時に確定し、以降は変更されない。ステートレスで並行利用可能。
type Codec struct {
	key []byte
	ttl time.Duration
}

// NewCodec はCodecを生成する。
// 鍵は32バイト以上、TTLは正の値であること。
func NewCodec(key []byte, ttl time.Duration) (*Codec, error) {
	if len(key) < 32 {
		return nil, fmt.Errorf("signing key must be at least 32 bytes, got %d", len(key))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token TTL must be positive, got %v", ttl)
	}
	return &Codec{key: key, ttl: ttl}, nil
}

// TTL はトークンの有効期間を返す。
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode はセッションペイロードを署名付きトークンに変換する。
// iat=現在時刻、exp=現在時刻+TTLを埋め込む。
func (c *Codec) Encode(payload *model.SessionPayload) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Name:  payload.Name,
		Email: payload.Email,
		Role:  payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Decode はトークンを検証してセッションペイロードを復元する。
// アルゴリズムはHS256に固定し、それ以外の署名方式は拒否する（ダウングレード対策）。
// 検証に失敗した場合は原因によらずErrInvalidTokenを返し、panicしない。
func (c *Codec) Decode(tokenStr string) (*model.SessionPayload, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)

	tok, err := parser.ParseWithClaims(tokenStr, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.key, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(*sessionClaims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}

	return &model.SessionPayload{
		UserID: claims.Subject,
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
