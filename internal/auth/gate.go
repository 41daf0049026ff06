package auth

import (
	"context"
	"errors"

	"github.com/hitoshi/staffman/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionContextKey はリクエストコンテキストにセッションペイロードを格納するためのキー。
var sessionContextKey = contextKey("session")

// ErrNoSession はセッションが存在しないことを表す。
var ErrNoSession = errors.New("no session")

// ErrForbidden はセッションは存在するが権限が不足していることを表す。
// アクション境界ではErrNoSessionと同一のUNAUTHORIZED outcomeに集約される。
var ErrForbidden = errors.New("insufficient role")

// ContextWithSession はコンテキストにセッションペイロードを注入する。
// セッションミドルウェアとテストで使用する。
func ContextWithSession(ctx context.Context, payload *model.SessionPayload) context.Context {
	return context.WithValue(ctx, sessionContextKey, payload)
}

// SessionFromContext はリクエストコンテキストからセッションペイロードを取得する。
// 存在しない場合はnilを返す。
func SessionFromContext(ctx context.Context) *model.SessionPayload {
	payload, ok := ctx.Value(sessionContextKey).(*model.SessionPayload)
	if !ok {
		return nil
	}
	return payload
}

// Gate は操作に必要な権限を判定するチェックポイント。
// セッションの状態は {匿名, 認証済みviewer, 認証済みadmin} の3状態で、
// ログインで認証済みに、ログアウトまたはトークン期限切れ（次回読み取り時に
// 遅延検出）で匿名に遷移する。役割昇格の操作は存在しない。
type Gate struct{}

// NewGate はGateを生成する。
func NewGate() *Gate {
	return &Gate{}
}

// RequireSession は有効なセッションの存在を要求する。
// 匿名の場合はErrNoSessionを返し、呼び出し側はログイン画面への
// 遷移として扱う。
func (g *Gate) RequireSession(ctx context.Context) (*model.SessionPayload, error) {
	payload := SessionFromContext(ctx)
	if payload == nil {
		return nil, ErrNoSession
	}
	return payload, nil
}

// RequireAdmin は管理者権限を持つセッションを要求する。
// 匿名はErrNoSession、権限不足はErrForbiddenを返す。
// 内部では区別するが、外部へのメッセージは両者とも同一とする。
func (g *Gate) RequireAdmin(ctx context.Context) (*model.SessionPayload, error) {
	payload := SessionFromContext(ctx)
	if payload == nil {
		return nil, ErrNoSession
	}
	if payload.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	return payload, nil
}
