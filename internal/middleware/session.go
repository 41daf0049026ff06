// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"net/http"

	"github.com/hitoshi/staffman/internal/auth"
	"github.com/hitoshi/staffman/internal/model"
)

// LoginLocation は未認証リクエストの遷移先（公開/ログイン領域）。
const LoginLocation = "/"

// SessionReader はセッションの読み取りに必要なインターフェース。
// session.Storeの部分集合として定義する。
type SessionReader interface {
	Read(r *http.Request) *model.SessionPayload
}

// NewSessionMiddleware はHTTP Only Cookieからセッショントークンを読み取り、
// 検証済みペイロードをリクエストコンテキストに注入するミドルウェアを返す。
// Cookieの欠落・改ざん・期限切れはすべて「セッションなし」に集約され、
// 401 Unauthorizedとログイン画面への遷移先を返す。
func NewSessionMiddleware(sessions SessionReader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload := sessions.Read(r)
			if payload == nil {
				WriteUnauthorizedResponse(w, LoginLocation)
				return
			}

			ctx := auth.ContextWithSession(r.Context(), payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
