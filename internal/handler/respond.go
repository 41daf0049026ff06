// Package handler はHTTPハンドラー（アクション層）を提供する。
// すべてのアクションは成功・失敗を問わず {success, message, data} の
// 統一outcomeで応答し、呼び出し側に例外の分岐を要求しない。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/staffman/internal/middleware"
	"github.com/hitoshi/staffman/internal/model"
)

// actionResponse は成功時の統一レスポンスフォーマット。
type actionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// writeSuccess は成功outcomeを書き込む。
func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(actionResponse{
		Success: true,
		Data:    data,
	})
}

// writeActionError はエラーを統一outcomeに変換して書き込む。
// 想定内の失敗（*model.APIError）はコードに応じたステータスで返し、
// それ以外はログに記録した上で一般的な500メッセージに集約する。
// 認可拒否は未認証と同一のレスポンス形（redirect付き）に揃える。
func writeActionError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == model.ErrCodeUnauthorized {
			middleware.WriteUnauthorizedResponse(w, loginLocation)
			return
		}
		middleware.WriteErrorResponse(w, statusForCode(apiErr.Code), apiErr)
		return
	}

	slog.Error("unexpected error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// statusForCode はエラーコードをHTTPステータスコードに対応付ける。
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeValidationFailed:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeEmployeeNotFound:
		return http.StatusNotFound
	case model.ErrCodeDuplicateEmail:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
