package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/staffman/internal/auth"
	"github.com/hitoshi/staffman/internal/middleware"
	"github.com/hitoshi/staffman/internal/model"
)

const (
	// loginLocation はログアウト後・未認証時の遷移先（公開/ログイン領域）。
	loginLocation = "/"
	// dashboardLocation はログイン成功後の遷移先（保護領域）。
	dashboardLocation = "/dashboard"
)

// validate はリクエスト入力のスキーマ検証に使用する共有インスタンス。
var validate = validator.New()

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*model.SessionPayload, error)
}

// SessionManager はセッションCookieのライフサイクル操作インターフェース。
// session.Storeの部分集合として定義する。
type SessionManager interface {
	Create(w http.ResponseWriter, payload *model.SessionPayload) error
	Destroy(w http.ResponseWriter)
}

// LoginRecorder はログイン試行のメトリクス記録インターフェース。
type LoginRecorder interface {
	RecordLogin(result string)
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	sessions SessionManager
	metrics  LoginRecorder
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnilでもよい。
func NewAuthHandler(service AuthServiceInterface, sessions SessionManager, metrics LoginRecorder) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		metrics:  metrics,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// sessionResponse はセッションペイロードのAPIレスポンス。
type sessionResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// loginResponse はログイン成功時のデータ。
type loginResponse struct {
	Redirect string          `json:"redirect"`
	User     sessionResponse `json:"user"`
}

// Login はログインを処理する。
// POST /api/login
// 入力スキーマをストア参照より先に検証し（fail fast）、
// 形式不正・アカウント不明・パスワード不一致のいずれでも
// 同一の "Invalid email or password." outcomeを返す。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.recordLogin("failure")
		writeActionError(w, model.NewInvalidCredentialsError())
		return
	}

	if err := validate.Struct(&req); err != nil {
		h.recordLogin("failure")
		writeActionError(w, model.NewInvalidCredentialsError())
		return
	}

	payload, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.recordLogin("failure")
		writeActionError(w, err)
		return
	}

	if err := h.sessions.Create(w, payload); err != nil {
		h.recordLogin("failure")
		writeActionError(w, err)
		return
	}

	h.recordLogin("success")
	writeSuccess(w, http.StatusOK, loginResponse{
		Redirect: dashboardLocation,
		User:     toSessionResponse(payload),
	})
}

// Logout はログアウトを処理する。
// POST /api/logout
// セッションCookieを期限切れの空値で上書きする。
// セッションが存在しない状態で呼んでも成功する。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w)
	writeSuccess(w, http.StatusOK, map[string]string{
		"redirect": loginLocation,
	})
}

// Me は現在のセッション情報を返す。
// GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	payload := auth.SessionFromContext(r.Context())
	if payload == nil {
		middleware.WriteUnauthorizedResponse(w, loginLocation)
		return
	}

	writeSuccess(w, http.StatusOK, toSessionResponse(payload))
}

// recordLogin はmetricsが設定されている場合のみログイン結果を記録する。
func (h *AuthHandler) recordLogin(result string) {
	if h.metrics != nil {
		h.metrics.RecordLogin(result)
	}
}

// toSessionResponse はセッションペイロードをAPIレスポンス形式に変換する。
func toSessionResponse(payload *model.SessionPayload) sessionResponse {
	return sessionResponse{
		UserID: payload.UserID,
		Name:   payload.Name,
		Email:  payload.Email,
		Role:   string(payload.Role),
	}
}
