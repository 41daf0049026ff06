package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/staffman/internal/metrics"
	"github.com/hitoshi/staffman/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionReader     middleware.SessionReader
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string
	CookieSecure      bool
	CookieDomain      string

	// 認証
	AuthService    AuthServiceInterface
	SessionManager SessionManager
	Gate           AuthorizationGate

	// 従業員
	EmployeeService EmployeeServiceInterface

	// 運用
	HealthChecker HealthChecker
	Metrics       *metrics.Collector
	Gatherer      prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → Metrics
//
// 認証が必要なルートにはさらに Session → CSRF → RateLimit(General) を適用する。
// ログインは未認証で到達できるため、IPベースのレート制限のみを適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.Metrics != nil {
		r.Use(metrics.Middleware(deps.Metrics))
	}

	// nilの*metrics.Collectorを非nilインターフェースとして渡さない
	var loginRecorder LoginRecorder
	var mutationRecorder MutationRecorder
	if deps.Metrics != nil {
		loginRecorder = deps.Metrics
		mutationRecorder = deps.Metrics
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.SessionManager, loginRecorder)
	employeeHandler := NewEmployeeHandler(deps.EmployeeService, deps.Gate, mutationRecorder)

	// --- 運用エンドポイント ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 認証不要のルート ---

	r.Route("/api", func(r chi.Router) {
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		// --- 認証が必要なルート ---
		// ミドルウェアスタック: Session → CSRF → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.SessionReader))
			r.Use(middleware.NewCSRFMiddleware(middleware.CSRFConfig{
				CookieSecure: deps.CookieSecure,
				CookieDomain: deps.CookieDomain,
			}))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Get("/me", authHandler.Me)

			// 従業員レコード管理。変更操作はハンドラー内でRequireAdminを通す。
			r.Route("/employees", func(r chi.Router) {
				r.Get("/", employeeHandler.List)
				r.Post("/", employeeHandler.Create)
				r.Put("/{id}", employeeHandler.Update)
				r.Delete("/{id}", employeeHandler.Delete)
			})
		})
	})

	return r
}

// newHealthHandler はDB接続の疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
