// Package app はアプリケーションの初期化と起動を提供する。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/staffman/internal/auth"
	"github.com/hitoshi/staffman/internal/config"
	"github.com/hitoshi/staffman/internal/database"
	"github.com/hitoshi/staffman/internal/employee"
	"github.com/hitoshi/staffman/internal/handler"
	"github.com/hitoshi/staffman/internal/logger"
	"github.com/hitoshi/staffman/internal/metrics"
	"github.com/hitoshi/staffman/internal/middleware"
	"github.com/hitoshi/staffman/internal/model"
	"github.com/hitoshi/staffman/internal/password"
	"github.com/hitoshi/staffman/internal/repository"
	"github.com/hitoshi/staffman/internal/session"
	"github.com/hitoshi/staffman/internal/token"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandSeed:
		return runSeed(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	accountRepo := repository.NewPostgresAccountRepo(db)
	employeeRepo := repository.NewPostgresEmployeeRepo(db)

	// 3. セッション基盤の初期化
	codec, err := token.NewCodec([]byte(cfg.SessionSecret), cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}
	sessionStore := session.NewStore(codec, session.Config{
		Secure: cfg.CookieSecure,
		Domain: cfg.CookieDomain,
	})

	hasher, err := password.NewHasher(password.DefaultParams())
	if err != nil {
		return fmt.Errorf("failed to create password hasher: %w", err)
	}

	// 4. ドメインサービスの初期化
	authService := auth.NewService(accountRepo, hasher)
	gate := auth.NewGate()
	employeeService := employee.NewService(employeeRepo)

	// 5. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 6. レート制限の初期化（config はreq/min単位、rate.Limitはreq/sec単位）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.LoginRate = rate.Limit(float64(cfg.RateLimitLogin) / 60.0)
	rateLimiterCfg.LoginBurst = cfg.RateLimitLogin
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 7. ルーターの構築
	deps := &handler.RouterDeps{
		SessionReader:     sessionStore,
		RateLimiter:       rateLimiter,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CookieSecure:      cfg.CookieSecure,
		CookieDomain:      cfg.CookieDomain,

		AuthService:    authService,
		SessionManager: sessionStore,
		Gate:           gate,

		EmployeeService: employeeService,

		HealthChecker: db,
		Metrics:       collector,
		Gatherer:      registry,
	}

	router := handler.NewRouter(deps)

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runSeed は初期アカウント（admin/viewer）を投入する。
// パスワードはADMIN_PASSWORD/VIEWER_PASSWORD環境変数から読み込み、
// argon2idでハッシュ化して保存する。既存のアカウントはスキップする（冪等）。
func runSeed(cfg *config.Config) error {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	hasher, err := password.NewHasher(password.DefaultParams())
	if err != nil {
		return fmt.Errorf("failed to create password hasher: %w", err)
	}

	accountRepo := repository.NewPostgresAccountRepo(db)
	ctx := context.Background()

	seeds := []struct {
		id       string
		name     string
		email    string
		password string
		role     model.Role
	}{
		{"user-1", "Admin User", "admin@example.com", seedPassword("ADMIN_PASSWORD"), model.RoleAdmin},
		{"user-2", "Viewer User", "viewer@example.com", seedPassword("VIEWER_PASSWORD"), model.RoleViewer},
	}

	for _, s := range seeds {
		hash, err := hasher.Hash(s.password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", s.id, err)
		}

		err = accountRepo.Insert(ctx, &model.UserAccount{
			ID:           s.id,
			Name:         s.name,
			Email:        s.email,
			PasswordHash: hash,
			Role:         s.role,
			CreatedAt:    time.Now(),
		})
		if errors.Is(err, repository.ErrDuplicateEmail) {
			slog.Info("seed account already exists, skipping",
				slog.String("user_id", s.id),
			)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed account %s: %w", s.id, err)
		}

		slog.Info("seed account created",
			slog.String("user_id", s.id),
			slog.String("role", string(s.role)),
		)
	}

	return nil
}

// seedPassword はシードアカウントのパスワードを環境変数から取得する。
// 未設定の場合は開発用のデフォルト値を使用する。
func seedPassword(envKey string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return "password123"
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
