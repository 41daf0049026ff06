// Package auth はログイン認証と権限判定を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/staffman/internal/model"
	"github.com/hitoshi/staffman/internal/repository"
)

// PasswordVerifier はパスワード検証のインターフェース。
// password.Hasherの部分集合として定義する。
type PasswordVerifier interface {
	Verify(plain, encoded string) (bool, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	accounts repository.AccountRepository
	verifier PasswordVerifier
}

// NewService はServiceを生成する。
func NewService(accounts repository.AccountRepository, verifier PasswordVerifier) *Service {
	return &Service{
		accounts: accounts,
		verifier: verifier,
	}
}

// Login はメールアドレスとパスワードでアカウントを認証し、
// セッションペイロードを返す。
// アカウント不明とパスワード不一致は同一のINVALID_CREDENTIALSエラーに
// 集約し、アカウントの存在を呼び出し側に漏らさない。
func (s *Service) Login(ctx context.Context, email, plainPassword string) (*model.SessionPayload, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		slog.Warn("login failed: unknown account")
		return nil, model.NewInvalidCredentialsError()
	}

	ok, err := s.verifier.Verify(plainPassword, account.PasswordHash)
	if err != nil {
		// ハッシュ形式の破損は設定・データ異常であり、認証失敗とは区別してログに残す
		slog.Error("login failed: unverifiable password hash",
			slog.String("user_id", account.ID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewInvalidCredentialsError()
	}
	if !ok {
		slog.Warn("login failed: password mismatch",
			slog.String("user_id", account.ID),
		)
		return nil, model.NewInvalidCredentialsError()
	}

	slog.Info("user logged in",
		slog.String("user_id", account.ID),
		slog.String("role", string(account.Role)),
	)

	return &model.SessionPayload{
		UserID: account.ID,
		Name:   account.Name,
		Email:  account.Email,
		Role:   account.Role,
	}, nil
}
