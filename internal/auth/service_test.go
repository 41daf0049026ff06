package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/staffman/internal/model"
	"github.com/hitoshi/staffman/internal/repository"
)

// mockAccountRepository はAccountRepositoryのモック実装
type mockAccountRepository struct {
	findByEmailFunc func(ctx context.Context, email string) (*model.UserAccount, error)
	insertFunc      func(ctx context.Context, account *model.UserAccount) error
}

func (m *mockAccountRepository) FindByEmail(ctx context.Context, email string) (*model.UserAccount, error) {
	return m.findByEmailFunc(ctx, email)
}

func (m *mockAccountRepository) Insert(ctx context.Context, account *model.UserAccount) error {
	return m.insertFunc(ctx, account)
}

var _ repository.AccountRepository = (*mockAccountRepository)(nil)

// mockVerifier はPasswordVerifierのモック実装
type mockVerifier struct {
	verifyFunc func(plain, encoded string) (bool, error)
}

func (m *mockVerifier) Verify(plain, encoded string) (bool, error) {
	return m.verifyFunc(plain, encoded)
}

func testAccount() *model.UserAccount {
	return &model.UserAccount{
		ID:           "user-1",
		Name:         "Admin User",
		Email:        "admin@example.com",
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$a2V5",
		Role:         model.RoleAdmin,
	}
}

func assertInvalidCredentials(t *testing.T, err error) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidCredentials)
	}
	if apiErr.Message != "Invalid email or password." {
		t.Errorf("Message = %q, want %q", apiErr.Message, "Invalid email or password.")
	}
}

func TestService_Login_Success(t *testing.T) {
	repo := &mockAccountRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.UserAccount, error) {
			if email != "admin@example.com" {
				t.Errorf("email = %q, want %q", email, "admin@example.com")
			}
			return testAccount(), nil
		},
	}
	verifier := &mockVerifier{
		verifyFunc: func(plain, encoded string) (bool, error) {
			return true, nil
		},
	}

	service := NewService(repo, verifier)
	payload, err := service.Login(context.Background(), "admin@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	want := model.SessionPayload{
		UserID: "user-1",
		Name:   "Admin User",
		Email:  "admin@example.com",
		Role:   model.RoleAdmin,
	}
	if *payload != want {
		t.Errorf("Login() = %+v, want %+v", payload, want)
	}
}

// アカウント不明の場合もパスワード不一致と同一のエラーになること
func TestService_Login_UnknownAccount(t *testing.T) {
	repo := &mockAccountRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.UserAccount, error) {
			return nil, nil
		},
	}
	verifier := &mockVerifier{
		verifyFunc: func(plain, encoded string) (bool, error) {
			t.Error("Verify should not be called when account is unknown")
			return false, nil
		},
	}

	service := NewService(repo, verifier)
	_, err := service.Login(context.Background(), "nobody@example.com", "password123")
	assertInvalidCredentials(t, err)
}

func TestService_Login_PasswordMismatch(t *testing.T) {
	repo := &mockAccountRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.UserAccount, error) {
			return testAccount(), nil
		},
	}
	verifier := &mockVerifier{
		verifyFunc: func(plain, encoded string) (bool, error) {
			return false, nil
		},
	}

	service := NewService(repo, verifier)
	_, err := service.Login(context.Background(), "admin@example.com", "wrong")
	assertInvalidCredentials(t, err)
}

// ハッシュ破損もINVALID_CREDENTIALSに集約され、内部事情を漏らさないこと
func TestService_Login_CorruptHash(t *testing.T) {
	repo := &mockAccountRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.UserAccount, error) {
			return testAccount(), nil
		},
	}
	verifier := &mockVerifier{
		verifyFunc: func(plain, encoded string) (bool, error) {
			return false, errors.New("invalid password hash format")
		},
	}

	service := NewService(repo, verifier)
	_, err := service.Login(context.Background(), "admin@example.com", "password123")
	assertInvalidCredentials(t, err)
}

// リポジトリ障害はINVALID_CREDENTIALSではなく内部エラーとして伝播すること
func TestService_Login_RepositoryError(t *testing.T) {
	repo := &mockAccountRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.UserAccount, error) {
			return nil, errors.New("connection refused")
		},
	}
	verifier := &mockVerifier{
		verifyFunc: func(plain, encoded string) (bool, error) {
			return true, nil
		},
	}

	service := NewService(repo, verifier)
	_, err := service.Login(context.Background(), "admin@example.com", "password123")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("expected plain error, got APIError %+v", apiErr)
	}
}
