// Package employee は従業員レコードのCRUDロジックを提供する。
package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/staffman/internal/model"
	"github.com/hitoshi/staffman/internal/repository"
)

// Service は従業員レコードのサービス層。
// emailの一意性違反と未検出を型付きの失敗として報告し、例外を送出しない。
type Service struct {
	repo repository.EmployeeRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.EmployeeRepository) *Service {
	return &Service{repo: repo}
}

// List は全従業員を名前の昇順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Employee, error) {
	employees, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// Create は新しいIDを採番して従業員を作成し、保存されたレコードを返す。
// emailが既存レコードと衝突する場合はDUPLICATE_EMAILエラーを返し、
// ストアは変更されない。
func (s *Service) Create(ctx context.Context, input *model.EmployeeInput) (*model.Employee, error) {
	now := time.Now()
	e := &model.Employee{
		ID:            uuid.New().String(),
		Name:          input.Name,
		Email:         input.Email,
		Position:      input.Position,
		Department:    input.Department,
		DateOfJoining: input.DateOfJoining,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewDuplicateEmailError(input.Email)
		}
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	slog.Info("employee created",
		slog.String("employee_id", e.ID),
		slog.String("department", e.Department),
	)

	return e, nil
}

// Update は指定IDの従業員にpatchをマージし、更新後のレコードを返す。
// 未検出はEMPLOYEE_NOT_FOUND、他レコードとのemail衝突はDUPLICATE_EMAILを返す。
func (s *Service) Update(ctx context.Context, id string, patch *model.EmployeePatch) (*model.Employee, error) {
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			email := ""
			if patch.Email != nil {
				email = *patch.Email
			}
			return nil, model.NewDuplicateEmailError(email)
		}
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	if updated == nil {
		return nil, model.NewEmployeeNotFoundError(id)
	}

	slog.Info("employee updated", slog.String("employee_id", id))

	return updated, nil
}

// Delete は指定IDの従業員を削除し、削除が行われたかを返す。
// 存在しないIDはdeleted=falseを返すがエラーではない。エラー扱いにするかは
// 呼び出し側の判断に委ねる。
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete employee: %w", err)
	}

	if deleted {
		slog.Info("employee deleted", slog.String("employee_id", id))
	}

	return deleted, nil
}
