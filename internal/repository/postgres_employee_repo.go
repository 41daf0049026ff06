package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/staffman/internal/model"
)

// PostgresEmployeeRepo はPostgreSQLを使用した従業員リポジトリ。
// emailの一意性はemployees.emailのユニークインデックスで保証され、
// チェックと挿入/更新は単一のSQL文として原子的に実行される。
type PostgresEmployeeRepo struct {
	db *sql.DB
}

// NewPostgresEmployeeRepo はPostgresEmployeeRepoを生成する。
func NewPostgresEmployeeRepo(db *sql.DB) *PostgresEmployeeRepo {
	return &PostgresEmployeeRepo{db: db}
}

// List は全従業員を名前の昇順（大文字小文字を無視）で返す。
// 小文字化した名前が一致する場合はname、idの順で安定ソートする。
func (r *PostgresEmployeeRepo) List(ctx context.Context) ([]*model.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, position, department, date_of_joining, created_at, updated_at
		 FROM employees
		 ORDER BY lower(name) ASC, name ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		e := &model.Employee{}
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Email, &e.Position, &e.Department,
			&e.DateOfJoining, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

// FindByID は指定IDの従業員を取得する。見つからない場合はnilを返す。
func (r *PostgresEmployeeRepo) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	e := &model.Employee{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, position, department, date_of_joining, created_at, updated_at
		 FROM employees
		 WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Name, &e.Email, &e.Position, &e.Department, &e.DateOfJoining, &e.CreatedAt, &e.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find employee by ID: %w", err)
	}

	return e, nil
}

// Insert は従業員を作成する。emailが重複する場合はErrDuplicateEmailを返す。
func (r *PostgresEmployeeRepo) Insert(ctx context.Context, employee *model.Employee) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (id, name, email, position, department, date_of_joining, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		employee.ID, employee.Name, employee.Email, employee.Position,
		employee.Department, employee.DateOfJoining, employee.CreatedAt, employee.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert employee: %w", err)
	}
	return nil
}

// Update は指定IDの従業員にpatchをマージする。
// nilフィールドはCOALESCEで既存値を維持する単一UPDATE文として実行する。
// 見つからない場合はnilを返し、email衝突の場合はErrDuplicateEmailを返す。
func (r *PostgresEmployeeRepo) Update(ctx context.Context, id string, patch *model.EmployeePatch) (*model.Employee, error) {
	e := &model.Employee{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE employees
		 SET name            = COALESCE($2, name),
		     email           = COALESCE($3, email),
		     position        = COALESCE($4, position),
		     department      = COALESCE($5, department),
		     date_of_joining = COALESCE($6, date_of_joining),
		     updated_at      = now()
		 WHERE id = $1
		 RETURNING id, name, email, position, department, date_of_joining, created_at, updated_at`,
		id, patch.Name, patch.Email, patch.Position, patch.Department, patch.DateOfJoining,
	).Scan(&e.ID, &e.Name, &e.Email, &e.Position, &e.Department, &e.DateOfJoining, &e.CreatedAt, &e.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}

	return e, nil
}

// Delete は指定IDの従業員を削除し、削除が行われたかを返す。
func (r *PostgresEmployeeRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM employees WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete employee: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ EmployeeRepository = (*PostgresEmployeeRepo)(nil)
