// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/staffman/internal/model"
)

// ErrDuplicateEmail はemailの一意性制約違反を表す。
// ストア実装はチェックと挿入を単一の原子的操作として行い、
// 違反をこのエラーとして報告しなければならない。
var ErrDuplicateEmail = errors.New("email already exists")

// AccountRepository はユーザーアカウントの永続化インターフェース。
// アカウントはシードデータであり、実行時の更新操作は存在しない。
type AccountRepository interface {
	// FindByEmail は指定メールアドレスのアカウントを取得する。見つからない場合はnilを返す。
	// 比較は格納時のまま大文字小文字を区別する。
	FindByEmail(ctx context.Context, email string) (*model.UserAccount, error)

	// Insert はアカウントを作成する。シード投入でのみ使用する。
	// emailが重複する場合はErrDuplicateEmailを返す。
	Insert(ctx context.Context, account *model.UserAccount) error
}

// EmployeeRepository は従業員レコードの永続化インターフェース。
type EmployeeRepository interface {
	// List は全従業員を名前の昇順（大文字小文字を無視）で返す。
	// 小文字化した名前が一致する場合はname、idの順で安定ソートする。
	List(ctx context.Context) ([]*model.Employee, error)

	// FindByID は指定IDの従業員を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Employee, error)

	// Insert は従業員を作成する。emailが重複する場合はErrDuplicateEmailを返し、
	// ストアは変更されない。
	Insert(ctx context.Context, employee *model.Employee) error

	// Update は指定IDの従業員にpatchのnil以外のフィールドをマージする。
	// 見つからない場合はnilを返す。emailが他のレコードと衝突する場合は
	// ErrDuplicateEmailを返し、ストアは変更されない。
	Update(ctx context.Context, id string, patch *model.EmployeePatch) (*model.Employee, error)

	// Delete は指定IDの従業員を削除し、削除が行われたかを返す。
	// 存在しないIDの削除はfalseを返すがエラーではない（冪等）。
	Delete(ctx context.Context, id string) (bool, error)
}
