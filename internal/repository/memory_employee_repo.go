package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hitoshi/staffman/internal/model"
)

// MemoryEmployeeRepo はメモリ上の従業員リポジトリ。
// テストとPostgreSQLなしのローカル起動で使用する。
// 全操作をミューテックスで直列化するため、emailの一意性チェックと
// 挿入は原子的に行われ、同一emailの並行作成は片方のみ成功する。
type MemoryEmployeeRepo struct {
	mu        sync.Mutex
	employees map[string]*model.Employee
}

// NewMemoryEmployeeRepo はMemoryEmployeeRepoを生成する。
func NewMemoryEmployeeRepo() *MemoryEmployeeRepo {
	return &MemoryEmployeeRepo{
		employees: make(map[string]*model.Employee),
	}
}

// List は全従業員を名前の昇順（大文字小文字を無視）で返す。
// 小文字化した名前が一致する場合はname、idの順。
func (r *MemoryEmployeeRepo) List(ctx context.Context) ([]*model.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	employees := make([]*model.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		copied := *e
		employees = append(employees, &copied)
	}

	sort.Slice(employees, func(i, j int) bool {
		li, lj := strings.ToLower(employees[i].Name), strings.ToLower(employees[j].Name)
		if li != lj {
			return li < lj
		}
		if employees[i].Name != employees[j].Name {
			return employees[i].Name < employees[j].Name
		}
		return employees[i].ID < employees[j].ID
	})

	return employees, nil
}

// FindByID は指定IDの従業員を取得する。見つからない場合はnilを返す。
func (r *MemoryEmployeeRepo) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.employees[id]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

// Insert は従業員を作成する。emailが重複する場合はErrDuplicateEmailを返す。
func (r *MemoryEmployeeRepo) Insert(ctx context.Context, employee *model.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.employees {
		if existing.Email == employee.Email {
			return ErrDuplicateEmail
		}
	}

	copied := *employee
	r.employees[employee.ID] = &copied
	return nil
}

// Update は指定IDの従業員にpatchのnil以外のフィールドをマージする。
// 見つからない場合はnil、他レコードとのemail衝突はErrDuplicateEmailを返す。
func (r *MemoryEmployeeRepo) Update(ctx context.Context, id string, patch *model.EmployeePatch) (*model.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.employees[id]
	if !ok {
		return nil, nil
	}

	if patch.Email != nil && *patch.Email != e.Email {
		for otherID, other := range r.employees {
			if otherID != id && other.Email == *patch.Email {
				return nil, ErrDuplicateEmail
			}
		}
	}

	if patch.Name != nil {
		e.Name = *patch.Name
	}
	if patch.Email != nil {
		e.Email = *patch.Email
	}
	if patch.Position != nil {
		e.Position = *patch.Position
	}
	if patch.Department != nil {
		e.Department = *patch.Department
	}
	if patch.DateOfJoining != nil {
		e.DateOfJoining = *patch.DateOfJoining
	}

	copied := *e
	return &copied, nil
}

// Delete は指定IDの従業員を削除し、削除が行われたかを返す。
func (r *MemoryEmployeeRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.employees[id]; !ok {
		return false, nil
	}
	delete(r.employees, id)
	return true, nil
}

// compile-time interface check
var _ EmployeeRepository = (*MemoryEmployeeRepo)(nil)
